package cache

import (
	"testing"
	"time"

	"github.com/eduapps/quizvault/kv"
	"github.com/eduapps/quizvault/models"
)

type doc struct {
	V int `json:"v"`
}

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(kv.Open(t.TempDir()))
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetWithinTTL(t *testing.T) {
	c, now := newTestCache(t)
	c.Put("k", doc{V: 1}, 1000*time.Millisecond)

	var got doc
	if !c.Get("k", &got) {
		t.Fatalf("expected hit immediately after put")
	}
	if got.V != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}

	*now = now.Add(999 * time.Millisecond)
	if !c.Get("k", &got) {
		t.Fatalf("expected hit just before expiry")
	}
}

func TestGetPastTTLDeletesEntry(t *testing.T) {
	c, now := newTestCache(t)
	c.Put("k", doc{V: 1}, 1000*time.Millisecond)

	*now = now.Add(1001 * time.Millisecond)
	var got doc
	if c.Get("k", &got) {
		t.Fatalf("expected miss after expiry")
	}

	// The expired read must have purged the entry.
	if removed := c.Cleanup(); removed != 0 {
		t.Fatalf("expected entry already purged, cleanup removed %d", removed)
	}
}

func TestGetAtExactExpiryIsMiss(t *testing.T) {
	c, now := newTestCache(t)
	c.Put("k", doc{V: 1}, time.Second)

	*now = now.Add(time.Second)
	var got doc
	if c.Get("k", &got) {
		t.Fatalf("expected miss at exact expiry time")
	}
}

func TestNonPositiveTTLRejected(t *testing.T) {
	c, _ := newTestCache(t)
	c.Put("k", doc{V: 1}, 0)

	var got doc
	if c.Get("k", &got) {
		t.Fatalf("entry with zero ttl must not be stored")
	}
}

func TestCleanupCountsExpiredOnly(t *testing.T) {
	c, now := newTestCache(t)
	c.Put("short", doc{V: 1}, time.Minute)
	c.Put("long", doc{V: 2}, time.Hour)

	*now = now.Add(30 * time.Minute)
	if removed := c.Cleanup(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	var got doc
	if !c.Get("long", &got) {
		t.Fatalf("fresh entry must survive cleanup")
	}
}

func TestOldEntryVersionTreatedAsExpired(t *testing.T) {
	store := kv.Open(t.TempDir())
	c := New(store)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	store.Set("cache:old", models.CacheEntry{
		Key:       "old",
		Payload:   []byte(`{"v":1}`),
		CreatedAt: fixed,
		ExpiresAt: fixed.Add(time.Hour),
		Version:   models.CacheEntryVersion - 1,
	})

	var got doc
	if c.Get("old", &got) {
		t.Fatalf("entry with stale format version must be a miss")
	}
}

func TestQuizContentRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	content := &models.QuizContent{
		Quiz: models.Quiz{ID: "q1", Title: "History"},
		Questions: []models.Question{
			{ID: "qq1", QuizID: "q1", Position: 0, Prompt: "When?"},
		},
	}
	c.PutQuizContent("q1", content, time.Hour)

	got, ok := c.QuizContent("q1")
	if !ok {
		t.Fatalf("expected cached quiz content")
	}
	if got.Quiz.Title != "History" || len(got.Questions) != 1 {
		t.Fatalf("unexpected content: %+v", got)
	}
}
