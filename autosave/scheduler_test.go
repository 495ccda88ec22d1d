package autosave

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/eduapps/quizvault/kv"
	"github.com/eduapps/quizvault/models"
)

func provider(hits *int64, answers map[string]interface{}) SnapshotProvider {
	start := time.Now()
	return func() models.Snapshot {
		atomic.AddInt64(hits, 1)
		return models.Snapshot{
			Answers:         answers,
			CurrentIndex:    0,
			StartTime:       start,
			TimeLeftSeconds: 600,
			AttemptID:       "a1",
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AUTOSAVE_INTERVAL", "45")
	t.Setenv("AUTOSAVE_JITTER_MS", "250")

	cfg := ConfigFromEnv()
	if cfg.Interval != 45*time.Second {
		t.Fatalf("unexpected interval: %v", cfg.Interval)
	}
	if cfg.Jitter != 250*time.Millisecond {
		t.Fatalf("unexpected jitter: %v", cfg.Jitter)
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("AUTOSAVE_INTERVAL", "")
	t.Setenv("AUTOSAVE_JITTER_MS", "")

	cfg := ConfigFromEnv()
	if cfg.Interval != DefaultInterval {
		t.Fatalf("expected default interval, got %v", cfg.Interval)
	}
	if cfg.Jitter != 0 {
		t.Fatalf("expected no jitter by default, got %v", cfg.Jitter)
	}
}

func TestTickPersistsSnapshot(t *testing.T) {
	p := NewProgressStore(kv.Open(t.TempDir()))
	s := NewScheduler(p, Config{})
	defer s.Shutdown()

	var hits int64
	start := time.Now()
	s.Start("quiz1", "user1", provider(&hits, map[string]interface{}{"q1": 1}), 20*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if rec, ok := p.Load("quiz1", "user1"); ok {
			if rec.Answers["q1"] != float64(1) {
				t.Fatalf("unexpected answers: %+v", rec.Answers)
			}
			if rec.LastSaved.Before(start) {
				t.Fatalf("LastSaved %v before start %v", rec.LastSaved, start)
			}
			if rec.AttemptID != "a1" {
				t.Fatalf("unexpected attempt ID: %s", rec.AttemptID)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("no save observed before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartReplacesExistingTimer(t *testing.T) {
	p := NewProgressStore(kv.Open(t.TempDir()))
	s := NewScheduler(p, Config{})
	defer s.Shutdown()

	var first, second int64
	s.Start("quiz1", "user1", provider(&first, map[string]interface{}{"q1": 1}), 10*time.Millisecond)
	s.Start("quiz1", "user1", provider(&second, map[string]interface{}{"q1": 2}), 10*time.Millisecond)

	if s.ActiveCount() != 1 {
		t.Fatalf("expected exactly one timer, got %d", s.ActiveCount())
	}

	firstBefore := atomic.LoadInt64(&first)
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt64(&first); got != firstBefore {
		t.Fatalf("replaced timer kept ticking: %d -> %d", firstBefore, got)
	}
	if atomic.LoadInt64(&second) == 0 {
		t.Fatalf("replacement timer never ticked")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p := NewProgressStore(kv.Open(t.TempDir()))
	s := NewScheduler(p, Config{})

	// Never started: must be a no-op.
	s.Stop("quiz1", "user1")

	var hits int64
	s.Start("quiz1", "user1", provider(&hits, nil), 10*time.Millisecond)
	s.Stop("quiz1", "user1")
	s.Stop("quiz1", "user1")

	if s.ActiveCount() != 0 {
		t.Fatalf("expected no active timers, got %d", s.ActiveCount())
	}
}

func TestEmptyAnswersNotPersisted(t *testing.T) {
	p := NewProgressStore(kv.Open(t.TempDir()))
	s := NewScheduler(p, Config{})
	defer s.Shutdown()

	var hits int64
	s.Start("quiz1", "user1", provider(&hits, map[string]interface{}{}), 10*time.Millisecond)

	deadline := time.Now().Add(500 * time.Millisecond)
	for atomic.LoadInt64(&hits) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt64(&hits) == 0 {
		t.Fatalf("provider was never polled")
	}
	if _, ok := p.Load("quiz1", "user1"); ok {
		t.Fatalf("empty snapshots must not be persisted")
	}
}

func TestFlushSavesImmediately(t *testing.T) {
	p := NewProgressStore(kv.Open(t.TempDir()))
	s := NewScheduler(p, Config{})
	defer s.Shutdown()

	var hits int64
	s.Start("quiz1", "user1", provider(&hits, map[string]interface{}{"q1": "x"}), time.Hour)

	if !s.Flush("quiz1", "user1") {
		t.Fatalf("expected flush to save")
	}
	if _, ok := p.Load("quiz1", "user1"); !ok {
		t.Fatalf("expected record after flush")
	}

	// Flushing an unknown key does nothing.
	if s.Flush("quiz2", "user1") {
		t.Fatalf("flush of unknown key must report false")
	}
}

func TestFlushWithEmptyAnswersReportsFalse(t *testing.T) {
	p := NewProgressStore(kv.Open(t.TempDir()))
	s := NewScheduler(p, Config{})
	defer s.Shutdown()

	var hits int64
	s.Start("quiz1", "user1", provider(&hits, nil), time.Hour)
	if s.Flush("quiz1", "user1") {
		t.Fatalf("flush with no answers must not save")
	}
}

func TestPanickingProviderKeepsTimerAlive(t *testing.T) {
	p := NewProgressStore(kv.Open(t.TempDir()))
	s := NewScheduler(p, Config{})
	defer s.Shutdown()

	var hits int64
	s.Start("quiz1", "user1", func() models.Snapshot {
		atomic.AddInt64(&hits, 1)
		panic("storage exploded")
	}, 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&hits) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt64(&hits) < 2 {
		t.Fatalf("timer died after a failing tick")
	}
}

func TestShutdownFlushesActiveSessions(t *testing.T) {
	p := NewProgressStore(kv.Open(t.TempDir()))
	s := NewScheduler(p, Config{})

	var hits int64
	s.Start("quiz1", "user1", provider(&hits, map[string]interface{}{"q1": 1}), time.Hour)
	s.Start("quiz2", "user2", provider(&hits, map[string]interface{}{"q2": 2}), time.Hour)

	s.Shutdown()

	if s.ActiveCount() != 0 {
		t.Fatalf("expected all timers stopped")
	}
	if _, ok := p.Load("quiz1", "user1"); !ok {
		t.Fatalf("expected quiz1 progress flushed on shutdown")
	}
	if _, ok := p.Load("quiz2", "user2"); !ok {
		t.Fatalf("expected quiz2 progress flushed on shutdown")
	}
}

func TestClearStopsTimer(t *testing.T) {
	p := NewProgressStore(kv.Open(t.TempDir()))
	s := NewScheduler(p, Config{})

	var hits int64
	s.Start("quiz1", "user1", provider(&hits, map[string]interface{}{"q1": 1}), time.Hour)
	s.Flush("quiz1", "user1")

	p.Clear("quiz1", "user1")

	if s.Active("quiz1", "user1") {
		t.Fatalf("clear must stop the session's timer")
	}
	if _, ok := p.Load("quiz1", "user1"); ok {
		t.Fatalf("clear must remove the record")
	}
}
