// Package autosave persists in-progress quiz sessions: a durable
// progress store with 24h staleness eviction plus a per-session
// auto-save scheduler that snapshots UI state on a timer.
package autosave

import (
	"time"

	"github.com/google/uuid"

	"github.com/eduapps/quizvault/kv"
	"github.com/eduapps/quizvault/models"
	"github.com/eduapps/quizvault/utils"
)

const progressKeyPrefix = "quiz_progress:"

// ProgressStore keeps the latest saved progress per (quiz, user) pair.
type ProgressStore struct {
	store *kv.Store
	sched *Scheduler // set by NewScheduler; nil when no scheduler exists
	now   func() time.Time
}

func NewProgressStore(store *kv.Store) *ProgressStore {
	return &ProgressStore{store: store, now: time.Now}
}

func progressKey(quizID, userID string) string {
	return progressKeyPrefix + userID + ":" + quizID
}

// Begin creates and persists a fresh record for a new session, minting
// session and attempt IDs. Empty answers are valid here: the record
// means "started but nothing answered yet".
func (p *ProgressStore) Begin(quizID, userID string, timeLimitSeconds int) *models.ProgressRecord {
	now := p.now()
	rec := &models.ProgressRecord{
		QuizID:          quizID,
		UserID:          userID,
		SessionID:       uuid.NewString(),
		AttemptID:       uuid.NewString(),
		Answers:         map[string]interface{}{},
		StartTime:       now,
		TimeLeftSeconds: timeLimitSeconds,
	}
	p.Save(rec)
	return rec
}

// Save upserts the record under its (quiz, user) key, stamping
// LastSaved with the current time. LastSaved never moves backwards.
func (p *ProgressStore) Save(rec *models.ProgressRecord) {
	now := p.now()
	if now.After(rec.LastSaved) {
		rec.LastSaved = now
	}
	p.store.Set(progressKey(rec.QuizID, rec.UserID), rec)
	utils.LogAutoSave("Saved progress for user %s quiz %s (%d answers)",
		rec.UserID, rec.QuizID, len(rec.Answers))
}

// Load returns the saved record for (quiz, user). A record older than
// the staleness window is purged and reported as absent.
func (p *ProgressStore) Load(quizID, userID string) (*models.ProgressRecord, bool) {
	var rec models.ProgressRecord
	if !p.store.Get(progressKey(quizID, userID), &rec) {
		return nil, false
	}
	if rec.Stale(p.now()) {
		utils.LogAutoSave("Progress for user %s quiz %s is stale, purging", userID, quizID)
		p.store.Delete(progressKey(quizID, userID))
		return nil, false
	}
	return &rec, true
}

// Clear deletes the record and stops any active auto-save timer for the
// same key, so a finished session leaves no orphaned timer behind.
func (p *ProgressStore) Clear(quizID, userID string) {
	p.store.Delete(progressKey(quizID, userID))
	if p.sched != nil {
		p.sched.Stop(quizID, userID)
	}
}

// PurgeStale removes every record older than the staleness window and
// returns how many it removed.
func (p *ProgressStore) PurgeStale() int {
	now := p.now()
	removed := 0
	for _, key := range p.store.Keys(progressKeyPrefix) {
		var rec models.ProgressRecord
		if !p.store.Get(key, &rec) {
			p.store.Delete(key)
			removed++
			continue
		}
		if rec.Stale(now) {
			p.store.Delete(key)
			removed++
		}
	}
	if removed > 0 {
		utils.LogAutoSave("Purged %d stale progress records", removed)
	}
	return removed
}

// saveSnapshot persists a scheduler snapshot, preserving the session ID
// of an existing record for the same key.
func (p *ProgressStore) saveSnapshot(quizID, userID string, snap models.Snapshot) {
	rec := models.ProgressRecord{
		QuizID:          quizID,
		UserID:          userID,
		AttemptID:       snap.AttemptID,
		Answers:         snap.Answers,
		CurrentIndex:    snap.CurrentIndex,
		StartTime:       snap.StartTime,
		TimeLeftSeconds: snap.TimeLeftSeconds,
	}
	var prev models.ProgressRecord
	if p.store.Get(progressKey(quizID, userID), &prev) {
		rec.SessionID = prev.SessionID
		rec.LastSaved = prev.LastSaved
	}
	if rec.SessionID == "" {
		rec.SessionID = uuid.NewString()
	}
	p.Save(&rec)
}
