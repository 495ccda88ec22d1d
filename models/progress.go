package models

import "time"

// StalenessWindow is how long a saved progress record stays loadable.
// Records older than this are purged instead of returned.
const StalenessWindow = 24 * time.Hour

// ProgressRecord is the saved state of one in-progress quiz session for
// one user. Answers maps a question key to the user's answer, which is a
// JSON-representable scalar (string, number, bool) or a list of them.
type ProgressRecord struct {
	QuizID          string                 `json:"quiz_id"`
	UserID          string                 `json:"user_id"`
	SessionID       string                 `json:"session_id"`
	AttemptID       string                 `json:"attempt_id"`
	Answers         map[string]interface{} `json:"answers"`
	CurrentIndex    int                    `json:"current_index"`
	StartTime       time.Time              `json:"start_time"`
	TimeLeftSeconds int                    `json:"time_left_seconds"`
	LastSaved       time.Time              `json:"last_saved"`
}

// Stale reports whether the record is older than the staleness window.
func (r *ProgressRecord) Stale(now time.Time) bool {
	return now.Sub(r.LastSaved) > StalenessWindow
}

// Snapshot is the in-memory quiz state handed to the auto-save layer by
// a snapshot provider at the moment a save fires.
type Snapshot struct {
	Answers         map[string]interface{} `json:"answers"`
	CurrentIndex    int                    `json:"current_index"`
	StartTime       time.Time              `json:"start_time"`
	TimeLeftSeconds int                    `json:"time_left_seconds"`
	AttemptID       string                 `json:"attempt_id"`
}
