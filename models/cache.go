package models

import (
	"encoding/json"
	"time"
)

// CacheEntryVersion tags the on-disk entry format. Entries written by
// an older build are treated as expired on read.
const CacheEntryVersion = 1

// CacheEntry wraps a cached payload with its lifetime metadata.
// ExpiresAt is always strictly after CreatedAt.
type CacheEntry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Version   int             `json:"version"`
}

// Expired reports whether the entry must not be served at the given
// time, either because its TTL has passed or because it was written in
// an older entry format.
func (e *CacheEntry) Expired(now time.Time) bool {
	if e.Version != CacheEntryVersion {
		return true
	}
	return !now.Before(e.ExpiresAt)
}
