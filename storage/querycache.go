package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/eduapps/quizvault/utils"
)

// queryCacheEntry is the stored form of one cached query result. The
// expiry is duplicated into an indexed column so the sweep below can
// delete by range instead of scanning documents. Timestamps are unix
// milliseconds: second precision would collapse sub-second TTLs to
// expiry == creation.
type queryCacheEntry struct {
	Key         string          `json:"key"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAtMs int64           `json:"created_at_ms"`
	ExpiresAtMs int64           `json:"expires_at_ms"`
	Version     int             `json:"version"`
}

const queryCacheVersion = 1

// CacheQuery stores a query result under key for ttl.
func (db *DB) CacheQuery(key string, payload interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("query cache ttl must be positive, got %v", ttl)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize query result for %s: %w", key, err)
	}
	now := time.Now()
	return db.Put(CollQueryCache, key, queryCacheEntry{
		Key:         key,
		Payload:     raw,
		CreatedAtMs: now.UnixMilli(),
		ExpiresAtMs: now.Add(ttl).UnixMilli(),
		Version:     queryCacheVersion,
	})
}

// CachedQuery loads a cached query result into out. An expired entry is
// deleted and reported as ErrNotFound.
func (db *DB) CachedQuery(key string, out interface{}) error {
	var entry queryCacheEntry
	if err := db.Get(CollQueryCache, key, &entry); err != nil {
		return err
	}
	if entry.Version != queryCacheVersion || time.Now().UnixMilli() >= entry.ExpiresAtMs {
		if err := db.Delete(CollQueryCache, key); err != nil {
			utils.LogError("Failed to purge expired query cache entry %s: %v", key, err)
		}
		return ErrNotFound
	}
	if err := json.Unmarshal(entry.Payload, out); err != nil {
		return fmt.Errorf("failed to deserialize query result for %s: %w", key, err)
	}
	return nil
}

// CleanExpiredCache deletes every expired query-cache entry and returns
// how many it removed. Only the query_cache collection carries explicit
// TTLs, so only it is swept.
func (db *DB) CleanExpiredCache() (int, error) {
	res, err := db.Exec("DELETE FROM query_cache WHERE expires_at_ms <= ?", time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to clean query cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		utils.LogStore("Removed %d expired query cache entries", n)
	}
	return int(n), nil
}
