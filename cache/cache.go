// Package cache layers TTL expiry on top of the keyed storage. Entries
// are checked lazily on read; Cleanup purges everything expired in one
// pass and is run once at application start.
package cache

import (
	"encoding/json"
	"time"

	"github.com/eduapps/quizvault/kv"
	"github.com/eduapps/quizvault/models"
	"github.com/eduapps/quizvault/utils"
)

const keyPrefix = "cache:"

// Cache stores payloads with an expiry timestamp in keyed storage.
type Cache struct {
	store *kv.Store
	now   func() time.Time
}

func New(store *kv.Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

// Put stores payload under key for ttl. A non-positive ttl is rejected:
// every entry must expire strictly after it was created.
func (c *Cache) Put(key string, payload interface{}, ttl time.Duration) {
	if ttl <= 0 {
		utils.LogError("Rejected cache entry %s with non-positive ttl %v", key, ttl)
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		utils.LogError("Failed to serialize cache payload for %s: %v", key, err)
		return
	}

	now := c.now()
	c.store.Set(keyPrefix+key, models.CacheEntry{
		Key:       key,
		Payload:   raw,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Version:   models.CacheEntryVersion,
	})
}

// Get loads the payload under key into out. An expired entry counts as
// missing and is deleted as a side effect.
func (c *Cache) Get(key string, out interface{}) bool {
	var entry models.CacheEntry
	if !c.store.Get(keyPrefix+key, &entry) {
		return false
	}
	if entry.Expired(c.now()) {
		utils.LogCache("Entry %s expired, purging", key)
		c.store.Delete(keyPrefix + key)
		return false
	}
	if err := json.Unmarshal(entry.Payload, out); err != nil {
		utils.LogError("Failed to deserialize cache payload for %s: %v", key, err)
		return false
	}
	return true
}

// Delete removes the entry under key.
func (c *Cache) Delete(key string) {
	c.store.Delete(keyPrefix + key)
}

// Cleanup purges every expired entry and returns how many it removed.
func (c *Cache) Cleanup() int {
	now := c.now()
	removed := 0
	for _, storeKey := range c.store.Keys(keyPrefix) {
		var entry models.CacheEntry
		if !c.store.Get(storeKey, &entry) {
			// Unreadable entry, drop it so it cannot linger forever.
			c.store.Delete(storeKey)
			removed++
			continue
		}
		if entry.Expired(now) {
			c.store.Delete(storeKey)
			removed++
		}
	}
	if removed > 0 {
		utils.LogCache("Cleanup removed %d expired entries", removed)
	}
	return removed
}

const quizContentPrefix = "quiz_content:"

// PutQuizContent caches the render-ready content bundle for a quiz.
func (c *Cache) PutQuizContent(quizID string, content *models.QuizContent, ttl time.Duration) {
	c.Put(quizContentPrefix+quizID, content, ttl)
}

// QuizContent returns the cached content bundle for a quiz, if fresh.
func (c *Cache) QuizContent(quizID string) (*models.QuizContent, bool) {
	var content models.QuizContent
	if !c.Get(quizContentPrefix+quizID, &content) {
		return nil, false
	}
	return &content, true
}
