// Package kv is a small durable JSON key/value store. It backs the
// cache, preference and progress layers, and deliberately never returns
// errors: write failures degrade persistence to a no-op instead of
// breaking the caller.
package kv

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/eduapps/quizvault/utils"
)

const storeFileName = "keyed_storage.json"

// Store is a mutex-guarded map of JSON documents persisted to a single
// file. When the backing directory is unusable the store runs degraded:
// every operation succeeds but nothing is stored.
type Store struct {
	mu       sync.Mutex
	path     string
	data     map[string]json.RawMessage
	degraded bool
}

// Open loads (or creates) the store under dir. Open never fails: if the
// directory cannot be created or the store file cannot be read, the
// returned store is degraded and behaves as if it were empty.
func Open(dir string) *Store {
	s := &Store{data: make(map[string]json.RawMessage)}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.LogError("Keyed storage unavailable at %s, running degraded: %v", dir, err)
		s.degraded = true
		return s
	}
	s.path = filepath.Join(dir, storeFileName)

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s
	}
	if err != nil {
		utils.LogError("Keyed storage unreadable at %s, running degraded: %v", s.path, err)
		s.degraded = true
		return s
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		// Corrupt store file. Start over rather than failing forever.
		utils.LogError("Keyed storage corrupt at %s, resetting: %v", s.path, err)
		s.data = make(map[string]json.RawMessage)
	}
	return s
}

// Set serializes value under key. Serialization and write failures are
// logged and swallowed.
func (s *Store) Set(key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		utils.LogError("Failed to serialize value for key %s: %v", key, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.degraded {
		return
	}
	s.data[key] = raw
	s.persistLocked()
}

// Get deserializes the value under key into out. It returns false when
// the key is missing or the stored document does not fit out.
func (s *Store) Get(key string, out interface{}) bool {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		utils.LogError("Failed to deserialize value for key %s: %v", key, err)
		return false
	}
	return true
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return
	}
	delete(s.data, key)
	s.persistLocked()
}

// Keys returns all keys with the given prefix, sorted.
func (s *Store) Keys(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Degraded reports whether persistence is disabled.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// persistLocked rewrites the store file. Callers hold s.mu. On write
// failure the in-memory state stays valid and persistence is retried on
// the next mutation.
func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.data)
	if err != nil {
		utils.LogError("Failed to serialize keyed storage: %v", err)
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		utils.LogError("Failed to write keyed storage: %v", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		utils.LogError("Failed to replace keyed storage file: %v", err)
	}
}
