package kv

import (
	"path/filepath"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGetDelete(t *testing.T) {
	s := Open(t.TempDir())

	s.Set("a", payload{Name: "x", Count: 3})

	var got payload
	if !s.Get("a", &got) {
		t.Fatalf("expected key to be present")
	}
	if got.Name != "x" || got.Count != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}

	s.Delete("a")
	if s.Get("a", &got) {
		t.Fatalf("expected key to be gone after delete")
	}

	// Deleting again must be a no-op.
	s.Delete("a")
}

func TestGetMissingKey(t *testing.T) {
	s := Open(t.TempDir())
	var got payload
	if s.Get("nope", &got) {
		t.Fatalf("expected missing key to return false")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s := Open(dir)
	s.Set("quiz:1", payload{Name: "reopened", Count: 7})

	s2 := Open(dir)
	var got payload
	if !s2.Get("quiz:1", &got) {
		t.Fatalf("expected key to survive reopen")
	}
	if got.Name != "reopened" || got.Count != 7 {
		t.Fatalf("unexpected payload after reopen: %+v", got)
	}
}

func TestKeysPrefix(t *testing.T) {
	s := Open(t.TempDir())
	s.Set("cache:b", 1)
	s.Set("cache:a", 2)
	s.Set("prefs:u1", 3)

	keys := s.Keys("cache:")
	if len(keys) != 2 || keys[0] != "cache:a" || keys[1] != "cache:b" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if got := s.Keys("missing:"); len(got) != 0 {
		t.Fatalf("expected no keys, got %v", got)
	}
}

func TestDegradedStoreNeverThrows(t *testing.T) {
	// Using a regular file as the directory makes MkdirAll fail.
	dir := t.TempDir()
	s := Open(dir)
	s.Set("x", 1) // creates dir/keyed_storage.json

	bad := Open(filepath.Join(dir, "keyed_storage.json"))
	if !bad.Degraded() {
		t.Fatalf("expected degraded store")
	}

	bad.Set("k", payload{Name: "v"})
	var got payload
	if bad.Get("k", &got) {
		t.Fatalf("degraded store must behave as empty")
	}
	bad.Delete("k")
	if keys := bad.Keys(""); len(keys) != 0 {
		t.Fatalf("degraded store must have no keys, got %v", keys)
	}
}

func TestUnmarshalMismatchReturnsFalse(t *testing.T) {
	s := Open(t.TempDir())
	s.Set("n", "not a number")

	var out int
	if s.Get("n", &out) {
		t.Fatalf("expected type mismatch to return false")
	}
}
