// Package storage is the structured multi-collection store backing the
// content cache: named collections of JSON documents with secondary
// indexes, a TTL'd query-result collection, and versioned schema
// migrations. Unlike the keyed storage layer, its methods return errors;
// callers treat any error as a cache miss and fall back to the source
// of truth.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eduapps/quizvault/utils"
)

// Collection names.
const (
	CollQuizzes    = "quizzes"
	CollQuestions  = "questions"
	CollProgress   = "progress"
	CollAttempts   = "attempts"
	CollCourses    = "courses"
	CollQueryCache = "query_cache"
	CollSettings   = "settings"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownIndex      = errors.New("unknown index")
)

type indexSpec struct {
	name    string
	columns []string // JSON field names, doubled as column names
}

type collectionSpec struct {
	table   string
	indexes []indexSpec
}

func (c collectionSpec) indexColumns() []string {
	var cols []string
	seen := map[string]bool{}
	for _, idx := range c.indexes {
		for _, col := range idx.columns {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	return cols
}

func (c collectionSpec) index(name string) (indexSpec, bool) {
	for _, idx := range c.indexes {
		if idx.name == name {
			return idx, true
		}
	}
	return indexSpec{}, false
}

var collections = map[string]collectionSpec{
	CollQuizzes: {table: "quizzes", indexes: []indexSpec{
		{name: "course_id", columns: []string{"course_id"}},
	}},
	CollQuestions: {table: "questions", indexes: []indexSpec{
		{name: "quiz_id", columns: []string{"quiz_id"}},
	}},
	CollProgress: {table: "progress", indexes: []indexSpec{
		{name: "user_id", columns: []string{"user_id"}},
		{name: "user_quiz", columns: []string{"user_id", "quiz_id"}},
	}},
	CollAttempts: {table: "attempts", indexes: []indexSpec{
		{name: "user_id", columns: []string{"user_id"}},
		{name: "quiz_id", columns: []string{"quiz_id"}},
	}},
	CollCourses: {table: "courses"},
	CollQueryCache: {table: "query_cache", indexes: []indexSpec{
		{name: "expires_at_ms", columns: []string{"expires_at_ms"}},
	}},
	CollSettings: {table: "settings"},
}

type DB struct {
	*sql.DB
}

// Open opens (or creates) the store at dbPath and brings the schema up
// to the current version. It fails fast when the engine is unavailable;
// callers must treat that as "caching unavailable" and run uncached.
func Open(dbPath string) (*DB, error) {
	utils.LogStore("Opening structured store at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("structured storage unavailable: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("structured storage unavailable: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("structured storage migration failed: %w", err)
	}

	utils.LogStore("Structured store ready")
	return &DB{db}, nil
}

// Put upserts record under id in the named collection. Index columns
// are extracted from the record's JSON representation.
func (db *DB) Put(col, id string, record interface{}) error {
	spec, ok := collections[col]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, col)
	}

	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize %s record: %w", col, err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(doc, &fields); err != nil {
		return fmt.Errorf("%s record is not a JSON object: %w", col, err)
	}

	cols := []string{"id", "doc"}
	args := []interface{}{id, string(doc)}
	var updates []string
	for _, c := range spec.indexColumns() {
		cols = append(cols, c)
		args = append(args, fields[c])
		updates = append(updates, c+" = excluded."+c)
	}
	updates = append(updates, "doc = excluded.doc")

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		spec.table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
		strings.Join(updates, ", "),
	)
	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", col, id, err)
	}
	return nil
}

// Get loads the record under id into out. Returns ErrNotFound when the
// id is absent.
func (db *DB) Get(col, id string, out interface{}) error {
	spec, ok := collections[col]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, col)
	}

	var doc string
	err := db.QueryRow("SELECT doc FROM "+spec.table+" WHERE id = ?", id).Scan(&doc)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s/%s: %w", col, id, err)
	}
	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return fmt.Errorf("failed to deserialize %s/%s: %w", col, id, err)
	}
	return nil
}

// Delete removes the record under id. Deleting a missing id is a no-op.
func (db *DB) Delete(col, id string) error {
	spec, ok := collections[col]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, col)
	}
	if _, err := db.Exec("DELETE FROM "+spec.table+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", col, id, err)
	}
	return nil
}

// GetAll returns every document in the collection, ordered by id.
func (db *DB) GetAll(col string) ([]json.RawMessage, error) {
	spec, ok := collections[col]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, col)
	}
	return db.queryDocs("SELECT doc FROM " + spec.table + " ORDER BY id")
}

// GetByIndex returns every document whose indexed fields equal values.
// The number of values must match the index's column count.
func (db *DB) GetByIndex(col, index string, values ...interface{}) ([]json.RawMessage, error) {
	spec, ok := collections[col]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, col)
	}
	idx, ok := spec.index(index)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownIndex, index, col)
	}
	if len(values) != len(idx.columns) {
		return nil, fmt.Errorf("index %s on %s takes %d values, got %d",
			index, col, len(idx.columns), len(values))
	}

	var where []string
	for _, c := range idx.columns {
		where = append(where, c+" = ?")
	}
	query := fmt.Sprintf("SELECT doc FROM %s WHERE %s ORDER BY id",
		spec.table, strings.Join(where, " AND "))
	return db.queryDocs(query, values...)
}

// Clear removes every record in the collection.
func (db *DB) Clear(col string) error {
	spec, ok := collections[col]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, col)
	}
	if _, err := db.Exec("DELETE FROM " + spec.table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", col, err)
	}
	utils.LogStore("Cleared collection %s", col)
	return nil
}

// Count returns the number of records in the collection.
func (db *DB) Count(col string) (int, error) {
	spec, ok := collections[col]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCollection, col)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + spec.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", col, err)
	}
	return n, nil
}

func (db *DB) queryDocs(query string, args ...interface{}) ([]json.RawMessage, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, json.RawMessage(doc))
	}
	return docs, rows.Err()
}
