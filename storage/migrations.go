package storage

import (
	"database/sql"
	"fmt"

	"github.com/eduapps/quizvault/utils"
)

// A migration brings the schema from version-1 to version. Statements
// are written to be idempotent (IF NOT EXISTS) so a partially applied
// step can be re-run safely, and they never touch collections they
// don't need to change.
type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "content collections",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS quizzes (
				id TEXT PRIMARY KEY,
				doc TEXT NOT NULL,
				course_id TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_quizzes_course_id ON quizzes(course_id)`,
			`CREATE TABLE IF NOT EXISTS questions (
				id TEXT PRIMARY KEY,
				doc TEXT NOT NULL,
				quiz_id TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_questions_quiz_id ON questions(quiz_id)`,
			`CREATE TABLE IF NOT EXISTS courses (
				id TEXT PRIMARY KEY,
				doc TEXT NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "progress and attempts",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS progress (
				id TEXT PRIMARY KEY,
				doc TEXT NOT NULL,
				user_id TEXT,
				quiz_id TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_progress_user_id ON progress(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_progress_user_quiz ON progress(user_id, quiz_id)`,
			`CREATE TABLE IF NOT EXISTS attempts (
				id TEXT PRIMARY KEY,
				doc TEXT NOT NULL,
				user_id TEXT,
				quiz_id TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_attempts_user_id ON attempts(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_attempts_quiz_id ON attempts(quiz_id)`,
		},
	},
	{
		version: 3,
		name:    "query cache and settings",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS query_cache (
				id TEXT PRIMARY KEY,
				doc TEXT NOT NULL,
				expires_at_ms INTEGER
			)`,
			`CREATE INDEX IF NOT EXISTS idx_query_cache_expires_at ON query_cache(expires_at_ms)`,
			`CREATE TABLE IF NOT EXISTS settings (
				id TEXT PRIMARY KEY,
				doc TEXT NOT NULL
			)`,
		},
	},
}

// migrate applies, in order, every migration newer than the stored
// schema version (PRAGMA user_version). Re-opening a store at the
// current version applies nothing.
func migrate(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	target := migrations[len(migrations)-1].version
	if current == target {
		return nil
	}
	if current > target {
		return fmt.Errorf("store schema version %d is newer than supported version %d", current, target)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		utils.LogStore("Applying migration %d (%s)", m.version, m.name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		for _, stmt := range m.statements {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		// PRAGMA cannot be parameterized; version comes from the
		// hardcoded migration list.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: failed to bump schema version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}

	utils.LogStore("Schema migrated from version %d to %d", current, target)
	return nil
}
