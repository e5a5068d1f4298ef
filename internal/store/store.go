// Package store is the shared on-disk state all hook processes read and
// write. It is an embedded SQLite database: many short-lived writer
// processes, single-writer queueing inside SQLite (WAL + busy_timeout), and
// read-your-writes within a process.
//
// Callers on the gate path must treat an open failure as "no findings" —
// the supervisor fails open on internal errors.
package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the shared SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path, applying connection pragmas and
// initializing the schema. The pool is capped at one connection: SQLite
// works best with a single writer, and a hook process issues one query at a
// time anyway.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	dsn := path + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(5000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
			"foreign_keys(ON)",
		},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		agent TEXT NOT NULL,
		pid INTEGER NOT NULL,
		working_dir TEXT,
		repo_name TEXT,
		start_time INTEGER NOT NULL,
		end_time INTEGER,
		status TEXT NOT NULL DEFAULT 'running',
		command_count INTEGER NOT NULL DEFAULT 0,
		blocked_count INTEGER NOT NULL DEFAULT 0,
		avg_risk_score REAL NOT NULL DEFAULT 0,
		metadata TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		timestamp INTEGER NOT NULL,
		command TEXT NOT NULL,
		allowed INTEGER NOT NULL,
		risk_score INTEGER NOT NULL DEFAULT 1,
		risk_level TEXT NOT NULL DEFAULT 'safe',
		risk_factors TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		violations TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_commands_timestamp ON commands(timestamp);
	CREATE INDEX IF NOT EXISTS idx_commands_session ON commands(session_id);

	CREATE TABLE IF NOT EXISTS user_prompts (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		timestamp INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		original_length INTEGER NOT NULL,
		word_count INTEGER NOT NULL,
		char_length INTEGER NOT NULL,
		working_dir TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_prompts_timestamp ON user_prompts(timestamp);

	CREATE TABLE IF NOT EXISTS tool_uses (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		timestamp INTEGER NOT NULL,
		tool_name TEXT NOT NULL,
		input TEXT,
		output TEXT,
		exit_code INTEGER,
		success INTEGER,
		working_dir TEXT,
		repo_name TEXT
	);

	CREATE TABLE IF NOT EXISTS egress_blocks (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		timestamp INTEGER NOT NULL,
		command TEXT NOT NULL,
		rule TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		timestamp INTEGER NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// millis converts a time to the integer form stored in the database.
func millis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// fromMillis converts a stored integer back to UTC time.
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
