// Package db opens the SQLite file that backs athletes, session history and
// the event log.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// pragmas run on every open, in order.
var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

// InitDB opens or creates the database at path and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	conn, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}
	// one writer at a time
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := prepare(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func prepare(conn *sql.DB) error {
	if err := conn.Ping(); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			return fmt.Errorf("apply %q: %w", p, err)
		}
	}
	return ensureSchema(conn)
}

// schema is applied in a single transaction; statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS athletes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    age INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    athlete_id INTEGER REFERENCES athletes(id),
    started_at TIMESTAMP NOT NULL,
    level INTEGER NOT NULL,
    lap_distance REAL NOT NULL,
    age INTEGER NOT NULL,
    duration_s INTEGER NOT NULL,
    laps INTEGER NOT NULL,
    total_distance REAL NOT NULL,
    reason TEXT NOT NULL,
    avg_hr REAL NOT NULL DEFAULT 0,
    peak_hr INTEGER NOT NULL DEFAULT 0,
    feedback TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS session_samples (
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    t REAL NOT NULL,
    bpm INTEGER NOT NULL,
    PRIMARY KEY (session_id, seq)
)`,
	`CREATE TABLE IF NOT EXISTS session_events (
    id TEXT PRIMARY KEY,
    session_id TEXT,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    meta TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions (athlete_id, started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_session_events_occurred ON session_events (occurred_at)`,
	`CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events (session_id, occurred_at)`,
}

func ensureSchema(conn *sql.DB) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
