package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"treadmill_pacer/internal/models"

	"github.com/google/uuid"
)

// EventSQLite keeps the event log in the session_events table.
type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const (
	insertEventSQL = `INSERT INTO session_events (id, session_id, occurred_at, type, message, meta) VALUES (?, ?, ?, ?, ?, ?)`
	selectEventSQL = `SELECT id, session_id, occurred_at, type, message, meta FROM session_events`
	orderEventSQL  = ` ORDER BY occurred_at ASC, rowid ASC`

	// sqliteTimestamp matches SQLite's TIMESTAMP text layout.
	sqliteTimestamp = "2006-01-02 15:04:05"
)

func normalizeType(t string) string { return strings.ToUpper(strings.TrimSpace(t)) }

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Append stores one event, assigning an id and timestamp when they are missing.
// Metadata that cannot be encoded is dropped rather than failing the write.
func (r *EventSQLite) Append(ctx context.Context, e models.SessionEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	at := e.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}

	var meta sql.NullString
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			meta = nullable(string(b))
		}
	}

	if _, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		nullable(e.SessionID),
		at.UTC().Format(sqliteTimestamp),
		normalizeType(e.Type),
		e.Description,
		meta,
	); err != nil {
		return fmt.Errorf("insert event %s: %w", e.EventID, err)
	}
	return nil
}

// buildEventQuery renders q as a WHERE clause plus its arguments.
func buildEventQuery(q EventQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		where = append(where, cond)
		args = append(args, arg)
	}
	if !q.From.IsZero() {
		add("occurred_at >= ?", q.From.UTC().Format(sqliteTimestamp))
	}
	if !q.To.IsZero() {
		add("occurred_at <= ?", q.To.UTC().Format(sqliteTimestamp))
	}
	if t := normalizeType(q.Type); t != "" {
		add("type = ?", t)
	}
	if s := strings.TrimSpace(q.SessionID); s != "" {
		add("session_id = ?", s)
	}

	stmt := selectEventSQL
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	return stmt + orderEventSQL, args
}

// List returns events matching q, oldest first.
func (r *EventSQLite) List(ctx context.Context, q EventQuery) ([]models.SessionEvent, error) {
	stmt, args := buildEventQuery(q)
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []models.SessionEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func scanEvent(rows *sql.Rows) (models.SessionEvent, error) {
	var (
		ev            models.SessionEvent
		session, meta sql.NullString
	)
	if err := rows.Scan(&ev.EventID, &session, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
		return ev, fmt.Errorf("scan event: %w", err)
	}
	ev.SessionID = session.String
	ev.OccurredAt = ev.OccurredAt.UTC()

	if meta.String != "" {
		var v any
		if json.Unmarshal([]byte(meta.String), &v) == nil {
			ev.Metadata = v
		} else {
			// unreadable JSON is surfaced as the raw text
			ev.Metadata = meta.String
		}
	}
	return ev, nil
}
