package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"treadmill_pacer/internal/models"
)

type SessionSQLite struct {
	db *sql.DB
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db}
}

var _ SessionRepo = (*SessionSQLite)(nil)

const (
	insertSessionSQL = `
		INSERT INTO sessions (id, athlete_id, started_at, level, lap_distance, age, duration_s, laps, total_distance, reason, avg_hr, peak_hr, feedback)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertSampleSQL = `INSERT INTO session_samples (session_id, seq, t, bpm) VALUES (?, ?, ?, ?)`

	selectPreviewsSQL = `SELECT id, started_at, level, lap_distance, age, duration_s, laps, total_distance, reason, feedback FROM sessions`

	selectSessionSQL = `
		SELECT id, athlete_id, started_at, level, lap_distance, age, duration_s, laps, total_distance, reason, avg_hr, peak_hr, feedback
		FROM sessions WHERE id = ?
	`

	selectSamplesSQL = `SELECT t, bpm FROM session_samples WHERE session_id = ? ORDER BY seq ASC`

	updateFeedbackSQL = `UPDATE sessions SET feedback = ? WHERE id = ?`
)

// Save writes the session row and all samples in one transaction.
func (r *SessionSQLite) Save(ctx context.Context, rec models.SessionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save session: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var athlete sql.NullInt64
	if rec.AthleteID > 0 {
		athlete = sql.NullInt64{Int64: int64(rec.AthleteID), Valid: true}
	}
	started := rec.StartTime
	if started.IsZero() {
		started = time.Now()
	}

	if _, err := tx.ExecContext(ctx, insertSessionSQL,
		rec.ID,
		athlete,
		started.UTC(),
		rec.Level,
		rec.LapDistance,
		rec.Age,
		rec.DurationSeconds,
		rec.LapsCompleted,
		rec.TotalDistance,
		string(rec.Reason),
		rec.AverageHR,
		rec.PeakHR,
		rec.Feedback,
	); err != nil {
		return fmt.Errorf("insert session %s: %w", rec.ID, err)
	}

	if len(rec.Samples) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertSampleSQL)
		if err != nil {
			return fmt.Errorf("prepare sample insert: %w", err)
		}
		defer stmt.Close()
		for i, s := range rec.Samples {
			if _, err := stmt.ExecContext(ctx, rec.ID, i, s.RelativeSeconds, s.BPM); err != nil {
				return fmt.Errorf("insert sample %d of session %s: %w", i, rec.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session %s: %w", rec.ID, err)
	}
	return nil
}

// List returns previews newest first. athleteID 0 lists every session.
func (r *SessionSQLite) List(ctx context.Context, athleteID int) ([]models.SessionPreview, error) {
	q := selectPreviewsSQL
	var args []any
	if athleteID > 0 {
		q += " WHERE athlete_id = ?"
		args = append(args, athleteID)
	}
	q += " ORDER BY started_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SessionPreview, 0, 16)
	for rows.Next() {
		var (
			p      models.SessionPreview
			reason string
		)
		if err := rows.Scan(&p.ID, &p.StartTime, &p.Level, &p.LapDistance, &p.Age,
			&p.DurationSeconds, &p.LapsCompleted, &p.TotalDistance, &reason, &p.Feedback); err != nil {
			return nil, err
		}
		p.StartTime = p.StartTime.UTC()
		p.Reason = models.CompletionReason(reason)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads one record with its samples in recorded order.
func (r *SessionSQLite) Get(ctx context.Context, id string) (models.SessionRecord, error) {
	var (
		rec     models.SessionRecord
		athlete sql.NullInt64
		reason  string
	)
	err := r.db.QueryRowContext(ctx, selectSessionSQL, id).Scan(
		&rec.ID, &athlete, &rec.StartTime, &rec.Level, &rec.LapDistance, &rec.Age,
		&rec.DurationSeconds, &rec.LapsCompleted, &rec.TotalDistance, &reason,
		&rec.AverageHR, &rec.PeakHR, &rec.Feedback,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SessionRecord{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return models.SessionRecord{}, fmt.Errorf("select session %s: %w", id, err)
	}
	rec.AthleteID = int(athlete.Int64)
	rec.StartTime = rec.StartTime.UTC()
	rec.Reason = models.CompletionReason(reason)

	rows, err := r.db.QueryContext(ctx, selectSamplesSQL, id)
	if err != nil {
		return models.SessionRecord{}, fmt.Errorf("select samples of %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var s models.HeartRateSample
		if err := rows.Scan(&s.RelativeSeconds, &s.BPM); err != nil {
			return models.SessionRecord{}, err
		}
		rec.Samples = append(rec.Samples, s)
	}
	if err := rows.Err(); err != nil {
		return models.SessionRecord{}, err
	}
	return rec, nil
}

// UpdateFeedback sets the user's feedback label on a finalized session.
func (r *SessionSQLite) UpdateFeedback(ctx context.Context, id, feedback string) error {
	res, err := r.db.ExecContext(ctx, updateFeedbackSQL, strings.TrimSpace(feedback), id)
	if err != nil {
		return fmt.Errorf("update feedback of %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}
