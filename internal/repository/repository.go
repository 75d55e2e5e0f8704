package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"treadmill_pacer/internal/models"
)

// ErrSessionNotFound is returned when a session id has no row.
var ErrSessionNotFound = errors.New("session not found")

type Authorization interface {
	Create(username, hash string, age int) (int, error)
	GetByUsername(username string) (*models.Athlete, error)
	GetByID(id int) (*models.Athlete, error)
}

// SessionRepo stores finalized session records and their heart-rate samples.
type SessionRepo interface {
	Save(ctx context.Context, rec models.SessionRecord) error
	List(ctx context.Context, athleteID int) ([]models.SessionPreview, error)
	Get(ctx context.Context, id string) (models.SessionRecord, error)
	UpdateFeedback(ctx context.Context, id, feedback string) error
}

// EventQuery selects log events. Zero values leave a field unconstrained.
type EventQuery struct {
	From, To  time.Time
	Type      string
	SessionID string
}

// EventRepo is the append-only session event log.
type EventRepo interface {
	Append(ctx context.Context, e models.SessionEvent) error
	List(ctx context.Context, q EventQuery) ([]models.SessionEvent, error)
}

type Repository struct {
	SessionRepo SessionRepo
	EventRepo   EventRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		SessionRepo: NewSessionSQLite(db),
		EventRepo:   NewEventSQLite(db),
		Auth:        NewAthleteRepository(db),
	}
}
