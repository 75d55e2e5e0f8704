package service

import (
	"context"
	"io"

	"treadmill_pacer/internal/curve"
	"treadmill_pacer/internal/events"
	"treadmill_pacer/internal/logger"
	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/repository"
)

type Authorization interface {
	SignUp(username, password string, age int) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
	Athlete(id int) (*models.Athlete, error)
}

// Pacer exposes session control and the speed curve table.
type Pacer interface {
	Start(ctx context.Context, athleteID int, p StartParams) (models.StatusUpdate, error)
	Stop(ctx context.Context) (models.Completion, error)
	State(ctx context.Context) models.StatusUpdate
	Curves() map[int]curve.Curve
	Curve(level int) (curve.Curve, error)
}

// HeartRate accepts pushed samples and retargets the simulated source.
type HeartRate interface {
	Push(bpm int) error
	SetSimulatedRange(low, high int) error
	Snapshot() models.HeartRateSnapshot
}

// History reads finalized sessions and records feedback.
type History interface {
	ListSessions(ctx context.Context, athleteID int) ([]models.SessionPreview, error)
	GetSession(ctx context.Context, athleteID int, id string) (models.SessionRecord, error)
	SetFeedback(ctx context.Context, athleteID int, id, feedback string) error
	ExportCSV(ctx context.Context, athleteID int, id string, w io.Writer) (models.SessionRecord, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SessionEvent, error)
}

// EventRecorder drains controller events into the event log.
// Stop via context cancellation in main() for graceful shutdown.
type EventRecorder interface {
	Run(ctx context.Context)
}

type Service struct {
	Pacer
	HeartRate
	History
	EventLog
	EventRecorder
	Authorization
}

// Deps are the runtime components the services wrap.
type Deps struct {
	Controller         SessionController
	Curves             curve.Table
	Samples            SampleSink
	Simulated          RangeSetter // nil when the simulated source is disabled
	Events             *events.Feed[models.SessionEvent]
	DefaultLapDistance float64
	Auth               AuthConfig
	Logger             *logger.Logger
}

// NewService wires the repository layer and runtime components into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	return &Service{
		Pacer:         NewPacerService(deps.Controller, deps.Curves, repos.Auth, deps.DefaultLapDistance),
		HeartRate:     NewHeartRateService(deps.Samples, deps.Simulated),
		History:       NewHistoryService(repos.SessionRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		EventRecorder: NewEventRecorderService(deps.Events, repos.EventRepo, deps.Logger),
		Authorization: NewAuthService(repos.Auth, deps.Auth),
	}
}
