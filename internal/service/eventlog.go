package service

import (
	"context"
	"errors"
	"strings"

	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/repository"
)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// EventLogService answers event log queries.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// query converts a filter into a repository query with UTC bounds and a
// canonical type name.
func (f LogFilter) query() (repository.EventQuery, error) {
	q := repository.EventQuery{
		From:      f.From,
		To:        f.To,
		Type:      strings.ToUpper(strings.TrimSpace(f.Type)),
		SessionID: strings.TrimSpace(f.SessionID),
	}
	if !q.From.IsZero() {
		q.From = q.From.UTC()
	}
	if !q.To.IsZero() {
		q.To = q.To.UTC()
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return q, errInvalidTimeRange
	}
	return q, nil
}

// List returns matching events oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.SessionEvent, error) {
	q, err := f.query()
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, q)
}

// IsValidationError reports whether err was caused by caller input.
func IsValidationError(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, ErrInvalidFeedback)
}
