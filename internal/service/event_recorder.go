package service

import (
	"context"
	"time"

	"treadmill_pacer/internal/events"
	"treadmill_pacer/internal/logger"
	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/repository"
)

const (
	eventBuffer       = 128
	eventWriteTimeout = 3 * time.Second
)

// EventRecorderService persists controller events so the tick path never waits on SQLite.
type EventRecorderService struct {
	feed      *events.Feed[models.SessionEvent]
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewEventRecorderService(feed *events.Feed[models.SessionEvent], eventRepo repository.EventRepo, log *logger.Logger) *EventRecorderService {
	return &EventRecorderService{
		feed:      feed,
		eventRepo: eventRepo,
		log:       logger.OrNop(log).Named("event_recorder"),
	}
}

// Run appends every published event until ctx is canceled, then flushes what is buffered.
func (s *EventRecorderService) Run(ctx context.Context) {
	if s.feed == nil {
		<-ctx.Done()
		return
	}
	ch, cancel := s.feed.Subscribe(eventBuffer)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			s.flush(ch)
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			s.append(context.WithoutCancel(ctx), e)
		}
	}
}

func (s *EventRecorderService) flush(ch <-chan models.SessionEvent) {
	for {
		select {
		case e := <-ch:
			s.append(context.Background(), e)
		default:
			return
		}
	}
}

func (s *EventRecorderService) append(ctx context.Context, e models.SessionEvent) {
	wctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	if err := s.eventRepo.Append(wctx, e); err != nil {
		s.log.Errorw("event_append_failed",
			"event_id", e.EventID,
			"session_id", e.SessionID,
			"type", e.Type,
			"error", err,
		)
	}
}
