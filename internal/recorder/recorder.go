package recorder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"treadmill_pacer/internal/models"
)

// ErrAlreadyFinalized is returned when Finalize runs twice.
var ErrAlreadyFinalized = errors.New("session record already finalized")

// Store is the persistence collaborator that receives finalized records.
type Store interface {
	Save(ctx context.Context, rec models.SessionRecord) error
}

// Params are the static parameters captured at session start.
type Params struct {
	SessionID   string
	AthleteID   int
	Level       int
	LapDistance float64
	Age         int
}

// Summary carries the end-of-session metrics supplied by the controller.
type Summary struct {
	LapsCompleted int
	TotalDistance float64
	Reason        models.CompletionReason
	AverageHR     float64
	PeakHR        int
}

// Recorder accumulates (elapsed, bpm) samples for one session.
type Recorder struct {
	mu        sync.Mutex
	rec       models.SessionRecord
	finalized bool
	now       func() time.Time
}

// New opens a record starting now.
func New(p Params) *Recorder {
	return newWithClock(p, time.Now)
}

func newWithClock(p Params, now func() time.Time) *Recorder {
	return &Recorder{
		rec: models.SessionRecord{
			ID:          p.SessionID,
			AthleteID:   p.AthleteID,
			StartTime:   now().UTC(),
			Level:       p.Level,
			LapDistance: p.LapDistance,
			Age:         p.Age,
		},
		now: now,
	}
}

// OnSample appends bpm stamped with seconds since start. Ignored after Finalize.
func (r *Recorder) OnSample(bpm int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	rel := r.now().Sub(r.rec.StartTime).Seconds()
	r.rec.Samples = append(r.rec.Samples, models.HeartRateSample{RelativeSeconds: rel, BPM: bpm})
}

// Len returns the number of samples recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rec.Samples)
}

// Finalize freezes the record with duration and summary metrics.
func (r *Recorder) Finalize(s Summary) (models.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return models.SessionRecord{}, ErrAlreadyFinalized
	}
	r.finalized = true
	r.rec.DurationSeconds = int(r.now().Sub(r.rec.StartTime).Seconds())
	r.rec.LapsCompleted = s.LapsCompleted
	r.rec.TotalDistance = math.Round(s.TotalDistance*100) / 100
	r.rec.Reason = s.Reason
	r.rec.AverageHR = s.AverageHR
	r.rec.PeakHR = s.PeakHR
	return r.copyLocked(), nil
}

// FinalizeAndSave finalizes and hands the record to store exactly once.
// A store failure is returned as-is; the record is still finalized.
func (r *Recorder) FinalizeAndSave(ctx context.Context, store Store, s Summary) (models.SessionRecord, error) {
	rec, err := r.Finalize(s)
	if err != nil {
		return rec, err
	}
	if store == nil {
		return rec, nil
	}
	if err := store.Save(ctx, rec); err != nil {
		return rec, fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Record returns a copy of the current record.
func (r *Recorder) Record() models.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyLocked()
}

func (r *Recorder) copyLocked() models.SessionRecord {
	out := r.rec
	out.Samples = append([]models.HeartRateSample(nil), r.rec.Samples...)
	return out
}
