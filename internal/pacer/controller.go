package pacer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"treadmill_pacer/internal/curve"
	"treadmill_pacer/internal/events"
	"treadmill_pacer/internal/heartrate"
	"treadmill_pacer/internal/logger"
	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/recorder"

	"github.com/google/uuid"
)

// Deceleration schedule.
const (
	SmallStep      = 0.3 // km/h, first SmallStepCount reductions
	LargeStep      = 0.5 // km/h, every reduction after that
	SmallStepCount = 3
	MinSpeed       = 3.5 // km/h; a reduction below this ends the session

	// ThresholdFraction of the age-derived max heart rate triggers deceleration.
	ThresholdFraction = 0.8

	DefaultTick = time.Second
	saveTimeout = 5 * time.Second
)

var (
	ErrInvalidLapDistance = errors.New("invalid lap distance: must be a positive number")
	ErrInvalidAge         = errors.New("invalid age: must be between 1 and 219")
	ErrAlreadyRunning     = errors.New("session already running")
	ErrNotRunning         = errors.New("no session running")
)

// Treadmill is the speed/distance actuator driven by the controller.
type Treadmill interface {
	Start(ctx context.Context)
	Stop()
	SetSpeed(v float64) error
	Distance() float64
	State() models.TreadmillState
}

// TreadmillFactory builds a fresh treadmill for each session.
type TreadmillFactory func() Treadmill

// CurveSource resolves a level to its speed curve.
type CurveSource interface {
	Lookup(level int) (curve.Curve, error)
}

// HeartRate is the aggregator view the controller needs.
type HeartRate interface {
	heartrate.LatestReader
	CloseLap() float64
	Snapshot() models.HeartRateSnapshot
	// Restart clears the session series and subscribes fn to later samples.
	Restart(fn func(bpm int)) func()
}

// Params are the per-session inputs.
type Params struct {
	Level       int
	LapDistance float64
	Age         int
	AthleteID   int
}

// Options tune the controller. Zero values fall back to defaults.
type Options struct {
	Tick           time.Duration
	RecoveryWindow time.Duration
	RecoveryStep   time.Duration
	Store          recorder.Store
	Logger         *logger.Logger
}

// Controller runs one pacing session at a time.
type Controller struct {
	mu sync.Mutex

	curves       CurveSource
	newTreadmill TreadmillFactory
	hr           HeartRate
	store        recorder.Store
	log          *logger.Logger

	tick           time.Duration
	recoveryWindow time.Duration
	recoveryStep   time.Duration

	phase     models.PacerPhase
	sessionID string
	params    Params
	curve     curve.Curve
	threshold float64
	state     models.PacerState

	tm          Treadmill
	rec         *recorder.Recorder
	unsubscribe func()
	cancel      context.CancelFunc

	recoveryCancel context.CancelFunc
	last           *models.Completion

	status     *events.Feed[models.StatusUpdate]
	completion *events.Feed[models.Completion]
	recovery   *events.Feed[models.RecoveryUpdate]
	events     *events.Feed[models.SessionEvent]

	now func() time.Time
}

// New returns an idle controller.
func New(curves CurveSource, newTreadmill TreadmillFactory, hr HeartRate, opts Options) *Controller {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.RecoveryStep <= 0 {
		opts.RecoveryStep = time.Second
	}
	return &Controller{
		curves:         curves,
		newTreadmill:   newTreadmill,
		hr:             hr,
		store:          opts.Store,
		log:            logger.OrNop(opts.Logger).Named("pacer"),
		tick:           opts.Tick,
		recoveryWindow: opts.RecoveryWindow,
		recoveryStep:   opts.RecoveryStep,
		phase:          models.PhaseIdle,
		status:         events.NewFeed[models.StatusUpdate](),
		completion:     events.NewFeed[models.Completion](),
		recovery:       events.NewFeed[models.RecoveryUpdate](),
		events:         events.NewFeed[models.SessionEvent](),
		now:            time.Now,
	}
}

// StatusFeed publishes a StatusUpdate after every tick.
func (c *Controller) StatusFeed() *events.Feed[models.StatusUpdate] { return c.status }

// CompletionFeed publishes once per session.
func (c *Controller) CompletionFeed() *events.Feed[models.Completion] { return c.completion }

// RecoveryFeed publishes the post-session window countdown.
func (c *Controller) RecoveryFeed() *events.Feed[models.RecoveryUpdate] { return c.recovery }

// EventFeed publishes loggable session events.
func (c *Controller) EventFeed() *events.Feed[models.SessionEvent] { return c.events }

// Threshold returns 0.8 * (220 - age).
func Threshold(age int) float64 {
	return ThresholdFraction * float64(220-age)
}

// Validate checks session inputs and returns the resolved curve.
func (c *Controller) Validate(p Params) (curve.Curve, error) {
	cv, err := c.curves.Lookup(p.Level)
	if err != nil {
		return nil, err
	}
	if !(p.LapDistance > 0) || math.IsInf(p.LapDistance, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidLapDistance, p.LapDistance)
	}
	if p.Age <= 0 || p.Age >= 220 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAge, p.Age)
	}
	return cv, nil
}

// Start validates p, resets all session state and starts the treadmill at curve[0].
// Nothing is mutated when validation fails or a session is already running.
func (c *Controller) Start(ctx context.Context, p Params) (string, error) {
	cv, err := c.Validate(p)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.state.Running {
		c.mu.Unlock()
		return "", ErrAlreadyRunning
	}
	if c.recoveryCancel != nil {
		c.recoveryCancel()
		c.recoveryCancel = nil
	}

	tm := c.newTreadmill()
	first := roundSpeed(cv[0])
	if err := tm.SetSpeed(first); err != nil {
		c.mu.Unlock()
		return "", err
	}

	id := uuid.NewString()
	rec := recorder.New(recorder.Params{
		SessionID:   id,
		AthleteID:   p.AthleteID,
		Level:       p.Level,
		LapDistance: p.LapDistance,
		Age:         p.Age,
	})

	c.sessionID = id
	c.params = p
	c.curve = cv
	c.threshold = Threshold(p.Age)
	c.state = models.PacerState{Running: true}
	c.phase = models.PhaseActive
	c.tm = tm
	c.rec = rec
	c.last = nil
	c.unsubscribe = c.hr.Restart(rec.OnSample)

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	tm.Start(loopCtx)
	go c.run(loopCtx, id)

	threshold := c.threshold
	c.mu.Unlock()

	c.log.Infow("session_started",
		"session_id", id,
		"curve_level", p.Level,
		"lap_distance", p.LapDistance,
		"age", p.Age,
		"threshold", threshold,
		"speed", first,
	)
	c.events.Publish(c.newEvent(id, models.EventStart, fmt.Sprintf("Session started at level %d", p.Level), map[string]any{
		"level":        p.Level,
		"lap_distance": p.LapDistance,
		"age":          p.Age,
		"threshold":    threshold,
		"speed":        first,
	}))
	return id, nil
}

// Stop ends the running session with manual-stop. The completion is returned
// even when persisting the record failed; that failure is the returned error.
func (c *Controller) Stop(ctx context.Context) (models.Completion, error) {
	c.mu.Lock()
	if !c.state.Running {
		c.mu.Unlock()
		return models.Completion{}, ErrNotRunning
	}
	f := c.completeLocked(models.ReasonManualStop, nil)
	c.mu.Unlock()
	return c.finish(ctx, *f)
}

// Shutdown stops any running session and cancels the recovery window.
func (c *Controller) Shutdown(ctx context.Context) {
	if _, err := c.Stop(ctx); err != nil && !errors.Is(err, ErrNotRunning) {
		c.log.Errorw("shutdown_stop_failed", "error", err)
	}
	c.mu.Lock()
	if c.recoveryCancel != nil {
		c.recoveryCancel()
		c.recoveryCancel = nil
	}
	c.mu.Unlock()
}

// Status returns a consistent snapshot of the controller.
func (c *Controller) Status() models.StatusUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Phase returns the current coarse state.
func (c *Controller) Phase() models.PacerPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// LastCompletion returns the most recent session outcome.
func (c *Controller) LastCompletion() (models.Completion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return models.Completion{}, false
	}
	return *c.last, true
}

func (c *Controller) run(ctx context.Context, id string) {
	t := time.NewTicker(c.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.step(id)
		}
	}
}

// step runs one lap check for session id. Lap bookkeeping, curve advance and
// the completion decision happen under a single lock hold. A tick left over
// from an earlier session is ignored.
func (c *Controller) step(id string) {
	c.mu.Lock()
	if !c.state.Running || c.sessionID != id {
		c.mu.Unlock()
		return
	}
	pending, f := c.checkLapLocked()
	status := c.statusLocked()
	c.mu.Unlock()

	for _, e := range pending {
		c.events.Publish(e)
	}
	c.status.Publish(status)
	if f != nil {
		_, _ = c.finish(context.Background(), *f)
	}
}

func (c *Controller) checkLapLocked() ([]models.SessionEvent, *finishJob) {
	dist := c.tm.Distance()
	if math.IsNaN(dist) || math.IsInf(dist, 0) {
		return nil, c.completeLocked(models.ReasonFault, fmt.Errorf("treadmill reported non-finite distance %v", dist))
	}
	if dist-c.state.LastLapBoundaryDistance < c.params.LapDistance {
		return nil, nil
	}

	lapAvg := c.hr.CloseLap()
	c.state.LapsCompleted++
	c.state.LastLapBoundaryDistance = dist
	pending := []models.SessionEvent{c.newEvent(c.sessionID, models.EventLap,
		fmt.Sprintf("Lap %d completed", c.state.LapsCompleted), map[string]any{
			"lap":         c.state.LapsCompleted,
			"lap_average": lapAvg,
			"distance":    dist,
			"speed":       c.tm.State().CurrentSpeed,
		})}

	if lapAvg > c.threshold && !c.state.HeartRateExceeded {
		c.state.HeartRateExceeded = true
		c.phase = models.PhaseDecelerating
		pending = append(pending, c.newEvent(c.sessionID, models.EventDecelerate,
			"Lap heart rate above threshold, decelerating", map[string]any{
				"lap":         c.state.LapsCompleted,
				"lap_average": lapAvg,
				"threshold":   c.threshold,
			}))
		c.log.Infow("deceleration_latched",
			"session_id", c.sessionID,
			"lap", c.state.LapsCompleted,
			"lap_average", lapAvg,
			"threshold", c.threshold,
		)
	}

	if c.state.HeartRateExceeded {
		reduction := SmallStep
		if c.state.ReductionCount >= SmallStepCount {
			reduction = LargeStep
		}
		next := roundSpeed(c.tm.State().CurrentSpeed - reduction)
		if next < MinSpeed {
			return pending, c.completeLocked(models.ReasonHeartRateStop, nil)
		}
		if err := c.tm.SetSpeed(next); err != nil {
			return pending, c.completeLocked(models.ReasonFault, err)
		}
		c.state.ReductionCount++
		return pending, nil
	}

	c.state.SpeedIndex++
	if c.state.SpeedIndex >= len(c.curve) {
		return pending, c.completeLocked(models.ReasonCurveExhausted, nil)
	}
	if err := c.tm.SetSpeed(roundSpeed(c.curve[c.state.SpeedIndex])); err != nil {
		return pending, c.completeLocked(models.ReasonFault, err)
	}
	return pending, nil
}

// finishJob carries what the completion path needs once the lock is released.
type finishJob struct {
	sessionID string
	reason    models.CompletionReason
	cause     error
	level     int
	laps      int
	distance  float64
	rec       *recorder.Recorder
	hr        models.HeartRateSnapshot
}

// completeLocked makes the session terminal: treadmill and loop stop here.
func (c *Controller) completeLocked(reason models.CompletionReason, cause error) *finishJob {
	c.state.Running = false
	c.phase = models.PhaseCompleted
	c.tm.Stop()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	return &finishJob{
		sessionID: c.sessionID,
		reason:    reason,
		cause:     cause,
		level:     c.params.Level,
		laps:      c.state.LapsCompleted,
		distance:  c.tm.Distance(),
		rec:       c.rec,
		hr:        c.hr.Snapshot(),
	}
}

func (c *Controller) finish(ctx context.Context, f finishJob) (models.Completion, error) {
	distance := f.distance
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		distance = 0
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	rec, saveErr := f.rec.FinalizeAndSave(saveCtx, c.store, recorder.Summary{
		LapsCompleted: f.laps,
		TotalDistance: distance,
		Reason:        f.reason,
		AverageHR:     f.hr.Average,
		PeakHR:        f.hr.Peak,
	})
	cancel()

	done := models.Completion{
		SessionID:     f.sessionID,
		Reason:        f.reason,
		Level:         f.level,
		LapsCompleted: f.laps,
		TotalDistance: rec.TotalDistance,
		DurationSecs:  rec.DurationSeconds,
		AverageHR:     f.hr.Average,
		PeakHR:        f.hr.Peak,
		At:            c.now().UTC(),
	}
	if f.cause != nil {
		done.Error = f.cause.Error()
		c.log.Errorw("session_fault", "session_id", f.sessionID, "error", f.cause)
		c.events.Publish(c.newEvent(f.sessionID, models.EventError, "Session aborted: "+f.cause.Error(), nil))
	}
	if saveErr != nil {
		done.SaveError = saveErr.Error()
		c.log.Errorw("session_save_failed", "session_id", f.sessionID, "error", saveErr)
		c.events.Publish(c.newEvent(f.sessionID, models.EventError, "Session record not saved", map[string]any{
			"error": saveErr.Error(),
		}))
	}

	c.mu.Lock()
	if c.sessionID == f.sessionID {
		c.last = &done
	}
	c.mu.Unlock()

	c.log.Infow("session_completed",
		"session_id", f.sessionID,
		"reason", f.reason,
		"laps", f.laps,
		"distance", rec.TotalDistance,
		"duration_seconds", rec.DurationSeconds,
		"average_hr", f.hr.Average,
		"peak_hr", f.hr.Peak,
	)
	c.completion.Publish(done)
	c.events.Publish(c.newEvent(f.sessionID, models.EventComplete, "Session completed: "+string(f.reason), map[string]any{
		"reason":           f.reason,
		"laps":             f.laps,
		"distance":         rec.TotalDistance,
		"duration_seconds": rec.DurationSeconds,
		"average_hr":       f.hr.Average,
		"peak_hr":          f.hr.Peak,
	}))
	c.startRecovery(f.sessionID)
	return done, saveErr
}

// startRecovery opens the post-session observation window unless a newer
// session has already started.
func (c *Controller) startRecovery(id string) {
	if c.recoveryWindow <= 0 {
		return
	}
	c.mu.Lock()
	if c.sessionID != id || c.state.Running {
		c.mu.Unlock()
		return
	}
	if c.recoveryCancel != nil {
		c.recoveryCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.recoveryCancel = cancel
	c.mu.Unlock()

	go func() {
		defer cancel()
		final := heartrate.ObserveRecovery(ctx, c.hr, c.recoveryWindow, c.recoveryStep, func(u models.RecoveryUpdate) {
			u.SessionID = id
			c.recovery.Publish(u)
		})
		c.log.Infow("recovery_finished",
			"session_id", id,
			"has_data", final.HasData,
			"average", final.Average,
			"samples", final.Samples,
		)
	}()
}

func (c *Controller) statusLocked() models.StatusUpdate {
	u := models.StatusUpdate{
		SessionID:   c.sessionID,
		Phase:       c.phase,
		Level:       c.params.Level,
		LapDistance: c.params.LapDistance,
		Threshold:   c.threshold,
		Pacer:       c.state,
		HeartRate:   c.hr.Snapshot(),
		At:          c.now().UTC(),
	}
	if c.tm != nil {
		u.Treadmill = c.tm.State()
	}
	return u
}

func (c *Controller) newEvent(sessionID, typ, desc string, meta map[string]any) models.SessionEvent {
	e := models.SessionEvent{
		EventID:     uuid.NewString(),
		SessionID:   sessionID,
		OccurredAt:  c.now().UTC(),
		Type:        typ,
		Description: desc,
	}
	if meta != nil {
		e.Metadata = meta
	}
	return e
}

func roundSpeed(v float64) float64 {
	return math.Round(v*100) / 100
}
