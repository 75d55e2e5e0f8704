package treadmill

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"treadmill_pacer/internal/models"
)

// ----------- Simulation constants -----------
const (
	DefaultTick = 1 * time.Second
	kmhToMps    = 1000.0 / 3600.0 // km/h -> m/s
)

// ErrInvalidSpeed is returned for negative, NaN or infinite speeds.
var ErrInvalidSpeed = errors.New("invalid speed: must be a finite number >= 0")

// Simulator integrates belt speed into covered distance.
// Every read and write of speed/distance happens under mu.
type Simulator struct {
	mu       sync.Mutex
	speed    float64 // km/h
	distance float64 // meters
	running  bool
	last     time.Time
	stopCh   chan struct{}

	tick time.Duration
	now  func() time.Time
}

// NewSimulator returns a stopped simulator with zero speed and distance.
func NewSimulator(tick time.Duration) *Simulator {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Simulator{tick: tick, now: time.Now}
}

// Start begins the integration loop. Calling Start while running is a no-op.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.last = s.now()
	s.stopCh = make(chan struct{})
	go s.run(ctx, s.stopCh)
}

// Stop halts the loop. Speed and distance stay readable and frozen.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.integrateLocked(s.now())
	s.running = false
	close(s.stopCh)
}

// SetSpeed applies v immediately; the next tick integrates at v.
func (s *Simulator) SetSpeed(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidSpeed, v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		// close out the interval travelled at the old speed
		s.integrateLocked(s.now())
	}
	s.speed = v
	return nil
}

// Speed returns the current belt speed in km/h.
func (s *Simulator) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// Distance returns meters covered since creation.
func (s *Simulator) Distance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distance
}

// Running reports whether the loop is active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// State returns a consistent snapshot of speed, distance and running.
func (s *Simulator) State() models.TreadmillState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.TreadmillState{
		CurrentSpeed:    s.speed,
		DistanceCovered: s.distance,
		Running:         s.running,
	}
}

// run ticks at s.tick until stopped or ctx is canceled.
func (s *Simulator) run(ctx context.Context, stop <-chan struct{}) {
	t := time.NewTicker(s.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-stop:
			return
		case <-t.C:
			if !s.tickAt(s.now()) {
				return
			}
		}
	}
}

// tickAt integrates up to now. Returns false once the simulator is stopped.
func (s *Simulator) tickAt(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.integrateLocked(now)
	return true
}

// integrateLocked adds distance travelled since s.last. Caller holds mu.
func (s *Simulator) integrateLocked(now time.Time) {
	elapsed := now.Sub(s.last).Seconds()
	if elapsed <= 0 {
		return
	}
	s.distance += distanceFor(s.speed, elapsed)
	s.last = now
}

// distanceFor converts km/h over elapsed seconds to meters.
func distanceFor(speedKmh, elapsedSec float64) float64 {
	return speedKmh * elapsedSec * kmhToMps
}
