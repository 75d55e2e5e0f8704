package heartrate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"treadmill_pacer/internal/logger"
)

// Plausible sample bounds accepted from any source.
const (
	MinBPM = 1
	MaxBPM = 300
)

var (
	ErrInvalidHeartRate = fmt.Errorf("invalid heart rate: must be in [%d, %d]", MinBPM, MaxBPM)
	ErrInvalidRange     = errors.New("invalid heart rate range: need 0 < low <= high <= 300")
)

// Sink receives heart-rate samples.
type Sink interface {
	OnSample(bpm int)
}

// ValidateBPM rejects readings outside [MinBPM, MaxBPM].
func ValidateBPM(bpm int) error {
	if bpm < MinBPM || bpm > MaxBPM {
		return fmt.Errorf("%w: got %d", ErrInvalidHeartRate, bpm)
	}
	return nil
}

// SimulatedSource emits uniformly random readings in [low, high] at a fixed interval.
type SimulatedSource struct {
	mu       sync.Mutex
	low      int
	high     int
	rng      *rand.Rand
	sink     Sink
	interval time.Duration
	log      *logger.Logger
}

// NewSimulatedSource validates the range and returns an idle source.
func NewSimulatedSource(sink Sink, low, high int, interval time.Duration, log *logger.Logger) (*SimulatedSource, error) {
	if err := validateRange(low, high); err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &SimulatedSource{
		low:      low,
		high:     high,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		sink:     sink,
		interval: interval,
		log:      logger.OrNop(log),
	}, nil
}

// SetRange retargets future readings.
func (s *SimulatedSource) SetRange(low, high int) error {
	if err := validateRange(low, high); err != nil {
		return err
	}
	s.mu.Lock()
	s.low, s.high = low, high
	s.mu.Unlock()
	s.log.Infow("hr_range_changed", "low", low, "high", high)
	return nil
}

// Range returns the current [low, high].
func (s *SimulatedSource) Range() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.low, s.high
}

// Run emits one reading per interval until ctx is canceled.
func (s *SimulatedSource) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sink.OnSample(s.next())
		}
	}
}

// next draws a reading from the current range.
func (s *SimulatedSource) next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.low + s.rng.IntN(s.high-s.low+1)
}

func validateRange(low, high int) error {
	if low < MinBPM || high > MaxBPM || low > high {
		return fmt.Errorf("%w: got [%d, %d]", ErrInvalidRange, low, high)
	}
	return nil
}
