package service

import (
	"errors"

	"treadmill_pacer/internal/heartrate"
	"treadmill_pacer/internal/models"
)

// ErrSimulatorDisabled is returned when retargeting a source that is not running.
var ErrSimulatorDisabled = errors.New("simulated heart-rate source is disabled")

// SampleSink is the aggregator view used by pushed samples.
type SampleSink interface {
	heartrate.Sink
	Snapshot() models.HeartRateSnapshot
}

// RangeSetter retargets a simulated source.
type RangeSetter interface {
	SetRange(low, high int) error
}

type HeartRateService struct {
	sink      SampleSink
	simulated RangeSetter
}

func NewHeartRateService(sink SampleSink, simulated RangeSetter) *HeartRateService {
	return &HeartRateService{sink: sink, simulated: simulated}
}

// Push validates an externally supplied reading and feeds it to the aggregator.
func (s *HeartRateService) Push(bpm int) error {
	if err := heartrate.ValidateBPM(bpm); err != nil {
		return err
	}
	s.sink.OnSample(bpm)
	return nil
}

func (s *HeartRateService) SetSimulatedRange(low, high int) error {
	if s.simulated == nil {
		return ErrSimulatorDisabled
	}
	return s.simulated.SetRange(low, high)
}

func (s *HeartRateService) Snapshot() models.HeartRateSnapshot {
	return s.sink.Snapshot()
}
