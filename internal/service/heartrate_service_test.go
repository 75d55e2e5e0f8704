package service

import (
	"errors"
	"testing"

	"treadmill_pacer/internal/heartrate"
	"treadmill_pacer/internal/models"
)

type rangeStub struct {
	low, high int
}

func (r *rangeStub) SetRange(low, high int) error {
	if low > high {
		return heartrate.ErrInvalidRange
	}
	r.low, r.high = low, high
	return nil
}

func TestHeartRateService_Push(t *testing.T) {
	agg := heartrate.NewAggregator()
	svc := NewHeartRateService(agg, nil)

	if err := svc.Push(120); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := svc.Push(0); !errors.Is(err, heartrate.ErrInvalidHeartRate) {
		t.Fatalf("expected ErrInvalidHeartRate, got %v", err)
	}
	if err := svc.Push(301); !errors.Is(err, heartrate.ErrInvalidHeartRate) {
		t.Fatalf("expected ErrInvalidHeartRate, got %v", err)
	}
	want := models.HeartRateSnapshot{Latest: 120, Average: 120, LapAverage: 120, Peak: 120, Samples: 1}
	if got := svc.Snapshot(); got != want {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestHeartRateService_SetSimulatedRange(t *testing.T) {
	svc := NewHeartRateService(heartrate.NewAggregator(), nil)
	if err := svc.SetSimulatedRange(100, 110); !errors.Is(err, ErrSimulatorDisabled) {
		t.Fatalf("expected ErrSimulatorDisabled, got %v", err)
	}

	src := &rangeStub{}
	svc = NewHeartRateService(heartrate.NewAggregator(), src)
	if err := svc.SetSimulatedRange(150, 170); err != nil {
		t.Fatalf("SetSimulatedRange: %v", err)
	}
	if src.low != 150 || src.high != 170 {
		t.Fatalf("range not applied: %+v", src)
	}
	if err := svc.SetSimulatedRange(170, 150); !errors.Is(err, heartrate.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}
