package heartrate

import (
	"context"
	"time"

	"treadmill_pacer/internal/models"
)

// DefaultRecoveryWindow is the post-session observation length.
const DefaultRecoveryWindow = 60 * time.Second

// LatestReader exposes the most recent reading and a sequence that bumps per sample.
type LatestReader interface {
	Latest() (bpm int, seq uint64)
}

// ObserveRecovery samples src once per step for window and reports a running average
// after every step. Only fresh samples count, so a silent source yields HasData=false.
// The final report has Done set; it is also returned.
func ObserveRecovery(ctx context.Context, src LatestReader, window, step time.Duration, report func(models.RecoveryUpdate)) models.RecoveryUpdate {
	if step <= 0 {
		step = time.Second
	}
	steps := int(window / step)
	t := time.NewTicker(step)
	defer t.Stop()
	return observe(ctx, src, steps, t.C, report)
}

func observe(ctx context.Context, src LatestReader, steps int, ticks <-chan time.Time, report func(models.RecoveryUpdate)) models.RecoveryUpdate {
	if report == nil {
		report = func(models.RecoveryUpdate) {}
	}
	_, lastSeq := src.Latest()
	var (
		sum   int64
		count int
	)
	snapshot := func(left int, done bool) models.RecoveryUpdate {
		u := models.RecoveryUpdate{SecondsLeft: left, Samples: count, HasData: count > 0, Done: done}
		if count > 0 {
			u.Average = float64(sum) / float64(count)
		}
		return u
	}

	for left := steps; left > 0; {
		select {
		case <-ctx.Done():
			final := snapshot(left, true)
			report(final)
			return final
		case <-ticks:
			if bpm, seq := src.Latest(); seq != lastSeq {
				lastSeq = seq
				sum += int64(bpm)
				count++
			}
			left--
			if left > 0 {
				report(snapshot(left, false))
			}
		}
	}
	final := snapshot(0, true)
	report(final)
	return final
}
