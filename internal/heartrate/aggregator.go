package heartrate

import (
	"sync"

	"treadmill_pacer/internal/events"
	"treadmill_pacer/internal/models"
)

// Aggregator keeps the running, current-lap and previous-lap heart-rate averages.
// Lap boundaries are signaled from outside via StartNewLap or CloseLap.
type Aggregator struct {
	// deliver serializes OnSample and Restart so every sample is either
	// counted and delivered to the new subscriber, or dropped by both.
	deliver sync.Mutex

	mu         sync.Mutex
	sum        int64
	count      int
	peak       int
	latest     int
	seq        uint64 // bumps on every sample
	lap        []int
	prevLapAvg float64

	hooks *events.Hooks[int]
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{hooks: events.NewHooks[int]()}
}

// OnSample records bpm in the all-time and current-lap series, then notifies subscribers.
func (a *Aggregator) OnSample(bpm int) {
	a.deliver.Lock()
	defer a.deliver.Unlock()

	a.mu.Lock()
	a.sum += int64(bpm)
	a.count++
	if a.count == 1 || bpm > a.peak {
		a.peak = bpm
	}
	a.latest = bpm
	a.seq++
	a.lap = append(a.lap, bpm)
	a.mu.Unlock()

	a.hooks.Fire(bpm)
}

// Subscribe registers fn for every future sample; the returned func removes it.
func (a *Aggregator) Subscribe(fn func(bpm int)) func() {
	return a.hooks.Add(fn)
}

// Average is the mean of every sample since the last Reset, 0 when empty.
func (a *Aggregator) Average() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.averageLocked()
}

// LapAverage is the mean of the current lap's samples, 0 when empty.
func (a *Aggregator) LapAverage() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return mean(a.lap)
}

// PreviousLapAverage is the mean of the last closed non-empty lap.
func (a *Aggregator) PreviousLapAverage() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prevLapAvg
}

// Latest returns the most recent sample and its sequence number (0 before any sample).
func (a *Aggregator) Latest() (int, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest, a.seq
}

// Peak is the highest sample since the last Reset.
func (a *Aggregator) Peak() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.peak
}

// StartNewLap clears the current lap. The previous-lap average only changes
// when the closing lap has at least one sample.
func (a *Aggregator) StartNewLap() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rotateLocked()
}

// CloseLap returns the closing lap's average and starts a new lap in one step,
// so no sample can land between the read and the reset.
func (a *Aggregator) CloseLap() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	avg := mean(a.lap)
	a.rotateLocked()
	return avg
}

// Reset drops all samples for a fresh session. The latest reading is kept.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sum, a.count, a.peak = 0, 0, 0
	a.lap = nil
	a.prevLapAvg = 0
}

// Restart resets the series and subscribes fn in one step: fn sees exactly
// the samples counted after the reset.
func (a *Aggregator) Restart(fn func(bpm int)) func() {
	a.deliver.Lock()
	defer a.deliver.Unlock()
	a.Reset()
	return a.hooks.Add(fn)
}

// Snapshot returns every derived value under one lock.
func (a *Aggregator) Snapshot() models.HeartRateSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return models.HeartRateSnapshot{
		Latest:             a.latest,
		Average:            a.averageLocked(),
		LapAverage:         mean(a.lap),
		PreviousLapAverage: a.prevLapAvg,
		Peak:               a.peak,
		Samples:            a.count,
	}
}

func (a *Aggregator) averageLocked() float64 {
	if a.count == 0 {
		return 0
	}
	return float64(a.sum) / float64(a.count)
}

func (a *Aggregator) rotateLocked() {
	if len(a.lap) > 0 {
		a.prevLapAvg = mean(a.lap)
	}
	a.lap = a.lap[:0]
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum int64
	for _, x := range xs {
		sum += int64(x)
	}
	return float64(sum) / float64(len(xs))
}
