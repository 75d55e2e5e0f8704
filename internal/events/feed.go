package events

import (
	"sync"
	"sync/atomic"
)

// Feed fans values out to subscriber-owned channels.
// Publish never blocks: a subscriber whose buffer is full misses the value.
type Feed[T any] struct {
	mu      sync.RWMutex
	subs    map[uint64]chan T
	nextID  uint64
	dropped atomic.Uint64
}

// NewFeed creates an empty feed.
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[uint64]chan T)}
}

// Subscribe registers a buffered channel and returns it with its cancel func.
// Cancel closes the channel; calling it more than once is safe.
func (f *Feed[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan T, buffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers v to every subscriber with buffer space.
func (f *Feed[T]) Publish(v T) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.subs {
		select {
		case ch <- v:
		default:
			f.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (f *Feed[T]) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Dropped counts values skipped because a subscriber was full.
func (f *Feed[T]) Dropped() uint64 {
	return f.dropped.Load()
}
