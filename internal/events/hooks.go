package events

import "sync"

// Hooks calls registered funcs synchronously on Fire.
// Funcs run outside the registry lock so they may register or remove hooks.
type Hooks[T any] struct {
	mu     sync.RWMutex
	fns    map[uint64]func(T)
	nextID uint64
}

// NewHooks creates an empty registry.
func NewHooks[T any]() *Hooks[T] {
	return &Hooks[T]{fns: make(map[uint64]func(T))}
}

// Add registers fn and returns a func that removes it.
func (h *Hooks[T]) Add(fn func(T)) func() {
	if fn == nil {
		panic("events: nil hook")
	}
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.fns[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.fns, id)
		h.mu.Unlock()
	}
}

// Fire calls every registered func with v.
func (h *Hooks[T]) Fire(v T) {
	h.mu.RLock()
	fns := make([]func(T), 0, len(h.fns))
	for _, fn := range h.fns {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of registered hooks.
func (h *Hooks[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.fns)
}
