// Package history provides the bounded event log kept by the bus for
// diagnostics, plus an optional journal that mirrors recorded events.
//
// History is never consulted to replay missed deliveries to new subscribers.
package history

import "sync"

// Ring is an append-only, fixed-capacity log. When full, recording a new
// entry evicts the oldest one. It is safe for concurrent use.
type Ring[T any] struct {
	mu    sync.Mutex
	buf   []T
	start int // index of the oldest entry
	size  int
	key   func(T) string
}

// NewRing creates a ring holding at most capacity entries.
// key extracts the value Query filters on. A capacity <= 0 retains nothing.
func NewRing[T any](capacity int, key func(T) string) *Ring[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Ring[T]{
		buf: make([]T, capacity),
		key: key,
	}
}

// Record appends an entry, evicting the oldest when at capacity.
func (r *Ring[T]) Record(entry T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buf) == 0 {
		return
	}

	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = entry
		r.size++
		return
	}

	r.buf[r.start] = entry
	r.start = (r.start + 1) % len(r.buf)
}

// Query returns retained entries in insertion order. An empty key returns
// every entry; otherwise only entries whose key equals it exactly.
func (r *Ring[T]) Query(key string) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]T, 0, r.size)
	for i := 0; i < r.size; i++ {
		entry := r.buf[(r.start+i)%len(r.buf)]
		if key != "" && r.key != nil && r.key(entry) != key {
			continue
		}
		result = append(result, entry)
	}
	return result
}

// Clear drops every entry.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.start = 0
	r.size = 0
}

// Len returns the number of retained entries.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Cap returns the configured capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}
