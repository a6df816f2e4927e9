// Package slot provides a single-value holder for callback providers.
//
// Writers are serialized by a mutex. Each Set publishes a fresh immutable
// entry through an atomic pointer, so readers never block and never observe
// a value half-written by a concurrent Set.
package slot

import (
	"sync"
	"sync/atomic"
)

type entry[T any] struct {
	value T
}

// Slot holds at most one value of type T. The zero value is empty and ready
// to use.
type Slot[T any] struct {
	mu  sync.Mutex
	cur atomic.Pointer[entry[T]]
}

// Set installs v, replacing any previous value.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Store(&entry[T]{value: v})
}

// Swap installs v and returns the previous value, if any.
func (s *Slot[T]) Swap(v T) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cur.Swap(&entry[T]{value: v})
	if old == nil {
		var zero T
		return zero, false
	}
	return old.value, true
}

// Clear empties the slot.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Store(nil)
}

// Get returns the current value without locking.
func (s *Slot[T]) Get() (T, bool) {
	e := s.cur.Load()
	if e == nil {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Loaded reports whether the slot holds a value.
func (s *Slot[T]) Loaded() bool {
	return s.cur.Load() != nil
}
