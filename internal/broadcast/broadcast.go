// Package broadcast provides single-slot publish channels: one writer, many
// readers, each reader sees only the most recent value and the writer never
// blocks. Closing a source fails every pending and future wait, which is the
// shutdown signal for tasks blocked on it.
package broadcast

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned from waits on a closed source.
var ErrClosed = errors.New("broadcast: source closed")

// Source is the writer side of a latest-value channel.
type Source[T any] struct {
	mu        sync.Mutex
	value     T
	version   uint64
	closed    bool
	notify    chan struct{}
	receivers int
}

// NewSource creates a source holding the given initial value.
func NewSource[T any](initial T) *Source[T] {
	return &Source[T]{
		value:  initial,
		notify: make(chan struct{}),
	}
}

// Send replaces the slot value and wakes all waiting receivers. It never
// blocks, regardless of how many receivers exist or how slow they are.
func (s *Source[T]) Send(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.value = v
	s.version++
	close(s.notify)
	s.notify = make(chan struct{})
}

// Close fails all current and future waits with ErrClosed.
func (s *Source[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.notify)
}

// Value returns the current slot value.
func (s *Source[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Receivers returns the number of attached receivers. Producers use this to
// skip work when nobody is listening.
func (s *Source[T]) Receivers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receivers
}

// Subscribe attaches a new receiver. The current value counts as already
// seen; call MarkChanged to have it delivered by the first Next.
func (s *Source[T]) Subscribe() *Receiver[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receivers++
	return &Receiver[T]{src: s, seen: s.version}
}

// Receiver is one reader of a Source. A receiver is not safe for use from
// multiple goroutines.
type Receiver[T any] struct {
	src    *Source[T]
	seen   uint64
	forced bool
	closed bool
}

// Close detaches the receiver from its source.
func (r *Receiver[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.src.mu.Lock()
	r.src.receivers--
	r.src.mu.Unlock()
}

// Next blocks until a value newer than the last seen one is available, then
// returns it and marks it seen. It fails with ErrClosed once the source is
// closed and with the context error if ctx is done first.
func (r *Receiver[T]) Next(ctx context.Context) (T, error) {
	for {
		r.src.mu.Lock()
		if r.forced || r.src.version > r.seen {
			v := r.src.value
			r.seen = r.src.version
			r.forced = false
			r.src.mu.Unlock()
			return v, nil
		}
		if r.src.closed {
			r.src.mu.Unlock()
			var zero T
			return zero, ErrClosed
		}
		wait := r.src.notify
		r.src.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// TryNext returns an unseen value without blocking. ok is false when
// nothing new has been published since the last seen value.
func (r *Receiver[T]) TryNext() (T, bool) {
	r.src.mu.Lock()
	defer r.src.mu.Unlock()
	if !r.forced && r.src.version <= r.seen {
		var zero T
		return zero, false
	}
	r.seen = r.src.version
	r.forced = false
	return r.src.value, true
}

// Latest returns the current value and marks it seen without blocking.
func (r *Receiver[T]) Latest() T {
	r.src.mu.Lock()
	defer r.src.mu.Unlock()
	r.seen = r.src.version
	r.forced = false
	return r.src.value
}

// MarkSeen marks the current value as already processed.
func (r *Receiver[T]) MarkSeen() {
	r.src.mu.Lock()
	defer r.src.mu.Unlock()
	r.seen = r.src.version
	r.forced = false
}

// MarkChanged makes the current value count as unseen, so the next call to
// Next returns immediately.
func (r *Receiver[T]) MarkChanged() {
	r.forced = true
}
