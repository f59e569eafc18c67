package broadcast

import "sync"

// OwnedSource wraps a Source so that exactly one party at a time may write
// to it. Releasing ownership resets the published value to the zero value of
// T, so a disconnected controller can never leave a stale value behind.
type OwnedSource[T any] struct {
	src   *Source[T]
	mu    sync.Mutex
	owned bool
}

// NewOwnedSource creates an ownership wrapper around the given source.
func NewOwnedSource[T any](src *Source[T]) *OwnedSource[T] {
	return &OwnedSource[T]{src: src}
}

// Subscribe attaches a receiver to the underlying source.
func (o *OwnedSource[T]) Subscribe() *Receiver[T] {
	return o.src.Subscribe()
}

// TryAcquire attempts to take write ownership. It never blocks; it reports
// false if ownership is already held.
func (o *OwnedSource[T]) TryAcquire() (*OwnedHandle[T], bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.owned {
		return nil, false
	}
	o.owned = true
	return &OwnedHandle[T]{owner: o}, true
}

// OwnedHandle is the write capability for an OwnedSource. It must be
// released when the holder is done; releasing twice is a no-op.
type OwnedHandle[T any] struct {
	owner    *OwnedSource[T]
	released bool
}

// Send publishes a value on the owned source.
func (h *OwnedHandle[T]) Send(v T) {
	h.owner.src.Send(v)
}

// Release resets the published value to the default and frees ownership.
func (h *OwnedHandle[T]) Release() {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	var zero T
	h.owner.src.Send(zero)
	h.owner.owned = false
}
