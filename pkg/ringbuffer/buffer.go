package ringbuffer

import "sync"

// Buffer is a fixed-capacity, thread-safe FIFO. Once full, every Append
// evicts the oldest value.
type Buffer[T any] struct {
	mu       sync.Mutex
	items    []T
	head     int // next write position
	count    int
	capacity int
	dropped  uint64
	onEvict  func(T)
}

// Option configures a Buffer.
type Option[T any] func(*Buffer[T])

// WithEvictHook registers fn to be called with every evicted value.
// The hook runs while the buffer lock is held and must not call back into the buffer.
func WithEvictHook[T any](fn func(T)) Option[T] {
	return func(b *Buffer[T]) {
		b.onEvict = fn
	}
}

// New creates a Buffer holding at most capacity values.
func New[T any](capacity int, opts ...Option[T]) (*Buffer[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	b := &Buffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// MustNew is like New but panics on an invalid capacity.
func MustNew[T any](capacity int, opts ...Option[T]) *Buffer[T] {
	b, err := New(capacity, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Append adds v as the newest value, evicting the oldest one when full.
func (b *Buffer[T]) Append(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == b.capacity {
		// head points at the oldest slot when the buffer is full
		evicted := b.items[b.head]
		b.dropped++
		if b.onEvict != nil {
			b.onEvict(evicted)
		}
	} else {
		b.count++
	}

	b.items[b.head] = v
	b.head = (b.head + 1) % b.capacity
}

// Snapshot returns a copy of the contents, oldest first.
// An empty buffer yields an empty, non-nil slice.
func (b *Buffer[T]) Snapshot() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastLocked(b.count)
}

// Last returns up to n of the newest values, oldest first.
func (b *Buffer[T]) Last(n int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > b.count {
		n = b.count
	}
	if n < 0 {
		n = 0
	}
	return b.lastLocked(n)
}

func (b *Buffer[T]) lastLocked(n int) []T {
	out := make([]T, n)
	start := (b.head - n + b.capacity) % b.capacity
	for i := range n {
		out[i] = b.items[(start+i)%b.capacity]
	}
	return out
}

// Len returns the number of values currently held.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the capacity the buffer was created with.
func (b *Buffer[T]) Cap() int {
	return b.capacity
}

// Dropped returns the total number of evicted values.
func (b *Buffer[T]) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Reset empties the buffer. The dropped counter is preserved.
func (b *Buffer[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.items)
	b.head = 0
	b.count = 0
}
