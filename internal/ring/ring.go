package ring

import (
	"errors"
	"runtime"
	"sync/atomic"
)

const (
	// DefaultCapacity is the ring size used when none is configured. Once
	// it is full, pushes wait for the consumer to free a slot.
	DefaultCapacity = 1 << 16

	// Typical CPU cache line size, used to keep the two cursors from
	// sharing a line.
	cacheLineSize = 64
)

var ErrCapacity = errors.New("ring capacity must be a power of two")

// Ring is a wait-free single-producer single-consumer queue. Exactly one
// goroutine may push and exactly one may pop; the atomic cursor stores
// publish each element to the other side. Capacity is a power of two so
// the cursors wrap with a mask.
type Ring[T any] struct {
	buffer []T
	mask   uint64

	_        [cacheLineSize]byte
	writePos atomic.Uint64
	_        [cacheLineSize - 8]byte
	readPos  atomic.Uint64
	_        [cacheLineSize - 8]byte
}

func New[T any](capacity int) (*Ring[T], error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, ErrCapacity
	}
	return &Ring[T]{
		buffer: make([]T, capacity),
		mask:   uint64(capacity - 1),
	}, nil
}

// TryPush appends v and reports whether there was space for it.
func (r *Ring[T]) TryPush(v T) bool {
	write := r.writePos.Load()
	read := r.readPos.Load()
	if write-read == uint64(len(r.buffer)) {
		return false
	}
	r.buffer[write&r.mask] = v
	r.writePos.Store(write + 1)
	return true
}

// Push spins until there is space for v. Elements pop in exactly the
// order they were pushed.
func (r *Ring[T]) Push(v T) {
	for !r.TryPush(v) {
		runtime.Gosched()
	}
}

// TryPop removes and returns the oldest element, if one is available.
func (r *Ring[T]) TryPop() (T, bool) {
	var zero T
	read := r.readPos.Load()
	write := r.writePos.Load()
	if write == read {
		return zero, false
	}
	v := r.buffer[read&r.mask]
	r.buffer[read&r.mask] = zero
	r.readPos.Store(read + 1)
	return v, true
}

// Len is the number of buffered elements. Advisory under concurrency.
func (r *Ring[T]) Len() int {
	return int(r.writePos.Load() - r.readPos.Load())
}
