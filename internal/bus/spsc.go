// Package bus provides the wait-free handoff between the market data
// producer and the strategy consumer.
package bus

import (
	"sync/atomic"

	"github.com/yanun0323/errors"
)

var ErrCapacity = errors.New("bus: capacity must be a power of two and >= 2")

const cacheLineSize = 64

// Ring is a bounded single-producer single-consumer ring buffer.
//
// Exactly one goroutine may call Push and exactly one may call Pop; with
// that discipline neither side ever blocks or spins on the other. The
// producer publishes a slot with the store to tail, the consumer frees it
// with the store to head; Go's atomics give the release/acquire pairing
// that makes the slot contents visible before the index moves.
//
// head and tail live on separate cache lines so the producer core and the
// consumer core do not invalidate each other's line on every operation.
type Ring[T any] struct {
	slots []T
	mask  uint64

	_    [cacheLineSize]byte
	head atomic.Uint64 // next slot to read, owned by the consumer
	_    [cacheLineSize - 8]byte
	tail atomic.Uint64 // next slot to write, owned by the producer
	_    [cacheLineSize - 8]byte
}

// NewRing allocates a ring with the given capacity. Capacity must be a
// power of two; one slot is sacrificed to distinguish full from empty, so
// at most capacity-1 items are ever stored.
func NewRing[T any](capacity int) (*Ring[T], error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, ErrCapacity
	}
	return &Ring[T]{
		slots: make([]T, capacity),
		mask:  uint64(capacity - 1),
	}, nil
}

// Push writes one item. It returns false when the ring is full; the caller
// decides the drop policy. Producer side only.
func (r *Ring[T]) Push(v T) bool {
	tail := r.tail.Load()
	next := (tail + 1) & r.mask
	if next == r.head.Load() {
		return false
	}
	// The slot must be written before the tail store publishes it.
	r.slots[tail] = v
	r.tail.Store(next)
	return true
}

// Pop reads one item into out. It returns false when the ring is empty.
// Consumer side only.
func (r *Ring[T]) Pop(out *T) bool {
	head := r.head.Load()
	if head == r.tail.Load() {
		return false
	}
	*out = r.slots[head]
	// The read above must complete before the head store frees the slot
	// for the producer to overwrite.
	r.head.Store((head + 1) & r.mask)
	return true
}

// Empty is advisory: it may be stale by the time the caller acts on it.
func (r *Ring[T]) Empty() bool {
	return r.head.Load() == r.tail.Load()
}

// Capacity returns the number of slots, including the sacrificial one.
func (r *Ring[T]) Capacity() int {
	return len(r.slots)
}
