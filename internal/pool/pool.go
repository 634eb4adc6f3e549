// Package pool provides fixed-capacity object storage for the order path,
// so the hot path never touches the allocator after startup.
package pool

// Pool hands out pointers into a contiguous pre-allocated slab. The free
// list is a LIFO stack: the most recently released slot is reused first,
// which keeps the working set cache-hot under the usual
// create-fill-release-create churn.
type Pool[T any] struct {
	slots []T
	free  []*T
}

// New allocates a pool of capacity slots. All allocation happens here;
// Acquire and Release never allocate.
func New[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		capacity = 1
	}
	p := &Pool[T]{
		slots: make([]T, capacity),
		free:  make([]*T, 0, capacity),
	}
	for i := range p.slots {
		p.free = append(p.free, &p.slots[i])
	}
	return p
}

// Acquire returns a free slot, or ok=false when the pool is exhausted.
// The slot is zeroed; the caller fills it in place.
func (p *Pool[T]) Acquire() (*T, bool) {
	if len(p.free) == 0 {
		return nil, false
	}
	obj := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	var zero T
	*obj = zero
	return obj, true
}

// Release returns a slot to the free list. The pointer must have come from
// Acquire on this pool and must not be used afterwards.
func (p *Pool[T]) Release(obj *T) {
	p.free = append(p.free, obj)
}

// Free returns the number of slots currently available.
func (p *Pool[T]) Free() int {
	return len(p.free)
}

// Capacity returns the total slot count.
func (p *Pool[T]) Capacity() int {
	return len(p.slots)
}
