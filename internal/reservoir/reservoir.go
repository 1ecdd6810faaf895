// Package reservoir keeps a uniform fixed-size sample of a stream of unknown
// length.
package reservoir

import (
	"math/rand/v2"
)

type Reservoir[T any] struct {
	capacity int
	items    []T
	seen     uint64
	rng      *rand.Rand
}

func New[T any](capacity int, rng *rand.Rand) *Reservoir[T] {
	return &Reservoir[T]{
		capacity: capacity,
		items:    make([]T, 0, min(capacity, 1<<16)),
		rng:      rng,
	}
}

// Add offers an item. Once the reservoir is full the n-th item replaces a
// random slot with probability capacity/n.
func (r *Reservoir[T]) Add(item T) {
	r.seen++
	if len(r.items) < r.capacity {
		r.items = append(r.items, item)
		return
	}
	if j := r.rng.Uint64N(r.seen); j < uint64(r.capacity) {
		r.items[j] = item
	}
}

func (r *Reservoir[T]) Items() []T { return r.items }

func (r *Reservoir[T]) Seen() uint64 { return r.seen }
