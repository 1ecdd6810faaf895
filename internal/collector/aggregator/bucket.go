package aggregator

import (
	"slices"
)

// BucketStats is what is known about one 2^shift-byte address bucket.
type BucketStats struct {
	Key     uint64
	Count   uint64
	MinAddr uint64
	MaxAddr uint64
}

// Buckets is a snapshot of bucket stats ordered by key.
type Buckets struct {
	Shift uint
	Stats []BucketStats
}

func (b Buckets) Len() int { return len(b.Stats) }

func (b Buckets) Total() uint64 {
	var total uint64
	for _, s := range b.Stats {
		total += s.Count
	}
	return total
}

// Index returns the position of the first bucket with key >= key.
func (b Buckets) Index(key uint64) int {
	i, _ := slices.BinarySearchFunc(b.Stats, key, func(s BucketStats, k uint64) int {
		switch {
		case s.Key < k:
			return -1
		case s.Key > k:
			return 1
		}
		return 0
	})
	return i
}

type PruneOptions struct {
	// DropTop removes the N highest-key buckets (stack/vdso region).
	DropTop uint
	// MinSamples removes buckets with fewer samples.
	MinSamples uint64
}

// Prune returns a new snapshot without the dropped buckets. Both drops are
// decided against the snapshot passed in, so their order does not matter.
// Prune is meant to run once on a raw snapshot: pruning its own output with
// DropTop > 0 drops further buckets.
func Prune(b Buckets, opts PruneOptions) Buckets {
	keep := len(b.Stats) - int(min(opts.DropTop, uint(len(b.Stats))))

	out := Buckets{Shift: b.Shift, Stats: make([]BucketStats, 0, keep)}
	for _, s := range b.Stats[:keep] {
		if s.Count < opts.MinSamples {
			continue
		}
		out.Stats = append(out.Stats, s)
	}
	return out
}
