package aggregator

import (
	"maps"
	"slices"

	"github.com/SSK015/Workload-Profiling/pkg/types"
)

// BucketAggregator counts samples per address bucket and tracks the
// lowest and highest address seen in each. Accumulation is commutative, so
// the final stats do not depend on sample order.
type BucketAggregator struct {
	shift   uint
	buckets map[uint64]*BucketStats
	samples uint64
}

func NewBucketAggregator(shift uint) *BucketAggregator {
	return &BucketAggregator{
		shift:   shift,
		buckets: make(map[uint64]*BucketStats),
	}
}

func (ba *BucketAggregator) ensureBucket(key uint64, addr uint64) *BucketStats {
	b, ok := ba.buckets[key]
	if !ok {
		b = &BucketStats{
			Key:     key,
			MinAddr: addr,
			MaxAddr: addr,
		}
		ba.buckets[key] = b
	}
	return b
}

func (ba *BucketAggregator) Update(s types.Sample) {
	ba.Add(s.Addr)
}

func (ba *BucketAggregator) Add(addr uint64) {
	b := ba.ensureBucket(addr>>ba.shift, addr)
	b.Count++
	b.MinAddr = min(b.MinAddr, addr)
	b.MaxAddr = max(b.MaxAddr, addr)
	ba.samples++
}

func (ba *BucketAggregator) Samples() uint64 { return ba.samples }

// Snapshot copies the current stats ordered by bucket key.
func (ba *BucketAggregator) Snapshot() Buckets {
	keys := slices.Sorted(maps.Keys(ba.buckets))
	out := Buckets{Shift: ba.shift, Stats: make([]BucketStats, 0, len(keys))}
	for _, k := range keys {
		out.Stats = append(out.Stats, *ba.buckets[k])
	}
	return out
}
