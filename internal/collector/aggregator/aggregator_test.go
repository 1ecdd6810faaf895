package aggregator

import (
	"math/rand/v2"
	"testing"

	"github.com/SSK015/Workload-Profiling/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestBucketAggregatorScenario(t *testing.T) {
	ba := NewBucketAggregator(30)
	for _, a := range []uint64{0x100000000, 0x100000010, 0x200000000} {
		ba.Update(types.Sample{Event: "ev", Addr: a})
	}

	snap := ba.Snapshot()
	require.Equal(t, uint(30), snap.Shift)
	require.Equal(t, []BucketStats{
		{Key: 0x100000000 >> 30, Count: 2, MinAddr: 0x100000000, MaxAddr: 0x100000010},
		{Key: 0x200000000 >> 30, Count: 1, MinAddr: 0x200000000, MaxAddr: 0x200000000},
	}, snap.Stats)
	require.Equal(t, uint64(3), ba.Samples())
	require.Equal(t, uint64(3), snap.Total())
}

func TestBucketingProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	addrs := make([]uint64, 2000)
	for i := range addrs {
		// cluster some addresses so buckets are shared
		addrs[i] = rng.Uint64() >> rng.UintN(64)
	}

	prev := -1
	for shift := uint(0); shift < 64; shift++ {
		ba := NewBucketAggregator(shift)
		for _, a := range addrs {
			ba.Add(a)
		}
		snap := ba.Snapshot()
		for _, s := range snap.Stats {
			require.Equal(t, s.Key, s.MinAddr>>shift)
			require.Equal(t, s.Key, s.MaxAddr>>shift)
		}
		if prev >= 0 {
			require.LessOrEqual(t, snap.Len(), prev, "shift %d", shift)
		}
		prev = snap.Len()
	}

	for i := 0; i < 200; i++ {
		a1, a2 := addrs[rng.IntN(len(addrs))], addrs[rng.IntN(len(addrs))]
		shift := rng.UintN(64)
		ba := NewBucketAggregator(shift)
		ba.Add(a1)
		ba.Add(a2)
		require.Equal(t, a1>>shift == a2>>shift, ba.Snapshot().Len() == 1)
	}
}

func TestOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	addrs := make([]uint64, 500)
	for i := range addrs {
		addrs[i] = 0x7f0000000000 + rng.Uint64N(1<<36)
	}

	reference := NewBucketAggregator(28)
	for _, a := range addrs {
		reference.Add(a)
	}
	want := reference.Snapshot()

	for trial := 0; trial < 10; trial++ {
		rng.Shuffle(len(addrs), func(i, j int) { addrs[i], addrs[j] = addrs[j], addrs[i] })
		ba := NewBucketAggregator(28)
		for _, a := range addrs {
			ba.Add(a)
		}
		require.Equal(t, want, ba.Snapshot())
	}
}

func TestPrune(t *testing.T) {
	b := Buckets{Shift: 30, Stats: []BucketStats{
		{Key: 1, Count: 500},
		{Key: 2, Count: 3000},
		{Key: 5, Count: 2},
		{Key: 9, Count: 7000},
	}}

	pruned := Prune(b, PruneOptions{DropTop: 1, MinSamples: 1000})
	require.Equal(t, []BucketStats{{Key: 2, Count: 3000}}, pruned.Stats)
	require.Equal(t, pruned, Prune(b, PruneOptions{DropTop: 1, MinSamples: 1000}))
	require.Len(t, b.Stats, 4)

	require.Empty(t, Prune(b, PruneOptions{DropTop: 10}).Stats)
	require.Equal(t, b.Stats, Prune(b, PruneOptions{}).Stats)
	require.Equal(t, []BucketStats{{Key: 1, Count: 500}, {Key: 2, Count: 3000}}, Prune(b, PruneOptions{DropTop: 2}).Stats)

	// MinSamples alone is stable under repetition; DropTop is not
	minOnly := PruneOptions{MinSamples: 1000}
	require.Equal(t, Prune(b, minOnly), Prune(Prune(b, minOnly), minOnly))
	dropOne := PruneOptions{DropTop: 1}
	require.Len(t, Prune(Prune(b, dropOne), dropOne).Stats, 2)
}

func TestBucketsIndex(t *testing.T) {
	b := Buckets{Stats: []BucketStats{{Key: 2}, {Key: 5}, {Key: 9}}}
	require.Equal(t, 0, b.Index(0))
	require.Equal(t, 0, b.Index(2))
	require.Equal(t, 1, b.Index(3))
	require.Equal(t, 2, b.Index(9))
	require.Equal(t, 3, b.Index(10))
}
