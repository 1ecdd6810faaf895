package selector

import (
	"errors"
	"fmt"
	"slices"

	"github.com/SSK015/Workload-Profiling/internal/collector/aggregator"
	"github.com/SSK015/Workload-Profiling/pkg/types"
)

var (
	ErrNoBuckets      = errors.New("no buckets to select from")
	ErrWindowTooWide  = errors.New("window does not fit in the address space")
	ErrUnknownOptions = errors.New("unknown window option")
)

// Range is an inferred address range. Max is inclusive.
type Range struct {
	Min   uint64
	Max   uint64
	Count uint64
	// First bucket key and number of buckets the range was built from.
	Start   uint64
	Buckets uint64
}

// String formats the range as `<min_hex> <max_hex> <count>`.
func (r Range) String() string {
	return fmt.Sprintf("%#x %#x %d", r.Min, r.Max, r.Count)
}

// Dominant returns the observed extent of the bucket with the most samples.
// On equal counts the lowest bucket key wins.
func Dominant(b aggregator.Buckets) (Range, error) {
	i, err := dominantIndex(b)
	if err != nil {
		return Range{}, err
	}
	s := b.Stats[i]
	return Range{Min: s.MinAddr, Max: s.MaxAddr, Count: s.Count, Start: s.Key, Buckets: 1}, nil
}

func dominantIndex(b aggregator.Buckets) (int, error) {
	if len(b.Stats) == 0 {
		return 0, ErrNoBuckets
	}
	best := 0
	for i, s := range b.Stats {
		if s.Count > b.Stats[best].Count {
			best = i
		}
	}
	return best, nil
}

type WindowOptions struct {
	Width    uint64
	Strategy string
	Policy   string
}

// Window picks Width contiguous buckets by strategy and reports either the
// observed extent of the samples inside the window or its full bounds.
func Window(b aggregator.Buckets, opts WindowOptions) (Range, error) {
	if len(b.Stats) == 0 {
		return Range{}, ErrNoBuckets
	}
	lo, hi, err := feasibleStarts(b, opts.Width)
	if err != nil {
		return Range{}, err
	}

	var start uint64
	switch opts.Strategy {
	case types.STRATEGY_MIN:
		start = lo
	case types.STRATEGY_MAX:
		start = hi
	case types.STRATEGY_AROUND:
		i, _ := dominantIndex(b)
		dom := b.Stats[i].Key
		half := opts.Width / 2
		if dom >= half {
			start = clamp(dom-half, lo, hi)
		} else {
			start = lo
		}
	case types.STRATEGY_BEST:
		start, _ = bestStart(b, opts.Width, lo, hi)
	default:
		return Range{}, fmt.Errorf("%w: strategy %q", ErrUnknownOptions, opts.Strategy)
	}

	first, last := windowIndexes(b, start, opts.Width)
	r := Range{Start: start, Buckets: opts.Width}
	for _, s := range b.Stats[first:last] {
		r.Count += s.Count
	}

	full := Range{
		Min: start << b.Shift,
		// wraps to the top of the address space when the window ends there
		Max: ((start + opts.Width) << b.Shift) - 1,
	}

	switch opts.Policy {
	case types.POLICY_FULL:
		r.Min, r.Max = full.Min, full.Max
	case types.POLICY_OBSERVED:
		if first == last {
			r.Min, r.Max = full.Min, full.Max
			break
		}
		r.Min = b.Stats[first].MinAddr
		r.Max = b.Stats[first].MaxAddr
		for _, s := range b.Stats[first:last] {
			r.Min = min(r.Min, s.MinAddr)
			r.Max = max(r.Max, s.MaxAddr)
		}
	default:
		return Range{}, fmt.Errorf("%w: policy %q", ErrUnknownOptions, opts.Policy)
	}
	return r, nil
}

// feasibleStarts returns the range of start keys a window of width buckets
// may take: [b_min, b_max-width+1], collapsed to b_min when the window is
// wider than the observed span, and pulled down so the window never runs
// past the last key of the address space.
func feasibleStarts(b aggregator.Buckets, width uint64) (lo, hi uint64, err error) {
	maxKey := ^uint64(0) >> b.Shift
	if width == 0 || width-1 > maxKey {
		return 0, 0, fmt.Errorf("%w: %d buckets at shift %d", ErrWindowTooWide, width, b.Shift)
	}
	lastStart := maxKey - (width - 1)

	bMin := b.Stats[0].Key
	bMax := b.Stats[len(b.Stats)-1].Key

	lo = bMin
	hi = bMin
	if bMax-bMin >= width-1 {
		hi = bMax - (width - 1)
	}
	lo = min(lo, lastStart)
	hi = min(hi, lastStart)
	return lo, hi, nil
}

// windowIndexes returns the slice bounds of the buckets inside
// [start, start+width).
func windowIndexes(b aggregator.Buckets, start, width uint64) (int, int) {
	end := len(b.Stats)
	if start+(width-1) < ^uint64(0)>>b.Shift {
		end = b.Index(start + width)
	}
	return b.Index(start), end
}

func clamp(v, lo, hi uint64) uint64 {
	return max(lo, min(v, hi))
}

// bestStart finds the start in [lo, hi] whose window holds the most samples.
// An optimal window can always be slid until one of its edges meets an
// observed bucket or a bound, so only starts at b and b-width+1 for observed
// b (clamped into range) need checking. Ties go to the lowest start.
func bestStart(b aggregator.Buckets, width, lo, hi uint64) (uint64, uint64) {
	prefix := make([]uint64, len(b.Stats)+1)
	for i, s := range b.Stats {
		prefix[i+1] = prefix[i] + s.Count
	}
	candidates := make([]uint64, 0, 2*len(b.Stats)+2)
	candidates = append(candidates, lo, hi)
	for _, s := range b.Stats {
		candidates = append(candidates, clamp(s.Key, lo, hi))
		if s.Key >= width-1 {
			candidates = append(candidates, clamp(s.Key-(width-1), lo, hi))
		} else {
			candidates = append(candidates, lo)
		}
	}
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	var bestS, bestSum uint64
	for i, s := range candidates {
		first, last := windowIndexes(b, s, width)
		sum := prefix[last] - prefix[first]
		if i == 0 || sum > bestSum {
			bestS, bestSum = s, sum
		}
	}
	return bestS, bestSum
}
