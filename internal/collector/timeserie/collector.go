package timeserie

import (
	"math"
	"math/bits"

	"github.com/SSK015/Workload-Profiling/pkg/types"
)

// MaxBins caps the number of bins after the baseline, which bounds the
// report size however small the bin is.
const MaxBins = 1 << 20

type TrackerOptions struct {
	RefStart  float64
	RefWindow float64
	BinSize   float64
	// PageSize must be a power of two.
	PageSize uint64
}

// HotSetTracker counts samples per page for a baseline window
// [RefStart, RefStart+RefWindow) and for fixed-width bins after it.
type HotSetTracker struct {
	pageShift uint
	refStart  float64
	refEnd    float64
	binSize   float64

	baseline map[uint64]uint64
	bins     map[int]map[uint64]uint64
	maxBin   int
	samples  uint64
	before   uint64
	// latest sample that fell past MaxBins, if any
	overflow   bool
	overflowAt float64
}

func NewHotSetTracker(opts TrackerOptions) *HotSetTracker {
	return &HotSetTracker{
		pageShift: uint(bits.TrailingZeros64(opts.PageSize)),
		refStart:  opts.RefStart,
		refEnd:    opts.RefStart + opts.RefWindow,
		binSize:   opts.BinSize,
		baseline:  make(map[uint64]uint64),
		bins:      make(map[int]map[uint64]uint64),
		maxBin:    -1,
	}
}

func (ht *HotSetTracker) ensureBin(idx int) map[uint64]uint64 {
	bin, ok := ht.bins[idx]
	if !ok {
		bin = make(map[uint64]uint64)
		ht.bins[idx] = bin
	}
	return bin
}

func (ht *HotSetTracker) Update(s types.Sample) {
	ht.samples++
	page := s.Addr >> ht.pageShift

	switch {
	case s.Time < ht.refStart:
		ht.before++
	case s.Time < ht.refEnd:
		ht.baseline[page]++
	default:
		f := math.Floor((s.Time - ht.refEnd) / ht.binSize)
		if !(f < MaxBins) {
			ht.overflow = true
			ht.overflowAt = max(ht.overflowAt, s.Time)
			return
		}
		idx := int(f)
		ht.ensureBin(idx)[page]++
		ht.maxBin = max(ht.maxBin, idx)
	}
}

func (ht *HotSetTracker) Samples() uint64 { return ht.samples }

// Before is the number of samples that preceded the baseline window.
func (ht *HotSetTracker) Before() uint64 { return ht.before }
