package timeserie

import (
	"errors"
	"fmt"
)

var (
	ErrNoSamples     = errors.New("no samples")
	ErrEmptyBaseline = errors.New("baseline window has no samples")
	ErrNoBins        = errors.New("no samples after the baseline window")
	ErrTooManyBins   = errors.New("too many bins")
)

type BinPersistence struct {
	Index int
	// Start is the bin start in seconds relative to the trace origin.
	Start    float64
	Samples  uint64
	HotPages uint64
	Overlap  uint64
	Percent  float64
}

type Persistence struct {
	RefStart    float64
	RefEnd      float64
	BinSize     float64
	TopK        int
	BaselineHot uint64
	Bins        []BinPersistence
}

// Result compares the Top-K pages of every bin against the baseline Top-K.
// Bins without samples are reported with 0% so indexes stay aligned with
// elapsed time.
func (ht *HotSetTracker) Result(topK int) (*Persistence, error) {
	if ht.samples == 0 {
		return nil, ErrNoSamples
	}

	baseHot := TopK(ht.baseline, topK)
	if baseHot.IsEmpty() {
		return nil, fmt.Errorf("%w: [%g,%g)s; widen the reference window or relax filters",
			ErrEmptyBaseline, ht.refStart, ht.refEnd)
	}
	if ht.overflow {
		return nil, fmt.Errorf("%w: sample at %gs needs more than %d bins of %gs; raise bin",
			ErrTooManyBins, ht.overflowAt, MaxBins, ht.binSize)
	}
	if ht.maxBin < 0 {
		return nil, fmt.Errorf("%w: nothing at or after %gs; record longer or raise max-time",
			ErrNoBins, ht.refEnd)
	}

	p := &Persistence{
		RefStart:    ht.refStart,
		RefEnd:      ht.refEnd,
		BinSize:     ht.binSize,
		TopK:        topK,
		BaselineHot: baseHot.GetCardinality(),
		Bins:        make([]BinPersistence, 0, ht.maxBin+1),
	}

	for i := 0; i <= ht.maxBin; i++ {
		bp := BinPersistence{Index: i, Start: ht.refEnd + float64(i)*ht.binSize}
		if counts, ok := ht.bins[i]; ok {
			for _, c := range counts {
				bp.Samples += c
			}
			hot := TopK(counts, topK)
			bp.HotPages = hot.GetCardinality()
			bp.Overlap = baseHot.AndCardinality(hot)
			bp.Percent = 100 * float64(bp.Overlap) / float64(p.BaselineHot)
		}
		p.Bins = append(p.Bins, bp)
	}
	return p, nil
}
