package loaders

import (
	"bufio"
	"context"
	"io"

	"github.com/SSK015/Workload-Profiling/pkg/logutil"
	"github.com/SSK015/Workload-Profiling/pkg/types"
	"go.uber.org/zap"
)

const (
	maxLineSize   = 1 << 20
	ctxCheckEvery = 1 << 16
)

type LoadStats struct {
	Lines     uint64
	Malformed uint64
	Accepted  uint64
	Rejected  map[Reject]uint64
	// Truncated is set when MaxSamples stopped ingestion early.
	Truncated bool
}

func (s LoadStats) fields() []zap.Field {
	fields := []zap.Field{
		zap.Uint64("lines", s.Lines),
		zap.Uint64("malformed", s.Malformed),
		zap.Uint64("accepted", s.Accepted),
		zap.Bool("truncated", s.Truncated),
	}
	for r, n := range s.Rejected {
		fields = append(fields, zap.Uint64("rejected_"+r.String(), n))
	}
	return fields
}

type TraceLoader struct {
	name       string
	src        io.Reader
	filter     *Filter
	maxSamples uint64
	collectors []types.Sample_collectors
}

func NewTraceLoader(name string, src io.Reader, filter *Filter, maxSamples uint64, collectors ...types.Sample_collectors) *TraceLoader {
	tl := &TraceLoader{
		name:       name,
		src:        src,
		filter:     filter,
		maxSamples: maxSamples,
	}
	for _, c := range collectors {
		tl.collectors = append(tl.collectors, c)
	}
	return tl
}

// Run reads the whole trace and hands every accepted sample to the
// collectors. Malformed lines are counted and skipped.
func (tl *TraceLoader) Run(ctx context.Context) (LoadStats, error) {
	logger := logutil.GetLogger()
	stats := LoadStats{Rejected: make(map[Reject]uint64)}

	sc := bufio.NewScanner(tl.src)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	for sc.Scan() {
		stats.Lines++
		if stats.Lines%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		record, ok := ParseLine(sc.Text())
		if !ok {
			stats.Malformed++
			continue
		}

		sample, reject := tl.filter.Accept(record)
		if reject != Accepted {
			stats.Rejected[reject]++
			continue
		}

		stats.Accepted++
		tl.sendToCollectors(sample)

		if tl.maxSamples > 0 && stats.Accepted >= tl.maxSamples {
			stats.Truncated = true
			break
		}
	}
	if err := sc.Err(); err != nil {
		return stats, err
	}

	logger.Info("trace loaded", append([]zap.Field{zap.String("trace", tl.name)}, stats.fields()...)...)
	return stats, nil
}

func (tl *TraceLoader) sendToCollectors(s types.Sample) {
	for _, c := range tl.collectors {
		c.Update(s)
	}
}
