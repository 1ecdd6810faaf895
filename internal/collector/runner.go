package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/SSK015/Workload-Profiling/internal/collector/aggregator"
	"github.com/SSK015/Workload-Profiling/internal/collector/points"
	"github.com/SSK015/Workload-Profiling/internal/collector/selector"
	"github.com/SSK015/Workload-Profiling/internal/collector/timeserie"
	"github.com/SSK015/Workload-Profiling/internal/config"
	"github.com/SSK015/Workload-Profiling/internal/loaders"
	"github.com/SSK015/Workload-Profiling/pkg/logutil"
	"github.com/SSK015/Workload-Profiling/pkg/types"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var (
	ErrNoSamples        = errors.New("no samples passed filtering")
	ErrAllBucketsPruned = errors.New("every bucket was pruned")
)

func noSamples(cfg *config.Config, name string) error {
	in := cfg.Ingest
	return fmt.Errorf("%w in %s: check event %q, address bounds [%s,%s), kernel=%t",
		ErrNoSamples, name, in.Event, in.AddrMin, in.AddrMax, in.IncludeKernel)
}

func load(ctx context.Context, name string, src io.Reader, cfg *config.Config, c types.Sample_collectors) (loaders.LoadStats, error) {
	tl := loaders.NewTraceLoader(name, src, loaders.NewFilter(cfg.Ingest), cfg.Ingest.MaxSamples, c)
	stats, err := tl.Run(ctx)
	if err != nil {
		return stats, fmt.Errorf("read %s: %w", name, err)
	}
	if stats.Accepted == 0 {
		return stats, noSamples(cfg, name)
	}
	return stats, nil
}

// RunRangeInference buckets every accepted sample of one trace and selects
// the dominant bucket or a window of buckets.
func RunRangeInference(ctx context.Context, name string, src io.Reader, cfg *config.Config) (selector.Range, error) {
	logger := logutil.GetLogger()
	rc := cfg.Range

	agg := aggregator.NewBucketAggregator(rc.BucketBits)
	if _, err := load(ctx, name, src, cfg, agg); err != nil {
		return selector.Range{}, err
	}

	all := agg.Snapshot()
	buckets := aggregator.Prune(all, aggregator.PruneOptions{DropTop: rc.DropTop, MinSamples: rc.MinBucketSamples})
	logger.Info("buckets aggregated",
		zap.String("trace", name),
		zap.String("bucket_size", humanize.IBytes(uint64(1)<<rc.BucketBits)),
		zap.Uint64("samples", agg.Samples()),
		zap.Int("buckets", all.Len()),
		zap.Int("kept", buckets.Len()),
	)
	if buckets.Len() == 0 {
		return selector.Range{}, fmt.Errorf("%w in %s: %d buckets before pruning; lower min-bucket-samples (%d) or drop-top (%d)",
			ErrAllBucketsPruned, name, all.Len(), rc.MinBucketSamples, rc.DropTop)
	}

	if rc.Mode == types.MODE_DOMINANT {
		return selector.Dominant(buckets)
	}
	return selector.Window(buckets, selector.WindowOptions{
		Width:    rc.WindowBuckets,
		Strategy: rc.Strategy,
		Policy:   rc.Policy,
	})
}

// RunHotPersistence measures how much of the baseline hot set is still hot in
// each later bin.
func RunHotPersistence(ctx context.Context, name string, src io.Reader, cfg *config.Config) (*timeserie.Persistence, error) {
	logger := logutil.GetLogger()
	pc := cfg.Persistence

	tracker := timeserie.NewHotSetTracker(timeserie.TrackerOptions{
		RefStart:  pc.RefStart,
		RefWindow: pc.RefWindow,
		BinSize:   pc.BinSize,
		PageSize:  pc.PageSize,
	})
	if _, err := load(ctx, name, src, cfg, tracker); err != nil {
		return nil, err
	}

	result, err := tracker.Result(pc.TopK)
	if errors.Is(err, timeserie.ErrTooManyBins) {
		return nil, fmt.Errorf("%w: bin: %s: %w", config.ErrInvalidConfig, name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logger.Info("hot-set persistence computed",
		zap.String("trace", name),
		zap.String("page_size", humanize.IBytes(pc.PageSize)),
		zap.Float64("ref_start", result.RefStart),
		zap.Float64("ref_end", result.RefEnd),
		zap.Float64("bin", result.BinSize),
		zap.Uint64("samples", tracker.Samples()),
		zap.Uint64("before_baseline", tracker.Before()),
		zap.Uint64("baseline_hot", result.BaselineHot),
		zap.Int("bins", len(result.Bins)),
	)
	return result, nil
}

// PersistenceSeries turns a persistence result into bars labelled with the
// bin start in minutes.
func PersistenceSeries(p *timeserie.Persistence, title string) types.Series {
	s := types.Series{
		Kind:   types.SERIES_BAR,
		Title:  title,
		XLabel: "Time elapsed (minutes)",
		YLabel: "% of pages still hot",
		Labels: make([]string, len(p.Bins)),
		Y:      make([]float64, len(p.Bins)),
		YMin:   0,
		YMax:   100,
	}
	for i, bin := range p.Bins {
		s.Labels[i] = strconv.FormatFloat(bin.Start/60, 'f', 2, 64)
		s.Y[i] = bin.Percent
	}
	return s
}

// RunPoints keeps a bounded uniform sample of (time, address) points.
func RunPoints(ctx context.Context, name string, src io.Reader, cfg *config.Config) (*points.PointsCollector, error) {
	pc := points.NewPointsCollector(cfg.Render.MaxPoints, cfg.Render.Seed)
	if _, err := load(ctx, name, src, cfg, pc); err != nil {
		return nil, err
	}
	logutil.GetLogger().Info("points sampled",
		zap.String("trace", name),
		zap.Uint64("seen", pc.Seen()),
		zap.Int("kept", len(pc.Points())),
	)
	return pc, nil
}
