package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/SSK015/Workload-Profiling/internal/collector"
	"github.com/SSK015/Workload-Profiling/internal/collector/selector"
	"github.com/SSK015/Workload-Profiling/internal/config"
	"github.com/SSK015/Workload-Profiling/internal/loaders"
	"github.com/SSK015/Workload-Profiling/internal/render"
	"github.com/SSK015/Workload-Profiling/pkg/logutil"
	"github.com/SSK015/Workload-Profiling/pkg/types"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func ingestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "event", Usage: "perf event to keep", Sources: cli.EnvVars("MEMHOT_EVENT")},
		&cli.StringFlag{Name: "addr-min", Usage: "inclusive lower address bound (hex)"},
		&cli.StringFlag{Name: "addr-max", Usage: "exclusive upper address bound (hex)"},
		&cli.BoolFlag{Name: "include-kernel", Usage: "keep addresses >= 0x8000000000000000"},
		&cli.IntFlag{Name: "max-samples", Usage: "stop after N accepted samples (0 = all)"},
		&cli.FloatFlag{Name: "max-time", Usage: "drop samples later than this many seconds after the first one"},
		&cli.StringFlag{Name: "pid", Usage: "only samples of this pid"},
		&cli.StringFlag{Name: "comm", Usage: "only samples of this command name"},
	}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Usage: "png or csv", Sources: cli.EnvVars("MEMHOT_FORMAT")},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "artifact path, - for stdout"},
		&cli.StringFlag{Name: "title", Usage: "chart title"},
		&cli.IntFlag{Name: "width", Usage: "chart width in pixels"},
		&cli.IntFlag{Name: "height", Usage: "chart height in pixels"},
		&cli.FloatFlag{Name: "dpi", Usage: "chart DPI"},
	}
}

func nonNegative(c *cli.Command, name string) (uint64, error) {
	v := c.Int(name)
	if v < 0 {
		return 0, fmt.Errorf("%w: --%s must be >= 0, got %d", config.ErrInvalidConfig, name, v)
	}
	return uint64(v), nil
}

func applyIngest(c *cli.Command, cfg *config.Config) error {
	in := &cfg.Ingest
	if c.IsSet("event") {
		in.Event = c.String("event")
	}
	for name, dst := range map[string]*config.HexAddr{"addr-min": &in.AddrMin, "addr-max": &in.AddrMax} {
		if !c.IsSet(name) {
			continue
		}
		h, err := config.ParseHexAddr(c.String(name))
		if err != nil {
			return fmt.Errorf("%w: --%s: %w", config.ErrInvalidConfig, name, err)
		}
		*dst = h
	}
	if c.IsSet("include-kernel") {
		in.IncludeKernel = c.Bool("include-kernel")
	}
	if c.IsSet("max-samples") {
		n, err := nonNegative(c, "max-samples")
		if err != nil {
			return err
		}
		in.MaxSamples = n
	}
	if c.IsSet("max-time") {
		maxTime := c.Float("max-time")
		in.MaxTime = &maxTime
	}
	if c.IsSet("pid") {
		in.Pid = c.String("pid")
	}
	if c.IsSet("comm") {
		in.Comm = c.String("comm")
	}
	return nil
}

func applyRender(c *cli.Command, cfg *config.Config) error {
	r := &cfg.Render
	if c.IsSet("format") {
		r.Format = c.String("format")
	}
	if c.IsSet("output") {
		r.Output = c.String("output")
	}
	if c.IsSet("title") {
		r.Title = c.String("title")
	}
	if c.IsSet("width") {
		r.Width = c.Int("width")
	}
	if c.IsSet("height") {
		r.Height = c.Int("height")
	}
	if c.IsSet("dpi") {
		r.DPI = c.Float("dpi")
	}
	return nil
}

// defaultOutput names the artifact after the command when no output was
// given. An unknown format is left for validation to report.
func defaultOutput(base string) func(*cli.Command, *config.Config) error {
	return func(_ *cli.Command, cfg *config.Config) error {
		if cfg.Render.Output != "" {
			return nil
		}
		if r, err := render.NewRenderer(cfg.Render.Format, chartOptions(cfg)); err == nil {
			cfg.Render.Output = base + r.Extension()
		}
		return nil
	}
}

func chartOptions(cfg *config.Config) render.ChartOptions {
	return render.ChartOptions{Width: cfg.Render.Width, Height: cfg.Render.Height, DPI: cfg.Render.DPI}
}

func traceArg(c *cli.Command) (string, error) {
	switch c.Args().Len() {
	case 0:
		return loaders.STDIN_SOURCE, nil
	case 1:
		return c.Args().First(), nil
	default:
		return "", fmt.Errorf("%w: expected one trace, got %d", config.ErrInvalidConfig, c.Args().Len())
	}
}

func withTrace(path string, fn func(src io.Reader) error) error {
	src, err := loaders.NewTraceSource(path)
	if err != nil {
		return err
	}
	defer src.Close()
	return fn(src)
}

func rangeCommand() *cli.Command {
	flags := append(ingestFlags(),
		&cli.StringFlag{Name: "mode", Usage: "dominant or window", Sources: cli.EnvVars("MEMHOT_MODE")},
		&cli.IntFlag{Name: "bucket-bits", Usage: "log2 of the bucket size in bytes"},
		&cli.IntFlag{Name: "drop-top", Usage: "drop the N highest buckets before selection"},
		&cli.IntFlag{Name: "min-bucket-samples", Usage: "drop buckets with fewer samples"},
		&cli.IntFlag{Name: "window-buckets", Usage: "window width in buckets"},
		&cli.StringFlag{Name: "strategy", Usage: "min, max, around or best"},
		&cli.StringFlag{Name: "policy", Usage: "observed or full"},
	)

	return &cli.Command{
		Name:      "range",
		Usage:     "print `<min_hex> <max_hex> <count>` for the working-set range of each trace",
		ArgsUsage: "[trace ...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := setup(c, applyIngest, applyRange)
			if err != nil {
				return err
			}
			if err := cfg.ValidateRange(); err != nil {
				return err
			}

			paths := c.Args().Slice()
			if len(paths) == 0 {
				paths = []string{loaders.STDIN_SOURCE}
			}
			results := make([]selector.Range, len(paths))

			g, ctx := errgroup.WithContext(ctx)
			for i, path := range paths {
				g.Go(func() error {
					return withTrace(path, func(src io.Reader) error {
						r, err := collector.RunRangeInference(ctx, path, src, cfg)
						results[i] = r
						return err
					})
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, r := range results {
				if len(paths) > 1 {
					fmt.Printf("%s %s\n", paths[i], r)
					continue
				}
				fmt.Println(r)
			}
			return nil
		},
	}
}

func applyRange(c *cli.Command, cfg *config.Config) error {
	r := &cfg.Range
	if c.IsSet("mode") {
		r.Mode = c.String("mode")
	}
	if c.IsSet("strategy") {
		r.Strategy = c.String("strategy")
	}
	if c.IsSet("policy") {
		r.Policy = c.String("policy")
	}
	if c.IsSet("bucket-bits") {
		n, err := nonNegative(c, "bucket-bits")
		if err != nil {
			return err
		}
		r.BucketBits = uint(n)
	}
	if c.IsSet("drop-top") {
		n, err := nonNegative(c, "drop-top")
		if err != nil {
			return err
		}
		r.DropTop = uint(n)
	}
	if c.IsSet("min-bucket-samples") {
		n, err := nonNegative(c, "min-bucket-samples")
		if err != nil {
			return err
		}
		r.MinBucketSamples = n
	}
	if c.IsSet("window-buckets") {
		n, err := nonNegative(c, "window-buckets")
		if err != nil {
			return err
		}
		r.WindowBuckets = n
	}
	return nil
}

func persistCommand() *cli.Command {
	flags := append(ingestFlags(), renderFlags()...)
	flags = append(flags,
		&cli.FloatFlag{Name: "ref-start", Usage: "baseline start in seconds from the first sample"},
		&cli.FloatFlag{Name: "ref-window", Usage: "baseline length in seconds"},
		&cli.FloatFlag{Name: "bin", Usage: "bin length in seconds"},
		&cli.IntFlag{Name: "topk", Usage: "pages per hot set"},
		&cli.IntFlag{Name: "page-size", Usage: "page size in bytes (power of two)"},
	)

	return &cli.Command{
		Name:      "persist",
		Usage:     "chart how much of the baseline hot set stays hot in later bins",
		ArgsUsage: "[trace]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := setup(c, applyIngest, applyRender, applyPersistence, defaultOutput("hot_persistence"))
			if err != nil {
				return err
			}
			if err := cfg.ValidatePersistence(); err != nil {
				return err
			}
			path, err := traceArg(c)
			if err != nil {
				return err
			}
			renderer, err := render.NewRenderer(cfg.Render.Format, chartOptions(cfg))
			if err != nil {
				return err
			}

			return withTrace(path, func(src io.Reader) error {
				p, err := collector.RunHotPersistence(ctx, path, src, cfg)
				if err != nil {
					return err
				}
				title := cfg.Render.Title
				if title == "" {
					title = fmt.Sprintf("Hot-page persistence (Top-%d of [%gs,%gs))", p.TopK, p.RefStart, p.RefEnd)
				}
				if err := render.WriteArtifact(cfg.Render.Output, renderer, collector.PersistenceSeries(p, title)); err != nil {
					return err
				}
				logutil.GetLogger().Info("artifact written", zap.String("output", cfg.Render.Output))
				return nil
			})
		},
	}
}

func applyPersistence(c *cli.Command, cfg *config.Config) error {
	p := &cfg.Persistence
	if c.IsSet("ref-start") {
		p.RefStart = c.Float("ref-start")
	}
	if c.IsSet("ref-window") {
		p.RefWindow = c.Float("ref-window")
	}
	if c.IsSet("bin") {
		p.BinSize = c.Float("bin")
	}
	if c.IsSet("topk") {
		p.TopK = c.Int("topk")
	}
	if c.IsSet("page-size") {
		n, err := nonNegative(c, "page-size")
		if err != nil {
			return err
		}
		p.PageSize = n
	}
	return nil
}

func pointsCommand() *cli.Command {
	flags := append(ingestFlags(), renderFlags()...)
	flags = append(flags,
		&cli.StringFlag{Name: "ylabel", Usage: "y axis label"},
		&cli.BoolFlag{Name: "y-offset", Usage: "plot addr - addr-min"},
		&cli.IntFlag{Name: "max-points", Usage: "reservoir size"},
		&cli.IntFlag{Name: "seed", Usage: "reservoir seed"},
	)

	return &cli.Command{
		Name:      "points",
		Usage:     "scatter a uniform sample of (time, address) points",
		ArgsUsage: "[trace]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := setup(c, applyIngest, applyRender, applyPoints, defaultOutput("points"))
			if err != nil {
				return err
			}
			if err := cfg.ValidatePoints(); err != nil {
				return err
			}
			path, err := traceArg(c)
			if err != nil {
				return err
			}
			renderer, err := render.NewRenderer(cfg.Render.Format, chartOptions(cfg))
			if err != nil {
				return err
			}

			return withTrace(path, func(src io.Reader) error {
				pc, err := collector.RunPoints(ctx, path, src, cfg)
				if err != nil {
					return err
				}
				ylabel := cfg.Render.YLabel
				var offset uint64
				if cfg.Render.YOffset && cfg.Ingest.AddrMin.Valid {
					offset = cfg.Ingest.AddrMin.Value
					if ylabel == "" {
						ylabel = "Address - " + cfg.Ingest.AddrMin.String()
					}
				}
				if ylabel == "" {
					ylabel = "Address"
				}
				title := cfg.Render.Title
				if title == "" {
					title = cfg.Ingest.Event + " samples"
				}
				return render.WriteArtifact(cfg.Render.Output, renderer, pc.Series(title, ylabel, offset))
			})
		},
	}
}

func applyPoints(c *cli.Command, cfg *config.Config) error {
	r := &cfg.Render
	if c.IsSet("ylabel") {
		r.YLabel = c.String("ylabel")
	}
	if c.IsSet("y-offset") {
		r.YOffset = c.Bool("y-offset")
	}
	if c.IsSet("max-points") {
		r.MaxPoints = c.Int("max-points")
	}
	if c.IsSet("seed") {
		n, err := nonNegative(c, "seed")
		if err != nil {
			return err
		}
		r.Seed = n
	}
	return nil
}

func outputArg(c *cli.Command) string {
	if out := c.String("output"); out != "" {
		return out
	}
	return "-"
}

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:      "filter",
		Usage:     "keep the records of one process as `<time>: <event>: <addr>` lines",
		ArgsUsage: "[trace]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pid", Usage: "process id to keep", Required: true},
			&cli.StringFlag{Name: "comm", Usage: "also require this command name"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "-", Usage: "output path, - for stdout"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if _, err := setup(c); err != nil {
				return err
			}
			pid := c.String("pid")
			if _, err := strconv.ParseUint(pid, 10, 32); err != nil {
				return fmt.Errorf("%w: pid must be a non-negative integer, got %q", config.ErrInvalidConfig, pid)
			}
			path, err := traceArg(c)
			if err != nil {
				return err
			}

			return withTrace(path, func(src io.Reader) error {
				var n uint64
				err := render.WriteAtomic(outputArg(c), func(w io.Writer) error {
					var err error
					n, err = loaders.FilterProcess(ctx, src, w, pid, c.String("comm"))
					return err
				})
				if err != nil {
					return err
				}
				logutil.GetLogger().Info("records filtered", zap.String("trace", path), zap.Uint64("written", n))
				return nil
			})
		},
	}
}

func rescaleCommand() *cli.Command {
	return &cli.Command{
		Name:  "rescale",
		Usage: "map record times of a trace file linearly onto [0, target-span]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "trace file (read twice)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "-", Usage: "output path, - for stdout"},
			&cli.StringFlag{Name: "event", Value: types.DEFAULT_EVENT, Usage: "event whose span is rescaled"},
			&cli.FloatFlag{Name: "target-span", Required: true, Usage: "span in seconds after rescaling"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if _, err := setup(c); err != nil {
				return err
			}
			span := c.Float("target-span")
			if !(span > 0) {
				return fmt.Errorf("%w: target-span must be > 0, got %g", config.ErrInvalidConfig, span)
			}

			var scale float64
			err := render.WriteAtomic(outputArg(c), func(w io.Writer) error {
				var err error
				scale, err = loaders.Rescale(c.String("input"), w, c.String("event"), span)
				return err
			})
			if err != nil {
				return err
			}
			logutil.GetLogger().Info("trace rescaled",
				zap.String("input", c.String("input")),
				zap.Float64("scale", scale),
			)
			return nil
		},
	}
}
