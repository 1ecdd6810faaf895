package config

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"strconv"
	"strings"

	"github.com/SSK015/Workload-Profiling/pkg/types"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// HexAddr is an optional 64-bit address given as hex, with or without 0x.
type HexAddr struct {
	Value uint64
	Valid bool
}

func ParseHexAddr(s string) (HexAddr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HexAddr{}, nil
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return HexAddr{}, fmt.Errorf("bad hex address %q: %w", s, err)
	}
	return HexAddr{Value: v, Valid: true}, nil
}

func (h HexAddr) String() string {
	if !h.Valid {
		return ""
	}
	return fmt.Sprintf("%#x", h.Value)
}

func (h *HexAddr) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseHexAddr(node.Value)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

type IngestConfig struct {
	Event         string  `yaml:"event"`
	AddrMin       HexAddr `yaml:"addr_min"`
	AddrMax       HexAddr `yaml:"addr_max"`
	IncludeKernel bool    `yaml:"include_kernel"`
	MaxSamples    uint64  `yaml:"max_samples"`
	// MaxTime is unset when nil; 0 keeps only samples at the origin.
	MaxTime *float64 `yaml:"max_time"`
	Pid     string   `yaml:"pid"`
	Comm    string   `yaml:"comm"`
}

type RangeConfig struct {
	Mode             string `yaml:"mode"`
	BucketBits       uint   `yaml:"bucket_bits"`
	DropTop          uint   `yaml:"drop_top"`
	MinBucketSamples uint64 `yaml:"min_bucket_samples"`
	WindowBuckets    uint64 `yaml:"window_buckets"`
	Strategy         string `yaml:"strategy"`
	Policy           string `yaml:"policy"`
}

type PersistenceConfig struct {
	RefStart  float64 `yaml:"ref_start"`
	RefWindow float64 `yaml:"ref_window"`
	BinSize   float64 `yaml:"bin"`
	TopK      int     `yaml:"topk"`
	PageSize  uint64  `yaml:"page_size"`
}

type RenderConfig struct {
	Format    string  `yaml:"format"`
	Output    string  `yaml:"output"`
	Title     string  `yaml:"title"`
	YLabel    string  `yaml:"ylabel"`
	YOffset   bool    `yaml:"y_offset"`
	MaxPoints int     `yaml:"max_points"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	DPI       float64 `yaml:"dpi"`
	Seed      uint64  `yaml:"seed"`
}

type Config struct {
	LogLevel    string            `yaml:"log_level"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Range       RangeConfig       `yaml:"range"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Render      RenderConfig      `yaml:"render"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Ingest: IngestConfig{
			Event: types.DEFAULT_EVENT,
		},
		Range: RangeConfig{
			Mode:          types.MODE_DOMINANT,
			BucketBits:    30,
			WindowBuckets: 12,
			Strategy:      types.STRATEGY_AROUND,
			Policy:        types.POLICY_OBSERVED,
		},
		Persistence: PersistenceConfig{
			RefStart:  0,
			RefWindow: 1,
			BinSize:   5,
			TopK:      1024,
			PageSize:  uint64(unix.Getpagesize()),
		},
		Render: RenderConfig{
			Format:    types.FORMAT_PNG,
			MaxPoints: 2_000_000,
			Width:     1300,
			Height:    620,
			DPI:       180,
		},
	}
}

// LoadConfig returns the defaults overlaid with the YAML file at path. An
// empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validateIngest() error {
	var err error
	in := c.Ingest
	if in.AddrMin.Valid && in.AddrMax.Valid && in.AddrMin.Value >= in.AddrMax.Value {
		err = multierr.Append(err, fmt.Errorf("addr_min %s must be below addr_max %s", in.AddrMin, in.AddrMax))
	}
	if in.MaxTime != nil && *in.MaxTime < 0 {
		err = multierr.Append(err, fmt.Errorf("max_time must be >= 0, got %g", *in.MaxTime))
	}
	if in.Pid != "" {
		if _, perr := strconv.ParseUint(in.Pid, 10, 32); perr != nil {
			err = multierr.Append(err, fmt.Errorf("pid must be a non-negative integer, got %q", in.Pid))
		}
	}
	return err
}

// ValidateRange checks everything range inference needs.
func (c *Config) ValidateRange() error {
	err := c.validateIngest()
	r := c.Range
	if r.BucketBits > 63 {
		err = multierr.Append(err, fmt.Errorf("bucket_bits must be in [0,63], got %d", r.BucketBits))
	}
	switch r.Mode {
	case types.MODE_DOMINANT, types.MODE_WINDOW:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown mode %q", r.Mode))
	}
	switch r.Strategy {
	case types.STRATEGY_MIN, types.STRATEGY_MAX, types.STRATEGY_AROUND, types.STRATEGY_BEST:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown window strategy %q", r.Strategy))
	}
	switch r.Policy {
	case types.POLICY_OBSERVED, types.POLICY_FULL:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown window policy %q", r.Policy))
	}
	if r.WindowBuckets == 0 {
		err = multierr.Append(err, errors.New("window_buckets must be > 0"))
	} else if r.BucketBits <= 63 && r.WindowBuckets-1 > ^uint64(0)>>r.BucketBits {
		err = multierr.Append(err, fmt.Errorf("window of %d buckets exceeds the %d-bit address space at bucket_bits=%d",
			r.WindowBuckets, 64, r.BucketBits))
	}
	return wrap(err)
}

func (c *Config) ValidatePersistence() error {
	return wrap(c.validatePersistence())
}

func (c *Config) validatePersistence() error {
	err := c.validateIngest()
	p := c.Persistence
	if !(p.RefWindow > 0) {
		err = multierr.Append(err, fmt.Errorf("ref_window must be > 0, got %g", p.RefWindow))
	}
	if !(p.BinSize > 0) {
		err = multierr.Append(err, fmt.Errorf("bin must be > 0, got %g", p.BinSize))
	}
	if p.TopK <= 0 {
		err = multierr.Append(err, fmt.Errorf("topk must be > 0, got %d", p.TopK))
	}
	if p.PageSize == 0 || bits.OnesCount64(p.PageSize) != 1 {
		err = multierr.Append(err, fmt.Errorf("page_size must be a power of two, got %d", p.PageSize))
	}
	return multierr.Append(err, c.validateRender())
}

func (c *Config) ValidatePoints() error {
	err := c.validateIngest()
	if c.Render.MaxPoints <= 0 {
		err = multierr.Append(err, fmt.Errorf("max_points must be > 0, got %d", c.Render.MaxPoints))
	}
	return wrap(multierr.Append(err, c.validateRender()))
}

func (c *Config) validateRender() error {
	var err error
	switch c.Render.Format {
	case types.FORMAT_PNG, types.FORMAT_CSV:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown output format %q", c.Render.Format))
	}
	if c.Render.Output == "" {
		err = multierr.Append(err, errors.New("output path is required"))
	}
	if c.Render.Format == types.FORMAT_PNG && (c.Render.Width <= 0 || c.Render.Height <= 0) {
		err = multierr.Append(err, fmt.Errorf("chart size must be positive, got %dx%d", c.Render.Width, c.Render.Height))
	}
	return err
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
}
