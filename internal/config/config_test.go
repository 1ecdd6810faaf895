package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/SSK015/Workload-Profiling/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestParseHexAddr(t *testing.T) {
	for _, tc := range []struct {
		in    string
		want  uint64
		valid bool
		err   bool
	}{
		{in: "", valid: false},
		{in: "0x7000", want: 0x7000, valid: true},
		{in: "7fff0cba3bb0", want: 0x7fff0cba3bb0, valid: true},
		{in: "0XFF", want: 0xff, valid: true},
		{in: "zz", err: true},
		{in: "1ffffffffffffffff", err: true},
	} {
		got, err := ParseHexAddr(tc.in)
		if tc.err {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.valid, got.Valid, tc.in)
		require.Equal(t, tc.want, got.Value, tc.in)
	}
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	cfg.Render.Output = "out.png"
	require.NoError(t, cfg.ValidateRange())
	require.NoError(t, cfg.ValidatePersistence())
	require.NoError(t, cfg.ValidatePoints())
	require.Equal(t, types.DEFAULT_EVENT, cfg.Ingest.Event)
	require.Nil(t, cfg.Ingest.MaxTime)
}

func TestValidatePersistenceCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Render.Output = "out.png"
	cfg.Persistence.RefWindow = 0
	cfg.Persistence.BinSize = -1
	cfg.Persistence.TopK = 0
	cfg.Persistence.PageSize = 3000

	require.Len(t, multierr.Errors(cfg.validatePersistence()), 4)

	err := cfg.ValidatePersistence()
	require.True(t, errors.Is(err, ErrInvalidConfig))
	require.Contains(t, err.Error(), "page_size")
}

func TestValidateRange(t *testing.T) {
	cfg := Default()
	cfg.Range.WindowBuckets = 0
	require.ErrorIs(t, cfg.ValidateRange(), ErrInvalidConfig)

	cfg = Default()
	cfg.Range.BucketBits = 62
	cfg.Range.WindowBuckets = 4
	require.NoError(t, cfg.ValidateRange())
	cfg.Range.WindowBuckets = 5
	require.Error(t, cfg.ValidateRange())

	cfg = Default()
	cfg.Range.Strategy = "widest"
	require.Error(t, cfg.ValidateRange())

	cfg = Default()
	cfg.Ingest.AddrMin = HexAddr{Value: 10, Valid: true}
	cfg.Ingest.AddrMax = HexAddr{Value: 10, Valid: true}
	require.Error(t, cfg.ValidateRange())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
ingest:
  event: cpu/mem-stores/pp
  addr_min: "0x7000"
  max_time: 0
range:
  mode: window
  strategy: best
  window_buckets: 4
persistence:
  topk: 16
  page_size: 4096
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "cpu/mem-stores/pp", cfg.Ingest.Event)
	require.Equal(t, HexAddr{Value: 0x7000, Valid: true}, cfg.Ingest.AddrMin)
	require.NotNil(t, cfg.Ingest.MaxTime)
	require.Zero(t, *cfg.Ingest.MaxTime)
	require.Equal(t, types.MODE_WINDOW, cfg.Range.Mode)
	require.Equal(t, types.STRATEGY_BEST, cfg.Range.Strategy)
	require.Equal(t, uint64(4), cfg.Range.WindowBuckets)
	require.Equal(t, uint(30), cfg.Range.BucketBits)
	require.Equal(t, 16, cfg.Persistence.TopK)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
