package loaders

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SSK015/Workload-Profiling/internal/config"
	"github.com/SSK015/Workload-Profiling/pkg/types"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

type recordingCollector struct {
	samples []types.Sample
}

func (rc *recordingCollector) Update(s types.Sample) {
	rc.samples = append(rc.samples, s)
}

const trace = `# header line
100.0: ev: 100000000
garbage text no numbers
100.5: ev: 100000010
100.7: other: 100000020
101.0: ev: 0
101.5: ev: 200000000
`

func TestTraceLoaderRun(t *testing.T) {
	rc := &recordingCollector{}
	f := NewFilter(config.IngestConfig{Event: "ev"})
	tl := NewTraceLoader("test", strings.NewReader(trace), f, 0, rc)

	stats, err := tl.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(7), stats.Lines)
	require.Equal(t, uint64(2), stats.Malformed)
	require.Equal(t, uint64(3), stats.Accepted)
	require.Equal(t, uint64(1), stats.Rejected[RejectEvent])
	require.Equal(t, uint64(1), stats.Rejected[RejectZeroAddr])
	require.False(t, stats.Truncated)

	require.Equal(t, []types.Sample{
		{Time: 0, Event: "ev", Addr: 0x100000000},
		{Time: 0.5, Event: "ev", Addr: 0x100000010},
		{Time: 1.5, Event: "ev", Addr: 0x200000000},
	}, rc.samples)
}

func TestTraceLoaderMaxSamples(t *testing.T) {
	rc := &recordingCollector{}
	tl := NewTraceLoader("test", strings.NewReader(trace), NewFilter(config.IngestConfig{Event: "ev"}), 2, rc)

	stats, err := tl.Run(context.Background())
	require.NoError(t, err)
	require.True(t, stats.Truncated)
	require.Len(t, rc.samples, 2)
}

func TestNewTraceSourceCompressed(t *testing.T) {
	dir := t.TempDir()

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(trace))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.txt.gz"), gz.Bytes(), 0o600))

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.txt.zst"), enc.EncodeAll([]byte(trace), nil), 0o600))
	require.NoError(t, enc.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.txt"), []byte(trace), 0o600))

	for _, name := range []string{"t.txt", "t.txt.gz", "t.txt.zst"} {
		src, err := NewTraceSource(filepath.Join(dir, name))
		require.NoError(t, err, name)

		rc := &recordingCollector{}
		_, err = NewTraceLoader(name, src, NewFilter(config.IngestConfig{Event: "ev"}), 0, rc).Run(context.Background())
		require.NoError(t, err, name)
		require.Len(t, rc.samples, 3, name)
		require.NoError(t, src.Close(), name)
	}

	_, err = NewTraceSource(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}
