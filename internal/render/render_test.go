package render

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/SSK015/Workload-Profiling/pkg/types"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func barSeries() types.Series {
	return types.Series{
		Kind:   types.SERIES_BAR,
		Title:  "Hot-page persistence",
		YLabel: "% of pages still hot",
		Labels: []string{"0.02", "0.10"},
		Y:      []float64{100, 37.5},
		YMin:   0,
		YMax:   100,
	}
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVRenderer{}.Render(&buf, barSeries()))
	require.Equal(t, "label,value\n0.02,100\n0.10,37.5\n", buf.String())

	buf.Reset()
	require.NoError(t, CSVRenderer{}.Render(&buf, types.Series{Kind: types.SERIES_SCATTER, X: []float64{0.5}, Y: []float64{4096}}))
	require.Equal(t, "x,y\n0.5,4096\n", buf.String())

	require.Error(t, CSVRenderer{}.Render(&buf, types.Series{Kind: "pie"}))
}

func TestChartRenderer(t *testing.T) {
	cr := NewChartRenderer(ChartOptions{Width: 800, Height: 400, DPI: 96})

	var buf bytes.Buffer
	require.NoError(t, cr.Render(&buf, barSeries()))
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	buf.Reset()
	require.NoError(t, cr.Render(&buf, types.Series{
		Kind: types.SERIES_SCATTER, XLabel: "Time (sec)", YLabel: "Virtual address",
		X: []float64{0, 1, 2, 3}, Y: []float64{4096, 8192, 4096, 12288},
	}))
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	require.ErrorIs(t, cr.Render(&buf, types.Series{Kind: types.SERIES_BAR}), ErrEmptySeries)
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(types.FORMAT_CSV, ChartOptions{})
	require.NoError(t, err)
	require.Equal(t, ".csv", r.Extension())

	r, err = NewRenderer(types.FORMAT_PNG, ChartOptions{Width: 10, Height: 10})
	require.NoError(t, err)
	require.Equal(t, ".png", r.Extension())

	_, err = NewRenderer("svg", ChartOptions{})
	require.Error(t, err)
}

type failingRenderer struct{}

func (failingRenderer) Extension() string { return ".bin" }

func (failingRenderer) Render(w io.Writer, s types.Series) error {
	w.Write([]byte("partial"))
	return errors.New("boom")
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "persist.csv")

	require.NoError(t, WriteArtifact(out, CSVRenderer{}, barSeries()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "0.10,37.5")

	failed := filepath.Join(dir, "failed.bin")
	require.Error(t, WriteArtifact(failed, failingRenderer{}, barSeries()))
	_, err = os.Stat(failed)
	require.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
