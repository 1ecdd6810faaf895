package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SSK015/Workload-Profiling/pkg/types"
	"go.uber.org/multierr"
)

func NewRenderer(format string, opts ChartOptions) (types.Renderer, error) {
	switch format {
	case types.FORMAT_PNG:
		return NewChartRenderer(opts), nil
	case types.FORMAT_CSV:
		return CSVRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteArtifact renders s into path with WriteAtomic.
func WriteArtifact(path string, r types.Renderer, s types.Series) error {
	return WriteAtomic(path, func(w io.Writer) error {
		return r.Render(w, s)
	})
}

// WriteAtomic runs fn against a temporary file next to path and renames it
// into place only when fn succeeds, so a failure never leaves a partial file
// or clobbers an existing one. "-" writes to stdout.
func WriteAtomic(path string, fn func(w io.Writer) error) (err error) {
	if path == "-" {
		return fn(os.Stdout)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err := fn(tmp); err != nil {
		return multierr.Append(fmt.Errorf("write %s: %w", path, err), tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
