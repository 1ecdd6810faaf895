package loaders

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
)

const STDIN_SOURCE = "-"

type decodedFile struct {
	io.Reader
	closers []io.Closer
}

func (d *decodedFile) Close() error {
	var err error
	for _, c := range d.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

type zstdCloser struct{ *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// NewTraceSource opens a trace by path. "-" is stdin; .zst and .gz files are
// decompressed on the fly.
func NewTraceSource(path string) (io.ReadCloser, error) {
	if path == STDIN_SOURCE || path == "" {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return &decodedFile{Reader: dec, closers: []io.Closer{zstdCloser{dec}, f}}, nil
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &decodedFile{Reader: gz, closers: []io.Closer{gz, f}}, nil
	default:
		return f, nil
	}
}
