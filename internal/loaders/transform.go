package loaders

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrNoTimeSpan = errors.New("trace has no usable time span")

// FilterProcess copies the records of one process from r to w in the compact
// `<time>: <event>: <addr>` form. Lines without the `<comm> <pid>` prefix are
// dropped. It returns the number of records written.
func FilterProcess(ctx context.Context, r io.Reader, w io.Writer, pid, comm string) (uint64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)

	var lines, written uint64
	for sc.Scan() {
		lines++
		if lines%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return written, err
			}
		}
		rec, ok := ParseLine(sc.Text())
		if !ok || rec.Pid == "" || rec.Pid != pid {
			continue
		}
		if comm != "" && rec.Comm != comm {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s: %s: %s\n", rec.TimeRaw, rec.Event, rec.AddrHex); err != nil {
			return written, err
		}
		written++
	}
	if err := sc.Err(); err != nil {
		return written, err
	}
	return written, bw.Flush()
}

// TimeSpan returns the first and last time of records for event.
func TimeSpan(r io.Reader, event string) (tmin, tmax float64, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	seen := false
	for sc.Scan() {
		rec, ok := ParseLine(sc.Text())
		if !ok || rec.Event != event {
			continue
		}
		if !seen || rec.Time < tmin {
			tmin = rec.Time
		}
		if !seen || rec.Time > tmax {
			tmax = rec.Time
		}
		seen = true
	}
	if err := sc.Err(); err != nil {
		return 0, 0, err
	}
	if !seen || tmax <= tmin {
		return 0, 0, fmt.Errorf("%w for event %q", ErrNoTimeSpan, event)
	}
	return tmin, tmax, nil
}

// Rescale maps every record time onto [0, targetSpan] using the span of the
// given event: t' = (t - tmin) * targetSpan / (tmax - tmin). Lines that are
// not records pass through unchanged.
func Rescale(path string, w io.Writer, event string, targetSpan float64) (float64, error) {
	if !(targetSpan > 0) {
		return 0, fmt.Errorf("target span must be > 0, got %g", targetSpan)
	}

	in, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	tmin, tmax, err := TimeSpan(in, event)
	if err != nil {
		return 0, err
	}
	scale := targetSpan / (tmax - tmin)

	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)
	for sc.Scan() {
		line := sc.Text()
		rec, ok := ParseLine(line)
		if !ok {
			fmt.Fprintln(bw, line)
			continue
		}
		if rec.Pid != "" {
			fmt.Fprintf(bw, "%s %s ", rec.Comm, rec.Pid)
		}
		fmt.Fprintf(bw, "%.6f:  %s:\t%s\n", (rec.Time-tmin)*scale, rec.Event, rec.AddrHex)
	}
	if err := sc.Err(); err != nil {
		return scale, err
	}
	return scale, bw.Flush()
}
