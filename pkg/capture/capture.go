// Package capture reads and writes edge capture files.
//
// A capture file holds one edge per line as "<sample>,<level>", level is 0 or 1.
// Lines starting with '#' are comments, the header comment "# samplerate=<Hz>" defines the samplerate.
// Files ending with .zst or .gz are compressed.
package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/womat/debug"

	"rcswitch/pkg/port"
)

var (
	ErrInvalidLine = errors.New("invalid capture line")
	ErrOutOfOrder  = errors.New("edge out of order")
)

const samplerateKey = "samplerate="

// Reader reads edges from a capture file.
type Reader struct {
	scanner    *bufio.Scanner
	closers    []io.Closer
	line       int
	samplerate int64

	// pending is the first edge, read ahead while parsing the header.
	pending *port.Edge
	last    port.Edge
	started bool
	err     error
}

// Open opens a capture file, the compression is selected by the file extension.
func Open(name string) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	closers := []io.Closer{f}
	var rd io.Reader = f

	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		z, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd %q: %w", name, err)
		}
		rd = z
		closers = append(closers, closerFunc(func() error { z.Close(); return nil }))
	case ".gz":
		z, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("gzip %q: %w", name, err)
		}
		rd = z
		closers = append(closers, z)
	}

	r := NewReader(rd)
	r.closers = closers
	if r.err != nil && !errors.Is(r.err, io.EOF) {
		_ = r.Close()
		return nil, fmt.Errorf("%q: %w", name, r.err)
	}
	return r, nil
}

// NewReader reads the header of a capture stream.
func NewReader(rd io.Reader) *Reader {
	r := &Reader{scanner: bufio.NewScanner(rd)}
	if e, err := r.scan(); err != nil {
		r.err = err
	} else {
		r.pending = &e
	}
	return r
}

// Samplerate returns the samplerate of the header, 0 if the capture has no samplerate.
func (r *Reader) Samplerate() int64 {
	return r.samplerate
}

// Next returns the next edge of the capture, io.EOF at the end of the capture.
// Consecutive edges with the same level are merged.
func (r *Reader) Next(ctx context.Context) (port.Edge, error) {
	for {
		if err := ctx.Err(); err != nil {
			return port.Edge{}, err
		}

		var e port.Edge
		switch {
		case r.pending != nil:
			e, r.pending = *r.pending, nil
		case r.err != nil:
			return port.Edge{}, r.err
		default:
			var err error
			if e, err = r.scan(); err != nil {
				r.err = err
				return port.Edge{}, err
			}
		}

		if r.started {
			if e.Sample < r.last.Sample {
				r.err = fmt.Errorf("%w: line %d: sample %d < %d", ErrOutOfOrder, r.line, e.Sample, r.last.Sample)
				return port.Edge{}, r.err
			}
			if e.Level == r.last.Level {
				debug.TraceLog.Printf("capture line %d: skip edge without level change", r.line)
				continue
			}
		}

		r.started = true
		r.last = e
		return e, nil
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if e := r.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	r.closers = nil
	return err
}

// scan returns the next edge line, comments are skipped.
func (r *Reader) scan() (port.Edge, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			r.header(strings.TrimSpace(strings.TrimPrefix(line, "#")))
			continue
		}

		return parseLine(line, r.line)
	}

	if err := r.scanner.Err(); err != nil {
		return port.Edge{}, err
	}
	return port.Edge{}, io.EOF
}

// header parses a comment line, unknown comments are ignored.
func (r *Reader) header(s string) {
	if !strings.HasPrefix(s, samplerateKey) {
		return
	}

	v, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(s, samplerateKey)), 10, 64)
	if err != nil {
		debug.ErrorLog.Printf("capture line %d: invalid samplerate: %v", r.line, err)
		return
	}
	r.samplerate = v
}

func parseLine(line string, n int) (port.Edge, error) {
	s, l, ok := strings.Cut(line, ",")
	if !ok {
		return port.Edge{}, fmt.Errorf("%w: line %d: %q", ErrInvalidLine, n, line)
	}

	sample, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return port.Edge{}, fmt.Errorf("%w: line %d: %v", ErrInvalidLine, n, err)
	}

	switch strings.TrimSpace(l) {
	case "0":
		return port.Edge{Sample: sample, Level: false}, nil
	case "1":
		return port.Edge{Sample: sample, Level: true}, nil
	default:
		return port.Edge{}, fmt.Errorf("%w: line %d: level %q", ErrInvalidLine, n, l)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
