package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"rcswitch/pkg/port"
)

// Writer writes edges to a capture file.
type Writer struct {
	w       *bufio.Writer
	closers []io.Closer
	buf     []byte
}

// Create creates a capture file, the compression is selected by the file extension.
func Create(name string, samplerate int64) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}

	closers := []io.Closer{f}
	var wr io.Writer = f

	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		z, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd %q: %w", name, err)
		}
		wr = z
		closers = append(closers, z)
	case ".gz":
		z := gzip.NewWriter(f)
		wr = z
		closers = append(closers, z)
	}

	w, err := NewWriter(wr, samplerate)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closers = closers
	return w, nil
}

// NewWriter writes the capture header to wr.
func NewWriter(wr io.Writer, samplerate int64) (*Writer, error) {
	w := &Writer{w: bufio.NewWriter(wr)}
	if samplerate > 0 {
		if _, err := fmt.Fprintf(w.w, "# %s%d\n", samplerateKey, samplerate); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Write appends an edge.
func (w *Writer) Write(e port.Edge) error {
	w.buf = strconv.AppendInt(w.buf[:0], e.Sample, 10)
	if e.Level {
		w.buf = append(w.buf, ",1\n"...)
	} else {
		w.buf = append(w.buf, ",0\n"...)
	}

	_, err := w.w.Write(w.buf)
	return err
}

// Flush writes buffered edges to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes the buffer and closes the compressor and the file.
func (w *Writer) Close() error {
	err := w.w.Flush()
	for i := len(w.closers) - 1; i >= 0; i-- {
		if e := w.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	w.closers = nil
	return err
}
