// Package raspberry is the watcher for gpio ports, it delivers the line changes as edges.
package raspberry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/womat/debug"

	"rcswitch/pkg/port"
)

var (
	ErrInvalidParam = errors.New("invalid parameters")
	ErrUnsupported  = errors.New("gpio driver not supported on this platform")
)

const (
	// consumer is the label of requested lines.
	consumer = "rcswitch"
	// eventBuffer is the number of line events buffered until the decoder reads them.
	eventBuffer = 4096
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip interface {
	// NewLine requests control of a single line and watches it for edge changes.
	// The terminator is pullup, pulldown or none.
	NewLine(gpio int, terminator string, debounce time.Duration) (*Line, error)
	// Close releases the chip. Requested lines must be closed independently.
	Close() error
}

// Open opens a GPIO chip with the driver gpiod (character device) or gpiomem (/dev/gpiomem).
// The timestamps of the line events are converted to samples at samplerate (Hz).
func Open(driver, name string, samplerate int64) (Chip, error) {
	if samplerate <= 0 {
		return nil, fmt.Errorf("%w: samplerate %d", ErrInvalidParam, samplerate)
	}

	switch driver {
	case "gpiod", "":
		return openGpiod(name, samplerate)
	case "gpiomem":
		return openGpiomem(samplerate)
	default:
		return nil, fmt.Errorf("%w: driver %q", ErrInvalidParam, driver)
	}
}

// Line represents a single requested line. It is a port.Source.
type Line struct {
	// C receives the line events.
	C chan port.Event

	samplerate int64
	// debounce drops events which follow the previous event within this duration (software debounce).
	debounce   time.Duration

	rl      sync.Mutex
	closed  bool
	last    port.Event
	started bool

	// origin is the timestamp of the first event read by Next, it's sample position 0.
	origin   time.Duration
	anchored bool

	release func() error
	once    sync.Once
}

func newLine(samplerate int64) *Line {
	return &Line{
		C:          make(chan port.Event, eventBuffer),
		samplerate: samplerate,
		release:    func() error { return nil },
	}
}

// send queues an event, it never blocks the event handler of the driver.
func (l *Line) send(evt port.Event) {
	l.rl.Lock()
	defer l.rl.Unlock()

	if l.closed {
		return
	}

	if l.started {
		if evt.Type == l.last.Type {
			debug.TraceLog.Printf("drop event without level change at %v", evt.Timestamp)
			return
		}
		if l.debounce > 0 && evt.Timestamp-l.last.Timestamp < l.debounce {
			debug.TraceLog.Printf("bounce signal detected at %v", evt.Timestamp)
			return
		}
	}

	select {
	case l.C <- evt:
		l.started = true
		l.last = evt
	default:
		debug.ErrorLog.Println("event buffer overflow, drop line event")
	}
}

// Next returns the next edge. The sample position is relative to the first event of the line.
func (l *Line) Next(ctx context.Context) (port.Edge, error) {
	select {
	case <-ctx.Done():
		return port.Edge{}, ctx.Err()
	case evt, open := <-l.C:
		if !open {
			return port.Edge{}, io.EOF
		}
		if !l.anchored {
			l.origin = evt.Timestamp
			l.anchored = true
		}
		return port.ToEdge(evt, l.origin, l.samplerate), nil
	}
}

// Samplerate returns the samplerate of the edges in Hz.
func (l *Line) Samplerate() int64 {
	return l.samplerate
}

// Close releases all resources held by the requested line and closes C.
//
// Note that this includes waiting for any running event handler to return.
// As a consequence the Close must not be called from the context of the event handler.
func (l *Line) Close() (err error) {
	l.once.Do(func() {
		err = l.release()

		l.rl.Lock()
		l.closed = true
		close(l.C)
		l.rl.Unlock()
	})
	return err
}
