//go:build linux

package raspberry

import (
	"fmt"
	"time"

	"github.com/warthog618/gpiod"

	"rcswitch/pkg/port"
)

// gpiodChip is a GPIO character device, the line events are timestamped by the kernel.
type gpiodChip struct {
	chip       *gpiod.Chip
	samplerate int64
}

func openGpiod(name string, samplerate int64) (Chip, error) {
	if name == "" {
		name = "gpiochip0"
	}

	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &gpiodChip{chip: c, samplerate: samplerate}, nil
}

// NewLine requests control of a single line on the chip.
// If granted, control is maintained until the Line is closed.
// Debouncing is done by the kernel.
func (c *gpiodChip) NewLine(gpio int, terminator string, debounce time.Duration) (*Line, error) {
	line := newLine(c.samplerate)

	handler := func(evt gpiod.LineEvent) {
		switch evt.Type {
		case gpiod.LineEventRisingEdge:
			line.send(port.Event{Type: port.RisingEdge, Timestamp: evt.Timestamp})
		case gpiod.LineEventFallingEdge:
			line.send(port.Event{Type: port.FallingEdge, Timestamp: evt.Timestamp})
		}
	}

	opts := []gpiod.LineReqOption{gpiod.WithEventHandler(handler), gpiod.WithBothEdges, gpiod.AsInput}

	switch terminator {
	case "pullup":
		opts = append(opts, gpiod.WithPullUp)
	case "pulldown":
		opts = append(opts, gpiod.WithPullDown)
	case "none", "":
	default:
		return nil, fmt.Errorf("%w: terminator %q", ErrInvalidParam, terminator)
	}

	if debounce > 0 {
		opts = append(opts, gpiod.WithDebounce(debounce))
	}

	l, err := c.chip.RequestLine(gpio, opts...)
	if err != nil {
		return nil, err
	}

	line.release = l.Close
	return line, nil
}

// Close releases the chip.
//
// It does not release any lines which may be requested - they must be closed independently.
func (c *gpiodChip) Close() error {
	return c.chip.Close()
}
