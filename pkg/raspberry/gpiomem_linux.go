//go:build linux

package raspberry

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/gpio"

	"rcswitch/pkg/port"
)

// gpiomemChip uses the GPIO memory range from /dev/gpiomem.
// The line events are timestamped when the watcher calls the handler, which is less precise than gpiod.
type gpiomemChip struct {
	start      time.Time
	samplerate int64

	pl   sync.Mutex
	pins map[int]*gpio.Pin
}

func openGpiomem(samplerate int64) (Chip, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}

	return &gpiomemChip{
		start:      time.Now(),
		samplerate: samplerate,
		pins:       map[int]*gpio.Pin{},
	}, nil
}

// NewLine creates a new pin object and watches both edges.
// The pin number provided is the BCM GPIO number.
func (c *gpiomemChip) NewLine(p int, terminator string, debounce time.Duration) (*Line, error) {
	c.pl.Lock()
	defer c.pl.Unlock()

	if _, ok := c.pins[p]; ok {
		return nil, fmt.Errorf("pin %v already used", p)
	}

	pin := gpio.NewPin(p)
	pin.Input()

	switch terminator {
	case "pullup":
		pin.PullUp()
	case "pulldown":
		pin.PullDown()
	case "none", "":
		pin.PullNone()
	default:
		return nil, fmt.Errorf("%w: terminator %q", ErrInvalidParam, terminator)
	}

	line := newLine(c.samplerate)
	line.debounce = debounce

	handler := func(pin *gpio.Pin) {
		evt := port.Event{Timestamp: time.Since(c.start), Type: port.FallingEdge}
		if pin.Read() == gpio.High {
			evt.Type = port.RisingEdge
		}
		line.send(evt)
	}

	if err := pin.Watch(gpio.EdgeBoth, handler); err != nil {
		return nil, err
	}

	c.pins[p] = pin
	line.release = func() error {
		pin.Unwatch()

		c.pl.Lock()
		delete(c.pins, p)
		c.pl.Unlock()
		return nil
	}
	return line, nil
}

// Close removes the interrupt handlers and unmaps GPIO memory.
func (c *gpiomemChip) Close() error {
	return gpio.Close()
}
