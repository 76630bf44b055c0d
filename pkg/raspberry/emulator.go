package raspberry

import (
	"fmt"
	"sync"
	"time"

	"github.com/womat/debug"

	"rcswitch/pkg/port"
	"rcswitch/pkg/rcswitch"
)

// Emulator is a chip without hardware. Its lines receive a transmission of a code word in every interval,
// only for testing without a receiver.
type Emulator struct {
	tx         rcswitch.Transmitter
	code       string
	interval   time.Duration
	samplerate int64

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewEmulator creates an emulated chip. pulse is the pulse length of the transmitter.
func NewEmulator(code string, pulse time.Duration, repeat int, interval time.Duration, samplerate int64) (*Emulator, error) {
	if samplerate <= 0 || interval <= 0 {
		return nil, fmt.Errorf("%w: samplerate %d, interval %v", ErrInvalidParam, samplerate, interval)
	}

	e := &Emulator{
		tx: rcswitch.Transmitter{
			Protocol: rcswitch.Protocol1,
			Pulse:    port.Samples(pulse, samplerate),
			Repeat:   repeat,
		},
		code:       code,
		interval:   interval,
		samplerate: samplerate,
		quit:       make(chan struct{}),
	}

	// check the code word once, run() can't report errors
	if _, _, err := e.tx.Edges(0, code); err != nil {
		return nil, err
	}
	return e, nil
}

// NewLine starts the emulation of a line, the gpio, terminator and debounce parameters are ignored.
func (e *Emulator) NewLine(gpio int, _ string, _ time.Duration) (*Line, error) {
	line := newLine(e.samplerate)
	stop := make(chan struct{})

	e.wg.Add(1)
	go e.run(line, stop)

	line.release = func() error {
		close(stop)
		return nil
	}

	debug.InfoLog.Printf("emulate code word %s on gpio %d every %v", e.code, gpio, e.interval)
	return line, nil
}

// Close stops all emulated lines.
func (e *Emulator) Close() error {
	close(e.quit)
	e.wg.Wait()
	return nil
}

// run sends the events of a transmission in every interval.
// The next transmission completes the sync of the previous one.
func (e *Emulator) run(line *Line, stop chan struct{}) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	gap := port.Samples(e.interval, e.samplerate)
	var pos int64

	for {
		edges, next, _ := e.tx.Edges(pos, e.code)
		for _, edge := range edges {
			evt := port.Event{Timestamp: port.Duration(edge.Sample, e.samplerate), Type: port.FallingEdge}
			if edge.Level {
				evt.Type = port.RisingEdge
			}
			line.send(evt)
		}
		pos = next + gap

		select {
		case <-e.quit:
			return
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
