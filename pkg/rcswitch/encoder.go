package rcswitch

import (
	"fmt"

	"rcswitch/pkg/port"
)

// HighLow is the number of pulses of the active and the inactive half of a bit.
type HighLow struct {
	High, Low int64
}

// Protocol defines the pulse ratios of a bit.
type Protocol struct {
	Zero, One, Sync HighLow
}

// Protocol1 is the default protocol of most remotes (PT2262 and compatibles).
var Protocol1 = Protocol{
	Zero: HighLow{High: 1, Low: 3},
	One:  HighLow{High: 3, Low: 1},
	Sync: HighLow{High: 1, Low: 31},
}

// Transmitter generates the edges of a code word, the inverse function of the decoder.
type Transmitter struct {
	Protocol Protocol
	// Pulse is the length of one pulse in samples.
	Pulse    int64
	Polarity Polarity
	// Repeat is the number of transmissions, at least one is sent.
	Repeat   int
}

// Edges returns the edges of the tri-state code word, starting at sample start.
// Each transmission is the code word followed by a sync. The sync is completed by the next
// active edge, which is expected at sample next (e.g. the start of the next transmission).
func (t Transmitter) Edges(start int64, code string) (edges []port.Edge, next int64, err error) {
	if t.Pulse <= 0 {
		return nil, start, fmt.Errorf("%w: pulse length %d", ErrInvalidOption, t.Pulse)
	}

	bits := make([]HighLow, 0, len(code)*2+1)
	for _, c := range code {
		switch c {
		case '0':
			bits = append(bits, t.Protocol.Zero, t.Protocol.Zero)
		case '1':
			bits = append(bits, t.Protocol.One, t.Protocol.One)
		case 'F', 'f':
			bits = append(bits, t.Protocol.Zero, t.Protocol.One)
		case 'X', 'x':
			bits = append(bits, t.Protocol.One, t.Protocol.Zero)
		default:
			return nil, start, fmt.Errorf("%w: %q", ErrInvalidCode, code)
		}
	}
	bits = append(bits, t.Protocol.Sync)

	repeat := t.Repeat
	if repeat < 1 {
		repeat = 1
	}

	active := t.Polarity.Active()
	edges = make([]port.Edge, 0, repeat*len(bits)*2)
	pos := start
	for r := 0; r < repeat; r++ {
		for _, b := range bits {
			edges = append(edges, port.Edge{Sample: pos, Level: active})
			pos += b.High * t.Pulse
			edges = append(edges, port.Edge{Sample: pos, Level: !active})
			pos += b.Low * t.Pulse
		}
	}

	return edges, pos, nil
}

// Frame returns the edges of the tri-state code word followed by the active edge
// which completes the last sync and the inactive edge which returns the line to idle.
func (t Transmitter) Frame(start int64, code string) ([]port.Edge, error) {
	edges, next, err := t.Edges(start, code)
	if err != nil {
		return nil, err
	}

	active := t.Polarity.Active()
	return append(edges, port.Edge{Sample: next, Level: active}, port.Edge{Sample: next + t.Pulse, Level: !active}), nil
}
