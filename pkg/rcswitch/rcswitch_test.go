package rcswitch

import (
	"errors"
	"os"
	"testing"

	"github.com/womat/debug"

	"rcswitch/pkg/port"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

// pulses returns the edges of consecutive bit-pairs given as active/inactive lengths in samples,
// followed by the active edge which completes the last pair.
func pulses(start int64, active bool, halves ...int64) []port.Edge {
	var edges []port.Edge
	pos := start
	for i, h := range halves {
		edges = append(edges, port.Edge{Sample: pos, Level: (i%2 == 0) == active})
		pos += h
	}
	return append(edges, port.Edge{Sample: pos, Level: active})
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.5, "1.500 s"},
		{0.0025, "2.500 ms"},
		{0.0000015, "1.500 µs"},
		{0.0000000015, "1.500 ns"},
		{-0.0025, "-2.500 ms"},
		{-2, "-2.000 s"},
		{0, "0.000000"},
		{1e-12, "0.000000"},
	}

	for _, tt := range tests {
		if got := NormalizeTime(tt.in); got != tt.want {
			t.Errorf("NormalizeTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePolarity(t *testing.T) {
	if p, err := ParsePolarity("active-low"); err != nil || p != ActiveLow {
		t.Errorf("ParsePolarity(active-low) = %v, %v", p, err)
	}
	if p, err := ParsePolarity("active-high"); err != nil || p != ActiveHigh {
		t.Errorf("ParsePolarity(active-high) = %v, %v", p, err)
	}
	if _, err := ParsePolarity("both"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("ParsePolarity(both) error = %v, want ErrInvalidOption", err)
	}
}

func TestTriState(t *testing.T) {
	tests := []struct {
		a, b BitValue
		want byte
	}{
		{Zero, Zero, '0'},
		{One, One, '1'},
		{Zero, One, 'F'},
		{One, Zero, 'X'},
	}

	for _, tt := range tests {
		if got := TriState(tt.a, tt.b); got != tt.want {
			t.Errorf("TriState(%v, %v) = %c, want %c", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAssembleTris(t *testing.T) {
	word := []Bit{
		{Start: 0, End: 10, Value: Zero},
		{Start: 10, End: 20, Value: Zero},
		{Start: 20, End: 30, Value: One},
		{Start: 30, End: 40, Value: One},
		{Start: 40, End: 200, Value: Sync},
	}

	code, symbols, ok := AssembleTris(word)
	if !ok || code != "01" {
		t.Fatalf("AssembleTris() = %q, %v, want \"01\", true", code, ok)
	}
	want := []Symbol{{Start: 0, End: 20, Value: '0'}, {Start: 20, End: 40, Value: '1'}}
	if len(symbols) != len(want) {
		t.Fatalf("got %d symbols, want %d", len(symbols), len(want))
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Errorf("symbol %d = %+v, want %+v", i, symbols[i], want[i])
		}
	}

	if _, _, ok := AssembleTris(word[1:]); ok {
		t.Error("word with odd bit count must not be assembled")
	}
	if code, _, ok := AssembleTris(word[4:]); !ok || code != "" {
		t.Errorf("sync only word = %q, %v, want \"\", true", code, ok)
	}
	if _, _, ok := AssembleTris(nil); ok {
		t.Error("empty word must not be assembled")
	}
}

func TestAggregateTiming(t *testing.T) {
	tests := []struct {
		name string
		word []Bit
		want string
	}{
		{
			name: "zeros and ones",
			word: []Bit{
				{Start: 0, End: 1000, Value: Zero},
				{Start: 1000, End: 2400, Value: Zero},
				{Start: 2400, End: 3600, Value: One},
				{Start: 3600, End: 13200, Value: Sync},
			},
			want: "0:1.200 ms, 1:1.200 ms, S:9.600 ms",
		},
		{
			name: "only zeros",
			word: []Bit{
				{Start: 0, End: 1500, Value: Zero},
				{Start: 1500, End: 3000, Value: Sync},
			},
			want: "0:1.500 ms, S:1.500 ms",
		},
		{
			name: "only ones",
			word: []Bit{
				{Start: 0, End: 800, Value: One},
				{Start: 800, End: 1800, Value: One},
				{Start: 1800, End: 2_001_800, Value: Sync},
			},
			want: "1:900.000 µs, S:2.000 s",
		},
		{
			name: "only sync",
			word: []Bit{{Start: 0, End: 9600, Value: Sync}},
			want: "S:9.600 ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateTiming(tt.word, 1_000_000).String(); got != tt.want {
				t.Errorf("timing = %q, want %q", got, tt.want)
			}
		})
	}
}
