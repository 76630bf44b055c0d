package port

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestSamples(t *testing.T) {
	tests := []struct {
		name       string
		d          time.Duration
		samplerate int64
		want       int64
	}{
		{"one microsecond at 1MHz", time.Microsecond, 1_000_000, 1},
		{"350us at 1MHz", 350 * time.Microsecond, 1_000_000, 350},
		{"one second at 8MHz", time.Second, 8_000_000, 8_000_000},
		{"long uptime does not overflow", 72 * time.Hour, 1_000_000_000, 72 * 3600 * 1_000_000_000},
		{"sub sample is truncated", 999 * time.Nanosecond, 1_000_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Samples(tt.d, tt.samplerate); got != tt.want {
				t.Errorf("Samples(%v, %d) = %d, want %d", tt.d, tt.samplerate, got, tt.want)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(1500, 1_000_000); got != 1500*time.Microsecond {
		t.Errorf("Duration(1500, 1MHz) = %v, want 1.5ms", got)
	}
	if got := Duration(10, 0); got != 0 {
		t.Errorf("Duration with zero samplerate = %v, want 0", got)
	}
}

func TestToEdge(t *testing.T) {
	origin := 5 * time.Second
	e := ToEdge(Event{Timestamp: origin + 300*time.Microsecond, Type: RisingEdge}, origin, 1_000_000)
	if e.Sample != 300 || !e.Level {
		t.Errorf("rising edge = %+v, want {300 true}", e)
	}

	e = ToEdge(Event{Timestamp: origin + time.Millisecond, Type: FallingEdge}, origin, 1_000_000)
	if e.Sample != 1000 || e.Level {
		t.Errorf("falling edge = %+v, want {1000 false}", e)
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]Edge{{Sample: 1, Level: true}, {Sample: 2}})
	ctx := context.Background()

	for i, want := range []int64{1, 2} {
		e, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("Next() #%d: %v", i, err)
		}
		if e.Sample != want {
			t.Errorf("Next() #%d = %d, want %d", i, e.Sample, want)
		}
	}

	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after last edge = %v, want io.EOF", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := NewSliceSource([]Edge{{Sample: 1}}).Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next() with canceled context = %v, want context.Canceled", err)
	}
}
