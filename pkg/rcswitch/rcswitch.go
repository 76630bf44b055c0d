// Package rcswitch is a software decoder for the RC Switch family of 433MHz fixed code remotes.
//
// A transmitted bit is an active pulse followed by an inactive pause. The ratio between both halves
// gives the bit value, a pause much longer than the previous bit terminates a code word (sync).
// Two bits form one tri-state symbol:
//  0 0 -> '0'
//  1 1 -> '1'
//  0 1 -> 'F'
//  1 0 -> 'X'
// https://github.com/sui77/rc-switch
package rcswitch

import (
	"errors"
	"fmt"
)

var (
	// ErrSamplerate is returned if a session is started without a valid samplerate.
	ErrSamplerate = errors.New("cannot decode without samplerate")
	// ErrInvalidOption is returned for an invalid decoder option.
	ErrInvalidOption = errors.New("invalid decoder option")
	// ErrInvalidCode is returned if a code word contains other symbols than 0, 1, F and X.
	ErrInvalidCode = errors.New("invalid tri-state code word")
)

// BitValue is the classification of a bit-pair.
type BitValue int

const (
	// Zero is a short active pulse followed by a long pause.
	Zero BitValue = iota
	// One is a long active pulse followed by a short pause.
	One
	// Sync is a bit-pair much longer than the previous bit, it terminates a code word.
	Sync
)

func (v BitValue) String() string {
	switch v {
	case Zero:
		return "0"
	case One:
		return "1"
	case Sync:
		return "S"
	default:
		return fmt.Sprintf("BitValue(%d)", int(v))
	}
}

// Bit is a classified bit-pair between sample Start and End.
type Bit struct {
	Start int64    `json:"start"`
	End   int64    `json:"end"`
	Value BitValue `json:"value"`
}

// Samples returns the duration of the bit in samples.
func (b Bit) Samples() int64 {
	return b.End - b.Start
}

// Polarity defines the line level of an active pulse.
type Polarity int

const (
	ActiveHigh Polarity = iota
	ActiveLow
)

// ParsePolarity parses "active-high" and "active-low".
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "active-high", "":
		return ActiveHigh, nil
	case "active-low":
		return ActiveLow, nil
	default:
		return ActiveHigh, fmt.Errorf("%w: polarity %q", ErrInvalidOption, s)
	}
}

func (p Polarity) String() string {
	if p == ActiveLow {
		return "active-low"
	}
	return "active-high"
}

// Active returns the line level of an active pulse.
func (p Polarity) Active() bool {
	return p == ActiveHigh
}

// Options are the decoder options, they can't be changed while a session is running.
type Options struct {
	// Polarity is the level of an active pulse.
	Polarity Polarity
	// MinPulseLength is the minimum length of a bit-pair in µs, shorter pairs are dropped as noise.
	MinPulseLength int
	// MinSyncRatio is the minimum ratio between a sync and the previous bit in percent.
	MinSyncRatio int
}

const (
	DefaultMinPulseLength = 500
	DefaultMinSyncRatio   = 150
)

// DefaultOptions returns the default decoder options.
func DefaultOptions() Options {
	return Options{
		Polarity:       ActiveHigh,
		MinPulseLength: DefaultMinPulseLength,
		MinSyncRatio:   DefaultMinSyncRatio,
	}
}

func (o Options) validate() error {
	if o.MinPulseLength <= 0 {
		return fmt.Errorf("%w: minimum pulse length %d", ErrInvalidOption, o.MinPulseLength)
	}
	if o.MinSyncRatio <= 0 {
		return fmt.Errorf("%w: minimum sync ratio %d", ErrInvalidOption, o.MinSyncRatio)
	}
	if o.Polarity != ActiveHigh && o.Polarity != ActiveLow {
		return fmt.Errorf("%w: polarity %d", ErrInvalidOption, o.Polarity)
	}
	return nil
}
