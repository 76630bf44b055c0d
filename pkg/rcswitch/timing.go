package rcswitch

import (
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Timing holds the mean bit durations of a completed word in seconds.
type Timing struct {
	// Zero is the mean duration of the 0-bits, valid if ZeroCount > 0.
	Zero      float64 `json:"zero"`
	ZeroCount int     `json:"zeroCount"`

	// One is the mean duration of the 1-bits, valid if OneCount > 0.
	One      float64 `json:"one"`
	OneCount int     `json:"oneCount"`

	// Sync is the duration of the terminating sync.
	Sync float64 `json:"sync"`
}

// AggregateTiming calculates the timing of a completed word (the last bit is the sync).
func AggregateTiming(word []Bit, samplerate int64) Timing {
	var t Timing
	if len(word) == 0 || samplerate <= 0 {
		return t
	}

	var zeros, ones []float64
	for _, b := range word[:len(word)-1] {
		if b.Value == Zero {
			zeros = append(zeros, float64(b.Samples()))
		} else {
			ones = append(ones, float64(b.Samples()))
		}
	}

	sr := float64(samplerate)
	if t.ZeroCount = len(zeros); t.ZeroCount > 0 {
		t.Zero = stat.Mean(zeros, nil) / sr
	}
	if t.OneCount = len(ones); t.OneCount > 0 {
		t.One = stat.Mean(ones, nil) / sr
	}
	t.Sync = float64(word[len(word)-1].Samples()) / sr

	return t
}

// String returns the timing as "0:<mean0>, 1:<mean1>, S:<sync>".
func (t Timing) String() string {
	s := make([]string, 0, 3)
	if t.ZeroCount > 0 {
		s = append(s, "0:"+NormalizeTime(t.Zero))
	}
	if t.OneCount > 0 {
		s = append(s, "1:"+NormalizeTime(t.One))
	}
	s = append(s, "S:"+NormalizeTime(t.Sync))
	return strings.Join(s, ", ")
}
