package rcswitch

import (
	"rcswitch/pkg/port"
)

// outcome is the result of classifying one edge.
type outcome int

const (
	// pending means the edge doesn't complete a bit-pair.
	pending outcome = iota
	// discarded means the completed bit-pair is too short.
	discarded
	// classified means the completed bit-pair is a valid bit.
	classified
)

// classifier measures the pulse durations between edges and classifies completed bit-pairs.
type classifier struct {
	// active is the line level of an active pulse.
	active           bool
	// minSyncRatio is the minimum sync/bit ratio in percent.
	minSyncRatio     int64
	// minimumBitLength is the length of a bit-pair (samples) which has to be exceeded to be valid.
	minimumBitLength int64

	// lastEdge is the sample position of the previous edge.
	lastEdge   int64
	// lastLength is the length of the previous half period (samples).
	lastLength int64
}

// minimumBitLength calculates the minimum bit-pair length in samples.
func minimumBitLength(samplerate int64, minPulseLength int) int64 {
	return samplerate*int64(minPulseLength)/1_000_000 - 1
}

// classify handles one edge. prev is the previous bit of the current word (nil if the word is empty).
// A bit-pair is complete when the line becomes active again: the edge that ends the
// active pulse only stores the pulse length.
func (c *classifier) classify(e port.Edge, prev *Bit) (b Bit, o outcome) {
	length := e.Sample - c.lastEdge

	if e.Level == c.active && c.lastLength != 0 {
		o = discarded
		if bitLength := c.lastLength + length; bitLength > c.minimumBitLength {
			b = Bit{Start: e.Sample - bitLength, End: e.Sample}

			switch {
			case prev != nil && bitLength*100 > prev.Samples()*c.minSyncRatio:
				b.Value = Sync
			case c.lastLength < length:
				b.Value = Zero
			default:
				b.Value = One
			}
			o = classified
		}
	}

	c.lastLength = length
	c.lastEdge = e.Sample
	return b, o
}
