// Package port holds the definition of a physical port and the edges it produces
package port

import (
	"context"
	"io"
	"time"
)

// EventType indicates the type of change to the line level.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates a low to high event.
	RisingEdge
	// FallingEdge indicates a high to low event.
	FallingEdge
)

// Event is a line change as reported by the gpio driver.
type Event struct {
	// Timestamp indicates the time the event was detected.
	Timestamp time.Duration
	// The type of state change event this structure represents.
	Type EventType
}

// Edge is a level transition on a sampled line.
type Edge struct {
	// Sample is the sample position of the transition, the canonical time unit.
	Sample int64
	// Level is the line level after the transition (true = high).
	Level bool
}

// Source delivers edges in non-decreasing sample order.
// Next blocks until an edge is available. It returns io.EOF if the source is exhausted
// and the context error if ctx is done.
type Source interface {
	Next(ctx context.Context) (Edge, error)
}

// Samples converts a duration into a count of samples at the given samplerate (Hz).
func Samples(d time.Duration, samplerate int64) int64 {
	sec := int64(d / time.Second)
	rem := int64(d % time.Second)
	return sec*samplerate + rem*samplerate/int64(time.Second)
}

// Duration converts a count of samples at the given samplerate (Hz) into a duration.
func Duration(samples, samplerate int64) time.Duration {
	if samplerate <= 0 {
		return 0
	}
	sec := samples / samplerate
	rem := samples % samplerate
	return time.Duration(sec)*time.Second + time.Duration(rem*int64(time.Second)/samplerate)
}

// ToEdge converts a line event into an edge relative to origin.
func ToEdge(evt Event, origin time.Duration, samplerate int64) Edge {
	return Edge{
		Sample: Samples(evt.Timestamp-origin, samplerate),
		Level:  evt.Type == RisingEdge,
	}
}

// SliceSource is a Source of a fixed list of edges.
type SliceSource struct {
	edges []Edge
	pos   int
}

// NewSliceSource returns a Source which delivers the given edges and then io.EOF.
func NewSliceSource(edges []Edge) *SliceSource {
	return &SliceSource{edges: edges}
}

// Next returns the next edge of the list.
func (s *SliceSource) Next(ctx context.Context) (Edge, error) {
	if err := ctx.Err(); err != nil {
		return Edge{}, err
	}
	if s.pos >= len(s.edges) {
		return Edge{}, io.EOF
	}

	e := s.edges[s.pos]
	s.pos++
	return e, nil
}
