package rcswitch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/womat/debug"

	"rcswitch/pkg/port"
)

// Stats are the counters of a session.
type Stats struct {
	Edges     uint64 `json:"edges"`
	Bits      uint64 `json:"bits"`
	Discarded uint64 `json:"discarded"`
	Syncs     uint64 `json:"syncs"`
	Words     uint64 `json:"words"`
	Malformed uint64 `json:"malformed"`
}

// Session is one decode session. A session must be driven by one goroutine,
// only Stats may be called concurrently.
type Session struct {
	// ID identifies the session in logs and published messages.
	ID uuid.UUID

	samplerate int64
	opts       Options
	classifier classifier

	// word holds the bits received since the last sync.
	word []Bit

	edges, bits, discarded, syncs, words, malformed atomic.Uint64
}

// NewSession creates a decode session. The samplerate (Hz) is mandatory.
func NewSession(samplerate int64, opts Options) (*Session, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	s := &Session{
		ID:   uuid.New(),
		opts: opts,
		classifier: classifier{
			active:       opts.Polarity.Active(),
			minSyncRatio: int64(opts.MinSyncRatio),
		},
	}

	if err := s.SetSamplerate(samplerate); err != nil {
		return nil, err
	}
	return s, nil
}

// SetSamplerate changes the samplerate and recalculates the minimum bit length.
func (s *Session) SetSamplerate(samplerate int64) error {
	if samplerate <= 0 {
		return fmt.Errorf("%w (%d)", ErrSamplerate, samplerate)
	}

	s.samplerate = samplerate
	s.classifier.minimumBitLength = minimumBitLength(samplerate, s.opts.MinPulseLength)
	debug.DebugLog.Printf("session %v: samplerate %d Hz, minimum bit length %d samples",
		s.ID, samplerate, s.classifier.minimumBitLength)
	return nil
}

// Samplerate returns the samplerate of the session in Hz.
func (s *Session) Samplerate() int64 {
	return s.samplerate
}

// MinimumBitLength returns the length in samples a bit-pair has to exceed.
func (s *Session) MinimumBitLength() int64 {
	return s.classifier.minimumBitLength
}

// Options returns the decoder options of the session.
func (s *Session) Options() Options {
	return s.opts
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		Edges:     s.edges.Load(),
		Bits:      s.bits.Load(),
		Discarded: s.discarded.Load(),
		Syncs:     s.syncs.Load(),
		Words:     s.words.Load(),
		Malformed: s.malformed.Load(),
	}
}

// Decode reads edges from src until it is exhausted (returns nil) or ctx is done (returns ctx.Err()).
// A partially received word is dropped.
func (s *Session) Decode(ctx context.Context, src port.Source, sink Sink) error {
	for {
		e, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				debug.DebugLog.Printf("session %v: end of edge stream, %d bits pending", s.ID, len(s.word))
				return nil
			}
			return err
		}

		s.Feed(e, sink)
	}
}

// Feed handles one edge. If the edge completes a word, the word is sent to sink before Feed returns.
func (s *Session) Feed(e port.Edge, sink Sink) {
	s.edges.Add(1)

	var prev *Bit
	if len(s.word) > 0 {
		prev = &s.word[len(s.word)-1]
	}

	b, o := s.classifier.classify(e, prev)
	switch o {
	case pending:
		return
	case discarded:
		s.discarded.Add(1)
		return
	}

	s.word = append(s.word, b)

	if b.Value != Sync {
		s.bits.Add(1)
		sink.Annotate(Annotation{Start: b.Start, End: b.End, Category: CategoryBit, Texts: []string{b.Value.String()}})
		return
	}

	s.syncs.Add(1)
	sink.Annotate(Annotation{Start: b.Start, End: b.End, Category: CategorySync, Texts: []string{"SYNC", "SYN", "S"}})
	s.complete(sink)
}

// complete handles the received word after a sync and clears it.
func (s *Session) complete(sink Sink) {
	word := s.word
	s.word = nil

	w := Word{
		Start:  word[0].Start,
		End:    word[len(word)-1].End,
		Bits:   word,
		Timing: AggregateTiming(word, s.samplerate),
	}
	sink.Annotate(Annotation{Start: w.Start, End: w.End, Category: CategoryTiming, Texts: []string{w.Timing.String()}})

	w.Code, w.Symbols, w.Valid = AssembleTris(word)
	if !w.Valid {
		s.malformed.Add(1)
		debug.TraceLog.Printf("session %v: drop word with %d bits", s.ID, len(word)-1)
		sink.Word(w)
		return
	}

	for _, sym := range w.Symbols {
		sink.Annotate(Annotation{Start: sym.Start, End: sym.End, Category: CategoryTri, Texts: []string{string(sym.Value)}})
	}
	sink.Annotate(Annotation{Start: w.Start, End: w.End, Category: CategoryData,
		Texts: []string{"Code Word: " + w.Code, "CW: " + w.Code, "CW"}})

	s.words.Add(1)
	debug.DebugLog.Printf("session %v: code word %s (%v)", s.ID, w.Code, w.Timing)
	sink.Word(w)
}
