package rcswitch

import (
	"sync"
)

// Category is the kind of an annotation.
type Category string

const (
	CategoryBit    Category = "bit"
	CategorySync   Category = "sync"
	CategoryTri    Category = "tri"
	CategoryData   Category = "data"
	CategoryTiming Category = "timing"
)

// Annotation is a decoder output record for the sample range [Start, End).
// Texts holds alternative representations, from long to short.
type Annotation struct {
	Start    int64    `json:"start"`
	End      int64    `json:"end"`
	Category Category `json:"category"`
	Texts    []string `json:"texts"`
}

// Text returns the longest representation.
func (a Annotation) Text() string {
	if len(a.Texts) == 0 {
		return ""
	}
	return a.Texts[0]
}

// Word is a completed code word.
type Word struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`

	// Bits are the classified bits including the terminating sync.
	Bits []Bit `json:"bits"`

	// Code is the tri-state code word, empty if the word is malformed.
	Code    string   `json:"code"`
	Symbols []Symbol `json:"symbols,omitempty"`

	// Valid is false if the word has an odd count of bits.
	Valid bool `json:"valid"`

	Timing Timing `json:"timing"`
}

// Sink receives the decoder output.
type Sink interface {
	// Annotate is called for every annotation in the order they are produced.
	Annotate(a Annotation)
	// Word is called for every completed word, after its annotations.
	Word(w Word)
}

// Recorder is a sink which keeps all decoder output in memory.
type Recorder struct {
	sync.Mutex
	Annotations []Annotation
	Words       []Word
}

func (r *Recorder) Annotate(a Annotation) {
	r.Lock()
	defer r.Unlock()
	r.Annotations = append(r.Annotations, a)
}

func (r *Recorder) Word(w Word) {
	r.Lock()
	defer r.Unlock()
	r.Words = append(r.Words, w)
}

// Filter returns the recorded annotations of category c.
func (r *Recorder) Filter(c Category) []Annotation {
	r.Lock()
	defer r.Unlock()

	var l []Annotation
	for _, a := range r.Annotations {
		if a.Category == c {
			l = append(l, a)
		}
	}
	return l
}

// Codes returns the code words of all valid words.
func (r *Recorder) Codes() []string {
	r.Lock()
	defer r.Unlock()

	var l []string
	for _, w := range r.Words {
		if w.Valid {
			l = append(l, w.Code)
		}
	}
	return l
}
