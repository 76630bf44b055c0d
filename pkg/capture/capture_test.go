package capture

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/womat/debug"

	"rcswitch/pkg/port"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

func readAll(t *testing.T, src port.Source) []port.Edge {
	t.Helper()

	var edges []port.Edge
	for {
		e, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return edges
		}
		if err != nil {
			t.Fatalf("Next(): %v", err)
		}
		edges = append(edges, e)
	}
}

func TestReader(t *testing.T) {
	const capture = `# recorded on gpio 17
# samplerate=1000000

0,1
350,0
1400,1
1400,1
2450,0
`

	r := NewReader(strings.NewReader(capture))
	if r.Samplerate() != 1_000_000 {
		t.Errorf("Samplerate() = %d, want 1000000", r.Samplerate())
	}

	edges := readAll(t, r)
	want := []port.Edge{{Sample: 0, Level: true}, {Sample: 350, Level: false}, {Sample: 1400, Level: true}, {Sample: 2450, Level: false}}
	if len(edges) != len(want) {
		t.Fatalf("got %d edges, want %d: %+v", len(edges), len(want), edges)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d = %+v, want %+v", i, edges[i], want[i])
		}
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		capture string
		want    error
	}{
		{"missing level", "0,1\n100\n", ErrInvalidLine},
		{"invalid level", "0,1\n100,2\n", ErrInvalidLine},
		{"invalid sample", "x,1\n", ErrInvalidLine},
		{"out of order", "100,1\n50,0\n", ErrOutOfOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.capture))

			var err error
			for err == nil {
				_, err = r.Next(context.Background())
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmptyCapture(t *testing.T) {
	r := NewReader(strings.NewReader("# samplerate=8000000\n"))
	if r.Samplerate() != 8_000_000 {
		t.Errorf("Samplerate() = %d", r.Samplerate())
	}
	if _, err := r.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("Next() = %v, want io.EOF", err)
	}
}

func TestRoundTrip(t *testing.T) {
	edges := []port.Edge{{Sample: 1000, Level: true}, {Sample: 1350, Level: false}, {Sample: 2400, Level: true}, {Sample: 3450, Level: false}, {Sample: 3800, Level: true}}

	for _, name := range []string{"edges.csv", "edges.csv.gz", "edges.csv.zst"} {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), name)

			w, err := Create(file, 2_000_000)
			if err != nil {
				t.Fatalf("Create(): %v", err)
			}
			for _, e := range edges {
				if err := w.Write(e); err != nil {
					t.Fatalf("Write(): %v", err)
				}
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close(): %v", err)
			}

			r, err := Open(file)
			if err != nil {
				t.Fatalf("Open(): %v", err)
			}
			defer func() { _ = r.Close() }()

			if r.Samplerate() != 2_000_000 {
				t.Errorf("Samplerate() = %d, want 2000000", r.Samplerate())
			}

			got := readAll(t, r)
			if len(got) != len(edges) {
				t.Fatalf("got %d edges, want %d", len(got), len(edges))
			}
			for i := range edges {
				if got[i] != edges[i] {
					t.Errorf("edge %d = %+v, want %+v", i, got[i], edges[i])
				}
			}
		})
	}
}
