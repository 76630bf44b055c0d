package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"

	"rcswitch/pkg/app/config"
	"rcswitch/pkg/capture"
	"rcswitch/pkg/rcswitch"
)

// decodeCommand decodes a capture file and prints the code words.
func decodeCommand(cfg *config.Config) *cli.Command {
	var (
		file       string
		samplerate int64
		all        bool
	)

	return &cli.Command{
		Name:      "decode",
		Usage:     "decode a recorded edge capture",
		UsageText: "rcswitch decode --file <capture> [--samplerate <Hz>] [--all]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Destination: &file, Required: true, Usage: "read the edges from `FILE` (.csv, .csv.gz, .csv.zst)"},
			&cli.Int64Flag{Name: "samplerate", Aliases: []string{"s"}, Destination: &samplerate, Usage: "samplerate of the capture in `HZ`, overrides the capture header"},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Destination: &all, Usage: "print all annotations, not only the code words"},
		},
		Action: func(ctx *cli.Context) error {
			if err := loadConfig(ctx, cfg, false); err != nil {
				return err
			}
			defer closeLog(cfg)

			c, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			return decodeFile(c, file, samplerate, cfg.Decoder.Options, all, os.Stdout)
		},
	}
}

// decodeFile decodes the capture file name. The samplerate of the capture header is used, if samplerate is 0.
func decodeFile(ctx context.Context, name string, samplerate int64, opts rcswitch.Options, all bool, w io.Writer) error {
	r, err := capture.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	if samplerate == 0 {
		samplerate = r.Samplerate()
	}

	s, err := rcswitch.NewSession(samplerate, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	p := &printer{w: w, all: all}
	if err = s.Decode(ctx, r, p); err != nil {
		return err
	}

	st := s.Stats()
	debug.InfoLog.Printf("%s: %d edges, %d bits, %d discarded, %d code words, %d malformed words",
		name, st.Edges, st.Bits, st.Discarded, st.Words, st.Malformed)
	return p.err
}

// printer writes the decoder output as text lines.
type printer struct {
	w   io.Writer
	all bool
	err error
}

func (p *printer) Annotate(a rcswitch.Annotation) {
	if p.all {
		p.printf("%d-%d\t%s\t%s\n", a.Start, a.End, a.Category, a.Text())
	}
}

func (p *printer) Word(w rcswitch.Word) {
	if !p.all && w.Valid {
		p.printf("%d-%d\t%s\t%s\n", w.Start, w.End, w.Code, w.Timing)
	}
}

func (p *printer) printf(format string, a ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, a...)
}
