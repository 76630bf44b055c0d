package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"

	"rcswitch/pkg/app"
	"rcswitch/pkg/app/config"
	"rcswitch/pkg/capture"
	"rcswitch/pkg/port"
)

// recordCommand records the edges of the configured gpio to a capture file.
func recordCommand(cfg *config.Config) *cli.Command {
	var (
		file     string
		duration time.Duration
	)

	return &cli.Command{
		Name:      "record",
		Usage:     "record the edges of the gpio to a capture file",
		UsageText: "rcswitch record --file <capture> [--duration <duration>]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Destination: &file, Required: true, Usage: "write the edges to `FILE` (.csv, .csv.gz, .csv.zst)"},
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Destination: &duration, Value: 10 * time.Second, Usage: "stop recording after `DURATION`"},
		},
		Action: func(ctx *cli.Context) error {
			if err := loadConfig(ctx, cfg, false); err != nil {
				return err
			}
			defer closeLog(cfg)

			chip, err := app.OpenChip(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = chip.Close() }()

			line, err := chip.NewLine(cfg.Gpio, cfg.Terminator, cfg.BounceTime)
			if err != nil {
				return err
			}
			defer func() { _ = line.Close() }()

			c, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			c, cancelTimeout := context.WithTimeout(c, duration)
			defer cancelTimeout()

			debug.InfoLog.Printf("recording gpio %d for %v to %s", cfg.Gpio, duration, file)
			n, err := record(c, line, file, cfg.Samplerate)
			debug.InfoLog.Printf("%d edges recorded", n)
			return err
		},
	}
}

// record writes the edges of src to the capture file name until ctx is done or src is exhausted.
func record(ctx context.Context, src port.Source, name string, samplerate int64) (n int, err error) {
	w, err := capture.Create(name, samplerate)
	if err != nil {
		return 0, err
	}
	defer func() {
		if e := w.Close(); e != nil && err == nil {
			err = e
		}
	}()

	for {
		e, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}

		if err = w.Write(e); err != nil {
			return n, err
		}
		n++
	}
}
