package main

import (
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"

	"rcswitch/pkg/app"
	"rcswitch/pkg/app/config"
)

const defaultConfigFile = "/opt/womat/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "RC Switch decoder for 433MHz fixed code remotes",
		Version: app.VERSION,
		Description: "Decode the code words of RC Switch remotes (PT2262, EV1527 and compatibles) received by a 433MHz receiver on a gpio" +
			"\n and write the code words to mqtt." +
			"\n The decoder can also decode recorded edge captures.",
		UsageText: "rcswitch [--config <file>] [--log standard|debug|trace] [command]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the decoder and use the configuration file rcswitch.yaml" +
			"\n\t\trcswitch --config /opt/womat/rcswitch.yaml" +
			"\n\tdecode a recorded capture" +
			"\n\t\trcswitch decode --file capture.csv.zst",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.LogLevel, Value: "standard", Usage: "`LEVEL` defines the log level (standard|debug|trace)"},
		},
		Commands: []*cli.Command{
			decodeCommand(cfg),
			recordCommand(cfg),
		},
		Action: func(ctx *cli.Context) error {
			if err := loadConfig(ctx, cfg, true); err != nil {
				return err
			}
			defer closeLog(cfg)

			a, err := app.New(cfg)
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			if err != nil {
				return err
			}

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(); err != nil {
				return err
			}

			// capture exit signals to ensure resources are released on exit.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			// wait for am os.Interrupt signal (CTRL C) or the end of the decoder
			select {
			case sig := <-quit:
				debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
			case <-a.Shutdown():
				debug.ErrorLog.Print("decoder stopped. Aborting...")
			}

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
}

// loadConfig loads the configuration and sets the log level.
// The default configuration file is only needed if required is set, commands can run without.
func loadConfig(ctx *cli.Context, cfg *config.Config, required bool) error {
	if !required && !ctx.IsSet("config") {
		if _, err := os.Stat(cfg.Flag.ConfigFile); err != nil {
			cfg.Flag.ConfigFile = ""
		}
	}

	if err := cfg.LoadConfig(); err != nil {
		return err
	}

	debug.SetDebug(cfg.Log.File, cfg.Log.Flag)
	return nil
}

func closeLog(cfg *config.Config) {
	if cfg.Log.File == os.Stderr || cfg.Log.File == os.Stdout {
		return
	}

	debug.InfoLog.Printf("closing log file %s", cfg.Log.FileString)
	_ = cfg.Log.File.Close()
}
