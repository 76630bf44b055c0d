package app

import (
	"context"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/womat/debug"

	"rcswitch/pkg/app/config"
	"rcswitch/pkg/mqtt"
	"rcswitch/pkg/raspberry"
	"rcswitch/pkg/rcswitch"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// chip is the handler to the gpio chip, line is the watched gpio line
	chip raspberry.Chip
	line *raspberry.Line

	// session is the rc switch decoder
	session *rcswitch.Session

	// history holds the last decoded code words
	history *history

	// registry holds the prometheus metrics
	registry *prometheus.Registry
	metrics  *metrics

	// started is the start time of the application
	started time.Time

	// cancel stops the decoder
	cancel context.CancelFunc
	// shutdown signals that the decoder has stopped
	shutdown chan struct{}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:     mqtt.New(),
		history:  newHistory(historySize),
		registry: prometheus.NewRegistry(),

		started:  time.Now(),
		shutdown: make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	go app.mqtt.Service()
	go app.runWebServer()
	go app.decode(ctx)

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	if app.session, err = rcswitch.NewSession(app.config.Samplerate, app.config.Decoder.Options); err != nil {
		debug.FatalLog.Printf("can't start decoder: %v", err)
		return err
	}

	if app.chip, err = OpenChip(app.config); err != nil {
		debug.ErrorLog.Printf("can't open gpio: %v", err)
		return err
	}

	if app.line, err = app.chip.NewLine(app.config.Gpio, app.config.Terminator, app.config.BounceTime); err != nil {
		debug.ErrorLog.Printf("can't open gpio %v: %v", app.config.Gpio, err)
		return err
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection, app.config.MQTT.ClientID); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	app.metrics = newMetrics(app.registry, app.session)

	// initDefaultRoutes should be always called last because it may access things like app.session
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// OpenChip opens the configured gpio driver or the emulator.
func OpenChip(cfg *config.Config) (raspberry.Chip, error) {
	if cfg.Driver != "emulator" {
		return raspberry.Open(cfg.Driver, cfg.Chip, cfg.Samplerate)
	}

	e := cfg.Emulator
	chip, err := raspberry.NewEmulator(e.Code, e.Pulse, e.Repeat, e.Interval, cfg.Samplerate)
	if err != nil {
		return nil, err
	}
	return chip, nil
}

// Shutdown returns the read only shutdown channel.
// Shutdown is closed if the decoder has stopped. (see cmd/rcswitch.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// Close stops the decoder and releases all resources.
func (app *App) Close() error {
	if app.cancel != nil {
		app.cancel()
		<-app.shutdown
	}

	if app.line != nil {
		_ = app.line.Close()
	}
	if app.chip != nil {
		_ = app.chip.Close()
	}
	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}
	if app.web != nil {
		_ = app.web.Shutdown()
	}
	return nil
}
