package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"

	"rcswitch/pkg/rcswitch"
)

// Config holds the application configuration.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Gpio          int             `yaml:"gpio"`
	Chip          string          `yaml:"chip"`
	Driver        string          `yaml:"driver"`
	Terminator    string          `yaml:"terminator"`
	BounceTimeInt int             `yaml:"bouncetime"`
	BounceTime    time.Duration   `yaml:"-"`
	Samplerate    int64           `yaml:"samplerate"`
	Decoder       DecoderConfig   `yaml:"decoder"`
	Emulator      EmulatorConfig  `yaml:"emulator"`
	Flag          FlagConfig      `yaml:"-"`
	Log           LogConfig       `yaml:"log"`
	Webserver     WebserverConfig `yaml:"webserver"`
	MQTT          MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	LogLevel   string
	ConfigFile string
}

// DecoderConfig defines the rc switch decoder options.
type DecoderConfig struct {
	Polarity       string           `yaml:"polarity"`
	MinPulseLength int              `yaml:"minpulselength"`
	MinSyncRatio   int              `yaml:"minsyncratio"`
	Options        rcswitch.Options `yaml:"-"`
}

// EmulatorConfig defines the transmission of the emulator driver.
type EmulatorConfig struct {
	Code        string        `yaml:"code"`
	PulseInt    int           `yaml:"pulse"`
	Pulse       time.Duration `yaml:"-"`
	Repeat      int           `yaml:"repeat"`
	IntervalInt int           `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string        `yaml:"connection"`
	ClientID   string        `yaml:"clientid"`
	Topic      string        `yaml:"topic"`
	Retained   bool          `yaml:"retained"`
	// Holdoff suppresses the same code word within this duration (remotes repeat each transmission).
	HoldoffInt int           `yaml:"holdoff"`
	Holdoff    time.Duration `yaml:"-"`
}

// LogConfig defines the struct of the debug configuration and configuration file
type LogConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Gpio:       17,
		Chip:       "gpiochip0",
		Driver:     "gpiod",
		Terminator: "none",
		Samplerate: 1_000_000,
		Decoder: DecoderConfig{
			Polarity:       rcswitch.ActiveHigh.String(),
			MinPulseLength: rcswitch.DefaultMinPulseLength,
			MinSyncRatio:   rcswitch.DefaultMinSyncRatio,
		},
		Emulator: EmulatorConfig{
			Code:        "0FF0F0FFFF0F",
			PulseInt:    350,
			Repeat:      4,
			IntervalInt: 5,
		},
		Flag: FlagConfig{},
		Log: LogConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
				"metrics": true,
			},
		},
		MQTT: MQTTConfig{
			Connection: "",
			ClientID:   "rcswitch",
			Topic:      "rcswitch/code",
			Retained:   false,
			HoldoffInt: 500,
		},
	}
}

// LoadConfig reads the configuration file (if defined) and converts the values.
func (c *Config) LoadConfig() error {
	if c.Flag.ConfigFile != "" {
		if err := c.readConfigFile(); err != nil {
			return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
		}
	}

	if c.Flag.LogLevel != "" {
		c.Log.FlagString = c.Flag.LogLevel
	}
	if err := c.setLogConfig(); err != nil {
		return fmt.Errorf("unable to open log file %q: %w", c.Log.FileString, err)
	}

	return c.convert()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil && err != io.EOF {
		return err
	}

	return nil
}

// convert derives the typed values of the configuration.
func (c *Config) convert() error {
	p, err := rcswitch.ParsePolarity(c.Decoder.Polarity)
	if err != nil {
		return err
	}

	c.Decoder.Options = rcswitch.Options{
		Polarity:       p,
		MinPulseLength: c.Decoder.MinPulseLength,
		MinSyncRatio:   c.Decoder.MinSyncRatio,
	}

	c.BounceTime = time.Duration(c.BounceTimeInt) * time.Microsecond
	c.MQTT.Holdoff = time.Duration(c.MQTT.HoldoffInt) * time.Millisecond
	c.Emulator.Pulse = time.Duration(c.Emulator.PulseInt) * time.Microsecond
	c.Emulator.Interval = time.Duration(c.Emulator.IntervalInt) * time.Second
	return nil
}

func (c *Config) setLogConfig() (err error) {
	// defines log section of global.Config
	switch c.Log.FlagString {
	case "trace", "full":
		c.Log.Flag = debug.Full
	case "debug":
		c.Log.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Log.Flag = debug.Standard
	default:
		return fmt.Errorf("invalid log level %q", c.Log.FlagString)
	}

	switch c.Log.FileString {
	case "stderr":
		c.Log.File = os.Stderr
	case "stdout":
		c.Log.File = os.Stdout
	default:
		if c.Log.File, err = os.OpenFile(c.Log.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
