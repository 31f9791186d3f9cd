package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Flag        FlagConfig        `yaml:"-"`
	Gpio        GpioConfig        `yaml:"gpio"`
	Receiver    ReceiverConfig    `yaml:"receiver"`
	Transmitter TransmitterConfig `yaml:"transmitter"`
	Log         LogConfig         `yaml:"log"`
	Webserver   WebserverConfig   `yaml:"webserver"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Version    bool
	LogLevel   string
	ConfigFile string
}

// GpioConfig defines the gpio lines of the IR receiver and the IR LED.
type GpioConfig struct {
	// Chip is the gpio character device, e.g. gpiochip0.
	Chip string `yaml:"chip"`
	// Rx is the line offset of the IR receiver.
	Rx int `yaml:"rx"`
	// Terminator of the receiver line: pullup, pulldown or none.
	Terminator string `yaml:"terminator"`
	// ActiveLow is set for receivers pulling the line low on a carrier.
	ActiveLow bool `yaml:"activelow"`
	// Tx is the BCM number of the IR LED pin, a negative number disables the transmitter.
	Tx int `yaml:"tx"`
	// Modulate generates the carrier on the Tx pin, otherwise Tx gates an external carrier.
	Modulate bool `yaml:"modulate"`
}

// ReceiverConfig defines the decoding of received signals.
type ReceiverConfig struct {
	// Protocols are the decoded protocol families, empty decodes all.
	Protocols  []string      `yaml:"protocols"`
	TimeoutInt int           `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
	MaxTimings int           `yaml:"maxtimings"`
	// History is the number of recent signals kept for the data web service.
	History int `yaml:"history"`
}

// TransmitterConfig defines the limits of send requests.
type TransmitterConfig struct {
	MaxRepeats int `yaml:"maxrepeats"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file.
// Received signals are published to Topic, send requests are read from Topic/send.
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	ClientID   string `yaml:"clientid"`
	Topic      string `yaml:"topic"`
}

// LogConfig defines the struct of the debug configuration and configuration file
type LogConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"level"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Flag: FlagConfig{},
		Gpio: GpioConfig{
			Chip:       "gpiochip0",
			Rx:         17,
			Terminator: "pullup",
			ActiveLow:  true,
			Tx:         -1,
		},
		Receiver: ReceiverConfig{
			TimeoutInt: 150,
			MaxTimings: 512,
			History:    20,
		},
		Transmitter: TransmitterConfig{
			MaxRepeats: 20,
		},
		Log: LogConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version":   true,
				"health":    true,
				"data":      true,
				"protocols": true,
				"send":      true,
			},
		},
		MQTT: MQTTConfig{
			ClientID: "irdad",
			Topic:    "irdad",
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Log.FlagString = c.Flag.LogLevel
	}
	if err := c.setLogConfig(); err != nil {
		return fmt.Errorf("unable to set log %q: %w", c.Log.FileString, err)
	}

	if c.Receiver.TimeoutInt <= 0 || c.Receiver.MaxTimings <= 0 || c.Receiver.History < 0 || c.Transmitter.MaxRepeats < 0 {
		return fmt.Errorf("receiver or transmitter limits: %w", ErrInvalidConfig)
	}
	c.Receiver.Timeout = time.Duration(c.Receiver.TimeoutInt) * time.Millisecond

	return nil
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

func (c *Config) setLogConfig() (err error) {
	switch c.Log.FlagString {
	case "trace", "full":
		c.Log.Flag = debug.Full
	case "debug":
		c.Log.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard", "info":
		c.Log.Flag = debug.Standard
	case "warning":
		c.Log.Flag = debug.Warning | debug.Error | debug.Fatal
	case "error":
		c.Log.Flag = debug.Error | debug.Fatal
	case "fatal":
		c.Log.Flag = debug.Fatal
	default:
		return fmt.Errorf("log level %q: %w", c.Log.FlagString, ErrInvalidConfig)
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
