package app

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"irdad/pkg/app/config"
	"irdad/pkg/irda"
	"irdad/pkg/mqtt"
	"irdad/pkg/protocol"
	"irdad/pkg/raspberry"
	"irdad/pkg/receiver"
	"irdad/pkg/transmitter"
)

// ErrNoTransmitter is returned for send requests if no IR LED is configured.
var ErrNoTransmitter = errors.New("no transmitter configured")

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

	// chip and line are the gpio handlers of the IR receiver
	chip *raspberry.Chip
	line *raspberry.Line
	// output drives the IR LED, nil if no transmitter is configured
	output *raspberry.Output

	// receiver decodes the edges of line
	receiver *receiver.Handler
	// transmitter sends to output, nil if no transmitter is configured
	transmitter *transmitter.Handler

	// history holds the recent signals
	history *history
}

// New checks the Web server URL and the protocols and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return nil, err
	}

	protocols, err := lookupProtocols(config.Receiver.Protocols)
	if err != nil {
		debug.ErrorLog.Printf("Error in protocols: %v", err)
		return nil, err
	}

	r, err := receiver.New(receiver.Config{
		Protocols:  protocols,
		Timeout:    config.Receiver.Timeout,
		MaxTimings: config.Receiver.MaxTimings,
		ActiveLow:  config.Gpio.ActiveLow,
	})
	if err != nil {
		debug.ErrorLog.Printf("Error creating receiver: %v", err)
		return nil, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:     mqtt.New(),
		receiver: r,
		history:  newHistory(config.Receiver.History),
	}, nil
}

// lookupProtocols returns the specs of the protocol families in names, all if names is empty.
// A family listed twice is decoded once.
func lookupProtocols(names []string) ([]*irda.Spec, error) {
	if len(names) == 0 {
		return protocol.All(), nil
	}

	var specs []*irda.Spec
	seen := map[*irda.Spec]bool{}
	for _, n := range names {
		s, err := protocol.Lookup(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		if !seen[s] {
			seen[s] = true
			specs = append(specs, s)
		}
	}
	return specs, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	go app.service()

	app.receiver.Start(app.line.C)
	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	c := app.config

	if app.chip, err = raspberry.Open(c.Gpio.Chip); err != nil {
		debug.ErrorLog.Printf("can't open gpio chip %q: %v", c.Gpio.Chip, err)
		return err
	}

	if app.line, err = app.chip.NewLine(c.Gpio.Rx, c.Gpio.Terminator); err != nil {
		debug.ErrorLog.Printf("can't open line %v: %v", c.Gpio.Rx, err)
		return err
	}

	if c.Gpio.Tx >= 0 {
		if app.output, err = raspberry.OpenOutput(c.Gpio.Tx, c.Gpio.Modulate); err != nil {
			debug.ErrorLog.Printf("can't open output pin %v: %v", c.Gpio.Tx, err)
			return err
		}
		app.transmitter = transmitter.New(app.output)
	}

	if err = app.mqtt.Connect(c.MQTT.Connection, c.MQTT.ClientID); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	if c.MQTT.Connection != "" && c.MQTT.Topic != "" && app.transmitter != nil {
		if err = app.mqtt.Subscribe(c.MQTT.Topic+"/send", app.onMQTTSend); err != nil {
			debug.ErrorLog.Printf("can't subscribe to %v/send: %v", c.MQTT.Topic, err)
			return err
		}
	}

	// initDefaultRoutes should be always called last because it accesses the handlers
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// Close stops receiving and releases the gpio lines and the mqtt broker.
func (app *App) Close() error {
	_ = app.receiver.Close()

	if app.line != nil {
		_ = app.line.Close()
	}
	if app.chip != nil {
		_ = app.chip.Close()
	}
	if app.output != nil {
		_ = app.output.Close()
	}

	_ = app.mqtt.Disconnect()
	return app.web.Shutdown()
}
