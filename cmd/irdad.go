package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"

	"irdad/pkg/app"
	"irdad/pkg/app/config"
	"irdad/pkg/irda"
	"irdad/pkg/protocol"
	"irdad/pkg/raspberry"
	"irdad/pkg/receiver"
	"irdad/pkg/transmitter"
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
		Usage:   "infrared remote control receiver and transmitter",
		Version: app.VERSION,
		Description: "Decode the signals of an IR receiver on a gpio line and publish them to mqtt," +
			"\n send IR messages (NEC, Samsung32, SIRC, RC5, Kaseikyo) through an IR LED on a gpio pin.",
		UsageText: "irdad [--config <file>] [--log fatal|info|warning|error|debug|trace] [command]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the daemon and use the configuration file irdad.yaml" +
			"\n\t\tirdad --config /opt/womat/irdad.yaml" +
			"\n\tsend NEC address 0x04 command 0x08 with two repeats" +
			"\n\t\tirdad send --protocol NEC --address 0x04 --command 0x08 --repeat 2",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.LogLevel, Usage: "`LEVEL` defines the log level (fatal|info|warning|error|debug|trace)"},
		},
		Action: func(ctx *cli.Context) error {
			return run(cfg)
		},
		Commands: []*cli.Command{
			{
				Name:  "send",
				Usage: "send a message through the IR LED",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "protocol", Aliases: []string{"p"}, Required: true, Usage: "`NAME` of the protocol, see command protocols"},
					&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Value: "0", Usage: "`ADDRESS` (decimal or 0x hex)"},
					&cli.StringFlag{Name: "command", Aliases: []string{"m"}, Value: "0", Usage: "`COMMAND` (decimal or 0x hex)"},
					&cli.IntFlag{Name: "repeat", Aliases: []string{"r"}, Usage: "`COUNT` of repeats"},
				},
				Action: func(ctx *cli.Context) error {
					return send(ctx, cfg)
				},
			},
			{
				Name:      "decode",
				Usage:     "decode timings (µs, starting with a mark)",
				ArgsUsage: "TIMING...",
				Action: func(ctx *cli.Context) error {
					return decode(ctx.Args().Slice())
				},
			},
			{
				Name:  "protocols",
				Usage: "list the protocols",
				Action: func(ctx *cli.Context) error {
					for _, n := range protocol.Names() {
						fmt.Println(n)
					}
					return nil
				},
			},
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

// loadConfig reads the configuration file and initializes the logging.
// The returned function closes the log file.
func loadConfig(cfg *config.Config) (func(), error) {
	if err := cfg.LoadConfig(); err != nil {
		return nil, err
	}

	debug.SetDebug(cfg.Log.File, cfg.Log.Flag)
	return func() {
		debug.InfoLog.Printf("closing log file %s", cfg.Log.FileString)
		_ = cfg.Log.File.Close()
	}, nil
}

// run starts the daemon and waits for an exit signal.
func run(cfg *config.Config) error {
	closeLog, err := loadConfig(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		debug.InfoLog.Printf("closing app %s", app.Version())
		_ = a.Close()
	}()

	debug.InfoLog.Printf("starting app %s", app.Version())
	if err = a.Run(); err != nil {
		return err
	}

	// capture exit signals to ensure resources are released on exit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	// wait for am os.Interrupt signal (CTRL C)
	sig := <-quit
	debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
	return nil
}

// send sends one message through the configured IR LED.
func send(ctx *cli.Context, cfg *config.Config) error {
	closeLog, err := loadConfig(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.Gpio.Tx < 0 {
		return app.ErrNoTransmitter
	}

	msg := irda.Message{Protocol: ctx.String("protocol")}
	if msg.Address, err = parseUint32(ctx.String("address")); err != nil {
		return fmt.Errorf("address: %w", err)
	}
	if msg.Command, err = parseUint32(ctx.String("command")); err != nil {
		return fmt.Errorf("command: %w", err)
	}

	out, err := raspberry.OpenOutput(cfg.Gpio.Tx, cfg.Gpio.Modulate)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	c, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return transmitter.New(out).Send(c, msg, ctx.Int("repeat"))
}

// decode prints the signals decoded from timings as json lines.
func decode(args []string) error {
	r, err := receiver.New(receiver.Config{Protocols: protocol.All()})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for i, a := range args {
		d, err := parseUint32(a)
		if err != nil {
			return fmt.Errorf("timing %v: %w", i, err)
		}
		if sig, ok := r.Receive(irda.Sample{Level: i%2 == 0, Duration: d}); ok {
			_ = enc.Encode(sig)
		}
	}

	if sig, ok := r.Idle(); ok {
		_ = enc.Encode(sig)
	}
	return nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}
