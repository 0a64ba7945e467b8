// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/rovlink/telebridge/lib/config"
	"github.com/rovlink/telebridge/relay"
	"github.com/rovlink/telebridge/source"
)

// options holds parsed command-line flags.
type options struct {
	flagSet *pflag.FlagSet

	configPath    string
	listenHost    string
	port          int
	device        string
	baudRate      int
	stdin         bool
	verbose       bool
	logFile       string
	logFormat     string
	statusSocket  string
	metricsListen string
	showVersion   bool
	help          bool
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("telebridge", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to a YAML or JSONC config file (default: $TELEBRIDGE_CONFIG)")
	flagSet.StringVar(&opts.listenHost, "listen", "", "address to bind the client listener to (default: all interfaces)")
	flagSet.StringVarP(&opts.device, "device", "d", source.DefaultDevice, "serial device connected to the flight controller")
	flagSet.IntVarP(&opts.baudRate, "baud", "b", source.DefaultBaudRate, "serial baud rate")
	flagSet.BoolVar(&opts.stdin, "stdin", false, "read telemetry from stdin and write commands to stdout instead of a device")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flagSet.StringVar(&opts.logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	flagSet.StringVar(&opts.logFormat, "log-format", "auto", "log format: auto, text, or json")
	flagSet.StringVar(&opts.statusSocket, "status-socket", config.DefaultStatusSocket, "Unix socket for telebridge-status (empty disables)")
	flagSet.StringVar(&opts.metricsListen, "metrics-listen", "", "address for the Prometheus /metrics endpoint (empty disables)")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "show help")
	flagSet.SortFlags = false
	return flagSet
}

// parseOptions parses args (without the program name).
func parseOptions(args []string, output io.Writer) (*options, error) {
	opts := &options{}
	opts.flagSet = newFlagSet(opts)
	opts.flagSet.SetOutput(output)
	if err := opts.flagSet.Parse(args); err != nil {
		return nil, err
	}

	positional := opts.flagSet.Args()
	switch len(positional) {
	case 0:
	case 1:
		port, err := strconv.Atoi(positional[0])
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid port %q: must be a number between 1 and 65535", positional[0])
		}
		opts.port = port
	default:
		return nil, fmt.Errorf("unexpected argument: %s", positional[1])
	}
	return opts, nil
}

// loadConfig builds the effective configuration: the config file (or
// defaults) with explicitly given flags applied on top.
func loadConfig(opts *options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	changed := opts.flagSet.Changed
	if changed("listen") {
		cfg.Listen.Host = opts.listenHost
	}
	if opts.port != 0 {
		cfg.Listen.Port = opts.port
	}
	if changed("device") {
		cfg.Source.Device = opts.device
	}
	if changed("baud") {
		cfg.Source.BaudRate = opts.baudRate
	}
	if opts.stdin {
		cfg.Source.Mode = string(source.ModeStdio)
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	if changed("log-file") {
		cfg.Log.File = opts.logFile
	}
	if changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if changed("status-socket") {
		cfg.Status.Socket = opts.statusSocket
	}
	if changed("metrics-listen") {
		cfg.Metrics.Listen = opts.metricsListen
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// relayConfig maps the file-level relay settings onto relay.Config.
func relayConfig(cfg *config.Config) relay.Config {
	return relay.Config{
		SourcePollInterval: cfg.Relay.SourcePollInterval.Std(),
		PollTimeout:        cfg.Relay.PollTimeout.Std(),
		WriteTimeout:       cfg.Relay.WriteTimeout.Std(),
		AcceptTimeout:      cfg.Relay.AcceptTimeout.Std(),
		EOFDelay:           cfg.Relay.EOFDelay.Std(),
		RetryDelay:         cfg.Relay.RetryDelay.Std(),
		MaxSourceFailures:  cfg.Relay.MaxSourceFailures,
	}
}

func printHelp(output io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(output, `telebridge relays a flight controller's telemetry to TCP clients.

Usage:
  telebridge [flags] [port]

The port defaults to 5760. Clients receive the source stream in
512-byte frames; bytes they send are forwarded to the source.

Examples:
  # Relay /dev/ttyACM0 at 57600 baud on port 5760
  telebridge

  # A USB radio on another port
  telebridge --device /dev/ttyUSB0 --baud 115200 14550

  # Replay a recorded log
  telebridge --stdin < flight.tlog

Flags:
%s`, flagSet.FlagUsages())
}
