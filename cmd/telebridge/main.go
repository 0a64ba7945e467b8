// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/rovlink/telebridge/lib/config"
	"github.com/rovlink/telebridge/lib/logging"
	"github.com/rovlink/telebridge/lib/netutil"
	"github.com/rovlink/telebridge/lib/process"
	"github.com/rovlink/telebridge/lib/version"
	"github.com/rovlink/telebridge/metrics"
	"github.com/rovlink/telebridge/relay"
	"github.com/rovlink/telebridge/source"
	"github.com/rovlink/telebridge/status"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.help {
		printHelp(stderr, opts.flagSet)
		return nil
	}
	if opts.showVersion {
		version.Print("telebridge")
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Nothing listens until the source is open: a relay without a
	// source has nothing to serve.
	endpoint, err := source.Open(source.Config{
		Mode:     source.Mode(cfg.Source.Mode),
		Device:   cfg.Source.Device,
		BaudRate: cfg.Source.BaudRate,
	})
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}

	listenAddress := net.JoinHostPort(cfg.Listen.Host, strconv.Itoa(cfg.Listen.Port))
	listener, err := net.Listen("tcp", listenAddress)
	if err != nil {
		endpoint.Close()
		return fmt.Errorf("listening on %s: %w", listenAddress, err)
	}

	observers := relay.Observers{&relay.LogObserver{Logger: logger, StatusEvery: cfg.Relay.StatusEvery}}

	var metricsListener net.Listener
	registry := metrics.NewRegistry()
	if cfg.Metrics.Listen != "" {
		metricsObserver, err := metrics.NewObserver(registry)
		if err != nil {
			listener.Close()
			endpoint.Close()
			return err
		}
		observers = append(observers, metricsObserver)

		metricsListener, err = net.Listen("tcp", cfg.Metrics.Listen)
		if err != nil {
			listener.Close()
			endpoint.Close()
			return fmt.Errorf("listening for metrics on %s: %w", cfg.Metrics.Listen, err)
		}
	}

	r := relay.New(relayConfig(cfg), endpoint, listener, observers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Auxiliary servers outlive neither the signal nor the relay.
	auxiliaryContext, cancelAuxiliary := context.WithCancel(ctx)
	defer cancelAuxiliary()
	var auxiliary errgroup.Group

	if cfg.Status.Socket != "" {
		server := status.NewServer(cfg.Status.Socket, r, endpoint.String(), logger)
		auxiliary.Go(func() error {
			if err := server.Serve(auxiliaryContext); err != nil {
				logger.Warn("status socket unavailable", "error", err)
			}
			return nil
		})
	}
	if metricsListener != nil {
		auxiliary.Go(func() error {
			if err := metrics.Serve(auxiliaryContext, metricsListener, registry, logger); err != nil {
				logger.Warn("metrics endpoint failed", "error", err)
			}
			return nil
		})
	}

	logger.Info("telebridge relaying",
		"source", endpoint.String(),
		"listen", listener.Addr().String(),
		"connect_to", netutil.AdvertiseAddress(listener.Addr()),
		"frame_size", relay.FrameSize,
		"version", version.Info(),
	)

	runError := r.Run(ctx)
	cancelAuxiliary()
	auxiliary.Wait()

	stats := r.Stats()
	logger.Info("telebridge stopped",
		"frames", stats.Frames,
		"bytes_in", stats.BytesIn,
		"command_bytes", stats.CommandBytes,
		"connects", stats.Connects,
		"uptime", stats.Uptime.String(),
	)
	return runError
}

func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(logging.Options{
		Level:      level,
		Format:     logging.Format(cfg.Log.Format),
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Output:     stderr,
	})
}
