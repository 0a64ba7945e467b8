// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/rovlink/telebridge/lib/codec"
	"github.com/rovlink/telebridge/lib/config"
	"github.com/rovlink/telebridge/lib/process"
	"github.com/rovlink/telebridge/lib/version"
	"github.com/rovlink/telebridge/status"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		socketPath  string
		showClients bool
		jsonOutput  bool
		rawOutput   bool
		timeout     time.Duration
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("telebridge-status", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&socketPath, "socket", "s", config.Default().Status.Socket, "status socket of the running relay")
	flagSet.BoolVarP(&showClients, "clients", "c", false, "list connected clients")
	flagSet.BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")
	flagSet.BoolVar(&rawOutput, "raw", false, "print the CBOR response in diagnostic notation")
	flagSet.DurationVar(&timeout, "timeout", 5*time.Second, "how long to wait for the relay")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if showVersion {
		version.Fprint(stdout, "telebridge-status")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if rawOutput {
		return printRaw(ctx, stdout, socketPath, showClients)
	}

	snapshot, err := status.Query(ctx, socketPath)
	if err != nil {
		return fmt.Errorf("querying relay: %w", err)
	}
	var clients []status.Client
	if showClients {
		if clients, err = status.QueryClients(ctx, socketPath); err != nil {
			return fmt.Errorf("listing clients: %w", err)
		}
	}

	if jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(jsonReport{Status: snapshot, Clients: clients})
	}

	fmt.Fprint(stdout, renderStatus(snapshot))
	if showClients {
		fmt.Fprint(stdout, renderClients(clients, time.Now()))
	}
	return nil
}

type jsonReport struct {
	Status  *status.Status  `json:"status"`
	Clients []status.Client `json:"clients,omitempty"`
}

func printRaw(ctx context.Context, stdout io.Writer, socketPath string, showClients bool) error {
	actions := []string{status.ActionStatus}
	if showClients {
		actions = append(actions, status.ActionClients)
	}
	for _, action := range actions {
		data, err := status.CallRaw(ctx, socketPath, action)
		if err != nil {
			return fmt.Errorf("querying relay: %w", err)
		}
		diagnostic, err := codec.Diagnose(data)
		if err != nil {
			return fmt.Errorf("decoding %s response: %w", action, err)
		}
		fmt.Fprintln(stdout, diagnostic)
	}
	return nil
}
