// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/natefinch/lumberjack"
	"golang.org/x/term"
)

// Format selects the slog handler.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures New.
type Options struct {
	// Level is the minimum record level.
	Level slog.Level

	// Format selects the handler. Empty means FormatAuto.
	Format Format

	// File, when set, sends records to a rotating log file instead of
	// Output.
	File string

	// MaxSizeMB is the size at which File is rotated. Zero uses
	// lumberjack's default of 100 MB.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept. Zero keeps all.
	MaxBackups int

	// MaxAgeDays removes rotated files older than this. Zero keeps
	// them regardless of age.
	MaxAgeDays int

	// Output is the destination when File is empty. Nil means stderr.
	Output io.Writer
}

// ParseLevel accepts debug, info, warn, and error.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// New returns a logger and a close function that flushes and closes
// the log file, if any. The close function is always non-nil.
func New(options Options) (*slog.Logger, func() error, error) {
	output := options.Output
	if output == nil {
		output = os.Stderr
	}
	closeFunc := func() error { return nil }

	if options.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   options.File,
			MaxSize:    options.MaxSizeMB,
			MaxBackups: options.MaxBackups,
			MaxAge:     options.MaxAgeDays,
		}
		output = rotating
		closeFunc = rotating.Close
	}

	format := options.Format
	if format == "" {
		format = FormatAuto
	}
	if format == FormatAuto {
		format = FormatJSON
		if isTerminal(output) {
			format = FormatText
		}
	}

	handlerOptions := &slog.HandlerOptions{Level: options.Level}
	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(output, handlerOptions)
	case FormatJSON:
		handler = slog.NewJSONHandler(output, handlerOptions)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q (want auto, text, or json)", format)
	}
	return slog.New(handler), closeFunc, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
