// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package source

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// OpenStdio returns a Stream over standard input and standard output.
//
// A terminal on standard input is switched to raw mode so that bytes
// pass through untranslated. The descriptor is then made non-blocking
// before being wrapped, which lets the runtime poller service it and
// SetReadDeadline bound reads. Close reverses both changes.
func OpenStdio() (*Stream, error) {
	fd := int(os.Stdin.Fd())

	var restoreTerminal func() error
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("setting standard input to raw mode: %w", err)
		}
		restoreTerminal = func() error { return term.Restore(fd, state) }
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		if restoreTerminal != nil {
			restoreTerminal()
		}
		return nil, fmt.Errorf("setting standard input non-blocking: %w", err)
	}

	stream := NewStream(os.NewFile(uintptr(fd), "/dev/stdin"), os.Stdout, "stdin/stdout")
	stream.restore = func() error {
		var terminalError error
		if restoreTerminal != nil {
			terminalError = restoreTerminal()
		}
		return errors.Join(unix.SetNonblock(fd, false), terminalError)
	}
	return stream, nil
}
