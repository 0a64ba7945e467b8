// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

var (
	// ErrUnsupported is returned by Open on platforms without termios
	// support.
	ErrUnsupported = errors.New("serial: not supported on this platform")

	// ErrUnsupportedBaud is returned by Open for a rate that has no
	// termios speed constant.
	ErrUnsupportedBaud = errors.New("serial: unsupported baud rate")
)

// Port is an open serial device. Read, Write, and SetReadDeadline may
// be called concurrently with Close.
type Port struct {
	file     *os.File
	path     string
	baudRate int

	closeOnce  sync.Once
	closeError error
}

// Read reads available bytes. It blocks until at least one byte
// arrives, the read deadline passes (os.ErrDeadlineExceeded), or the
// port is closed (os.ErrClosed).
func (p *Port) Read(buffer []byte) (int, error) {
	return p.file.Read(buffer)
}

// Write writes all of data to the device.
func (p *Port) Write(data []byte) (int, error) {
	return p.file.Write(data)
}

// SetReadDeadline bounds the current and future Read calls.
func (p *Port) SetReadDeadline(deadline time.Time) error {
	return p.file.SetReadDeadline(deadline)
}

// Close releases the device. Safe to call more than once.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closeError = p.file.Close()
	})
	return p.closeError
}

// Path returns the device path passed to Open.
func (p *Port) Path() string { return p.path }

// BaudRate returns the configured line speed.
func (p *Port) BaudRate() int { return p.baudRate }

func (p *Port) String() string {
	return fmt.Sprintf("%s@%d", p.path, p.baudRate)
}
