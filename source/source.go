// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"fmt"
	"io"
	"time"

	"github.com/rovlink/telebridge/lib/serial"
)

// Mode selects the Endpoint variant.
type Mode string

const (
	// ModeDevice reads and writes a serial device.
	ModeDevice Mode = "device"

	// ModeStdio reads standard input and writes standard output.
	ModeStdio Mode = "stdio"
)

const (
	// DefaultDevice is the USB CDC-ACM device a Pixhawk-class flight
	// controller enumerates as.
	DefaultDevice = "/dev/ttyACM0"

	// DefaultBaudRate is the flight controller's telemetry rate.
	DefaultBaudRate = 57600
)

// Endpoint is a duplex byte channel to the telemetry source.
type Endpoint interface {
	io.Reader
	io.Writer

	// Close releases the source. Safe to call more than once, and
	// unblocks a concurrent Read where the platform allows it.
	io.Closer

	// SetReadDeadline bounds Read. Returns os.ErrNoDeadline when the
	// underlying descriptor cannot be polled.
	SetReadDeadline(deadline time.Time) error

	// String describes the source for logs ("/dev/ttyACM0@57600").
	String() string
}

// Config selects and parameterizes the Endpoint variant.
type Config struct {
	Mode     Mode
	Device   string
	BaudRate int
}

// Open opens the configured source. A failure here is fatal to the
// relay: there is nothing to serve without a source.
func Open(config Config) (Endpoint, error) {
	switch config.Mode {
	case ModeDevice, "":
		device := config.Device
		if device == "" {
			device = DefaultDevice
		}
		baudRate := config.BaudRate
		if baudRate == 0 {
			baudRate = DefaultBaudRate
		}
		port, err := serial.Open(device, baudRate)
		if err != nil {
			return nil, err
		}
		return port, nil
	case ModeStdio:
		return OpenStdio()
	default:
		return nil, fmt.Errorf("source: unknown mode %q (want %q or %q)", config.Mode, ModeDevice, ModeStdio)
	}
}
