// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package serial

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// baudRates maps line speeds to their termios constants.
var baudRates = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

// SupportedBaudRate reports whether rate can be passed to Open.
func SupportedBaudRate(rate int) bool {
	_, ok := baudRates[rate]
	return ok
}

// Open opens the device at path and configures it for raw 8N1 transfer
// at baudRate.
func Open(path string, baudRate int) (*Port, error) {
	speed, ok := baudRates[baudRate]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBaud, baudRate)
	}

	file, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if err := configure(file, speed); err != nil {
		file.Close()
		return nil, fmt.Errorf("configuring %s: %w", path, err)
	}

	return &Port{file: file, path: path, baudRate: baudRate}, nil
}

// configure applies raw mode through SyscallConn. File.Fd would switch
// the descriptor back to blocking mode and detach it from the poller.
func configure(file *os.File, speed uint32) error {
	rawConnection, err := file.SyscallConn()
	if err != nil {
		return err
	}
	var configureError error
	controlError := rawConnection.Control(func(fd uintptr) {
		configureError = makeRaw(int(fd), speed)
	})
	if controlError != nil {
		return controlError
	}
	return configureError
}

func makeRaw(fd int, speed uint32) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("reading terminal attributes: %w", err)
	}

	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS | unix.CBAUD
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | speed
	termios.Ispeed = speed
	termios.Ospeed = speed

	// The descriptor is non-blocking, so VMIN/VTIME only matter to
	// anything that later inherits it in blocking mode.
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("writing terminal attributes: %w", err)
	}
	return nil
}
