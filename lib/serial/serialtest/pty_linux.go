// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package serialtest

import (
	"fmt"
	"os"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"
)

// OpenPTY allocates a pseudo-terminal through /dev/ptmx and returns
// the master file and the slave's path under /dev/pts. The master is
// closed when the test completes. Tests are skipped when the host has
// no devpts.
func OpenPTY(t *testing.T) (master *os.File, slavePath string) {
	t.Helper()

	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("pseudo-terminals unavailable: %v", err)
	}
	t.Cleanup(func() { master.Close() })

	fd := int(master.Fd())

	ptyNumber, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	if err != nil {
		t.Fatalf("get PTY number (TIOCGPTN): %v", err)
	}
	if err := unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0); err != nil {
		t.Fatalf("unlock PTY slave (TIOCSPTLCK): %v", err)
	}

	// The master side must not translate either, or CR/LF bytes in the
	// test payloads would be rewritten before reaching the slave.
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		t.Fatalf("reading master attributes: %v", err)
	}
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Iflag &^= unix.ICRNL | unix.IXON
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		t.Fatalf("writing master attributes: %v", err)
	}

	return master, fmt.Sprintf("/dev/pts/%d", ptyNumber)
}
