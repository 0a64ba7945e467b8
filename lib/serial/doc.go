// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package serial opens a serial device (a flight controller's USB CDC
// port such as /dev/ttyACM0, or a UART) for raw byte transfer.
//
// [Open] puts the line into raw 8N1 mode at the requested baud rate
// using termios ioctls: no echo, no canonical line editing, no signal
// characters, no CR/LF translation, no software or hardware flow
// control. The device is opened non-blocking and without becoming the
// controlling terminal, so the Go runtime poller services it. That
// makes [Port.SetReadDeadline] effective and lets [Port.Close] unblock
// a pending Read from another goroutine.
//
// Only Linux is supported; on other platforms Open returns
// [ErrUnsupported].
package serial
