// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package source opens the telemetry source the relay reads from and
// writes commands to.
//
// Two variants sit behind the [Endpoint] interface. The device variant
// is a serial port (see lib/serial) such as a flight controller's
// /dev/ttyACM0. The stdio variant reads standard input and writes
// standard output, for simulators that emit the telemetry stream on a
// pipe. Relay code depends only on Endpoint.
//
// Reads are bounded with SetReadDeadline: an expired deadline returns
// os.ErrDeadlineExceeded, which callers treat as "no data yet". The
// stdio variant returns io.EOF when the producer closes its end; that
// is not a failure, and the producer may be restarted behind a named
// pipe. When standard input cannot be polled (a regular file),
// SetReadDeadline returns os.ErrNoDeadline and reads are unbounded.
package source
