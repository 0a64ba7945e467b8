// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// telebridge relays a flight controller's telemetry link to any number
// of TCP clients and forwards their commands back to the vehicle.
//
// The source is a serial device (default /dev/ttyACM0 at 57600 baud)
// or, with --stdin, the process's standard input and output. Source
// bytes are relayed in fixed 512-byte frames to every connected
// client; bytes a client sends are written to the source as they
// arrive.
//
// Usage:
//
//	telebridge [flags] [port]
//
// The optional positional argument is the TCP port (default 5760).
// Configuration may also come from a YAML or JSONC file named by
// --config or TELEBRIDGE_CONFIG; flags given on the command line take
// precedence over the file.
//
// While running, telebridge answers status queries on a Unix socket
// (see telebridge-status) and, with --metrics-listen, serves
// Prometheus metrics. SIGINT and SIGTERM shut it down cleanly.
//
// Exit status is 0 after a clean shutdown and 1 when the source cannot
// be opened, the listener cannot be bound, or the source fails while
// running.
package main
