// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies connection errors and discovers the
// address clients should use to reach the relay.
//
// [IsExpectedCloseError] recognizes the errors a peer disconnect
// produces (EOF, closed connection, broken pipe, reset). [IsTimeout]
// recognizes an expired deadline, which the relay's polling loops treat
// as "no data yet" rather than failure. [OutboundIP] reports the local
// address of the interface that routes to the outside world, for the
// startup banner.
package netutil
