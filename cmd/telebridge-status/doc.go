// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// telebridge-status prints the health of a running telebridge.
//
// It connects to the relay's status socket, requests a snapshot, and
// prints the lifecycle state, uptime, connected clients, and traffic
// counters. With --clients it also lists each connected client. --json
// prints the snapshot as JSON for scripts; --raw prints the CBOR
// response in diagnostic notation.
//
// Exit status is 1 when the relay cannot be reached.
package main
