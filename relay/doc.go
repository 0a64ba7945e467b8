// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay fans a telemetry source out to TCP clients and funnels
// client commands back into the source.
//
// Data flow:
//
//	source.Endpoint → Accumulator → Broadcaster → every Connection in the Registry
//	every Connection in the Registry → Forwarder → source.Endpoint
//
// [Relay] owns two goroutines that share nothing but the [Registry]:
//
//   - The acceptor ([Acceptor]) accepts TCP connections with a bounded
//     deadline and registers them.
//   - The relay loop reads the source in chunks with a bounded
//     deadline, cuts the byte stream into fixed 512-byte frames
//     ([Accumulator]), broadcasts each completed frame ([Broadcaster]),
//     then polls every client once for command bytes ([Forwarder]).
//
// Frames are carved from the raw byte stream with no knowledge of the
// telemetry protocol, so a frame may split a protocol message. Clients
// reassemble the stream themselves; the relay is byte-transparent.
//
// A client whose write or read fails is evicted: removed from the
// registry, closed, and reported to the [Observer]. Evictions never
// affect other clients or the relay loop.
//
// [Relay.Shutdown] flips the running flag, closes every client, the
// listener, and the source, which unblocks any in-flight I/O. Both
// loops observe the flag within one poll interval. Shutdown is safe to
// call any number of times from any goroutine.
//
// Status output is not produced here. The relay reports discrete
// events to an [Observer]; [LogObserver] turns them into log lines and
// the metrics package into Prometheus series.
package relay
