// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"io"
	"time"

	"github.com/rovlink/telebridge/lib/netutil"
)

const (
	// DefaultPollTimeout is how long each client read waits for
	// command bytes per relay loop iteration.
	DefaultPollTimeout = time.Millisecond

	// CommandBufferSize is the most bytes read from one client per
	// poll. Longer bursts are forwarded over successive iterations.
	CommandBufferSize = 4096
)

// Forwarder moves command bytes from clients to the source.
type Forwarder struct {
	registry    *Registry
	destination io.Writer
	observer    Observer
	pollTimeout time.Duration
	buffer      []byte
}

// NewForwarder returns a Forwarder that writes into destination.
// Non-positive pollTimeout selects DefaultPollTimeout.
func NewForwarder(registry *Registry, destination io.Writer, observer Observer, pollTimeout time.Duration) *Forwarder {
	if observer == nil {
		observer = NopObserver{}
	}
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &Forwarder{
		registry:    registry,
		destination: destination,
		observer:    observer,
		pollTimeout: pollTimeout,
		buffer:      make([]byte, CommandBufferSize),
	}
}

// PollAndForward reads once from every client in registration order
// and writes what arrived to the destination unmodified. Returns the
// number of bytes forwarded. A client that closed or failed is evicted
// after the pass; a failed destination write is reported as a source
// error and does not evict the sender.
func (f *Forwarder) PollAndForward() int {
	forwarded := 0
	var failed []*Connection
	var reasons []error

	for _, connection := range f.registry.Snapshot() {
		n, err := connection.poll(f.buffer, f.pollTimeout)
		if n > 0 {
			if _, writeError := f.destination.Write(f.buffer[:n]); writeError != nil {
				f.observer.SourceError(fmt.Errorf("forwarding command from %s: %w", connection.ID(), writeError))
			} else {
				forwarded += n
				f.observer.CommandForwarded(connection, n)
			}
		}
		if err != nil && !netutil.IsTimeout(err) {
			failed = append(failed, connection)
			reasons = append(reasons, err)
		}
	}

	for index, connection := range failed {
		evict(f.registry, f.observer, connection, reasons[index])
	}
	return forwarded
}
