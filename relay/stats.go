// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of relay activity.
type Stats struct {
	State     State
	StartedAt time.Time
	Uptime    time.Duration

	// Clients is the number of registered clients.
	Clients int

	// Frames counts frames relayed; BytesIn counts source bytes read,
	// including any partial frame still buffered (Pending).
	Frames   uint64
	BytesIn  uint64
	Pending  int
	BytesOut uint64

	CommandBytes uint64
	Connects     uint64
	Disconnects  uint64
	SourceErrors uint64
	AcceptErrors uint64
}

// counters is the relay's own Observer, always first in the chain.
type counters struct {
	bytesIn      atomic.Uint64
	pending      atomic.Int64
	frames       atomic.Uint64
	bytesOut     atomic.Uint64
	commandBytes atomic.Uint64
	connects     atomic.Uint64
	disconnects  atomic.Uint64
	sourceErrors atomic.Uint64
	acceptErrors atomic.Uint64
}

func (c *counters) StateChanged(State) {}

func (c *counters) ClientConnected(*Connection, int) {
	c.connects.Add(1)
}

func (c *counters) ClientDisconnected(*Connection, error, int) {
	c.disconnects.Add(1)
}

func (c *counters) FrameRelayed(_ uint64, size int, delivered int) {
	c.frames.Add(1)
	c.bytesOut.Add(uint64(size) * uint64(delivered))
}

func (c *counters) CommandForwarded(_ *Connection, size int) {
	c.commandBytes.Add(uint64(size))
}

func (c *counters) SourceError(error) {
	c.sourceErrors.Add(1)
}

func (c *counters) AcceptError(error) {
	c.acceptErrors.Add(1)
}

func (c *counters) snapshot() Stats {
	return Stats{
		Frames:       c.frames.Load(),
		BytesIn:      c.bytesIn.Load(),
		Pending:      int(c.pending.Load()),
		BytesOut:     c.bytesOut.Load(),
		CommandBytes: c.commandBytes.Load(),
		Connects:     c.connects.Load(),
		Disconnects:  c.disconnects.Load(),
		SourceErrors: c.sourceErrors.Load(),
		AcceptErrors: c.acceptErrors.Load(),
	}
}
