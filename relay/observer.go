// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"log/slog"

	"github.com/rovlink/telebridge/lib/netutil"
)

// Observer receives the relay's discrete events. Calls arrive from
// both the acceptor and the relay loop, so implementations must be
// safe for concurrent use, and must not block: the relay loop waits
// for each call.
type Observer interface {
	// StateChanged reports a lifecycle transition.
	StateChanged(state State)

	// ClientConnected reports a newly registered client. clients is
	// the registry size after the addition.
	ClientConnected(connection *Connection, clients int)

	// ClientDisconnected reports an evicted client. reason is the I/O
	// error that caused the eviction: io.EOF for an orderly close by
	// the peer, ErrRelayStopped for shutdown.
	ClientDisconnected(connection *Connection, reason error, clients int)

	// FrameRelayed reports a completed frame. sequence counts frames
	// from 1; delivered is the number of clients that received it.
	FrameRelayed(sequence uint64, size int, delivered int)

	// CommandForwarded reports size bytes from connection written to
	// the source.
	CommandForwarded(connection *Connection, size int)

	// SourceError reports a source read or write failure.
	SourceError(err error)

	// AcceptError reports a listener failure other than a timeout.
	AcceptError(err error)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) StateChanged(State) {}
func (NopObserver) ClientConnected(*Connection, int) {}
func (NopObserver) ClientDisconnected(*Connection, error, int) {}
func (NopObserver) FrameRelayed(uint64, int, int) {}
func (NopObserver) CommandForwarded(*Connection, int) {}
func (NopObserver) SourceError(error) {}
func (NopObserver) AcceptError(error) {}

// Observers fans every event out to each element in order.
type Observers []Observer

func (o Observers) StateChanged(state State) {
	for _, observer := range o {
		observer.StateChanged(state)
	}
}

func (o Observers) ClientConnected(connection *Connection, clients int) {
	for _, observer := range o {
		observer.ClientConnected(connection, clients)
	}
}

func (o Observers) ClientDisconnected(connection *Connection, reason error, clients int) {
	for _, observer := range o {
		observer.ClientDisconnected(connection, reason, clients)
	}
}

func (o Observers) FrameRelayed(sequence uint64, size int, delivered int) {
	for _, observer := range o {
		observer.FrameRelayed(sequence, size, delivered)
	}
}

func (o Observers) CommandForwarded(connection *Connection, size int) {
	for _, observer := range o {
		observer.CommandForwarded(connection, size)
	}
}

func (o Observers) SourceError(err error) {
	for _, observer := range o {
		observer.SourceError(err)
	}
}

func (o Observers) AcceptError(err error) {
	for _, observer := range o {
		observer.AcceptError(err)
	}
}

// DefaultStatusEvery is the frame interval between LogObserver
// milestone lines.
const DefaultStatusEvery = 10

// LogObserver writes operator-facing log lines. Connects and
// disconnects are logged at Info (unexpected disconnect reasons at
// Warn), every StatusEvery-th frame produces a milestone line with the
// client count, and per-command traffic is logged at Debug.
type LogObserver struct {
	Logger *slog.Logger

	// StatusEvery is the milestone interval in frames. Zero selects
	// DefaultStatusEvery; negative disables milestones.
	StatusEvery int
}

func (o *LogObserver) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *LogObserver) StateChanged(state State) {
	o.logger().Info("relay state changed", "state", state.String())
}

func (o *LogObserver) ClientConnected(connection *Connection, clients int) {
	o.logger().Info("client connected",
		"connection_id", connection.ID().String(),
		"remote_addr", connection.RemoteAddr(),
		"clients", clients,
	)
}

func (o *LogObserver) ClientDisconnected(connection *Connection, reason error, clients int) {
	attributes := []any{
		"connection_id", connection.ID().String(),
		"remote_addr", connection.RemoteAddr(),
		"clients", clients,
	}
	if reason == nil || reason == ErrRelayStopped || netutil.IsExpectedCloseError(reason) {
		o.logger().Info("client disconnected", attributes...)
		return
	}
	o.logger().Warn("client dropped", append(attributes, "error", reason)...)
}

func (o *LogObserver) FrameRelayed(sequence uint64, size int, delivered int) {
	every := o.StatusEvery
	if every == 0 {
		every = DefaultStatusEvery
	}
	if every < 0 || sequence%uint64(every) != 0 {
		return
	}
	o.logger().Info("frames relayed", "frames", sequence, "clients", delivered)
}

func (o *LogObserver) CommandForwarded(connection *Connection, size int) {
	o.logger().Debug("command forwarded",
		"connection_id", connection.ID().String(),
		"bytes", size,
	)
}

func (o *LogObserver) SourceError(err error) {
	o.logger().Error("source i/o failed", "error", err)
}

func (o *LogObserver) AcceptError(err error) {
	o.logger().Error("accept failed", "error", err)
}
