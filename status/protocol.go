// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"github.com/rovlink/telebridge/lib/codec"
	"github.com/rovlink/telebridge/relay"
)

// Actions served by Server.
const (
	ActionStatus  = "status"
	ActionClients = "clients"
)

// Request is the wire format of a status request.
type Request struct {
	Action string `cbor:"action"`
}

// Response is the envelope for every reply.
type Response struct {
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

// Status is the result of the "status" action.
type Status struct {
	State         string  `cbor:"state" json:"state"`
	Source        string  `cbor:"source" json:"source"`
	ListenAddress string  `cbor:"listen_address" json:"listen_address"`
	Version       string  `cbor:"version" json:"version"`
	UptimeSeconds float64 `cbor:"uptime_seconds" json:"uptime_seconds"`

	Clients      int    `cbor:"clients" json:"clients"`
	Frames       uint64 `cbor:"frames" json:"frames"`
	BytesIn      uint64 `cbor:"bytes_in" json:"bytes_in"`
	PendingBytes int    `cbor:"pending_bytes" json:"pending_bytes"`
	BytesOut     uint64 `cbor:"bytes_out" json:"bytes_out"`
	CommandBytes uint64 `cbor:"command_bytes" json:"command_bytes"`
	Connects     uint64 `cbor:"connects" json:"connects"`
	Disconnects  uint64 `cbor:"disconnects" json:"disconnects"`
	SourceErrors uint64 `cbor:"source_errors" json:"source_errors"`
	AcceptErrors uint64 `cbor:"accept_errors" json:"accept_errors"`
}

// Client is one entry of the "clients" action result.
type Client struct {
	ID         string `cbor:"id" json:"id"`
	RemoteAddr string `cbor:"remote_addr" json:"remote_addr"`

	// ConnectedAt is Unix seconds.
	ConnectedAt int64 `cbor:"connected_at" json:"connected_at"`
}

// NewStatus converts relay statistics to the wire format.
func NewStatus(stats relay.Stats, source, listenAddress, version string) Status {
	return Status{
		State:         stats.State.String(),
		Source:        source,
		ListenAddress: listenAddress,
		Version:       version,
		UptimeSeconds: stats.Uptime.Seconds(),
		Clients:       stats.Clients,
		Frames:        stats.Frames,
		BytesIn:       stats.BytesIn,
		PendingBytes:  stats.Pending,
		BytesOut:      stats.BytesOut,
		CommandBytes:  stats.CommandBytes,
		Connects:      stats.Connects,
		Disconnects:   stats.Disconnects,
		SourceErrors:  stats.SourceErrors,
		AcceptErrors:  stats.AcceptErrors,
	}
}
