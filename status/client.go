// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rovlink/telebridge/lib/codec"
)

const (
	dialTimeout         = 2 * time.Second
	responseReadTimeout = 5 * time.Second
	maxResponseSize     = 1024 * 1024
)

// RemoteError is a failure reported by the server.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("status %s: %s", e.Action, e.Message)
}

// Query fetches the relay status.
func Query(ctx context.Context, socketPath string) (*Status, error) {
	var status Status
	if err := Call(ctx, socketPath, ActionStatus, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// QueryClients fetches the list of connected clients.
func QueryClients(ctx context.Context, socketPath string) ([]Client, error) {
	var clients []Client
	if err := Call(ctx, socketPath, ActionClients, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// Call performs action and decodes its result into result.
func Call(ctx context.Context, socketPath, action string, result any) error {
	data, err := CallRaw(ctx, socketPath, action)
	if err != nil {
		return err
	}
	if err := codec.Unmarshal(data, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", action, err)
	}
	return nil
}

// CallRaw performs action and returns its undecoded CBOR result.
func CallRaw(ctx context.Context, socketPath, action string) ([]byte, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	if err := codec.NewEncoder(conn).Encode(Request{Action: action}); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	if _, ok := ctx.Deadline(); !ok {
		conn.SetReadDeadline(time.Now().Add(responseReadTimeout))
	}
	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if !response.OK {
		return nil, &RemoteError{Action: action, Message: response.Error}
	}
	return response.Data, nil
}
