// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Connection is one registered client. Identity is the generated ID,
// not the address: several ground stations behind one NAT share a
// host.
type Connection struct {
	id          uuid.UUID
	conn        net.Conn
	remoteAddr  string
	connectedAt time.Time

	closeOnce  sync.Once
	closeError error
}

// NewConnection wraps an accepted net.Conn with a fresh identity.
func NewConnection(conn net.Conn) *Connection {
	remoteAddr := "unknown"
	if address := conn.RemoteAddr(); address != nil {
		remoteAddr = address.String()
	}
	return &Connection{
		id:          uuid.New(),
		conn:        conn,
		remoteAddr:  remoteAddr,
		connectedAt: time.Now(),
	}
}

// ID returns the connection's identity.
func (c *Connection) ID() uuid.UUID { return c.id }

// RemoteAddr returns the peer address as reported at accept time.
func (c *Connection) RemoteAddr() string { return c.remoteAddr }

// ConnectedAt returns the accept time.
func (c *Connection) ConnectedAt() time.Time { return c.connectedAt }

func (c *Connection) String() string {
	return fmt.Sprintf("%s (%s)", c.id, c.remoteAddr)
}

// Close closes the underlying connection. Safe to call more than once;
// later calls return the first call's result.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.closeError = c.conn.Close()
	})
	return c.closeError
}

// writeFrame writes all of frame within timeout. A timeout part-way
// through leaves the client with a partial frame, so any error means
// the caller must drop the client.
func (c *Connection) writeFrame(frame []byte, timeout time.Duration) error {
	if timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	n, err := c.conn.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return io.ErrShortWrite
	}
	return nil
}

// poll reads whatever the client has sent, waiting at most timeout.
// An expired deadline is the normal "nothing sent" outcome.
func (c *Connection) poll(buffer []byte, timeout time.Duration) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	return c.conn.Read(buffer)
}
