// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/rovlink/telebridge/lib/clock"
	"github.com/rovlink/telebridge/lib/netutil"
)

// DefaultAcceptTimeout bounds each Accept so the loop notices
// shutdown even on listeners that do not unblock on Close.
const DefaultAcceptTimeout = time.Second

// deadlineListener is implemented by *net.TCPListener and
// *net.UnixListener.
type deadlineListener interface {
	SetDeadline(time.Time) error
}

// Acceptor registers incoming TCP clients.
type Acceptor struct {
	listener      net.Listener
	registry      *Registry
	observer      Observer
	running       *atomic.Bool
	stop          <-chan struct{}
	clock         clock.Clock
	acceptTimeout time.Duration
	retryDelay    time.Duration
}

// Run accepts until running is false or the listener is closed.
// Accept timeouts are silent; other failures are reported and retried
// after retryDelay.
func (a *Acceptor) Run() error {
	withDeadline, _ := a.listener.(deadlineListener)
	for a.running.Load() {
		if withDeadline != nil {
			withDeadline.SetDeadline(time.Now().Add(a.acceptTimeout))
		}
		conn, err := a.listener.Accept()
		if err != nil {
			if !a.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if netutil.IsTimeout(err) {
				continue
			}
			a.observer.AcceptError(err)
			if !pause(a.clock, a.stop, a.retryDelay) {
				return nil
			}
			continue
		}
		a.register(conn)
	}
	return nil
}

func (a *Acceptor) register(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
	}
	connection := NewConnection(conn)
	if !a.registry.Add(connection) {
		// Registry already drained for shutdown.
		connection.Close()
		return
	}
	a.observer.ClientConnected(connection, a.registry.Count())
}

// pause waits for d or until stop closes. Returns false if stopped.
func pause(c clock.Clock, stop <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-c.After(d):
		return true
	case <-stop:
		return false
	}
}
