// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rovlink/telebridge/lib/clock"
	"github.com/rovlink/telebridge/lib/netutil"
	"github.com/rovlink/telebridge/source"
)

var (
	// ErrSourceFailed is returned by Run when the relay stopped
	// because the source became unusable.
	ErrSourceFailed = errors.New("relay: source failed")

	// ErrRelayStopped is the disconnect reason reported for clients
	// closed by Shutdown.
	ErrRelayStopped = errors.New("relay: stopped")

	// ErrAlreadyStarted is returned by a second call to Run.
	ErrAlreadyStarted = errors.New("relay: already started")
)

// State is the relay lifecycle state.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

const (
	DefaultSourcePollInterval = 10 * time.Millisecond
	DefaultEOFDelay           = 100 * time.Millisecond
	DefaultRetryDelay         = time.Second
	DefaultReadBufferSize     = 4096
)

// Config tunes the relay loops. Zero values select the defaults.
type Config struct {
	// SourcePollInterval bounds each source read so the relay loop
	// can poll clients for commands while the source is quiet.
	SourcePollInterval time.Duration

	// PollTimeout bounds each per-client command read.
	PollTimeout time.Duration

	// WriteTimeout bounds each per-client frame write. A client that
	// cannot take a frame within it is dropped.
	WriteTimeout time.Duration

	AcceptTimeout time.Duration

	// EOFDelay is the pause after end-of-stream on the source before
	// reading again.
	EOFDelay time.Duration

	// RetryDelay is the pause after a failed source read or accept.
	RetryDelay time.Duration

	// MaxSourceFailures is the number of consecutive source read
	// failures after which the relay shuts down. Zero retries forever.
	MaxSourceFailures int

	ReadBufferSize int

	Clock clock.Clock
}

func (c Config) withDefaults() Config {
	if c.SourcePollInterval <= 0 {
		c.SourcePollInterval = DefaultSourcePollInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.AcceptTimeout <= 0 {
		c.AcceptTimeout = DefaultAcceptTimeout
	}
	if c.EOFDelay <= 0 {
		c.EOFDelay = DefaultEOFDelay
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = DefaultReadBufferSize
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
	return c
}

// Relay ties a source endpoint to a TCP listener.
type Relay struct {
	config   Config
	source   source.Endpoint
	listener net.Listener
	observer Observer
	counters *counters

	registry    *Registry
	accumulator *Accumulator
	broadcaster *Broadcaster
	forwarder   *Forwarder
	acceptor    *Acceptor

	// lifecycle orders the start transition against Shutdown so a
	// shutdown racing Run cannot leave the running flag set.
	lifecycle    sync.Mutex
	state        atomic.Int32
	running      atomic.Bool
	stop         chan struct{}
	done         chan struct{}
	shutdownOnce sync.Once
	startedAt    atomic.Pointer[time.Time]

	failureMu sync.Mutex
	failure   error
}

// New returns a Relay in StateStarting. The relay takes ownership of
// endpoint and listener: both are closed on shutdown. A nil observer
// discards events; counters for Stats are kept regardless.
func New(config Config, endpoint source.Endpoint, listener net.Listener, observer Observer) *Relay {
	config = config.withDefaults()
	counters := &counters{}
	chain := Observers{counters}
	if observer != nil {
		chain = append(chain, observer)
	}

	registry := NewRegistry()
	relay := &Relay{
		config:      config,
		source:      endpoint,
		listener:    listener,
		observer:    chain,
		counters:    counters,
		registry:    registry,
		accumulator: NewAccumulator(),
		broadcaster: NewBroadcaster(registry, chain, config.WriteTimeout),
		forwarder:   NewForwarder(registry, endpoint, chain, config.PollTimeout),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	relay.acceptor = &Acceptor{
		listener:      listener,
		registry:      registry,
		observer:      chain,
		running:       &relay.running,
		stop:          relay.stop,
		clock:         config.Clock,
		acceptTimeout: config.AcceptTimeout,
		retryDelay:    config.RetryDelay,
	}
	return relay
}

// Run starts the acceptor and the relay loop and blocks until both
// have exited. Cancelling ctx triggers Shutdown. Returns nil after a
// requested shutdown, or an error wrapping ErrSourceFailed when the
// source became unusable.
func (r *Relay) Run(ctx context.Context) error {
	r.lifecycle.Lock()
	if !r.state.CompareAndSwap(int32(StateStarting), int32(StateRunning)) {
		r.lifecycle.Unlock()
		return ErrAlreadyStarted
	}
	now := r.config.Clock.Now()
	r.startedAt.Store(&now)
	r.running.Store(true)
	r.lifecycle.Unlock()
	r.observer.StateChanged(StateRunning)

	go func() {
		select {
		case <-ctx.Done():
			r.Shutdown()
		case <-r.stop:
		}
	}()

	var group errgroup.Group
	group.Go(r.acceptor.Run)
	group.Go(r.relayLoop)
	err := group.Wait()

	r.Shutdown()
	r.setState(StateStopped)
	close(r.done)

	if err != nil {
		return err
	}
	r.failureMu.Lock()
	defer r.failureMu.Unlock()
	return r.failure
}

// Shutdown stops the relay: both loops observe the cleared running
// flag, and every client, the listener, and the source are closed so
// no call stays blocked. Safe to call repeatedly and concurrently.
// Use Wait to block until Run has returned.
func (r *Relay) Shutdown() {
	r.shutdownOnce.Do(func() {
		r.lifecycle.Lock()
		neverStarted := r.state.CompareAndSwap(int32(StateStarting), int32(StateShuttingDown))
		if !neverStarted {
			r.setState(StateShuttingDown)
		}
		r.running.Store(false)
		close(r.stop)
		r.lifecycle.Unlock()

		for _, connection := range r.registry.Drain() {
			connection.Close()
			r.observer.ClientDisconnected(connection, ErrRelayStopped, 0)
		}
		r.listener.Close()
		r.source.Close()

		if neverStarted {
			r.setState(StateStopped)
			close(r.done)
		}
	})
}

// Wait blocks until the relay has stopped.
func (r *Relay) Wait() {
	<-r.done
}

// Done is closed once the relay has stopped.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

// State returns the current lifecycle state.
func (r *Relay) State() State {
	return State(r.state.Load())
}

// Addr returns the listener address.
func (r *Relay) Addr() net.Addr {
	return r.listener.Addr()
}

// ClientInfo describes one registered client.
type ClientInfo struct {
	ID          string
	RemoteAddr  string
	ConnectedAt time.Time
}

// Clients lists the registered clients in registration order.
func (r *Relay) Clients() []ClientInfo {
	connections := r.registry.Snapshot()
	clients := make([]ClientInfo, 0, len(connections))
	for _, connection := range connections {
		clients = append(clients, ClientInfo{
			ID:          connection.ID().String(),
			RemoteAddr:  connection.RemoteAddr(),
			ConnectedAt: connection.ConnectedAt(),
		})
	}
	return clients
}

// Stats returns a snapshot of relay activity.
func (r *Relay) Stats() Stats {
	stats := r.counters.snapshot()
	stats.State = r.State()
	stats.Clients = r.registry.Count()
	if startedAt := r.startedAt.Load(); startedAt != nil {
		stats.StartedAt = *startedAt
		stats.Uptime = r.config.Clock.Now().Sub(*startedAt)
	}
	return stats
}

func (r *Relay) setState(state State) {
	if State(r.state.Swap(int32(state))) != state {
		r.observer.StateChanged(state)
	}
}

// relayLoop reads the source, broadcasts completed frames, and polls
// clients for commands until shutdown.
func (r *Relay) relayLoop() error {
	buffer := make([]byte, r.config.ReadBufferSize)
	consecutiveFailures := 0

	for r.running.Load() {
		n, err := r.readSource(buffer)
		if n > 0 {
			consecutiveFailures = 0
			r.counters.bytesIn.Add(uint64(n))
			r.accumulator.Write(buffer[:n], r.relayFrame)
			r.counters.pending.Store(int64(r.accumulator.Len()))
		}
		if err != nil {
			switch {
			case !r.running.Load():
				return nil
			case netutil.IsTimeout(err):
			case errors.Is(err, io.EOF):
				if !pause(r.config.Clock, r.stop, r.config.EOFDelay) {
					return nil
				}
			case errors.Is(err, os.ErrClosed):
				r.observer.SourceError(err)
				return r.failSource(err)
			default:
				consecutiveFailures++
				r.observer.SourceError(err)
				if r.config.MaxSourceFailures > 0 && consecutiveFailures >= r.config.MaxSourceFailures {
					return r.failSource(err)
				}
				if !pause(r.config.Clock, r.stop, r.config.RetryDelay) {
					return nil
				}
			}
		}

		r.forwarder.PollAndForward()
	}
	return nil
}

// readSource reads one chunk, bounded by SourcePollInterval where the
// endpoint supports deadlines.
func (r *Relay) readSource(buffer []byte) (int, error) {
	deadline := time.Now().Add(r.config.SourcePollInterval)
	if err := r.source.SetReadDeadline(deadline); err != nil && !errors.Is(err, os.ErrNoDeadline) {
		return 0, err
	}
	return r.source.Read(buffer)
}

func (r *Relay) relayFrame(frame []byte) {
	delivered := r.broadcaster.Broadcast(frame)
	r.observer.FrameRelayed(r.accumulator.Frames(), len(frame), delivered)
}

// failSource records the unrecoverable source error and stops the
// relay from inside the relay loop.
func (r *Relay) failSource(err error) error {
	r.failureMu.Lock()
	r.failure = fmt.Errorf("%w: %w", ErrSourceFailed, err)
	r.failureMu.Unlock()
	r.Shutdown()
	return nil
}
