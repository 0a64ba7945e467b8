// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rovlink/telebridge/lib/testutil"
	"github.com/rovlink/telebridge/source"
)

const testTimeout = 5 * time.Second

// syncBuffer collects bytes written from the relay loop while the
// test goroutine reads them.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *syncBuffer) Write(data []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(data)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buffer.Bytes())
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Len()
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("source write rejected")
}

type disconnect struct {
	connection *Connection
	reason     error
}

// recordingObserver keeps the events tests assert on.
type recordingObserver struct {
	NopObserver

	mu           sync.Mutex
	connects     []*Connection
	disconnects  []disconnect
	frames       []uint64
	sourceErrors []error
	acceptErrors []error
}

func (o *recordingObserver) ClientConnected(connection *Connection, clients int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.connects = append(o.connects, connection)
}

func (o *recordingObserver) ClientDisconnected(connection *Connection, reason error, clients int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disconnects = append(o.disconnects, disconnect{connection, reason})
}

func (o *recordingObserver) FrameRelayed(sequence uint64, size int, delivered int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frames = append(o.frames, sequence)
}

func (o *recordingObserver) SourceError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sourceErrors = append(o.sourceErrors, err)
}

func (o *recordingObserver) AcceptError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.acceptErrors = append(o.acceptErrors, err)
}

func (o *recordingObserver) connectCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.connects)
}

func (o *recordingObserver) acceptErrorCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.acceptErrors)
}

func (o *recordingObserver) disconnectCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.disconnects)
}

func (o *recordingObserver) sourceErrorCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sourceErrors)
}

// recordingEndpoint notes when the relay closes its source.
type recordingEndpoint struct {
	source.Endpoint
	closed atomic.Bool
}

func (e *recordingEndpoint) Close() error {
	e.closed.Store(true)
	return e.Endpoint.Close()
}

// brokenEndpoint fails every read until closed.
type brokenEndpoint struct {
	closed atomic.Bool
	reads  atomic.Int32
}

func (e *brokenEndpoint) Read([]byte) (int, error) {
	e.reads.Add(1)
	if e.closed.Load() {
		return 0, os.ErrClosed
	}
	return 0, errors.New("device unplugged")
}

func (e *brokenEndpoint) Write(data []byte) (int, error) { return len(data), nil }

func (e *brokenEndpoint) SetReadDeadline(time.Time) error { return nil }

func (e *brokenEndpoint) Close() error {
	e.closed.Store(true)
	return nil
}

func (e *brokenEndpoint) String() string { return "broken" }

// pattern returns n bytes that differ at every frame offset, so a
// misaligned or reordered frame cannot compare equal.
func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + i/FrameSize)
	}
	return data
}

// tcpPair returns a registered-side Connection and the client end of
// a loopback TCP connection.
func tcpPair(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	client, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	server := testutil.RequireReceive(t, accepted, testTimeout, "accept")
	if server == nil {
		t.Fatal("accept failed")
	}
	connection := NewConnection(server)
	t.Cleanup(func() {
		client.Close()
		connection.Close()
	})
	return connection, client
}

func readFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(testTimeout))
	frame := make([]byte, FrameSize)
	if _, err := io.ReadFull(conn, frame); err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	return frame
}

func fastConfig() Config {
	return Config{
		AcceptTimeout: 50 * time.Millisecond,
		EOFDelay:      5 * time.Millisecond,
		RetryDelay:    5 * time.Millisecond,
	}
}

// harness runs a Relay over a pipe-backed source and a loopback
// listener.
type harness struct {
	relay    *Relay
	producer *os.File
	commands *syncBuffer
	endpoint *recordingEndpoint
	listener net.Listener
	result   chan error
	cancel   context.CancelFunc
}

func startRelay(t *testing.T, config Config, observer Observer) *harness {
	t.Helper()
	reader, producer, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	commands := &syncBuffer{}
	endpoint := &recordingEndpoint{Endpoint: source.NewStream(reader, commands, "test-source")}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	relay := New(config, endpoint, listener, observer)
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- relay.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		relay.Shutdown()
		producer.Close()
		select {
		case <-relay.Done():
		case <-time.After(testTimeout):
			t.Error("relay did not stop")
		}
	})

	testutil.RequireEventually(t, func() bool { return relay.State() == StateRunning }, testTimeout, "relay did not start")
	return &harness{
		relay:    relay,
		producer: producer,
		commands: commands,
		endpoint: endpoint,
		listener: listener,
		result:   result,
		cancel:   cancel,
	}
}

// dial connects a client and waits until the relay has registered
// wantClients clients.
func (h *harness) dial(t *testing.T, wantClients int) net.Conn {
	t.Helper()
	client, err := net.Dial("tcp", h.relay.Addr().String())
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	testutil.RequireEventually(t, func() bool { return h.relay.Stats().Clients == wantClients }, testTimeout,
		"relay did not register client %d", wantClients)
	return client
}

func (h *harness) produce(t *testing.T, data []byte) {
	t.Helper()
	if _, err := h.producer.Write(data); err != nil {
		t.Fatalf("writing to source: %v", err)
	}
}
