// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rovlink/telebridge/lib/testutil"
	"github.com/rovlink/telebridge/relay"
)

func newTestObserver(t *testing.T) (*Observer, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	observer, err := NewObserver(registry)
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}
	return observer, registry
}

func testConnection(t *testing.T) *relay.Connection {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return relay.NewConnection(server)
}

func TestObserverCountsEvents(t *testing.T) {
	observer, _ := newTestObserver(t)
	connection := testConnection(t)

	observer.StateChanged(relay.StateRunning)
	observer.ClientConnected(connection, 1)
	observer.ClientConnected(testConnection(t), 2)
	for sequence := uint64(1); sequence <= 3; sequence++ {
		observer.FrameRelayed(sequence, relay.FrameSize, 2)
	}
	observer.CommandForwarded(connection, 10)
	observer.CommandForwarded(connection, 6)
	observer.ClientDisconnected(connection, io.EOF, 1)
	observer.SourceError(errors.New("read: input/output error"))
	observer.AcceptError(errors.New("accept: too many open files"))

	checks := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"frames", observer.frames, 3},
		{"frame bytes", observer.frameBytes, 3 * relay.FrameSize},
		{"deliveries", observer.deliveries, 6},
		{"command bytes", observer.commandBytes, 16},
		{"command reads", observer.commands, 2},
		{"connects", observer.connects, 2},
		{"closed disconnects", observer.disconnects.WithLabelValues(ReasonClosed), 1},
		{"error disconnects", observer.disconnects.WithLabelValues(ReasonError), 0},
		{"source errors", observer.sourceErrors, 1},
		{"accept errors", observer.acceptErrors, 1},
		{"clients", observer.clients, 1},
		{"state", observer.state, float64(relay.StateRunning)},
	}
	for _, check := range checks {
		if got := promtest.ToFloat64(check.collector); got != check.want {
			t.Errorf("%s = %v, want %v", check.name, got, check.want)
		}
	}
}

func TestDisconnectReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ReasonClosed},
		{io.EOF, ReasonClosed},
		{net.ErrClosed, ReasonClosed},
		{relay.ErrRelayStopped, ReasonShutdown},
		{errors.New("write: broken pipe"), ReasonError},
	}
	for _, tt := range tests {
		if got := disconnectReason(tt.err); got != tt.want {
			t.Errorf("disconnectReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNewObserverRejectsDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	if _, err := NewObserver(registry); err != nil {
		t.Fatalf("first NewObserver: %v", err)
	}
	if _, err := NewObserver(registry); err == nil {
		t.Error("second NewObserver on the same registry succeeded")
	}
}

func TestServeExposesMetrics(t *testing.T) {
	registry := NewRegistry()
	observer, err := NewObserver(registry)
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}
	observer.FrameRelayed(1, relay.FrameSize, 1)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- Serve(ctx, listener, registry, nil) }()

	response, err := http.Get("http://" + listener.Addr().String() + "/metrics")
	if err != nil {
		cancel()
		t.Fatalf("GET /metrics: %v", err)
	}
	body, err := io.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}

	for _, want := range []string{
		"telebridge_frames_relayed_total 1",
		`telebridge_client_disconnects_total{reason="shutdown"} 0`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("/metrics missing %q", want)
		}
	}

	cancel()
	if err := testutil.RequireReceive(t, result, 5*time.Second, "Serve did not return"); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}
