// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestBroadcastReachesEveryClient(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	var clients []net.Conn
	for range 3 {
		connection, client := tcpPair(t)
		registry.Add(connection)
		clients = append(clients, client)
	}
	broadcaster := NewBroadcaster(registry, nil, 0)

	frame := pattern(FrameSize)
	if delivered := broadcaster.Broadcast(frame); delivered != 3 {
		t.Fatalf("Broadcast() = %d, want 3", delivered)
	}
	for index, client := range clients {
		if got := readFrame(t, client); !bytes.Equal(got, frame) {
			t.Errorf("client %d received a different frame", index)
		}
	}
}

func TestBroadcastEvictsBrokenClient(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	observer := &recordingObserver{}
	broken, _ := tcpPair(t)
	healthy, healthyClient := tcpPair(t)
	registry.Add(broken)
	registry.Add(healthy)

	// Closing our side makes every further write fail immediately.
	broken.Close()

	broadcaster := NewBroadcaster(registry, observer, 0)
	frame := pattern(FrameSize)
	if delivered := broadcaster.Broadcast(frame); delivered != 1 {
		t.Fatalf("Broadcast() = %d, want 1", delivered)
	}
	if got := readFrame(t, healthyClient); !bytes.Equal(got, frame) {
		t.Error("healthy client received a different frame")
	}

	snapshot := registry.Snapshot()
	if len(snapshot) != 1 || snapshot[0] != healthy {
		t.Fatalf("registry after eviction = %v, want only the healthy client", snapshot)
	}
	if len(observer.disconnects) != 1 || observer.disconnects[0].connection != broken {
		t.Fatalf("disconnect events = %v, want one for the broken client", observer.disconnects)
	}
	if observer.disconnects[0].reason == nil {
		t.Error("disconnect reason is nil")
	}

	// The next frame still reaches the healthy client.
	second := pattern(2 * FrameSize)[FrameSize:]
	if delivered := broadcaster.Broadcast(second); delivered != 1 {
		t.Fatalf("second Broadcast() = %d, want 1", delivered)
	}
	if got := readFrame(t, healthyClient); !bytes.Equal(got, second) {
		t.Error("healthy client received a different second frame")
	}
}

func TestBroadcastStalledClientDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	observer := &recordingObserver{}

	// Nothing ever reads the far end of the pipe, so every write to
	// it blocks until its deadline.
	stalledConn, stalledPeer := net.Pipe()
	stalled := NewConnection(stalledConn)
	t.Cleanup(func() {
		stalledPeer.Close()
		stalled.Close()
	})
	healthy, healthyClient := tcpPair(t)
	registry.Add(stalled)
	registry.Add(healthy)

	const writeTimeout = 100 * time.Millisecond
	broadcaster := NewBroadcaster(registry, observer, writeTimeout)
	frame := pattern(FrameSize)

	start := time.Now()
	delivered := broadcaster.Broadcast(frame)
	elapsed := time.Since(start)

	if delivered != 1 {
		t.Fatalf("Broadcast() = %d, want 1", delivered)
	}
	if elapsed > 20*writeTimeout {
		t.Errorf("Broadcast() took %v with a %v write timeout", elapsed, writeTimeout)
	}
	if got := readFrame(t, healthyClient); !bytes.Equal(got, frame) {
		t.Error("healthy client received a different frame")
	}
	snapshot := registry.Snapshot()
	if len(snapshot) != 1 || snapshot[0] != healthy {
		t.Fatalf("registry after broadcast = %v, want only the healthy client", snapshot)
	}
	if observer.disconnectCount() != 1 || observer.disconnects[0].connection != stalled {
		t.Errorf("disconnect events = %v, want one for the stalled client", observer.disconnects)
	}
}

func TestBroadcastWithoutClients(t *testing.T) {
	t.Parallel()

	broadcaster := NewBroadcaster(NewRegistry(), nil, 0)
	if delivered := broadcaster.Broadcast(pattern(FrameSize)); delivered != 0 {
		t.Errorf("Broadcast() with no clients = %d", delivered)
	}
}
