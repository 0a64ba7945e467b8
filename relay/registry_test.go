// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"net"
	"sync"
	"testing"
)

func pipeConnection(t *testing.T) *Connection {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConnection(server)
}

func TestRegistryAddRemove(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	first := pipeConnection(t)
	second := pipeConnection(t)

	if !registry.Add(first) || !registry.Add(second) {
		t.Fatal("Add of new connections returned false")
	}
	if registry.Add(first) {
		t.Error("Add of a registered connection returned true")
	}
	if registry.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", registry.Count())
	}

	if !registry.Remove(first) {
		t.Error("Remove of a registered connection returned false")
	}
	if registry.Remove(first) {
		t.Error("second Remove returned true")
	}
	if registry.Remove(pipeConnection(t)) {
		t.Error("Remove of a never-registered connection returned true")
	}

	snapshot := registry.Snapshot()
	if len(snapshot) != 1 || snapshot[0] != second {
		t.Fatalf("Snapshot() = %v, want [%v]", snapshot, second)
	}
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	first := pipeConnection(t)
	registry.Add(first)

	snapshot := registry.Snapshot()
	registry.Remove(first)
	registry.Add(pipeConnection(t))

	if len(snapshot) != 1 || snapshot[0] != first {
		t.Errorf("snapshot changed after registry mutation: %v", snapshot)
	}
}

func TestRegistryPreservesOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	var connections []*Connection
	for range 5 {
		connection := pipeConnection(t)
		connections = append(connections, connection)
		registry.Add(connection)
	}
	registry.Remove(connections[2])

	want := []*Connection{connections[0], connections[1], connections[3], connections[4]}
	snapshot := registry.Snapshot()
	for index := range want {
		if snapshot[index] != want[index] {
			t.Fatalf("Snapshot()[%d] = %v, want %v", index, snapshot[index], want[index])
		}
	}
}

func TestRegistryDrainRefusesAdds(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Add(pipeConnection(t))
	registry.Add(pipeConnection(t))

	drained := registry.Drain()
	if len(drained) != 2 {
		t.Fatalf("Drain() returned %d connections, want 2", len(drained))
	}
	if registry.Count() != 0 {
		t.Errorf("Count() after Drain = %d", registry.Count())
	}
	if registry.Add(pipeConnection(t)) {
		t.Error("Add after Drain returned true")
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	var waitGroup sync.WaitGroup
	for range 8 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for range 50 {
				connection := NewConnection(&net.TCPConn{})
				registry.Add(connection)
				registry.Snapshot()
				registry.Remove(connection)
			}
		}()
	}
	waitGroup.Wait()
	if registry.Count() != 0 {
		t.Errorf("Count() = %d after balanced adds and removes", registry.Count())
	}
}
