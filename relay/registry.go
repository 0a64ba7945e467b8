// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import "sync"

// Registry is the set of live client connections, in registration
// order. Every operation takes the lock for its own duration only;
// iteration happens over a Snapshot, so slow client I/O never holds
// the lock against the acceptor.
type Registry struct {
	mu          sync.Mutex
	connections []*Connection
	closed      bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers connection. Returns false if it is already registered
// or the registry has been drained for shutdown; the caller owns (and
// should close) a connection that was not added.
func (r *Registry) Add(connection *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	for _, existing := range r.connections {
		if existing == connection {
			return false
		}
	}
	r.connections = append(r.connections, connection)
	return true
}

// Remove unregisters connection. Removing a connection that is not
// registered is a no-op. Returns whether it was registered.
func (r *Registry) Remove(connection *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.connections {
		if existing == connection {
			r.connections = append(r.connections[:i], r.connections[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current connections.
func (r *Registry) Snapshot() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]*Connection, len(r.connections))
	copy(snapshot, r.connections)
	return snapshot
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.connections)
}

// Drain removes and returns every connection and refuses further Adds.
func (r *Registry) Drain() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	drained := r.connections
	r.connections = nil
	r.closed = true
	return drained
}
