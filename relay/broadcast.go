// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"sync"
	"time"
)

// DefaultWriteTimeout bounds each per-client frame write.
const DefaultWriteTimeout = 2 * time.Second

// Broadcaster delivers one frame to every registered client.
type Broadcaster struct {
	registry     *Registry
	observer     Observer
	writeTimeout time.Duration
}

// NewBroadcaster returns a Broadcaster over registry. Non-positive
// writeTimeout selects DefaultWriteTimeout; a nil observer discards
// events.
func NewBroadcaster(registry *Registry, observer Observer, writeTimeout time.Duration) *Broadcaster {
	if observer == nil {
		observer = NopObserver{}
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Broadcaster{
		registry:     registry,
		observer:     observer,
		writeTimeout: writeTimeout,
	}
}

// Broadcast writes frame to every client in a registry snapshot and
// returns how many received all of it. Writes to different clients run
// concurrently and Broadcast returns only once all of them finished,
// so successive calls deliver frames in order. Clients whose write
// failed are evicted after the pass.
func (b *Broadcaster) Broadcast(frame []byte) int {
	connections := b.registry.Snapshot()
	if len(connections) == 0 {
		return 0
	}

	failures := make([]error, len(connections))
	if len(connections) == 1 {
		failures[0] = connections[0].writeFrame(frame, b.writeTimeout)
	} else {
		var waitGroup sync.WaitGroup
		for index, connection := range connections {
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				failures[index] = connection.writeFrame(frame, b.writeTimeout)
			}()
		}
		waitGroup.Wait()
	}

	delivered := 0
	for index, connection := range connections {
		if failures[index] != nil {
			evict(b.registry, b.observer, connection, failures[index])
			continue
		}
		delivered++
	}
	return delivered
}

// evict removes connection from registry, closes it, and reports the
// disconnect once. A connection already removed (by shutdown, or by an
// earlier eviction) is only closed.
func evict(registry *Registry, observer Observer, connection *Connection, reason error) {
	removed := registry.Remove(connection)
	connection.Close()
	if removed {
		observer.ClientDisconnected(connection, reason, registry.Count())
	}
}
