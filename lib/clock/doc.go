// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the relay's
// retry delays and uptime accounting.
//
// Production code holds a Clock and calls Sleep, After, and Now on it
// instead of the time package. Real() is the standard library; Fake()
// only moves when the test calls Advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go worker(c)             // worker calls c.Sleep(time.Second)
//	c.WaitForTimers(1)       // wait until the Sleep is registered
//	c.Advance(time.Second)   // release it deterministically
//
// Socket deadlines are not routed through Clock. The runtime poller
// enforces them against wall time, so they must be computed from
// time.Now.
package clock
