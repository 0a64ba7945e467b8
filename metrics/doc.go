// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exports relay activity as Prometheus metrics.
//
// [Observer] implements relay.Observer and keeps one series per event
// kind under the "telebridge" namespace. [NewRegistry] builds a
// registry carrying the Go runtime and process collectors alongside
// it, and [Serve] exposes a registry at /metrics until its context is
// cancelled.
package metrics
