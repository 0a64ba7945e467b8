// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for telebridge
// packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout safety valve so a broken relay fails the test
// instead of hanging it. [RequireEventually] polls a condition for
// state that has no channel to wait on, such as the registry count
// after an accept. [SocketDir] creates a short directory under /tmp for
// Unix sockets, whose paths are limited to 108 bytes. [UniqueID]
// produces distinguishable payloads for tests that mix traffic from
// several clients.
//
// All helpers call t.Fatalf on failure.
package testutil
