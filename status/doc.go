// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package status serves a running relay's health over a Unix socket.
//
// The protocol is one CBOR request and one CBOR response per
// connection. The request is a map with an "action" field; the
// response is a [Response] envelope whose Data field carries the
// action's result:
//
//   - "status" returns a [Status] snapshot (state, uptime, client
//     count, frame and byte counters).
//   - "clients" returns a list of [Client] entries.
//
// [Server] answers on the socket; [Query], [QueryClients], and [Call]
// are the client side used by telebridge-status.
package status
