// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration used on telebridge's
// local control sockets.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same status snapshot always produces the same bytes. Decoding ignores
// unknown fields, which lets an older telebridge-status read a newer
// relay's snapshot.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Socket code uses the stream forms:
//
//	encoder := codec.NewEncoder(connection)
//	decoder := codec.NewDecoder(connection)
package codec
