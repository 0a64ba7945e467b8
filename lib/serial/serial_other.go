// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package serial

// SupportedBaudRate always reports false off Linux.
func SupportedBaudRate(rate int) bool { return false }

// Open always fails off Linux.
func Open(path string, baudRate int) (*Port, error) {
	return nil, ErrUnsupported
}
