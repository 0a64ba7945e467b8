// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package source

import "os"

// OpenStdio returns a Stream over standard input and standard output.
// Reads are unbounded on this platform.
func OpenStdio() (*Stream, error) {
	return NewStream(os.Stdin, os.Stdout, "stdin/stdout"), nil
}
