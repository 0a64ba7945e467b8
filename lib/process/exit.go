// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Binaries
// call it from main() with the error returned by run(), which covers
// both startup failures (device open, listener bind) and a relay that
// stopped because its source failed.
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(1)
}

// Report writes the fatal error line without exiting.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
