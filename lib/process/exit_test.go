// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"testing"
)

func TestReportFormat(t *testing.T) {
	var output bytes.Buffer
	Report(&output, errors.New("opening /dev/ttyACM0: no such file or directory"))
	want := "error: opening /dev/ttyACM0: no such file or directory\n"
	if output.String() != want {
		t.Fatalf("Report wrote %q, want %q", output.String(), want)
	}
}
