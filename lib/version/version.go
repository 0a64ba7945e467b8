// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

// These variables are set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/rovlink/telebridge/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version.
	Version = "0.1.0-dev"
)

// Info returns "0.1.0-dev (abc1234, 2026-...)".
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Print writes "<binary> <info> go1.x linux/arm64" to stdout.
func Print(binary string) {
	Fprint(os.Stdout, binary)
}

// Fprint is Print with an explicit destination.
func Fprint(w io.Writer, binary string) {
	fmt.Fprintf(w, "%s %s %s %s/%s\n", binary, Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
