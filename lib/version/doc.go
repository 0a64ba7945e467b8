// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for telebridge binaries.
//
// [Version], [GitCommit], [GitDirty], and [BuildTime] are injected
// with -ldflags -X at release time and keep their development defaults
// otherwise. [Info] formats them for --version; [Print] writes the
// full line for a named binary.
package version
