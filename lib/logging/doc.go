// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the slog.Logger used by telebridge binaries.
//
// With the default "auto" format, output to a terminal uses
// slog.TextHandler and anything else (a pipe, a journal, a file) uses
// slog.JSONHandler so log collectors get structured records. When a
// file is configured, records go to a lumberjack rotating writer
// instead of stderr.
package logging
