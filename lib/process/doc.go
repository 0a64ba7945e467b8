// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helpers shared by telebridge
// binaries: reporting a fatal error before or after the structured
// logger exists, and mapping it to the process exit status.
package process
