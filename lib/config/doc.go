// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads telebridge configuration.
//
// Configuration comes from a single file named by either the
// TELEBRIDGE_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no search path.
// Without a file, binaries run on [Default] plus their flags.
//
// The file format follows the extension: .yaml and .yml files are YAML,
// .json and .jsonc files are JSON with // and /* */ comments and
// trailing commas allowed. Fields missing from the file keep their
// default values.
//
// Path fields (the device, the log file, the status socket) expand
// ${VAR} and ${VAR:-default} after loading. Durations are written as Go
// duration strings ("10ms", "2s").
//
// Key exports:
//
//   - [Config] -- listener, source, relay timing, logging, status, metrics
//   - [Default] -- the built-in configuration
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Duration] -- a time.Duration that decodes from strings
//
// This package depends on no other telebridge packages.
package config
