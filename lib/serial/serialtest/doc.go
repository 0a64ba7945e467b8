// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package serialtest provides a pseudo-terminal pair that stands in
// for a flight controller in tests. The test holds the master side and
// plays the device; the code under test opens the slave path exactly
// as it would open /dev/ttyACM0.
package serialtest
