// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	cfg := Default()

	if cfg.Listen.Port != 5760 {
		t.Errorf("expected listen.port=5760, got %d", cfg.Listen.Port)
	}
	if cfg.Source.Mode != "device" || cfg.Source.Device != "/dev/ttyACM0" || cfg.Source.BaudRate != 57600 {
		t.Errorf("unexpected source defaults: %+v", cfg.Source)
	}
	if cfg.Relay.StatusEvery != 10 {
		t.Errorf("expected relay.status_every=10, got %d", cfg.Relay.StatusEvery)
	}
	if cfg.Status.Socket != "/run/user/1000/telebridge.sock" {
		t.Errorf("expected expanded status socket, got %s", cfg.Status.Socket)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestDefault_StatusSocketFallback(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	if socket := Default().Status.Socket; socket != "/tmp/telebridge.sock" {
		t.Errorf("expected /tmp/telebridge.sock, got %s", socket)
	}
}

func TestLoad_RequiresEnvVar(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when TELEBRIDGE_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "TELEBRIDGE_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "telebridge.yaml", `
listen:
  port: 14550
source:
  device: ${TELEBRIDGE_TEST_DEVICE:-/dev/ttyUSB0}
  baud_rate: 115200
relay:
  write_timeout: 500ms
  max_source_failures: 5
log:
  level: debug
  file: ${TELEBRIDGE_TEST_LOGS}/telebridge.log
`)
	t.Setenv(EnvVar, path)
	t.Setenv("TELEBRIDGE_TEST_DEVICE", "")
	t.Setenv("TELEBRIDGE_TEST_LOGS", "/var/log/rov")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Listen.Port != 14550 {
		t.Errorf("expected listen.port=14550, got %d", cfg.Listen.Port)
	}
	if cfg.Source.Device != "/dev/ttyUSB0" {
		t.Errorf("expected default-expanded device, got %s", cfg.Source.Device)
	}
	if cfg.Source.BaudRate != 115200 {
		t.Errorf("expected baud_rate=115200, got %d", cfg.Source.BaudRate)
	}
	// Untouched fields keep their defaults.
	if cfg.Source.Mode != "device" {
		t.Errorf("expected mode default to survive, got %q", cfg.Source.Mode)
	}
	if cfg.Relay.WriteTimeout.Std() != 500*time.Millisecond {
		t.Errorf("expected write_timeout=500ms, got %s", cfg.Relay.WriteTimeout)
	}
	if cfg.Relay.MaxSourceFailures != 5 {
		t.Errorf("expected max_source_failures=5, got %d", cfg.Relay.MaxSourceFailures)
	}
	if cfg.Log.File != "/var/log/rov/telebridge.log" {
		t.Errorf("expected expanded log file, got %s", cfg.Log.File)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config is invalid: %v", err)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "telebridge.jsonc", `{
	// Bench setup: replayed log on stdin.
	"source": {"mode": "stdio"},
	"relay": {
		"source_poll_interval": "25ms",
		"accept_timeout": 250000000, /* nanoseconds */
	},
	"metrics": {"listen": "127.0.0.1:9105"},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Source.Mode != "stdio" {
		t.Errorf("expected mode=stdio, got %q", cfg.Source.Mode)
	}
	if cfg.Relay.SourcePollInterval.Std() != 25*time.Millisecond {
		t.Errorf("expected source_poll_interval=25ms, got %s", cfg.Relay.SourcePollInterval)
	}
	if cfg.Relay.AcceptTimeout.Std() != 250*time.Millisecond {
		t.Errorf("expected accept_timeout=250ms, got %s", cfg.Relay.AcceptTimeout)
	}
	if cfg.Metrics.Listen != "127.0.0.1:9105" {
		t.Errorf("expected metrics.listen, got %q", cfg.Metrics.Listen)
	}
	if cfg.Listen.Port != 5760 {
		t.Errorf("expected default port to survive, got %d", cfg.Listen.Port)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"bad duration", "bad.yaml", "relay:\n  write_timeout: soon\n", `invalid duration "soon"`},
		{"bad yaml", "broken.yaml", "listen: [\n", "parsing YAML"},
		{"bad json", "broken.json", `{"listen": }`, "parsing JSON"},
		{"unknown extension", "telebridge.toml", "port = 1", "unsupported config extension"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Listen.Port = 70000
	cfg.Source.Mode = "radio"
	cfg.Relay.RetryDelay = Duration(-time.Second)
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	for _, want := range []string{"listen.port", "source.mode", "relay.retry_delay", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error missing %q:\n%v", want, err)
		}
	}
}

func TestValidate_DeviceModeNeedsDevice(t *testing.T) {
	cfg := Default()
	cfg.Source.Device = ""
	cfg.Source.BaudRate = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "source.device") || !strings.Contains(err.Error(), "source.baud_rate") {
		t.Errorf("expected device and baud errors, got %v", err)
	}

	cfg.Source.Mode = "stdio"
	if err := cfg.Validate(); err != nil {
		t.Errorf("stdio mode should not need a device: %v", err)
	}
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	text, err := d.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != `"1.5s"` {
		t.Errorf("MarshalJSON() = %s, want \"1.5s\"", text)
	}
	yamlValue, err := d.MarshalYAML()
	if err != nil {
		t.Fatal(err)
	}
	if yamlValue != "1.5s" {
		t.Errorf("MarshalYAML() = %v, want 1.5s", yamlValue)
	}
}
