// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable Load reads the file path from.
const EnvVar = "TELEBRIDGE_CONFIG"

// Config is the complete telebridge configuration.
type Config struct {
	// Listen configures the client-facing TCP listener.
	Listen ListenConfig `yaml:"listen" json:"listen"`

	// Source selects the telemetry source.
	Source SourceConfig `yaml:"source" json:"source"`

	// Relay tunes the relay loops.
	Relay RelayConfig `yaml:"relay" json:"relay"`

	Log LogConfig `yaml:"log" json:"log"`

	Status StatusConfig `yaml:"status" json:"status"`

	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ListenConfig configures the TCP listener.
type ListenConfig struct {
	// Host is the address to bind. Empty binds every interface.
	Host string `yaml:"host" json:"host"`

	// Port is the TCP port ground stations connect to.
	// Default: 5760
	Port int `yaml:"port" json:"port"`
}

// SourceConfig selects the telemetry source.
type SourceConfig struct {
	// Mode is "device" for a serial device or "stdio" for standard
	// input and output.
	// Default: device
	Mode string `yaml:"mode" json:"mode"`

	// Device is the serial device path.
	// Default: /dev/ttyACM0
	Device string `yaml:"device" json:"device"`

	// BaudRate is the serial line rate.
	// Default: 57600
	BaudRate int `yaml:"baud_rate" json:"baud_rate"`
}

// RelayConfig tunes the relay loops. Zero values leave the relay's
// own defaults in place.
type RelayConfig struct {
	SourcePollInterval Duration `yaml:"source_poll_interval" json:"source_poll_interval"`
	PollTimeout        Duration `yaml:"poll_timeout" json:"poll_timeout"`
	WriteTimeout       Duration `yaml:"write_timeout" json:"write_timeout"`
	AcceptTimeout      Duration `yaml:"accept_timeout" json:"accept_timeout"`
	EOFDelay           Duration `yaml:"eof_delay" json:"eof_delay"`
	RetryDelay         Duration `yaml:"retry_delay" json:"retry_delay"`

	// MaxSourceFailures stops the relay after this many consecutive
	// source read failures. Zero retries forever.
	MaxSourceFailures int `yaml:"max_source_failures" json:"max_source_failures"`

	// StatusEvery is the number of frames between milestone log lines.
	// Negative disables them.
	// Default: 10
	StatusEvery int `yaml:"status_every" json:"status_every"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level" json:"level"`

	// Format is auto, text, or json. Auto picks text on a terminal.
	// Default: auto
	Format string `yaml:"format" json:"format"`

	// File, when set, writes logs to a rotating file instead of stderr.
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
}

// StatusConfig configures the status socket.
type StatusConfig struct {
	// Socket is the Unix socket path. Empty disables the status server.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/telebridge.sock
	Socket string `yaml:"socket" json:"socket"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the HTTP address serving /metrics. Empty disables it.
	Listen string `yaml:"listen" json:"listen"`
}

// DefaultStatusSocket is the status socket path before expansion.
const DefaultStatusSocket = "${XDG_RUNTIME_DIR:-/tmp}/telebridge.sock"

// Default returns the built-in configuration, with path variables
// already expanded.
func Default() *Config {
	cfg := defaults()
	cfg.expandVariables()
	return cfg
}

func defaults() *Config {
	return &Config{
		Listen: ListenConfig{
			Port: 5760,
		},
		Source: SourceConfig{
			Mode:     "device",
			Device:   "/dev/ttyACM0",
			BaudRate: 57600,
		},
		Relay: RelayConfig{
			StatusEvery: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Status: StatusConfig{
			Socket: DefaultStatusSocket,
		},
	}
}

// Load loads configuration from the file named by TELEBRIDGE_CONFIG.
// Fails if the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your telebridge config file, or use --config", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.decode(path, data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing JSON: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config extension %q (want .yaml, .yml, .json, or .jsonc)", filepath.Ext(path))
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	c.Source.Device = expandVars(c.Source.Device)
	c.Log.File = expandVars(c.Log.File)
	c.Status.Socket = expandVars(c.Status.Socket)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen.Port < 1 || c.Listen.Port > 65535 {
		errs = append(errs, fmt.Errorf("listen.port must be between 1 and 65535, got %d", c.Listen.Port))
	}

	switch c.Source.Mode {
	case "device":
		if c.Source.Device == "" {
			errs = append(errs, errors.New("source.device is required in device mode"))
		}
		if c.Source.BaudRate <= 0 {
			errs = append(errs, fmt.Errorf("source.baud_rate must be positive, got %d", c.Source.BaudRate))
		}
	case "stdio":
	default:
		errs = append(errs, fmt.Errorf("source.mode must be \"device\" or \"stdio\", got %q", c.Source.Mode))
	}

	if c.Relay.MaxSourceFailures < 0 {
		errs = append(errs, fmt.Errorf("relay.max_source_failures must not be negative, got %d", c.Relay.MaxSourceFailures))
	}
	for name, value := range map[string]Duration{
		"relay.source_poll_interval": c.Relay.SourcePollInterval,
		"relay.poll_timeout":         c.Relay.PollTimeout,
		"relay.write_timeout":        c.Relay.WriteTimeout,
		"relay.accept_timeout":       c.Relay.AcceptTimeout,
		"relay.eof_delay":            c.Relay.EOFDelay,
		"relay.retry_delay":          c.Relay.RetryDelay,
	} {
		if value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, value))
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "auto", "text", "json", "":
	default:
		errs = append(errs, fmt.Errorf("log.format must be auto, text, or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Duration is a time.Duration written as a duration string in config
// files. JSON also accepts a bare number of nanoseconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	switch value := value.(type) {
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(value))
	default:
		return fmt.Errorf("invalid duration %s", data)
	}
	return nil
}
