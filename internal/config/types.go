package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultDevice is the capture device offered when nothing is configured.
	DefaultDevice = "STM32 uvc"
	// DefaultStopTimeout bounds the wait for the player to close on request.
	DefaultStopTimeout = 1500 * time.Millisecond
	// DefaultFileName is looked up next to the binary when no path is given.
	DefaultFileName = "uvcview.yaml"

	currentVersion = "1"
)

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
	explicit bool
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	d.explicit = true
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsSet reports whether the duration was explicitly provided or non-zero.
func (d Duration) IsSet() bool {
	return d.explicit || d.Duration != 0
}

// Config mirrors the uvcview.yaml document structure.
type Config struct {
	Version string      `yaml:"version"`
	Device  string      `yaml:"device"`
	Player  PlayerSpec  `yaml:"player"`
	Logging LoggingSpec `yaml:"logging"`
	Metrics MetricsSpec `yaml:"metrics"`
}

// PlayerSpec locates the player and bounds how long it may take to close.
type PlayerSpec struct {
	Executable  string   `yaml:"executable,omitempty"`
	StopTimeout Duration `yaml:"stopTimeout"`
}

// LoggingSpec configures the diagnostic log.
type LoggingSpec struct {
	Directory string `yaml:"directory,omitempty"`
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
}

// MetricsSpec configures the Prometheus endpoint. An empty address disables
// it.
type MetricsSpec struct {
	Address string `yaml:"address,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = currentVersion
	}
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if !c.Player.StopTimeout.IsSet() {
		c.Player.StopTimeout = Duration{Duration: DefaultStopTimeout}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func fieldPath(parts ...string) string {
	return strings.Join(parts, ".")
}
