package config

import (
	"fmt"
	"time"
)

// Environment variables that override file values.
const (
	EnvDevice      = "UVCVIEW_DEVICE"
	EnvPlayer      = "UVCVIEW_PLAYER"
	EnvStopTimeout = "UVCVIEW_STOP_TIMEOUT"
	EnvLogDir      = "UVCVIEW_LOG_DIR"
	EnvLogLevel    = "UVCVIEW_LOG_LEVEL"
	EnvLogFormat   = "UVCVIEW_LOG_FORMAT"
	EnvMetricsAddr = "UVCVIEW_METRICS_ADDR"
)

// ApplyEnv overlays non-empty environment values onto c. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		value, ok := lookup(key)
		if !ok || value == "" {
			return "", false
		}
		return value, true
	}

	if value, ok := get(EnvDevice); ok {
		c.Device = value
	}
	if value, ok := get(EnvPlayer); ok {
		c.Player.Executable = value
	}
	if value, ok := get(EnvStopTimeout); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStopTimeout, err)
		}
		c.Player.StopTimeout = Duration{Duration: d, explicit: true}
	}
	if value, ok := get(EnvLogDir); ok {
		c.Logging.Directory = value
	}
	if value, ok := get(EnvLogLevel); ok {
		c.Logging.Level = value
	}
	if value, ok := get(EnvLogFormat); ok {
		c.Logging.Format = value
	}
	if value, ok := get(EnvMetricsAddr); ok {
		c.Metrics.Address = value
	}
	return nil
}
