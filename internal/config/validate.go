package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/sirupsen/logrus"
)

// Validate enforces invariants the schema cannot express.
func (c *Config) Validate() error {
	if c.Version != currentVersion {
		return fmt.Errorf("%s: unsupported version %q", fieldPath("version"), c.Version)
	}
	if c.Player.StopTimeout.Duration <= 0 {
		return fmt.Errorf("%s: must be positive", fieldPath("player", "stopTimeout"))
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%s: %w", fieldPath("logging", "level"), err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%s: must be text or json, got %q", fieldPath("logging", "format"), c.Logging.Format)
	}
	if c.Metrics.Address != "" {
		if err := validateListenAddress(c.Metrics.Address); err != nil {
			return fmt.Errorf("%s: %w", fieldPath("metrics", "address"), err)
		}
	}
	return nil
}

func validateListenAddress(addr string) error {
	host, port, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if strings.ContainsAny(host, " \t") {
		return fmt.Errorf("invalid host %q", host)
	}
	n, err := nat.ParsePort(port)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", port, err)
	}
	if n == 0 && port != "0" {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}
