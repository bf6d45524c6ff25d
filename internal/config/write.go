package config

import (
	"bytes"
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const fileHeader = "# uvcview configuration. Values here are overridden by UVCVIEW_* variables and flags.\n"

// Encode renders c as YAML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile replaces path on fs with the encoded configuration. On the OS
// filesystem the replacement is atomic.
func WriteFile(fs afero.Fs, path string, c *Config) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if _, ok := fs.(*afero.OsFs); ok {
		err = renameio.WriteFile(path, data, 0o644)
	} else {
		err = afero.WriteFile(fs, path, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
