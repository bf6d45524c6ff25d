package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configDoc(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultDevice, cfg.Device)
	assert.Equal(t, DefaultStopTimeout, cfg.Player.StopTimeout.Duration)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.Address)
	require.NoError(t, cfg.Validate())
}

func TestParseFullDocument(t *testing.T) {
	t.Setenv("UVC_TEST_HOME", "/srv/uvc")
	cfg, err := Parse(configDoc(
		`version: "1"`,
		"device: Cam 1",
		"player:",
		"  executable: $UVC_TEST_HOME/bin/ffplay",
		"  stopTimeout: 3s",
		"logging:",
		"  directory: ${UVC_TEST_HOME}/logs",
		"  level: debug",
		"  format: json",
		"metrics:",
		"  address: 127.0.0.1:9464",
	))
	require.NoError(t, err)

	assert.Equal(t, "Cam 1", cfg.Device)
	assert.Equal(t, "/srv/uvc/bin/ffplay", cfg.Player.Executable)
	assert.Equal(t, 3*time.Second, cfg.Player.StopTimeout.Duration)
	assert.Equal(t, "/srv/uvc/logs", cfg.Logging.Directory)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Address)
}

func TestParseEmptyDocumentUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name     string
		doc      []byte
		contains []string
	}{
		{
			name:     "unknown field",
			doc:      configDoc("devices: Cam 1"),
			contains: []string{"schema validation failed", "devices"},
		},
		{
			name:     "unknown nested field",
			doc:      configDoc("player:", "  path: /bin/ffplay"),
			contains: []string{"schema validation failed", "player"},
		},
		{
			name:     "bad format",
			doc:      configDoc("logging:", "  format: xml"),
			contains: []string{"schema validation failed", "logging.format"},
		},
		{
			name:     "bad duration",
			doc:      configDoc("player:", "  stopTimeout: soon"),
			contains: []string{"schema validation failed", "player.stopTimeout"},
		},
		{
			name:     "zero timeout",
			doc:      configDoc("player:", "  stopTimeout: 0s"),
			contains: []string{"player.stopTimeout: must be positive"},
		},
		{
			name:     "metrics port out of range",
			doc:      configDoc("metrics:", "  address: localhost:70000"),
			contains: []string{"metrics.address", "invalid port"},
		},
		{
			name:     "metrics missing port",
			doc:      configDoc("metrics:", "  address: localhost"),
			contains: []string{"metrics.address", "invalid address"},
		},
		{
			name:     "malformed yaml",
			doc:      configDoc("device: [unterminated"),
			contains: []string{"decode"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.doc)
			require.Error(t, err)
			for _, want := range tc.contains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, found, err := LoadOptional(fs, "/opt/uvc/uvcview.yaml")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, afero.WriteFile(fs, "/opt/uvc/uvcview.yaml", configDoc("device: Cam 2"), 0o644))
	cfg, found, err = LoadOptional(fs, "/opt/uvc/uvcview.yaml")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Cam 2", cfg.Device)

	require.NoError(t, afero.WriteFile(fs, "/opt/uvc/uvcview.yaml", configDoc("device: [x"), 0o644))
	_, _, err = LoadOptional(fs, "/opt/uvc/uvcview.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/opt/uvc/uvcview.yaml")
}

func TestLoadMissingFileIsAnError(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nowhere.yaml")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDevice:      "Env Cam",
		EnvPlayer:      "/usr/bin/ffplay",
		EnvStopTimeout: "250ms",
		EnvLogDir:      "/var/log/uvc",
		EnvLogLevel:    "warn",
		EnvLogFormat:   "json",
		EnvMetricsAddr: ":9464",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Env Cam", cfg.Device)
	assert.Equal(t, "/usr/bin/ffplay", cfg.Player.Executable)
	assert.Equal(t, 250*time.Millisecond, cfg.Player.StopTimeout.Duration)
	assert.Equal(t, "/var/log/uvc", cfg.Logging.Directory)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":9464", cfg.Metrics.Address)
}

func TestApplyEnvIgnoresEmptyAndRejectsBadDuration(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(key string) (string, bool) { return "", true }))
	assert.Equal(t, Default(), cfg)

	err := cfg.ApplyEnv(func(key string) (string, bool) {
		if key == EnvStopTimeout {
			return "fast", true
		}
		return "", false
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvStopTimeout)
}

func TestWriteFileRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	cfg := Default()
	cfg.Device = `Cam "A"`
	cfg.Metrics.Address = "127.0.0.1:9464"
	require.NoError(t, WriteFile(afero.NewOsFs(), path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# uvcview configuration"))

	loaded, err := Load(afero.NewOsFs(), path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Device, loaded.Device)
	assert.Equal(t, cfg.Player.StopTimeout.Duration, loaded.Player.StopTimeout.Duration)
	assert.Equal(t, cfg.Metrics.Address, loaded.Metrics.Address)
}

func TestWriteFileUsesGivenFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/opt/uvc", 0o755))

	cfg := Default()
	cfg.Device = "Mem Cam"
	require.NoError(t, WriteFile(fs, "/opt/uvc/uvcview.yaml", cfg))

	loaded, err := Load(fs, "/opt/uvc/uvcview.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Mem Cam", loaded.Device)

	_, err = os.Stat("/opt/uvc/uvcview.yaml")
	assert.True(t, os.IsNotExist(err), "write leaked to the OS filesystem")
}
