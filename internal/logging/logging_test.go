package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/uvcview/internal/config"
)

func TestFileName(t *testing.T) {
	day := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "uvcview-2024-03-07.log", FileName(day))
}

func TestNewWritesDailyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	now := time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)
	dir := filepath.Join("/var", "log", "uvc")

	logger, closer, err := New(fs, config.LoggingSpec{Directory: dir, Level: "debug", Format: "json"}, now)
	require.NoError(t, err)
	logger.WithField("device", "Cam 1").Debug("player started")
	require.NoError(t, closer.Close())

	data, err := afero.ReadFile(fs, filepath.Join(dir, "uvcview-2024-03-07.log"))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "player started", entry["msg"])
	assert.Equal(t, "Cam 1", entry["device"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewAppendsToExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	now := time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)
	spec := config.LoggingSpec{Directory: "/logs", Level: "info"}

	for _, msg := range []string{"first", "second"} {
		logger, closer, err := New(fs, spec, now)
		require.NoError(t, err)
		logger.Info(msg)
		require.NoError(t, closer.Close())
	}

	data, err := afero.ReadFile(fs, filepath.Join("/logs", FileName(now)))
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=first")
	assert.Contains(t, string(data), "msg=second")
}

func TestNewWithoutDirectoryDiscards(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, closer, err := New(fs, config.LoggingSpec{}, time.Now())
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	logger.Info("dropped")
	entries, err := afero.ReadDir(fs, "/")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(afero.NewMemMapFs(), config.LoggingSpec{Level: "loud"}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestNewConsoleFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewConsole(&buf, config.LoggingSpec{Level: "warn", Format: "text"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
