// Package logging builds the logrus loggers used by the viewer and the
// headless commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/Paintersrp/uvcview/internal/config"
)

// FileName returns the daily log file name for t.
func FileName(t time.Time) string {
	return fmt.Sprintf("uvcview-%s.log", t.Format("2006-01-02"))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to the daily file under spec.Directory. With no
// directory configured the logger discards everything. The returned closer
// releases the file.
func New(fs afero.Fs, spec config.LoggingSpec, now time.Time) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	if err := configure(logger, spec); err != nil {
		return nil, nil, err
	}

	if spec.Directory == "" {
		logger.SetOutput(io.Discard)
		return logger, nopCloser{}, nil
	}

	if err := fs.MkdirAll(spec.Directory, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(spec.Directory, FileName(now))
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// NewConsole returns a logger writing to w, for commands without a screen to
// protect.
func NewConsole(w io.Writer, spec config.LoggingSpec) (*logrus.Logger, error) {
	logger := logrus.New()
	if err := configure(logger, spec); err != nil {
		return nil, err
	}
	logger.SetOutput(w)
	return logger, nil
}

func configure(logger *logrus.Logger, spec config.LoggingSpec) error {
	level := logrus.InfoLevel
	if spec.Level != "" {
		parsed, err := logrus.ParseLevel(spec.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	switch spec.Format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("log format %q: must be text or json", spec.Format)
	}
	return nil
}
