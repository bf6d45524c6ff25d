package cli

import (
	stdcontext "context"
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/uvcview/internal/launch"
	"github.com/Paintersrp/uvcview/internal/logging"
	"github.com/Paintersrp/uvcview/internal/presence"
	"github.com/Paintersrp/uvcview/internal/tui"
)

type viewerUI interface {
	Run(ctx stdcontext.Context) error
}

var newUI = func(ctrl tui.Controller, opts ...tui.Option) viewerUI {
	return tui.New(ctrl, opts...)
}

var supportsInteractiveOutput = func(cmd *cobra.Command) bool {
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !term.IsTerminal(int(out.Fd())) {
		return false
	}
	in, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(in.Fd()))
}

func runViewer(cmd *cobra.Command, c *context) error {
	if !supportsInteractiveOutput(cmd) {
		return errors.New("uvcview requires an interactive terminal; use 'uvcview play' for headless playback")
	}

	s, err := c.loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(c.fs, s.cfg.Logging, time.Now())
	if err != nil {
		return err
	}
	defer closer.Close()

	sup := c.newSupervisor(s, logger)
	defer func() {
		if err := sup.Close(); err != nil {
			logger.WithError(err).Error("release player on exit")
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = stdcontext.Background()
	}

	stopServer, err := startStatusServer(ctx, cmd, s.cfg.Metrics.Address, sup, logger)
	if err != nil {
		return err
	}
	defer stopServer()

	present, err := launch.Present(c.fs, s.executable)
	if err != nil {
		logger.WithError(err).WithField("path", s.executable).Warn("check player")
	}
	if !present {
		logger.WithField("path", s.executable).Warn("player not found")
	}

	opts := []tui.Option{
		tui.WithDevice(s.cfg.Device),
		tui.WithPlayerPresent(present),
	}
	events, cleanup, err := presence.Watch(ctx, c.fs, s.executable)
	if err != nil {
		logger.WithError(err).Warn("player watch unavailable")
	} else {
		defer cleanup()
		opts = append(opts, tui.WithPresence(events))
	}

	logger.WithFields(logrus.Fields{
		"player": s.executable,
		"config": s.path,
		"found":  s.found,
	}).Info("viewer starting")

	return newUI(sup, opts...).Run(ctx)
}
