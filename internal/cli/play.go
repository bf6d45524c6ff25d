package cli

import (
	stdcontext "context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/uvcview/internal/cliutil"
	"github.com/Paintersrp/uvcview/internal/engine"
	"github.com/Paintersrp/uvcview/internal/logging"
)

func newPlayCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Run the player headless until it exits or the command is interrupted",
		Long: "Starts ffplay for the configured --device and streams lifecycle events as JSON.\n" +
			"Ctrl-C stops the player through the same close, wait and kill sequence the viewer uses.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, ctx)
		},
	}
}

func runPlay(cmd *cobra.Command, c *context) error {
	s, err := c.loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.NewConsole(cmd.ErrOrStderr(), s.cfg.Logging)
	if err != nil {
		return err
	}

	sup := c.newSupervisor(s, logger)
	defer sup.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = stdcontext.Background()
	}

	stopServer, err := startStatusServer(ctx, cmd, s.cfg.Metrics.Address, sup, logger)
	if err != nil {
		return err
	}
	defer stopServer()

	events, release := sup.Subscribe(64)
	defer release()

	enc := json.NewEncoder(cmd.OutOrStdout())
	emit := func(evt engine.Event) {
		cliutil.EncodeLogEvent(enc, cmd.ErrOrStderr(), evt)
	}

	if err := sup.Start(ctx, s.cfg.Device); err != nil {
		drainEvents(events, emit)
		return err
	}

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			emit(evt)
			if evt.Reason == engine.ReasonExited {
				return nil
			}
		case <-ctx.Done():
			err := sup.Stop(stdcontext.Background())
			drainEvents(events, emit)
			return err
		}
	}
}

func drainEvents(events <-chan engine.Event, emit func(engine.Event)) {
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			emit(evt)
		default:
			return
		}
	}
}
