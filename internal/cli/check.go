package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/uvcview/internal/launch"
)

var errPlayerMissing = errors.New("player not found")

func newCheckCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the ffplay executable is present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.loadSettings(cmd)
			if err != nil {
				return err
			}

			present, err := launch.Present(ctx.fs, s.executable)
			if err != nil {
				return fmt.Errorf("check %s: %w", s.executable, err)
			}
			if !present {
				return fmt.Errorf("%w: %s", errPlayerMissing, s.executable)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: found\n", s.executable)
			return nil
		},
	}
}
