//go:build windows

package process

import (
	"os/exec"
	"syscall"

	"github.com/Paintersrp/uvcview/internal/launch"
)

// newCommand hands the command line to CreateProcess untouched so the player
// splits it exactly as it would when started from a shortcut.
func newCommand(spec launch.Spec) (*exec.Cmd, error) {
	cmd := exec.Command(spec.Executable)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: syscall.EscapeArg(spec.Executable) + " " + spec.CommandLine,
	}
	return cmd, nil
}
