//go:build !windows

package process

import (
	"os/exec"
	"syscall"

	"github.com/Paintersrp/uvcview/internal/launch"
)

func newCommand(spec launch.Spec) (*exec.Cmd, error) {
	args, err := spec.Argv()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(spec.Executable, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd, nil
}
