//go:build !windows

package process

import (
	"errors"
	"fmt"
	"syscall"
)

func (p *processInstance) RequestClose() error {
	return p.signalGroup(syscall.SIGTERM)
}

func (p *processInstance) Kill() error {
	return p.signalGroup(syscall.SIGKILL)
}

func (p *processInstance) signalGroup(sig syscall.Signal) error {
	if p.exited() {
		return nil
	}
	if err := syscall.Kill(-p.pid, sig); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("signal process group %d with %s: %w", p.pid, sig, err)
	}
	return nil
}
