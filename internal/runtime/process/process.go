package process

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/Paintersrp/uvcview/internal/launch"
	"github.com/Paintersrp/uvcview/internal/runtime"
)

type runtimeImpl struct{}

// New constructs a runtime that executes the player as a local process.
func New() runtime.Runtime {
	return &runtimeImpl{}
}

func (r *runtimeImpl) Start(ctx context.Context, spec launch.Spec) (runtime.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Executable == "" {
		return nil, fmt.Errorf("process runtime requires an executable")
	}

	cmd, err := newCommand(spec)
	if err != nil {
		return nil, err
	}
	cmd.Dir = spec.Dir

	// The player owns its own window; its console output is not wanted in
	// ours.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.Executable, err)
	}

	inst := &processInstance{
		cmd:      cmd,
		pid:      cmd.Process.Pid,
		waitDone: make(chan struct{}),
	}
	go inst.wait()

	return inst, nil
}

type processInstance struct {
	cmd *exec.Cmd
	pid int

	waitDone chan struct{}

	mu      sync.Mutex
	waitErr error
}

func (p *processInstance) wait() {
	err := p.cmd.Wait()
	p.mu.Lock()
	p.waitErr = err
	p.mu.Unlock()
	close(p.waitDone)
}

func (p *processInstance) Pid() int {
	return p.pid
}

func (p *processInstance) Done() <-chan struct{} {
	return p.waitDone
}

func (p *processInstance) ExitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waitErr
}

func (p *processInstance) exited() bool {
	select {
	case <-p.waitDone:
		return true
	default:
		return false
	}
}
