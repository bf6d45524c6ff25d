package runtime

import (
	"context"

	"github.com/Paintersrp/uvcview/internal/launch"
)

// Handle is a running child process owned by exactly one supervisor.
type Handle interface {
	// Pid reports the operating system process identifier.
	Pid() int

	// Done is closed once the process has exited and been reaped.
	Done() <-chan struct{}

	// ExitErr returns the error reported by the process wait. It is only
	// meaningful after Done is closed.
	ExitErr() error

	// RequestClose asks the process to exit on its own. Delivery is
	// best-effort; callers must be prepared to Kill after a timeout.
	RequestClose() error

	// Kill terminates the process unconditionally. Killing a process that
	// has already exited is not an error.
	Kill() error
}

// Runtime launches child processes.
type Runtime interface {
	// Start spawns the process described by spec. It returns once the
	// operating system has created the process.
	Start(ctx context.Context, spec launch.Spec) (Handle, error)
}
