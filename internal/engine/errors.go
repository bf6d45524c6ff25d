package engine

import (
	"errors"
	"fmt"

	"github.com/Paintersrp/uvcview/internal/launch"
)

var (
	// ErrInvalidInput is returned when the device name is blank.
	ErrInvalidInput = launch.ErrInvalidInput

	// ErrExecutableMissing is returned when the player binary is not on disk.
	ErrExecutableMissing = errors.New("player executable not found")

	// ErrAlreadyRunning is returned by Start while a child is alive. It is
	// informational: the running child is left alone.
	ErrAlreadyRunning = errors.New("player already running")

	// ErrClosed is returned by Start once the supervisor has been closed.
	ErrClosed = errors.New("supervisor closed")
)

// LaunchError reports that the operating system refused to spawn the player.
type LaunchError struct {
	Executable string
	Err        error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Executable, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// StopError reports an operating system failure while terminating the
// player. The supervisor has released the child regardless.
type StopError struct {
	Pid int
	Op  string
	Err error
}

func (e *StopError) Error() string {
	return fmt.Sprintf("stop player (pid %d): %s: %v", e.Pid, e.Op, e.Err)
}

func (e *StopError) Unwrap() error {
	return e.Err
}

// IsNotice reports whether err only needs a status line rather than an alert:
// the user can correct the input or the call was a harmless repeat.
func IsNotice(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrAlreadyRunning) ||
		errors.Is(err, ErrExecutableMissing)
}
