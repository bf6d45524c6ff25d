package engine

import "time"

// Event is a lifecycle notification published by the supervisor.
type Event struct {
	Timestamp time.Time
	State     State
	Previous  State
	Device    string
	Pid       int
	Message   string
	Level     string
	Err       error
	Reason    string
}

const (
	ReasonLaunch        = "launch"
	ReasonLaunchFailure = "launch_failure"
	ReasonRejected      = "rejected"
	ReasonExited        = "exited"
	ReasonStopRequested = "stop_requested"
	ReasonGraceful      = "graceful"
	ReasonForced        = "forced"
	ReasonStopFailed    = "stop_failed"
	ReasonNoop          = "noop"
	ReasonShutdown      = "shutdown"
)

func levelFor(state State, err error) string {
	switch {
	case state.Failed():
		return "error"
	case err != nil:
		return "warn"
	default:
		return "info"
	}
}
