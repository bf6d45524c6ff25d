package engine

// State is the lifecycle position of the supervised player.
type State string

const (
	StateIdle         State = "idle"
	StateRunning      State = "running"
	StateStopping     State = "stopping"
	StateStopped      State = "stopped"
	StateLaunchFailed State = "launch failed"
	StateStopFailed   State = "stop failed"
)

// Failed reports whether s records an operating system failure.
func (s State) Failed() bool {
	return s == StateLaunchFailed || s == StateStopFailed
}

func (s State) String() string {
	return string(s)
}
