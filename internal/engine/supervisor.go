package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/Paintersrp/uvcview/internal/launch"
	"github.com/Paintersrp/uvcview/internal/metrics"
	"github.com/Paintersrp/uvcview/internal/runtime"
	"github.com/Paintersrp/uvcview/internal/runtime/process"
)

// DefaultStopTimeout is how long a stop waits for the player to honour a
// close request before killing it.
const DefaultStopTimeout = 1500 * time.Millisecond

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithRuntime replaces the process runtime used to spawn the player.
func WithRuntime(rt runtime.Runtime) Option {
	return func(s *Supervisor) {
		if rt != nil {
			s.runtime = rt
		}
	}
}

// WithFs sets the filesystem used to check for the player executable.
func WithFs(fs afero.Fs) Option {
	return func(s *Supervisor) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithStopTimeout overrides DefaultStopTimeout.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.stopTimeout = d
		}
	}
}

// WithLogger sets the logger lifecycle transitions are written to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.log = l
		}
	}
}

// Status is a snapshot of the supervisor for display.
type Status struct {
	State      State
	Device     string
	Pid        int
	Err        error
	Since      time.Time
	Executable string
}

// Supervisor owns at most one player process. Start and Stop are serialized;
// State and Status never wait behind an in-flight stop.
type Supervisor struct {
	executable  string
	runtime     runtime.Runtime
	fs          afero.Fs
	stopTimeout time.Duration
	log         logrus.FieldLogger

	opMu sync.Mutex

	mu      sync.RWMutex
	state   State
	current runtime.Handle
	device  string
	lastErr error
	since   time.Time
	closed  bool

	subMu sync.Mutex
	subs  map[chan Event]struct{}

	closeOnce sync.Once
	closeErr  error
}

// New constructs a Supervisor for the player at executable.
func New(executable string, opts ...Option) *Supervisor {
	s := &Supervisor{
		executable:  executable,
		runtime:     process.New(),
		fs:          afero.NewOsFs(),
		stopTimeout: DefaultStopTimeout,
		log:         logrus.StandardLogger(),
		state:       StateIdle,
		since:       time.Now(),
		subs:        make(map[chan Event]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.SetPlayerState(string(StateIdle))
	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status returns a snapshot of the supervisor.
func (s *Supervisor) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		State:      s.state,
		Device:     s.device,
		Err:        s.lastErr,
		Since:      s.since,
		Executable: s.executable,
	}
	if s.current != nil {
		st.Pid = s.current.Pid()
	}
	return st
}

// Start launches the player for device. A live child makes Start return
// ErrAlreadyRunning without touching it. Validation failures leave the state
// unchanged; a spawn failure moves to StateLaunchFailed and returns a
// *LaunchError.
func (s *Supervisor) Start(ctx context.Context, device string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	closed := s.closed
	h := s.current
	s.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if h != nil && !exited(h) {
		s.reject(device, ErrAlreadyRunning)
		return ErrAlreadyRunning
	}

	spec, err := launch.NewSpec(s.executable, device)
	if err != nil {
		s.reject(device, err)
		return err
	}

	present, err := launch.Present(s.fs, s.executable)
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %s: %v", ErrExecutableMissing, s.executable, err)
	case !present:
		err = fmt.Errorf("%w: %s", ErrExecutableMissing, s.executable)
	}
	if err != nil {
		s.reject(spec.Device, err)
		return err
	}

	inst, err := s.runtime.Start(ctx, spec)
	if err != nil {
		launchErr := &LaunchError{Executable: s.executable, Err: err}
		s.mu.Lock()
		s.current = nil
		s.device = spec.Device
		evt := s.commitLocked(StateLaunchFailed, 0, ReasonLaunchFailure, "launch failed", launchErr)
		s.mu.Unlock()
		s.emit(evt)
		metrics.RecordLaunch(metrics.LaunchFailed)
		return launchErr
	}

	s.mu.Lock()
	s.current = inst
	s.device = spec.Device
	evt := s.commitLocked(StateRunning, inst.Pid(), ReasonLaunch, "player started", nil)
	s.mu.Unlock()
	s.emit(evt)
	metrics.RecordLaunch(metrics.LaunchOK)

	go s.reap(inst)
	return nil
}

// Stop ends the player. With no live child it is a no-op that settles in
// StateIdle. Otherwise the player is asked to close, given the stop timeout to
// exit, then killed. The child is released whatever the outcome; operating
// system failures are returned as *StopError with the state at
// StateStopFailed.
func (s *Supervisor) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.stop(ctx, ReasonStopRequested)
}

// Close stops the player and releases subscribers. It is safe to call more
// than once and from every exit path of the owning session; Start fails with
// ErrClosed afterwards.
func (s *Supervisor) Close() error {
	s.closeOnce.Do(func() {
		s.opMu.Lock()
		defer s.opMu.Unlock()

		s.closeErr = s.stop(context.Background(), ReasonShutdown)

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.subMu.Lock()
		for ch := range s.subs {
			close(ch)
		}
		s.subs = nil
		s.subMu.Unlock()
	})
	return s.closeErr
}

// Subscribe returns a channel of lifecycle events and a release function.
// Slow subscribers miss events rather than stall the supervisor.
func (s *Supervisor) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}

	release := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, release
}

func (s *Supervisor) stop(ctx context.Context, reason string) error {
	s.mu.Lock()
	h := s.current
	if h == nil || exited(h) {
		pid := 0
		if h != nil {
			pid = h.Pid()
		}
		s.current = nil
		evt := s.commitLocked(StateIdle, pid, ReasonNoop, "no player running", nil)
		s.mu.Unlock()
		s.emit(evt)
		metrics.RecordStop(metrics.StopNoop, 0)
		return nil
	}
	pid := h.Pid()
	evt := s.commitLocked(StateStopping, pid, reason, "stopping player", nil)
	s.mu.Unlock()
	s.emit(evt)

	started := time.Now()
	mode, err := s.terminate(ctx, h)
	metrics.RecordStop(mode, time.Since(started))

	s.mu.Lock()
	if s.current == h {
		s.current = nil
	}
	if err != nil {
		evt = s.commitLocked(StateStopFailed, pid, ReasonStopFailed, "stop failed", err)
	} else {
		stopReason := ReasonGraceful
		if mode == metrics.StopForced {
			stopReason = ReasonForced
		}
		evt = s.commitLocked(StateStopped, pid, stopReason, "player stopped", nil)
	}
	s.mu.Unlock()
	s.emit(evt)

	if err != nil {
		return err
	}
	return nil
}

// terminate runs the close-wait-kill sequence. A cancelled ctx cuts the wait
// short but still ends in a kill.
func (s *Supervisor) terminate(ctx context.Context, h runtime.Handle) (string, *StopError) {
	pid := h.Pid()

	closeErr := h.RequestClose()
	if closeErr == nil {
		timer := time.NewTimer(s.stopTimeout)
		defer timer.Stop()
		select {
		case <-h.Done():
			return metrics.StopGraceful, nil
		case <-timer.C:
			s.log.WithField("pid", pid).Warnf("player ignored close request for %s, killing", s.stopTimeout)
		case <-ctx.Done():
			s.log.WithField("pid", pid).WithError(ctx.Err()).Warn("stop wait cancelled, killing player")
		}
	} else {
		s.log.WithField("pid", pid).WithError(closeErr).Warn("close request failed, killing player")
	}

	if err := h.Kill(); err != nil {
		return metrics.StopFailed, &StopError{Pid: pid, Op: "kill", Err: err}
	}
	<-h.Done()

	if closeErr != nil {
		return metrics.StopFailed, &StopError{Pid: pid, Op: "close", Err: closeErr}
	}
	return metrics.StopForced, nil
}

// reap records a player that exits without being asked to.
func (s *Supervisor) reap(h runtime.Handle) {
	<-h.Done()

	s.mu.Lock()
	if s.current != h || s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.current = nil
	evt := s.commitLocked(StateStopped, h.Pid(), ReasonExited, "player exited", h.ExitErr())
	s.mu.Unlock()
	s.emit(evt)
}

func (s *Supervisor) reject(device string, err error) {
	s.mu.RLock()
	state := s.state
	pid := 0
	if s.current != nil {
		pid = s.current.Pid()
	}
	s.mu.RUnlock()

	s.emit(Event{
		Timestamp: time.Now(),
		State:     state,
		Previous:  state,
		Device:    device,
		Pid:       pid,
		Message:   "start rejected",
		Level:     "warn",
		Err:       err,
		Reason:    ReasonRejected,
	})
	metrics.RecordLaunch(metrics.LaunchRejected)
}

// commitLocked records a transition. The caller holds s.mu.
func (s *Supervisor) commitLocked(next State, pid int, reason, message string, err error) Event {
	prev := s.state
	s.state = next
	s.lastErr = err
	s.since = time.Now()
	metrics.SetPlayerState(string(next))
	return Event{
		Timestamp: s.since,
		State:     next,
		Previous:  prev,
		Device:    s.device,
		Pid:       pid,
		Message:   message,
		Level:     levelFor(next, err),
		Err:       err,
		Reason:    reason,
	}
}

func (s *Supervisor) emit(evt Event) {
	s.logEvent(evt)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (s *Supervisor) logEvent(evt Event) {
	entry := s.log.WithFields(logrus.Fields{
		"state":  evt.State,
		"reason": evt.Reason,
	})
	if evt.Device != "" {
		entry = entry.WithField("device", evt.Device)
	}
	if evt.Pid > 0 {
		entry = entry.WithField("pid", evt.Pid)
	}
	if evt.Err != nil {
		entry = entry.WithError(evt.Err)
	}
	switch evt.Level {
	case "error":
		entry.Error(evt.Message)
	case "warn":
		entry.Warn(evt.Message)
	default:
		entry.Info(evt.Message)
	}
}

func exited(h runtime.Handle) bool {
	select {
	case <-h.Done():
		return true
	default:
		return false
	}
}
