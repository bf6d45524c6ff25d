package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Paintersrp/uvcview/internal/cliutil"
	"github.com/Paintersrp/uvcview/internal/config"
	"github.com/Paintersrp/uvcview/internal/engine"
	"github.com/Paintersrp/uvcview/internal/presence"
)

const (
	windowTitle           = "STM32 UVC Viewer"
	eventsTitle           = "Events"
	modalPageName         = "modal"
	defaultEventRetention = 200

	missingPlayerMessage = "ffplay not found next to this app."

	startButton = 0
	stopButton  = 1
)

// Controller is the player lifecycle the form drives.
type Controller interface {
	Start(ctx context.Context, device string) error
	Stop(ctx context.Context) error
	Status() engine.Status
	Subscribe(buffer int) (<-chan engine.Event, func())
}

// Option configures UI behaviour.
type Option func(*UI)

// WithMaxEvents sets how many lifecycle events the event pane keeps.
func WithMaxEvents(n int) Option {
	return func(u *UI) {
		if n > 0 {
			u.maxEvents = n
		}
	}
}

// WithDevice sets the device name the form starts with.
func WithDevice(device string) Option {
	return func(u *UI) {
		u.device.SetText(device)
	}
}

// WithPlayerPresent records whether the player was found at startup. A
// missing player disables Start and raises a modal.
func WithPlayerPresent(present bool) Option {
	return func(u *UI) {
		u.present = present
	}
}

// WithPresence delivers executable presence changes to the form.
func WithPresence(events <-chan presence.Event) Option {
	return func(u *UI) {
		u.presence = events
	}
}

// UI is the launcher form backed by tview.
type UI struct {
	app    *tview.Application
	pages  *tview.Pages
	form   *tview.Form
	device *tview.InputField
	status *tview.TextView
	events *tview.TextView

	ctrl     Controller
	presence <-chan presence.Event
	// queue runs f on the UI goroutine.
	queue func(f func())

	records   []cliutil.LogRecord
	maxEvents int
	present   bool
	busy      bool

	cancelMu sync.Mutex
	cancel   context.CancelFunc
	opCtx    context.Context

	wg       sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

// New constructs the form for ctrl.
func New(ctrl Controller, opts ...Option) *UI {
	app := tview.NewApplication()

	device := tview.NewInputField().
		SetLabel("Device name: ").
		SetFieldWidth(40)

	form := tview.NewForm().AddFormItem(device)
	form.SetBorder(true).SetTitle(windowTitle)

	status := tview.NewTextView().SetDynamicColors(false)
	status.SetBorder(true)

	events := tview.NewTextView().SetDynamicColors(false).SetWrap(false)
	events.SetBorder(true).SetTitle(eventsTitle)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 7, 0, true).
		AddItem(status, 3, 0, false).
		AddItem(events, 0, 1, false)

	pages := tview.NewPages().AddPage("main", flex, true, true)

	u := &UI{
		app:       app,
		pages:     pages,
		form:      form,
		device:    device,
		status:    status,
		events:    events,
		ctrl:      ctrl,
		maxEvents: defaultEventRetention,
		present:   true,
		opCtx:     context.Background(),
		done:      make(chan struct{}),
	}
	u.queue = u.queueUpdateDraw

	form.AddButton("Start", u.startPlayer)
	form.AddButton("Stop", u.stopPlayer)
	device.SetText(config.DefaultDevice)

	for _, opt := range opts {
		opt(u)
	}

	app.SetRoot(pages, true)
	app.SetInputCapture(u.handleKey)

	u.refreshControls()
	u.showStatus(ctrl.Status())
	if !u.present {
		u.status.SetText(noticeText(engine.ErrExecutableMissing))
		u.showErrorModal(missingPlayerMessage)
	}

	return u
}

// Done returns a channel that is closed when the UI stops.
func (u *UI) Done() <-chan struct{} {
	return u.done
}

// Run starts the tview application and follows supervisor events until Stop
// is invoked or ctx is cancelled. The caller still owns the controller and
// must release the player when Run returns.
func (u *UI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	u.cancelMu.Lock()
	u.cancel = cancel
	u.opCtx = ctx
	u.cancelMu.Unlock()

	events, release := u.ctrl.Subscribe(64)
	defer release()

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.consumeEvents(ctx, events)
	}()

	if u.presence != nil {
		u.wg.Add(1)
		go func() {
			defer u.wg.Done()
			u.consumePresence(ctx)
		}()
	}

	go func() {
		<-ctx.Done()
		u.Stop()
	}()

	err := u.app.Run()

	u.cancelMu.Lock()
	cancel = u.cancel
	u.cancel = nil
	u.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}

	u.wg.Wait()
	u.Stop()

	return err
}

// Stop terminates the application loop.
func (u *UI) Stop() {
	u.stopOnce.Do(func() {
		u.cancelMu.Lock()
		cancel := u.cancel
		u.cancel = nil
		u.cancelMu.Unlock()
		if cancel != nil {
			cancel()
		}
		u.app.Stop()
		close(u.done)
	})
}

func (u *UI) queueUpdateDraw(f func()) {
	select {
	case <-u.done:
		return
	default:
	}
	u.app.QueueUpdateDraw(f)
}

func (u *UI) context() context.Context {
	u.cancelMu.Lock()
	defer u.cancelMu.Unlock()
	return u.opCtx
}

func (u *UI) consumeEvents(ctx context.Context, events <-chan engine.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			u.queue(func() { u.applyEvent(evt) })
		}
	}
}

func (u *UI) consumePresence(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-u.presence:
			if !ok {
				return
			}
			u.queue(func() { u.applyPresence(evt) })
		}
	}
}

func (u *UI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		go u.Stop()
		return nil
	}
	if u.pages.HasPage(modalPageName) {
		return event
	}
	switch event.Key() {
	case tcell.KeyRune:
		if _, typing := u.app.GetFocus().(*tview.InputField); typing {
			return event
		}
		switch event.Rune() {
		case 'q', 'Q':
			go u.Stop()
			return nil
		}
	}
	return event
}

// startPlayer runs on the UI goroutine; a spawn returns promptly.
func (u *UI) startPlayer() {
	if u.busy || !u.present {
		return
	}
	err := u.ctrl.Start(u.context(), u.device.GetText())
	u.finishOp(err)
}

// stopPlayer hands the stop to a goroutine so the close wait never freezes
// the form. Both buttons stay disabled until it reports back.
func (u *UI) stopPlayer() {
	if u.busy {
		return
	}
	u.busy = true
	u.status.SetText(statusText(engine.Status{State: engine.StateStopping}))
	u.refreshControls()

	ctx := u.context()
	go func() {
		err := u.ctrl.Stop(ctx)
		u.queue(func() {
			u.busy = false
			u.finishOp(err)
		})
	}()
}

func (u *UI) finishOp(err error) {
	switch {
	case err == nil:
		u.showStatus(u.ctrl.Status())
	case engine.IsNotice(err) || errors.Is(err, engine.ErrClosed):
		u.status.SetText(noticeText(err))
	default:
		u.showStatus(u.ctrl.Status())
		u.showErrorModal(err.Error())
	}
	u.refreshControls()
}

func (u *UI) applyEvent(evt engine.Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	if evt.Reason == engine.ReasonRejected {
		return
	}
	u.appendRecord(cliutil.NewLogRecord(evt))
	if u.busy {
		return
	}
	// Events can trail the operation that caused them; the supervisor's
	// current status is authoritative.
	u.showStatus(u.ctrl.Status())
	if !u.present {
		u.status.SetText(noticeText(engine.ErrExecutableMissing))
	}
}

func (u *UI) applyPresence(evt presence.Event) {
	if evt.Err != nil {
		u.appendRecord(cliutil.LogRecord{
			Timestamp: time.Now(),
			Level:     "warn",
			Message:   "player watch failed",
			Error:     evt.Err.Error(),
		})
		return
	}
	if evt.Present == u.present {
		return
	}
	u.present = evt.Present
	if evt.Present {
		u.appendRecord(cliutil.LogRecord{Timestamp: time.Now(), Level: "info", Message: "player found: " + evt.Path})
		u.showStatus(u.ctrl.Status())
	} else {
		u.appendRecord(cliutil.LogRecord{Timestamp: time.Now(), Level: "warn", Message: "player removed: " + evt.Path})
		u.status.SetText(noticeText(engine.ErrExecutableMissing))
	}
	u.refreshControls()
}

func (u *UI) appendRecord(record cliutil.LogRecord) {
	u.records = append(u.records, record)
	if len(u.records) > u.maxEvents {
		trim := len(u.records) - u.maxEvents
		u.records = append([]cliutil.LogRecord(nil), u.records[trim:]...)
	}
	u.renderEvents()
}

func (u *UI) renderEvents() {
	u.events.Clear()
	for _, record := range u.records {
		fmt.Fprintln(u.events, record.Line())
	}
	u.events.ScrollToEnd()
}

func (u *UI) showStatus(st engine.Status) {
	u.status.SetText(statusText(st))
}

func (u *UI) refreshControls() {
	u.form.GetButton(startButton).SetDisabled(u.busy || !u.present)
	u.form.GetButton(stopButton).SetDisabled(u.busy)
}

func (u *UI) showErrorModal(message string) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			u.pages.RemovePage(modalPageName)
			u.app.SetFocus(u.form)
		})

	u.pages.RemovePage(modalPageName)
	u.pages.AddPage(modalPageName, modal, true, true)
	u.app.SetFocus(modal)
}

func statusText(st engine.Status) string {
	switch st.State {
	case "":
		return "Status: idle"
	case engine.StateRunning:
		if st.Pid > 0 {
			return fmt.Sprintf("Status: running (pid %d)", st.Pid)
		}
		return "Status: running"
	case engine.StateStopping:
		return "Status: stopping..."
	default:
		return "Status: " + st.State.String()
	}
}

var notices = []struct {
	err  error
	text string
}{
	{engine.ErrAlreadyRunning, "Status: already running"},
	{engine.ErrInvalidInput, "Status: enter a device name"},
	{engine.ErrExecutableMissing, "Status: ffplay missing"},
	{engine.ErrClosed, "Status: closed"},
}

func noticeText(err error) string {
	for _, n := range notices {
		if errors.Is(err, n.err) {
			return n.text
		}
	}
	return "Status: " + err.Error()
}
