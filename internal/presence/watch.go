// Package presence reports whether the player executable exists and follows
// it appearing or disappearing next to the viewer.
package presence

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"vawter.tech/stopper"

	"github.com/Paintersrp/uvcview/internal/launch"
)

const debounce = 25 * time.Millisecond

// Event reports the executable's presence, or a watch failure.
type Event struct {
	Path    string
	Present bool
	Err     error
}

// CleanupFunc stops a watch and waits for its goroutines.
type CleanupFunc func() error

// Watch emits the current presence of path and then one event per change.
// The parent directory is watched, so path may be created or removed freely.
// The channel is closed after cleanup or when ctx ends.
func Watch(ctx context.Context, fs afero.Fs, path string) (<-chan Event, CleanupFunc, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ch := make(chan Event, 4)
	var (
		sendMu sync.Mutex
		closed bool
	)
	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
		sendMu.Lock()
		closed = true
		close(ch)
		sendMu.Unlock()
	})

	var (
		mu        sync.Mutex
		last      bool
		reported  bool
		debouncer *time.Timer
	)

	// send is also called from debounce timers, which may fire after the
	// channel is closed.
	send := func(evt Event) {
		sendMu.Lock()
		defer sendMu.Unlock()
		if closed || sctx.IsStopping() {
			return
		}
		select {
		case ch <- evt:
		case <-sctx.Stopping():
		}
	}

	check := func() {
		present, err := launch.Present(fs, path)
		if err != nil {
			send(Event{Path: path, Err: err})
			return
		}
		mu.Lock()
		changed := !reported || present != last
		last, reported = present, true
		mu.Unlock()
		if changed {
			send(Event{Path: path, Present: present})
		}
	}

	check()

	sctx.Go(func(sctx *stopper.Context) error {
		sctx.Defer(func() {
			mu.Lock()
			if debouncer != nil {
				debouncer.Stop()
			}
			mu.Unlock()
		})

		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				mu.Lock()
				if debouncer != nil {
					debouncer.Stop()
				}
				debouncer = time.AfterFunc(debounce, check)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					send(Event{Path: path, Err: err})
				}
			}
		}
		return nil
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}
	return ch, cleanup, nil
}
