// Package watcher adapts fsnotify local-change events into calls on the
// client's reconciliation pass, serialized with it through a shared mutex.
package watcher

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ardalan-oss/godfs/internal/logger"
)

// Watcher watches a single mount directory and invokes a callback, under
// Mutex, for every local change fsnotify reports. It does not distinguish
// event types: any event triggers the callback, which in practice runs one
// reconciliation pass.
type Watcher struct {
	fsw      *fsnotify.Watcher
	mu       *sync.Mutex
	onChange func(ctx context.Context)
}

// New creates a Watcher on mountPath. mu MUST be the same mutex passed to
// the syncengine.Engine driving onChange, so the two never run
// concurrently.
func New(mountPath string, mu *sync.Mutex, onChange func(ctx context.Context)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(mountPath); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{fsw: fsw, mu: mu, onChange: onChange}, nil
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run consumes events until ctx is cancelled or the watcher's event
// channel closes.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.mu.Lock()
			w.onChange(ctx)
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", logger.Err(err))
		}
	}
}
