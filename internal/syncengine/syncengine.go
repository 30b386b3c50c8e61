// Package syncengine implements the client's reconciliation loop: a
// long-lived consumer of CallbackList responses that decides, per file,
// whether to Fetch, Store, delete locally, or do nothing.
package syncengine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ardalan-oss/godfs/internal/logger"
	"github.com/ardalan-oss/godfs/internal/metrics"
	"github.com/ardalan-oss/godfs/internal/pathutil"
	"github.com/ardalan-oss/godfs/internal/rpc"
)

// Transport is the subset of dfsclient.Client the sync engine drives.
type Transport interface {
	Store(ctx context.Context, name string) (rpc.Code, error)
	Fetch(ctx context.Context, name string) (rpc.Code, error)
	CallbackList(ctx context.Context) (*rpc.FileList, error)
}

// Engine runs reconciliation passes against Transport, serialized with the
// watcher adapter through Mutex: every pass and every watcher callback
// holds Mutex for its full duration so the two never interleave.
type Engine struct {
	transport    Transport
	mount        string
	mu           *sync.Mutex
	resetTimeout time.Duration
	metrics      *metrics.Metrics
}

// New returns an Engine reconciling mount against transport. mu is the
// shared sync mutex; callers MUST pass the same *sync.Mutex to the watcher
// adapter constructed alongside this engine.
func New(transport Transport, mount string, mu *sync.Mutex, resetTimeout time.Duration, m *metrics.Metrics) *Engine {
	return &Engine{transport: transport, mount: mount, mu: mu, resetTimeout: resetTimeout, metrics: m}
}

// Run repeatedly issues CallbackList and reconciles against its result
// until ctx is cancelled. A non-OK CallbackList response backs off for
// resetTimeout before re-arming.
func (e *Engine) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		list, err := e.transport.CallbackList(ctx)
		if err != nil {
			logger.Warn("CallbackList failed, backing off", logger.Err(err))
			select {
			case <-time.After(e.resetTimeout):
			case <-ctx.Done():
				return
			}
			continue
		}

		if err := e.Pass(ctx, list); err != nil {
			logger.Warn("reconciliation pass failed", logger.Err(err))
		}
	}
}

// Pass runs one reconciliation pass against list, holding the shared sync
// mutex for its full duration.
func (e *Engine) Pass(ctx context.Context, list *rpc.FileList) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reconcile(ctx, list)
}

// ReconcileLocked runs one reconciliation pass against list without taking
// the shared sync mutex. Callers MUST already hold it — this is for the
// watcher callback, which locks the mutex itself before invoking onChange,
// so going through Pass here would deadlock on the non-reentrant mutex.
func (e *Engine) ReconcileLocked(ctx context.Context, list *rpc.FileList) error {
	return e.reconcile(ctx, list)
}

type localStat struct {
	mtime int64
}

func (e *Engine) localFiles() (map[string]localStat, error) {
	entries, err := os.ReadDir(e.mount)
	if err != nil {
		return nil, err
	}
	out := make(map[string]localStat, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !pathutil.IsRegular(info) {
			continue
		}
		out[entry.Name()] = localStat{mtime: info.ModTime().Unix()}
	}
	return out, nil
}

func (e *Engine) reconcile(ctx context.Context, list *rpc.FileList) error {
	server := make(map[string]int64, len(list.Files))
	for _, f := range list.Files {
		server[f.Name] = f.Mtime
	}

	local, err := e.localFiles()
	if err != nil {
		return err
	}

	for name, sm := range server {
		l, present := local[name]
		switch {
		case !present:
			e.fetch(ctx, name)
		case l.mtime < sm:
			e.fetch(ctx, name)
		case l.mtime > sm:
			e.store(ctx, name)
		}
	}

	for name := range local {
		if _, onServer := server[name]; !onServer {
			e.store(ctx, name)
		}
	}

	for _, name := range list.Tombstones {
		full := filepath.Join(e.mount, name)
		if _, err := os.Stat(full); err == nil {
			os.Remove(full)
		}
	}

	e.metrics.RecordSyncPass()
	return nil
}

func (e *Engine) fetch(ctx context.Context, name string) {
	code, err := e.transport.Fetch(ctx, name)
	if err != nil {
		logger.Warn("sync fetch failed", logger.Filename(name), logger.Err(err))
		return
	}
	if code == rpc.CodeOK {
		e.metrics.RecordSyncTransfer("fetch")
	}
}

func (e *Engine) store(ctx context.Context, name string) {
	code, err := e.transport.Store(ctx, name)
	if err != nil {
		logger.Warn("sync store failed", logger.Filename(name), logger.Err(err))
		return
	}
	if code == rpc.CodeOK {
		e.metrics.RecordSyncTransfer("store")
	}
}
