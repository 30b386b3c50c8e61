package dfsserver

import (
	"context"
	"sync"

	"github.com/ardalan-oss/godfs/internal/rpc"
)

// pendingRequest is parked on the callback queue by a CallbackList RPC
// goroutine and fulfilled by a queue worker goroutine. It is produced by
// the RPC thread, owned by the queue while parked, and handed back to the
// RPC thread on completion: a single-writer slot, never aliased.
type pendingRequest struct {
	done chan *rpc.FileList
}

// callbackQueue models the server's async CallbackList queue: one or more
// worker goroutines drain parked requests, each fulfilling it by calling
// build (re-enumerate the mount, drain tombstones).
type callbackQueue struct {
	build func() (*rpc.FileList, error)

	mu      sync.Mutex
	workers int
	pending chan *pendingRequest
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func newCallbackQueue(build func() (*rpc.FileList, error)) *callbackQueue {
	return &callbackQueue{
		build:   build,
		workers: 1,
		pending: make(chan *pendingRequest, 256),
		stopCh:  make(chan struct{}),
	}
}

// setWorkers must be called before start.
func (q *callbackQueue) setWorkers(n int) {
	if n > 0 {
		q.workers = n
	}
}

func (q *callbackQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
}

func (q *callbackQueue) stop() {
	close(q.stopCh)
	q.wg.Wait()
}

func (q *callbackQueue) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.stopCh:
			return
		case req := <-q.pending:
			list, err := q.build()
			if err != nil {
				list = &rpc.FileList{}
			}
			req.done <- list
		}
	}
}

// enqueue parks a request and waits for a worker to fulfill it, or for ctx
// to be cancelled. It returns (nil, true) on cancellation.
func (q *callbackQueue) enqueue(ctx context.Context) (*rpc.FileList, bool) {
	req := &pendingRequest{done: make(chan *rpc.FileList, 1)}

	select {
	case q.pending <- req:
	case <-ctx.Done():
		return nil, true
	}

	select {
	case list := <-req.done:
		return list, false
	case <-ctx.Done():
		return nil, true
	}
}
