// Package dfsserver implements the authoritative server side of the DFS
// RPC surface: Store, Fetch, Delete, Stat, List, CallbackList, and
// AcquireWriteLock.
package dfsserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ardalan-oss/godfs/internal/chunk"
	"github.com/ardalan-oss/godfs/internal/logger"
	"github.com/ardalan-oss/godfs/internal/lockmgr"
	"github.com/ardalan-oss/godfs/internal/metrics"
	"github.com/ardalan-oss/godfs/internal/pathutil"
	"github.com/ardalan-oss/godfs/internal/rpc"
)

// Server implements rpc.FileService against a single mount directory.
//
// The lock map, tombstone set, and file-access mutex are process-wide
// state, encapsulated here rather than scattered as package globals.
type Server struct {
	mount     string
	chunkSize int

	locks *lockmgr.Manager

	fileMu sync.Mutex // serializes StoreFile, GetFile, and DeleteFile against the mount; GetFileStatus and listings read without it

	tombMu     sync.Mutex
	tombstones map[string]struct{}

	callbacks *callbackQueue

	metrics *metrics.Metrics
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithMetrics attaches a metrics recorder. A nil Metrics is the default
// and records nothing.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithNumAsyncThreads sets the number of goroutines draining the
// CallbackList queue. Default is 1.
func WithNumAsyncThreads(n int) Option {
	return func(s *Server) { s.callbacks.setWorkers(n) }
}

// New returns a Server rooted at mount, using chunkSize-byte payloads for
// Fetch responses.
func New(mount string, chunkSize int, opts ...Option) *Server {
	if chunkSize <= 0 {
		chunkSize = chunk.DefaultSize
	}
	s := &Server{
		mount:      mount,
		chunkSize:  chunkSize,
		locks:      lockmgr.New(),
		tombstones: make(map[string]struct{}),
	}
	s.callbacks = newCallbackQueue(s.buildListing)
	for _, opt := range opts {
		opt(s)
	}
	s.callbacks.start()
	return s
}

// Close stops the callback queue workers.
func (s *Server) Close() {
	s.callbacks.stop()
}

func (s *Server) record(method string, err error) {
	s.metrics.RecordRPC(method, rpc.CodeOf(err).String())
}

func (s *Server) path(name string) (string, error) {
	return pathutil.Wrap(s.mount, name)
}

// StoreFile implements rpc.FileService.
func (s *Server) StoreFile(stream rpc.StoreFileServerStream) (err error) {
	defer func() { s.record("StoreFile", err) }()

	first, recvErr := stream.Recv()
	if recvErr != nil {
		if recvErr == io.EOF {
			return rpc.CancelledError("empty store stream")
		}
		return rpc.CancelledError("recv: %v", recvErr)
	}
	name, clientID := first.Name, first.ClientID
	lc := logger.NewLogContext("StoreFile").WithClient(clientID).WithFilename(name)
	ctx := logger.WithContext(stream.Context(), lc)

	if name == "" || clientID == "" {
		return rpc.CancelledError("missing name or client_id on first chunk")
	}

	if !s.locks.HasLock(name, clientID) {
		s.metrics.RecordLockConflict()
		logger.WarnCtx(ctx, "StoreFile rejected: lock not held", logger.Filename(name), logger.ClientID(clientID))
		return rpc.ResourceExhaustedError(name, clientID)
	}
	defer s.locks.Release(name)

	full, err := s.path(name)
	if err != nil {
		return rpc.CancelledError("invalid name: %v", err)
	}

	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	meta, err := s.writeFile(full, name, first, stream)
	if err != nil {
		logger.ErrorCtx(ctx, "StoreFile write failed", logger.Err(err))
		return rpc.CancelledError("write: %v", err)
	}

	logger.InfoCtx(ctx, "StoreFile complete", logger.Size(meta.Size))
	return stream.SendAndClose(meta)
}

func (s *Server) writeFile(full, name string, first *rpc.Chunk, stream rpc.StoreFileServerStream) (*rpc.FileMeta, error) {
	f, err := os.Create(full)
	if err != nil {
		return nil, err
	}

	closeAndFail := func(cause error) (*rpc.FileMeta, error) {
		f.Close()
		return nil, cause
	}

	if len(first.Content) > 0 {
		if _, err := f.Write(first.Content); err != nil {
			return closeAndFail(err)
		}
	}

	for {
		c, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return closeAndFail(err)
		}
		if len(c.Content) == 0 {
			continue
		}
		if _, err := f.Write(c.Content); err != nil {
			return closeAndFail(err)
		}
	}

	if err := f.Close(); err != nil {
		return nil, err
	}

	meta := &rpc.FileMeta{Name: name}
	if info, err := pathutil.Stat(full); err == nil {
		meta.Mtime, meta.Ctime, meta.Size = info.Mtime, info.Ctime, info.Size
	}
	return meta, nil
}

// GetFile implements rpc.FileService.
func (s *Server) GetFile(req *rpc.NameReq, stream rpc.GetFileServerStream) (err error) {
	lc := logger.NewLogContext("GetFile").WithClient(req.ClientID).WithFilename(req.Name)
	ctx := logger.WithContext(stream.Context(), lc)
	defer func() { s.record("GetFile", err) }()

	full, werr := s.path(req.Name)
	if werr != nil {
		return rpc.CancelledError("invalid name: %v", werr)
	}

	s.fileMu.Lock()
	f, openErr := os.Open(full)
	if openErr != nil {
		s.fileMu.Unlock()
		if errors.Is(openErr, os.ErrNotExist) {
			return rpc.NotFoundError(req.Name)
		}
		return rpc.CancelledError("open: %v", openErr)
	}
	defer func() {
		f.Close()
		s.fileMu.Unlock()
	}()

	info, statErr := pathutil.Stat(full)
	if statErr != nil {
		return rpc.CancelledError("stat: %v", statErr)
	}

	src := chunk.NewDownloadSource(f, s.chunkSize, req.Name, info.Mtime)
	for {
		c, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rpc.CancelledError("read: %v", err)
		}
		if err := stream.Send(&rpc.Chunk{Name: c.Name, Mtime: c.Mtime, Content: c.Content}); err != nil {
			return rpc.CancelledError("send: %v", err)
		}
	}

	logger.DebugCtx(ctx, "GetFile complete", logger.Size(info.Size))
	return nil
}

// DeleteFile implements rpc.FileService.
func (s *Server) DeleteFile(ctx context.Context, req *rpc.NameReq) (resp *rpc.FileMeta, err error) {
	defer func() { s.record("DeleteFile", err) }()

	lc := logger.NewLogContext("DeleteFile").WithClient(req.ClientID).WithFilename(req.Name)
	ctx = logger.WithContext(ctx, lc)

	if !s.locks.HasLock(req.Name, req.ClientID) {
		s.metrics.RecordLockConflict()
		logger.WarnCtx(ctx, "DeleteFile rejected: lock not held", logger.Filename(req.Name), logger.ClientID(req.ClientID))
		return nil, rpc.ResourceExhaustedError(req.Name, req.ClientID)
	}
	defer s.locks.Release(req.Name)

	full, werr := s.path(req.Name)
	if werr != nil {
		logger.ErrorCtx(ctx, "DeleteFile failed", logger.Err(werr))
		return nil, rpc.CancelledError("invalid name: %v", werr)
	}

	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	info, statErr := pathutil.Stat(full)
	if statErr != nil {
		if errors.Is(statErr, pathutil.ErrNotFound) {
			logger.WarnCtx(ctx, "DeleteFile: not found", logger.Filename(req.Name))
			return nil, rpc.NotFoundError(req.Name)
		}
		logger.ErrorCtx(ctx, "DeleteFile failed", logger.Err(statErr))
		return nil, rpc.CancelledError("stat: %v", statErr)
	}

	if err := os.Remove(full); err != nil {
		logger.ErrorCtx(ctx, "DeleteFile failed", logger.Err(err))
		return nil, rpc.CancelledError("remove: %v", err)
	}

	s.addTombstone(req.Name)

	logger.DebugCtx(ctx, "DeleteFile complete")
	return &rpc.FileMeta{Name: req.Name, Mtime: info.Mtime, Ctime: info.Ctime, Size: info.Size}, nil
}

// GetFileStatus implements rpc.FileService.
func (s *Server) GetFileStatus(ctx context.Context, req *rpc.NameReq) (resp *rpc.FileMeta, err error) {
	defer func() { s.record("GetFileStatus", err) }()

	lc := logger.NewLogContext("GetFileStatus").WithClient(req.ClientID).WithFilename(req.Name)
	ctx = logger.WithContext(ctx, lc)

	full, werr := s.path(req.Name)
	if werr != nil {
		logger.ErrorCtx(ctx, "GetFileStatus failed", logger.Err(werr))
		return nil, rpc.CancelledError("invalid name: %v", werr)
	}

	info, statErr := pathutil.Stat(full)
	if statErr != nil {
		if errors.Is(statErr, pathutil.ErrNotFound) {
			logger.WarnCtx(ctx, "GetFileStatus: not found", logger.Filename(req.Name))
			return nil, rpc.NotFoundError(req.Name)
		}
		logger.ErrorCtx(ctx, "GetFileStatus failed", logger.Err(statErr))
		return nil, rpc.CancelledError("stat: %v", statErr)
	}

	crc, crcErr := pathutil.CRC32(full)
	if crcErr != nil {
		logger.WarnCtx(ctx, "GetFileStatus: checksum failed", logger.Err(crcErr))
	}

	logger.DebugCtx(ctx, "GetFileStatus complete", logger.Size(info.Size))
	return &rpc.FileMeta{Name: req.Name, Mtime: info.Mtime, Ctime: info.Ctime, Size: info.Size, Crc32: crc}, nil
}

// ListAllFiles implements rpc.FileService.
func (s *Server) ListAllFiles(ctx context.Context, req *rpc.Empty) (resp *rpc.FileList, err error) {
	defer func() { s.record("ListAllFiles", err) }()

	lc := logger.NewLogContext("ListAllFiles")
	ctx = logger.WithContext(ctx, lc)

	files, listErr := s.listFiles()
	if listErr != nil {
		logger.ErrorCtx(ctx, "ListAllFiles failed", logger.Err(listErr))
		return nil, rpc.CancelledError("list: %v", listErr)
	}
	logger.DebugCtx(ctx, "ListAllFiles complete", slog.Int("count", len(files)))
	return &rpc.FileList{Files: files}, nil
}

// AcquireWriteLock implements rpc.FileService. A granted lock has no lease
// timeout: it stays held until the holder's next StoreFile or DeleteFile
// on that file returns.
func (s *Server) AcquireWriteLock(ctx context.Context, req *rpc.LockReq) (resp *rpc.LockResp, err error) {
	defer func() { s.record("AcquireWriteLock", err) }()

	lc := logger.NewLogContext("AcquireWriteLock").WithClient(req.ClientID).WithFilename(req.Name)
	ctx = logger.WithContext(ctx, lc)

	out := s.locks.Acquire(req.Name, req.ClientID)
	switch out.Result {
	case lockmgr.Granted, lockmgr.AlreadyHeldBySelf:
		logger.DebugCtx(ctx, "AcquireWriteLock granted")
		return &rpc.LockResp{Granted: true}, nil
	case lockmgr.HeldByOther:
		s.metrics.RecordLockConflict()
		logger.WarnCtx(ctx, "AcquireWriteLock rejected", logger.Holder(out.Holder))
		return &rpc.LockResp{Granted: false, Holder: out.Holder, Message: "locked by another client"}, rpc.ResourceExhaustedError(req.Name, out.Holder)
	default:
		logger.ErrorCtx(ctx, "AcquireWriteLock failed", logger.Reason(out.Reason))
		return &rpc.LockResp{Granted: false, Message: out.Reason}, rpc.CancelledError("%s", out.Reason)
	}
}

// CallbackList implements rpc.FileService. It parks the request on the
// server's async queue and blocks until a queue worker fulfills it or the
// caller's context is cancelled.
func (s *Server) CallbackList(ctx context.Context, req *rpc.Empty) (resp *rpc.FileList, err error) {
	defer func() { s.record("CallbackList", err) }()

	result, cancelled := s.callbacks.enqueue(ctx)
	if cancelled {
		return nil, rpc.CancelledError("callback list cancelled")
	}
	return result, nil
}

func (s *Server) addTombstone(name string) {
	s.tombMu.Lock()
	s.tombstones[name] = struct{}{}
	n := len(s.tombstones)
	s.tombMu.Unlock()
	s.metrics.SetTombstonesPending(n)
}

// drainTombstones atomically empties the tombstone set and returns its
// former contents.
func (s *Server) drainTombstones() []string {
	s.tombMu.Lock()
	defer s.tombMu.Unlock()
	names := make([]string, 0, len(s.tombstones))
	for name := range s.tombstones {
		names = append(names, name)
	}
	s.tombstones = make(map[string]struct{})
	s.metrics.SetTombstonesPending(0)
	return names
}

func (s *Server) listFiles() ([]rpc.FileMeta, error) {
	entries, err := os.ReadDir(s.mount)
	if err != nil {
		return nil, err
	}

	files := make([]rpc.FileMeta, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !pathutil.IsRegular(info) {
			continue
		}
		full, err := s.path(e.Name())
		if err != nil {
			continue
		}
		st, err := pathutil.Stat(full)
		if err != nil {
			continue
		}
		files = append(files, rpc.FileMeta{Name: e.Name(), Mtime: st.Mtime, Ctime: st.Ctime, Size: st.Size})
	}
	return files, nil
}

// buildListing is the work a callback-queue worker performs: re-enumerate
// the mount and atomically drain the tombstone set.
func (s *Server) buildListing() (*rpc.FileList, error) {
	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}
	return &rpc.FileList{Files: files, Tombstones: s.drainTombstones()}, nil
}
