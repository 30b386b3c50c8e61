// Package dfsclient implements the client side of the DFS RPC surface:
// Store, Fetch, Delete, Stat, and List, each carrying a fixed deadline and
// mapping server status codes per the client's propagation policy.
package dfsclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardalan-oss/godfs/internal/chunk"
	"github.com/ardalan-oss/godfs/internal/logger"
	"github.com/ardalan-oss/godfs/internal/pathutil"
	"github.com/ardalan-oss/godfs/internal/rpc"
)

// transport is the subset of *rpc.Client this package calls. Depending on
// the interface rather than the concrete type lets tests substitute a fake
// transport instead of dialing a real grpc.ClientConn.
type transport interface {
	StoreFile(ctx context.Context) (rpc.StoreFileClientStream, error)
	GetFile(ctx context.Context, req *rpc.NameReq) (rpc.GetFileClientStream, error)
	DeleteFile(ctx context.Context, req *rpc.NameReq) (*rpc.FileMeta, error)
	GetFileStatus(ctx context.Context, req *rpc.NameReq) (*rpc.FileMeta, error)
	ListAllFiles(ctx context.Context, req *rpc.Empty) (*rpc.FileList, error)
	AcquireWriteLock(ctx context.Context, req *rpc.LockReq) (*rpc.LockResp, error)
	CallbackList(ctx context.Context, req *rpc.Empty) (*rpc.FileList, error)
}

// Client is the client-side file service. Every call it issues, except the
// long-poll CallbackList, carries the configured deadline as its context
// timeout.
type Client struct {
	rpc       transport
	mount     string
	clientID  string
	chunkSize int
	deadline  time.Duration
}

// New returns a Client bound to mount, identifying itself to the server as
// clientID.
func New(rpcClient *rpc.Client, mount, clientID string, chunkSize int, deadline time.Duration) *Client {
	return newClient(rpcClient, mount, clientID, chunkSize, deadline)
}

func newClient(t transport, mount, clientID string, chunkSize int, deadline time.Duration) *Client {
	if chunkSize <= 0 {
		chunkSize = chunk.DefaultSize
	}
	return &Client{rpc: t, mount: mount, clientID: clientID, chunkSize: chunkSize, deadline: deadline}
}

func (c *Client) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.deadline)
}

func (c *Client) path(name string) (string, error) {
	return pathutil.Wrap(c.mount, name)
}

// Store uploads the local copy of name to the server, unless the server's
// copy is already at least as new, in which case it returns
// rpc.CodeAlreadyExists without opening an upload stream.
func (c *Client) Store(ctx context.Context, name string) (rpc.Code, error) {
	full, err := c.path(name)
	if err != nil {
		return rpc.CodeCancelled, err
	}

	localInfo, statErr := pathutil.Stat(full)
	if statErr != nil {
		if errors.Is(statErr, pathutil.ErrNotFound) {
			return rpc.CodeNotFound, fmt.Errorf("store %s: %w", name, statErr)
		}
		return rpc.CodeCancelled, statErr
	}

	rctx, cancel := c.withDeadline(ctx)
	defer cancel()
	serverMeta, err := c.rpc.GetFileStatus(rctx, &rpc.NameReq{Name: name, ClientID: c.clientID})
	if err == nil && serverMeta != nil && localInfo.Mtime <= serverMeta.Mtime {
		return rpc.CodeAlreadyExists, nil
	}
	if err != nil && rpc.CodeOf(err) != rpc.CodeNotFound {
		return rpc.ClassifyForClient(err), err
	}

	lctx, lcancel := c.withDeadline(ctx)
	defer lcancel()
	if _, err := c.rpc.AcquireWriteLock(lctx, &rpc.LockReq{Name: name, ClientID: c.clientID}); err != nil {
		return rpc.ClassifyForClient(err), err
	}

	f, err := os.Open(full)
	if err != nil {
		return rpc.CodeCancelled, err
	}
	defer f.Close()

	sctx, scancel := c.withDeadline(ctx)
	defer scancel()
	stream, err := c.rpc.StoreFile(sctx)
	if err != nil {
		return rpc.ClassifyForClient(err), err
	}

	src := chunk.NewUploadSource(f, c.chunkSize, name, c.clientID)
	for {
		ch, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rpc.CodeCancelled, err
		}
		if err := stream.Send(&rpc.Chunk{Name: ch.Name, ClientID: ch.ClientID, Content: ch.Content}); err != nil {
			return rpc.ClassifyForClient(err), err
		}
	}

	if _, err := stream.CloseAndRecv(); err != nil {
		return rpc.ClassifyForClient(err), err
	}
	logger.Debug("Store complete", logger.Filename(name), logger.ClientID(c.clientID))
	return rpc.CodeOK, nil
}

// Fetch downloads name from the server into the local mount, unless the
// local copy is already at least as new, in which case it returns
// rpc.CodeAlreadyExists.
func (c *Client) Fetch(ctx context.Context, name string) (rpc.Code, error) {
	full, pathErr := c.path(name)
	if pathErr != nil {
		return rpc.CodeCancelled, pathErr
	}

	sctx, scancel := c.withDeadline(ctx)
	defer scancel()
	getStream, err := c.rpc.GetFile(sctx, &rpc.NameReq{Name: name, ClientID: c.clientID})
	if err != nil {
		return rpc.ClassifyForClient(err), err
	}

	first, err := getStream.Recv()
	if err != nil {
		return rpc.ClassifyForClient(err), err
	}

	if localInfo, statErr := pathutil.Stat(full); statErr == nil && localInfo.Mtime >= first.Mtime {
		return rpc.CodeAlreadyExists, nil
	}

	f, err := os.Create(full)
	if err != nil {
		return rpc.CodeCancelled, err
	}

	sink := chunk.NewSink(f)
	writeErr := sink.Write(chunk.Chunk{Name: first.Name, Mtime: first.Mtime, Content: first.Content})
	for writeErr == nil {
		var ch *rpc.Chunk
		ch, err = getStream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeErr = err
			break
		}
		writeErr = sink.Write(chunk.Chunk{Content: ch.Content})
	}

	closeErr := f.Close()
	if writeErr != nil || (err != nil && err != io.EOF) {
		os.Remove(full)
		if writeErr != nil {
			return rpc.CodeCancelled, writeErr
		}
		return rpc.ClassifyForClient(err), err
	}
	if closeErr != nil {
		os.Remove(full)
		return rpc.CodeCancelled, closeErr
	}

	if err := pathutil.SetMtime(full, first.Mtime); err != nil {
		logger.Warn("Fetch: set mtime failed", logger.Filename(name), logger.Err(err))
	}
	logger.Debug("Fetch complete", logger.Filename(name), logger.ClientID(c.clientID))
	return rpc.CodeOK, nil
}

// Delete removes name from the server, then removes the local copy if
// present. A server NotFound is treated as success since the server is the
// source of truth.
func (c *Client) Delete(ctx context.Context, name string) (rpc.Code, error) {
	lctx, lcancel := c.withDeadline(ctx)
	defer lcancel()
	if _, err := c.rpc.AcquireWriteLock(lctx, &rpc.LockReq{Name: name, ClientID: c.clientID}); err != nil {
		return rpc.ClassifyForClient(err), err
	}

	dctx, dcancel := c.withDeadline(ctx)
	defer dcancel()
	_, err := c.rpc.DeleteFile(dctx, &rpc.NameReq{Name: name, ClientID: c.clientID})

	code := rpc.ClassifyForClient(err)
	if code != rpc.CodeOK && code != rpc.CodeNotFound {
		return code, err
	}

	full, pathErr := c.path(name)
	if pathErr == nil {
		if _, statErr := os.Stat(full); statErr == nil {
			os.Remove(full)
		}
	}
	return rpc.CodeOK, nil
}

// Stat returns the server's metadata for name, including its CRC-32
// checksum.
func (c *Client) Stat(ctx context.Context, name string) (*rpc.FileMeta, error) {
	rctx, cancel := c.withDeadline(ctx)
	defer cancel()
	return c.rpc.GetFileStatus(rctx, &rpc.NameReq{Name: name, ClientID: c.clientID})
}

// List returns every file the server currently holds, as name -> mtime.
func (c *Client) List(ctx context.Context) (map[string]int64, error) {
	rctx, cancel := c.withDeadline(ctx)
	defer cancel()
	list, err := c.rpc.ListAllFiles(rctx, &rpc.Empty{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(list.Files))
	for _, f := range list.Files {
		out[f.Name] = f.Mtime
	}
	return out, nil
}

// CallbackList issues one long-poll call and returns its result.
func (c *Client) CallbackList(ctx context.Context) (*rpc.FileList, error) {
	return c.rpc.CallbackList(ctx, &rpc.Empty{})
}

// AcquireWriteLock requests the write lock on req.Name on behalf of
// req.ClientID, without uploading or downloading anything.
func (c *Client) AcquireWriteLock(ctx context.Context, req *rpc.LockReq) (*rpc.LockResp, error) {
	rctx, cancel := c.withDeadline(ctx)
	defer cancel()
	return c.rpc.AcquireWriteLock(rctx, req)
}
