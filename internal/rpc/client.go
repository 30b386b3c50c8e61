package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// callOpts forces every call this package issues to negotiate the JSON
// codec registered in codec.go, since there is no protoc-generated default.
var callOpts = []grpc.CallOption{grpc.CallContentSubtype(codecName)}

// Client is a thin typed wrapper over a grpc.ClientConn for the DFS
// FileService.
type Client struct {
	cc *grpc.ClientConn
}

// NewClient wraps an already-dialed connection.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc}
}

// StoreFileClientStream is the client-side view of a StoreFile call.
type StoreFileClientStream interface {
	Send(*Chunk) error
	CloseAndRecv() (*FileMeta, error)
}

// GetFileClientStream is the client-side view of a GetFile call.
type GetFileClientStream interface {
	Recv() (*Chunk, error)
}

type storeFileClientStream struct {
	grpc.ClientStream
}

func (s *storeFileClientStream) Send(c *Chunk) error {
	return s.ClientStream.SendMsg(c)
}

func (s *storeFileClientStream) CloseAndRecv() (*FileMeta, error) {
	if err := s.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(FileMeta)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type getFileClientStream struct {
	grpc.ClientStream
}

func (s *getFileClientStream) Recv() (*Chunk, error) {
	c := new(Chunk)
	if err := s.ClientStream.RecvMsg(c); err != nil {
		return nil, err
	}
	return c, nil
}

// StoreFile opens a client-streaming upload call.
func (c *Client) StoreFile(ctx context.Context) (StoreFileClientStream, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/StoreFile", callOpts...)
	if err != nil {
		return nil, err
	}
	return &storeFileClientStream{stream}, nil
}

// GetFile opens a server-streaming download call.
func (c *Client) GetFile(ctx context.Context, req *NameReq) (GetFileClientStream, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[1], "/"+ServiceName+"/GetFile", callOpts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &getFileClientStream{stream}, nil
}

func (c *Client) DeleteFile(ctx context.Context, req *NameReq) (*FileMeta, error) {
	out := new(FileMeta)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/DeleteFile", req, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFileStatus(ctx context.Context, req *NameReq) (*FileMeta, error) {
	out := new(FileMeta)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetFileStatus", req, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAllFiles(ctx context.Context, req *Empty) (*FileList, error) {
	out := new(FileList)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/ListAllFiles", req, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AcquireWriteLock(ctx context.Context, req *LockReq) (*LockResp, error) {
	out := new(LockResp)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/AcquireWriteLock", req, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CallbackList(ctx context.Context, req *Empty) (*FileList, error) {
	out := new(FileList)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/CallbackList", req, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}
