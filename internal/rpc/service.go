package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the gRPC service name advertised in the ServiceDesc below.
const ServiceName = "godfs.FileService"

// FileService is the server-side contract for the DFS RPC surface. A
// concrete implementation is registered with a grpc.Server via
// RegisterFileServiceServer.
type FileService interface {
	// StoreFile receives a chunked upload. The first chunk carries Name
	// and ClientID; a successful call reads every chunk off stream before
	// returning, while a rejected call may return before the stream ends.
	StoreFile(stream StoreFileServerStream) error
	// GetFile streams req.Name to the caller in chunks via stream.
	GetFile(req *NameReq, stream GetFileServerStream) error
	DeleteFile(ctx context.Context, req *NameReq) (*FileMeta, error)
	GetFileStatus(ctx context.Context, req *NameReq) (*FileMeta, error)
	ListAllFiles(ctx context.Context, req *Empty) (*FileList, error)
	AcquireWriteLock(ctx context.Context, req *LockReq) (*LockResp, error)
	CallbackList(ctx context.Context, req *Empty) (*FileList, error)
}

// StoreFileServerStream is the server-side view of a StoreFile call.
type StoreFileServerStream interface {
	Recv() (*Chunk, error)
	SendAndClose(*FileMeta) error
	Context() context.Context
}

// GetFileServerStream is the server-side view of a GetFile call.
type GetFileServerStream interface {
	Send(*Chunk) error
	Context() context.Context
}

type storeFileServerStream struct {
	grpc.ServerStream
}

func (s *storeFileServerStream) Recv() (*Chunk, error) {
	c := new(Chunk)
	if err := s.ServerStream.RecvMsg(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *storeFileServerStream) SendAndClose(m *FileMeta) error {
	return s.ServerStream.SendMsg(m)
}

type getFileServerStream struct {
	grpc.ServerStream
}

func (s *getFileServerStream) Send(c *Chunk) error {
	return s.ServerStream.SendMsg(c)
}

func _FileService_StoreFile_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(FileService).StoreFile(&storeFileServerStream{stream})
}

func _FileService_GetFile_Handler(srv any, stream grpc.ServerStream) error {
	req := new(NameReq)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(FileService).GetFile(req, &getFileServerStream{stream})
}

func _FileService_DeleteFile_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NameReq)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FileService).DeleteFile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/DeleteFile"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FileService).DeleteFile(ctx, req.(*NameReq))
	}
	return interceptor(ctx, in, info, handler)
}

func _FileService_GetFileStatus_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NameReq)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FileService).GetFileStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetFileStatus"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FileService).GetFileStatus(ctx, req.(*NameReq))
	}
	return interceptor(ctx, in, info, handler)
}

func _FileService_ListAllFiles_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FileService).ListAllFiles(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/ListAllFiles"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FileService).ListAllFiles(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _FileService_AcquireWriteLock_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(LockReq)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FileService).AcquireWriteLock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/AcquireWriteLock"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FileService).AcquireWriteLock(ctx, req.(*LockReq))
	}
	return interceptor(ctx, in, info, handler)
}

func _FileService_CallbackList_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FileService).CallbackList(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/CallbackList"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FileService).CallbackList(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the hand-authored equivalent of a protoc-gen-go-grpc
// output's _ServiceDesc value.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FileService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DeleteFile", Handler: _FileService_DeleteFile_Handler},
		{MethodName: "GetFileStatus", Handler: _FileService_GetFileStatus_Handler},
		{MethodName: "ListAllFiles", Handler: _FileService_ListAllFiles_Handler},
		{MethodName: "AcquireWriteLock", Handler: _FileService_AcquireWriteLock_Handler},
		{MethodName: "CallbackList", Handler: _FileService_CallbackList_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StoreFile",
			Handler:       _FileService_StoreFile_Handler,
			ClientStreams: true,
		},
		{
			StreamName:    "GetFile",
			Handler:       _FileService_GetFile_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "godfs/fileservice.proto",
}

// RegisterFileServiceServer registers srv's implementation with s.
func RegisterFileServiceServer(s grpc.ServiceRegistrar, srv FileService) {
	s.RegisterService(&ServiceDesc, srv)
}
