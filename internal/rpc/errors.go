package rpc

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code is the DFS error taxonomy. It is a direct alias of grpc's codes.Code
// so that status errors built here interoperate with grpc's own status
// package on both sides of the wire.
type Code = codes.Code

// The subset of grpc codes this service actually produces, named per the
// taxonomy: OK, NotFound, AlreadyExists, ResourceExhausted, DeadlineExceeded,
// and Cancelled for everything else.
const (
	CodeOK                = codes.OK
	CodeNotFound          = codes.NotFound
	CodeAlreadyExists     = codes.AlreadyExists
	CodeResourceExhausted = codes.ResourceExhausted
	CodeDeadlineExceeded  = codes.DeadlineExceeded
	CodeCancelled         = codes.Canceled
)

// NotFoundError builds a status error for a missing file named name.
func NotFoundError(name string) error {
	return status.Errorf(CodeNotFound, "not found: %s", name)
}

// ResourceExhaustedError builds a status error reporting that filename is
// locked by holder.
func ResourceExhaustedError(filename, holder string) error {
	return status.Errorf(CodeResourceExhausted, "locked by %s: %s", holder, filename)
}

// CancelledError wraps a non-taxonomy failure (I/O error, bad frame, etc.)
// as the catch-all Cancelled code.
func CancelledError(msg string, args ...any) error {
	return status.Errorf(CodeCancelled, msg, args...)
}

// CodeOf extracts the DFS status code from err, treating a nil err as OK
// and any non-status error as Cancelled.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return CodeCancelled
}

// ClassifyForClient applies the client-side code mapping policy: OK,
// NotFound, ResourceExhausted, and DeadlineExceeded pass through verbatim;
// every other code (including transport errors with no status) collapses
// to Cancelled.
func ClassifyForClient(err error) Code {
	switch c := CodeOf(err); c {
	case CodeOK, CodeNotFound, CodeResourceExhausted, CodeDeadlineExceeded:
		return c
	default:
		return CodeCancelled
	}
}
