package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the server and
// client. Use these keys consistently across all log statements for
// log aggregation and querying.
const (
	KeyMethod    = "method"     // RPC method name: StoreFile, GetFile, ...
	KeyClientID  = "client_id"  // identity of the originating client
	KeyFilename  = "filename"   // mount-relative filename
	KeyStatus    = "status"     // DFS status code: OK, NotFound, ...
	KeyStatusMsg = "status_msg" // human-readable status detail

	KeySize       = "size"        // file size in bytes
	KeyMtime      = "mtime"       // modification time, seconds since epoch
	KeyCtime      = "ctime"       // change time, seconds since epoch
	KeyChunkSize  = "chunk_size"  // negotiated chunk payload size
	KeyBytesMoved = "bytes_moved" // bytes transferred by a Store/Fetch

	KeyHolder  = "holder"  // current lock holder's client identity
	KeyLocked  = "locked"  // whether a lock was granted
	KeyReason  = "reason"  // why an operation was rejected
	KeyAddr    = "addr"    // network address (listen or dial)
	KeyAttempt = "attempt" // retry/reconnect attempt number
	KeyElapsed = "elapsed_ms"
	KeyError   = "error" // error message
)

// Err returns a slog.Attr for an error, or a zero Attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Method returns a slog.Attr for the RPC method name
func Method(m string) slog.Attr { return slog.String(KeyMethod, m) }

// ClientID returns a slog.Attr for the client identity
func ClientID(id string) slog.Attr { return slog.String(KeyClientID, id) }

// Filename returns a slog.Attr for the mount-relative filename
func Filename(name string) slog.Attr { return slog.String(KeyFilename, name) }

// Status returns a slog.Attr for the DFS status code
func Status(s string) slog.Attr { return slog.String(KeyStatus, s) }

// StatusMsg returns a slog.Attr for a human-readable status detail
func StatusMsg(msg string) slog.Attr { return slog.String(KeyStatusMsg, msg) }

// Size returns a slog.Attr for a file size in bytes
func Size(n int64) slog.Attr { return slog.Int64(KeySize, n) }

// Mtime returns a slog.Attr for a modification time
func Mtime(t int64) slog.Attr { return slog.Int64(KeyMtime, t) }

// Ctime returns a slog.Attr for a change time
func Ctime(t int64) slog.Attr { return slog.Int64(KeyCtime, t) }

// ChunkSize returns a slog.Attr for the negotiated chunk payload size
func ChunkSize(n int) slog.Attr { return slog.Int(KeyChunkSize, n) }

// BytesMoved returns a slog.Attr for bytes transferred in a stream
func BytesMoved(n int64) slog.Attr { return slog.Int64(KeyBytesMoved, n) }

// Holder returns a slog.Attr for the current lock holder
func Holder(id string) slog.Attr { return slog.String(KeyHolder, id) }

// Locked returns a slog.Attr for whether a lock was granted
func Locked(b bool) slog.Attr { return slog.Bool(KeyLocked, b) }

// Reason returns a slog.Attr for a rejection reason
func Reason(r string) slog.Attr { return slog.String(KeyReason, r) }

// Addr returns a slog.Attr for a network address
func Addr(addr string) slog.Attr { return slog.String(KeyAddr, addr) }

// Attempt returns a slog.Attr for a retry attempt counter
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// Elapsed returns a slog.Attr for an elapsed duration in milliseconds
func Elapsed(ms float64) slog.Attr { return slog.Float64(KeyElapsed, ms) }
