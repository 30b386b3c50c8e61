// Package rpc defines the wire messages and gRPC service description for
// the DFS file service, and a JSON codec so the service runs over the real
// google.golang.org/grpc transport without a protoc-generated stub.
package rpc

// Chunk is one frame of a StoreFile or GetFile stream. Name and ClientID
// are only populated on the first chunk of a StoreFile request; Mtime is
// only populated on the first chunk of a GetFile response.
type Chunk struct {
	Name     string `json:"name,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Mtime    int64  `json:"mtime,omitempty"`
	Content  []byte `json:"content,omitempty"`
}

// FileMeta describes a single file's server-observed metadata. It is the
// response type for StoreFile, DeleteFile, and GetFileStatus. Crc32 is only
// populated by GetFileStatus, which looks up a single file; ListAllFiles and
// CallbackList leave it zero rather than checksum every file in the mount on
// every listing call.
type FileMeta struct {
	Name  string `json:"name"`
	Mtime int64  `json:"mtime"`
	Ctime int64  `json:"ctime"`
	Size  int64  `json:"size"`
	Crc32 uint32 `json:"crc32,omitempty"`
}

// NameReq identifies a file and the client making the request.
type NameReq struct {
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
}

// FileList is the response type for ListAllFiles and CallbackList.
// Tombstones is only populated by CallbackList.
type FileList struct {
	Files      []FileMeta `json:"files"`
	Tombstones []string   `json:"tombstones,omitempty"`
}

// LockReq requests a write lock on Name on behalf of ClientID.
type LockReq struct {
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
}

// LockResp is the response to AcquireWriteLock.
type LockResp struct {
	Granted bool   `json:"granted"`
	Holder  string `json:"holder,omitempty"`
	Message string `json:"message,omitempty"`
}

// Empty carries no data. Used by ListAllFiles and CallbackList requests.
type Empty struct{}
