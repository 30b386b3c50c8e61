package dfsserver

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardalan-oss/godfs/internal/rpc"
)

type fakeStoreStream struct {
	ctx    context.Context
	chunks []*rpc.Chunk
	i      int
	meta   *rpc.FileMeta
}

func (f *fakeStoreStream) Recv() (*rpc.Chunk, error) {
	if f.i >= len(f.chunks) {
		return nil, io.EOF
	}
	c := f.chunks[f.i]
	f.i++
	return c, nil
}

func (f *fakeStoreStream) SendAndClose(m *rpc.FileMeta) error {
	f.meta = m
	return nil
}

func (f *fakeStoreStream) Context() context.Context { return f.ctx }

type fakeGetStream struct {
	ctx     context.Context
	sent    []*rpc.Chunk
	failAt  int
	calls   int
}

func (f *fakeGetStream) Send(c *rpc.Chunk) error {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return assert.AnError
	}
	f.sent = append(f.sent, c)
	return nil
}

func (f *fakeGetStream) Context() context.Context { return f.ctx }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	s := New(dir, 4)
	t.Cleanup(s.Close)
	return s
}

func TestStoreRequiresLock(t *testing.T) {
	s := newTestServer(t)
	stream := &fakeStoreStream{ctx: context.Background(), chunks: []*rpc.Chunk{
		{Name: "f.txt", ClientID: "a", Content: []byte("hi")},
	}}
	err := s.StoreFile(stream)
	require.Error(t, err)
	assert.Equal(t, rpc.CodeResourceExhausted, rpc.CodeOf(err))
}

func TestStoreAndFetchRoundTrip(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	lockResp, err := s.AcquireWriteLock(ctx, &rpc.LockReq{Name: "f.txt", ClientID: "a"})
	require.NoError(t, err)
	assert.True(t, lockResp.Granted)

	stream := &fakeStoreStream{ctx: ctx, chunks: []*rpc.Chunk{
		{Name: "f.txt", ClientID: "a", Content: []byte("hel")},
		{Content: []byte("lo")},
	}}
	require.NoError(t, s.StoreFile(stream))
	require.NotNil(t, stream.meta)
	assert.Equal(t, int64(5), stream.meta.Size)

	// lock released after Store
	assert.False(t, s.locks.HasLock("f.txt", "a"))

	getStream := &fakeGetStream{ctx: ctx}
	require.NoError(t, s.GetFile(&rpc.NameReq{Name: "f.txt"}, getStream))

	var got []byte
	for _, c := range getStream.sent {
		got = append(got, c.Content...)
	}
	assert.Equal(t, "hello", string(got))
	assert.Equal(t, "f.txt", getStream.sent[0].Name)
}

func TestFetchMissingIsNotFound(t *testing.T) {
	s := newTestServer(t)
	getStream := &fakeGetStream{ctx: context.Background()}
	err := s.GetFile(&rpc.NameReq{Name: "ghost"}, getStream)
	require.Error(t, err)
	assert.Equal(t, rpc.CodeNotFound, rpc.CodeOf(err))
}

func TestDeleteRecordsTombstoneAndReleasesLock(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.AcquireWriteLock(ctx, &rpc.LockReq{Name: "doc", ClientID: "a"})
	require.NoError(t, err)
	stream := &fakeStoreStream{ctx: ctx, chunks: []*rpc.Chunk{{Name: "doc", ClientID: "a", Content: []byte("x")}}}
	require.NoError(t, s.StoreFile(stream))

	_, err = s.AcquireWriteLock(ctx, &rpc.LockReq{Name: "doc", ClientID: "a"})
	require.NoError(t, err)
	meta, err := s.DeleteFile(ctx, &rpc.NameReq{Name: "doc", ClientID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "doc", meta.Name)
	assert.False(t, s.locks.HasLock("doc", "a"))

	reqCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	list, err := s.CallbackList(reqCtx, &rpc.Empty{})
	require.NoError(t, err)
	assert.Contains(t, list.Tombstones, "doc")

	list2, err := s.CallbackList(reqCtx, &rpc.Empty{})
	require.NoError(t, err)
	assert.NotContains(t, list2.Tombstones, "doc")
}

func TestDeleteOfMissingFileReleasesLockAndReturnsNotFound(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.AcquireWriteLock(ctx, &rpc.LockReq{Name: "ghost", ClientID: "a"})
	require.NoError(t, err)

	_, err = s.DeleteFile(ctx, &rpc.NameReq{Name: "ghost", ClientID: "a"})
	require.Error(t, err)
	assert.Equal(t, rpc.CodeNotFound, rpc.CodeOf(err))
	assert.False(t, s.locks.HasLock("ghost", "a"))
}

func TestListAllFiles(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.AcquireWriteLock(ctx, &rpc.LockReq{Name: "a", ClientID: "c"})
	require.NoError(t, err)
	require.NoError(t, s.StoreFile(&fakeStoreStream{ctx: ctx, chunks: []*rpc.Chunk{{Name: "a", ClientID: "c", Content: []byte("1")}}}))

	list, err := s.ListAllFiles(ctx, &rpc.Empty{})
	require.NoError(t, err)
	require.Len(t, list.Files, 1)
	assert.Equal(t, "a", list.Files[0].Name)
}

func TestAcquireWriteLockContention(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.AcquireWriteLock(ctx, &rpc.LockReq{Name: "x", ClientID: "a"})
	require.NoError(t, err)
	assert.True(t, resp.Granted)

	resp, err = s.AcquireWriteLock(ctx, &rpc.LockReq{Name: "x", ClientID: "b"})
	require.Error(t, err)
	assert.False(t, resp.Granted)
	assert.Equal(t, "a", resp.Holder)
	assert.Equal(t, rpc.CodeResourceExhausted, rpc.CodeOf(err))
}
