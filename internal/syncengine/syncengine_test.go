package syncengine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardalan-oss/godfs/internal/rpc"
)

type fakeTransport struct {
	fetched []string
	stored  []string
	fetchFn func(name string) (rpc.Code, error)
	storeFn func(name string) (rpc.Code, error)
}

func (f *fakeTransport) Store(ctx context.Context, name string) (rpc.Code, error) {
	f.stored = append(f.stored, name)
	if f.storeFn != nil {
		return f.storeFn(name)
	}
	return rpc.CodeOK, nil
}

func (f *fakeTransport) Fetch(ctx context.Context, name string) (rpc.Code, error) {
	f.fetched = append(f.fetched, name)
	if f.fetchFn != nil {
		return f.fetchFn(name)
	}
	return rpc.CodeOK, nil
}

func (f *fakeTransport) CallbackList(ctx context.Context) (*rpc.FileList, error) {
	return &rpc.FileList{}, nil
}

func TestReconcileFetchesMissingFile(t *testing.T) {
	dir := t.TempDir()
	tr := &fakeTransport{}
	e := New(tr, dir, &sync.Mutex{}, time.Second, nil)

	err := e.Pass(context.Background(), &rpc.FileList{Files: []rpc.FileMeta{{Name: "remote-only.txt", Mtime: 100}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"remote-only.txt"}, tr.fetched)
	assert.Empty(t, tr.stored)
}

func TestReconcileStoresLocalOnlyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local-only.txt"), []byte("x"), 0644))

	tr := &fakeTransport{}
	e := New(tr, dir, &sync.Mutex{}, time.Second, nil)

	err := e.Pass(context.Background(), &rpc.FileList{})
	require.NoError(t, err)
	assert.Equal(t, []string{"local-only.txt"}, tr.stored)
	assert.Empty(t, tr.fetched)
}

func TestReconcileNewerLocalStores(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "z")
	require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
	newer := time.Now().Add(10 * time.Second)
	require.NoError(t, os.Chtimes(full, newer, newer))

	tr := &fakeTransport{}
	e := New(tr, dir, &sync.Mutex{}, time.Second, nil)

	err := e.Pass(context.Background(), &rpc.FileList{Files: []rpc.FileMeta{{Name: "z", Mtime: newer.Unix() - 10}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, tr.stored)
}

func TestReconcileEqualMtimeIsNoop(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "same")
	require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
	info, err := os.Stat(full)
	require.NoError(t, err)

	tr := &fakeTransport{}
	e := New(tr, dir, &sync.Mutex{}, time.Second, nil)

	err = e.Pass(context.Background(), &rpc.FileList{Files: []rpc.FileMeta{{Name: "same", Mtime: info.ModTime().Unix()}}})
	require.NoError(t, err)
	assert.Empty(t, tr.fetched)
	assert.Empty(t, tr.stored)
}

func TestReconcileAppliesTombstones(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "doomed")
	require.NoError(t, os.WriteFile(full, []byte("x"), 0644))

	tr := &fakeTransport{}
	e := New(tr, dir, &sync.Mutex{}, time.Second, nil)

	err := e.Pass(context.Background(), &rpc.FileList{Tombstones: []string{"doomed"}})
	require.NoError(t, err)

	_, statErr := os.Stat(full)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReconcileIgnoresAbsentTombstone(t *testing.T) {
	dir := t.TempDir()
	tr := &fakeTransport{}
	e := New(tr, dir, &sync.Mutex{}, time.Second, nil)

	err := e.Pass(context.Background(), &rpc.FileList{Tombstones: []string{"never-existed"}})
	require.NoError(t, err)
}

func TestReconcileLockedDoesNotTakeMutex(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	tr := &fakeTransport{}
	e := New(tr, dir, &mu, time.Second, nil)

	mu.Lock()
	defer mu.Unlock()

	err := e.ReconcileLocked(context.Background(), &rpc.FileList{})
	require.NoError(t, err)
}

func TestSecondPassIsFixedPoint(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "stable.txt")
	require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
	info, err := os.Stat(full)
	require.NoError(t, err)

	tr := &fakeTransport{}
	e := New(tr, dir, &sync.Mutex{}, time.Second, nil)
	files := []rpc.FileMeta{{Name: "stable.txt", Mtime: info.ModTime().Unix()}}

	require.NoError(t, e.Pass(context.Background(), &rpc.FileList{Files: files}))
	require.NoError(t, e.Pass(context.Background(), &rpc.FileList{Files: files}))

	assert.Empty(t, tr.fetched)
	assert.Empty(t, tr.stored)
}
