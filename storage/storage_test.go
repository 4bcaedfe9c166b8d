package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/did/webvh"
	"go.originals.dev/sdk/storage"
)

func TestMemoryAdapterPutGetRoundTrip(t *testing.T) {
	m := storage.NewMemoryAdapter()
	ctx := context.Background()
	require.NoError(t, m.Put(ctx, "key1", []byte("hello"), storage.PutOptions{ContentType: "text/plain"}))

	obj, err := m.Get(ctx, "key1")
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, "hello", string(obj.Content))
	assert.Equal(t, "text/plain", obj.ContentType)
}

func TestMemoryAdapterGetMissingReturnsNil(t *testing.T) {
	m := storage.NewMemoryAdapter()
	obj, err := m.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestMemoryAdapterObjectScoping(t *testing.T) {
	m := storage.NewMemoryAdapter()
	ctx := context.Background()
	require.NoError(t, m.PutObject(ctx, "example.com", "did/did.jsonl", []byte("log")))

	obj, err := m.GetObject(ctx, "example.com", "did/did.jsonl")
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, "log", string(obj.Content))
}

func testLog() []webvh.LogEntry {
	return []webvh.LogEntry{
		{
			VersionID:   "1-genesis",
			VersionTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Parameters:  map[string]interface{}{"method": "did:webvh:1.0"},
			State:       &did.Document{Context: []string{did.Context}, ID: "did:webvh:example.com"},
		},
	}
}

func TestMemoryAdapterSaveLoadLog(t *testing.T) {
	m := storage.NewMemoryAdapter()
	ctx := context.Background()
	log := testLog()
	require.NoError(t, m.Save(ctx, "did/example.com/did.jsonl", log))

	loaded, err := m.Load(ctx, "did/example.com/did.jsonl")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "1-genesis", loaded[0].VersionID)
	assert.Equal(t, "did:webvh:example.com", loaded[0].State.ID)
}

func TestMemoryAdapterLoadMissingErrors(t *testing.T) {
	m := storage.NewMemoryAdapter()
	_, err := m.Load(context.Background(), "nope")
	assert.Error(t, err)
}

func TestFileAdapterPutGetRoundTrip(t *testing.T) {
	f, err := storage.NewFileAdapter(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.Put(ctx, "a/b/c.bin", []byte("data"), storage.PutOptions{ContentType: "application/octet-stream"}))
	obj, err := f.Get(ctx, "a/b/c.bin")
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, "data", string(obj.Content))
	assert.Equal(t, "application/octet-stream", obj.ContentType)
}

func TestFileAdapterRejectsPathEscape(t *testing.T) {
	f, err := storage.NewFileAdapter(t.TempDir())
	require.NoError(t, err)
	_, err = f.Get(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestFileAdapterSaveLoadLog(t *testing.T) {
	dir := t.TempDir()
	f, err := storage.NewFileAdapter(dir)
	require.NoError(t, err)
	ctx := context.Background()
	log := testLog()

	path := filepath.Join("did", "example.com", "did.jsonl")
	require.NoError(t, f.Save(ctx, path, log))
	loaded, err := f.Load(ctx, path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, log[0].VersionID, loaded[0].VersionID)
}

func TestFileAdapterGetObjectMissingReturnsNil(t *testing.T) {
	f, err := storage.NewFileAdapter(t.TempDir())
	require.NoError(t, err)
	obj, err := f.GetObject(context.Background(), "example.com", "missing.txt")
	require.NoError(t, err)
	assert.Nil(t, obj)
}
