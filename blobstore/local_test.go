package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewLocalStore(root)

	data := []byte("\x03\x00header and slots")
	require.NoError(t, store.Put(ctx, "v1/[3042]0.loudstxt3", data))
	require.NoError(t, store.Put(ctx, "v1/[3042].louds", []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("v1/manifest.json")))

	_, err := os.Stat(filepath.Join(root, "v1", "[3042]0.loudstxt3"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, "v1/[3042]0.loudstxt3")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(len(data)), blob.Size())

	m, ok := blob.(Mappable)
	require.True(t, ok)
	assert.Equal(t, data, m.Bytes())

	buf := make([]byte, 6)
	n, err := blob.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "header", string(buf))

	names, err := store.List(ctx, "v1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1/[3042].louds", "v1/[3042]0.loudstxt3"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Delete(ctx, "CURRENT"))
	require.NoError(t, store.Delete(ctx, "CURRENT"))
	_, err = store.Open(ctx, "CURRENT")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Put(ctx, "CURRENT", []byte("v1/manifest.json")))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("v2/manifest.json")))

	got, err := Get(ctx, store, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "v2/manifest.json", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CURRENT"}, names, "no temporary files remain")
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("manifest")
	require.NoError(t, store.Put(ctx, "v1/manifest.json", data))
	data[0] = 'X'

	got, err := Get(ctx, store, "v1/manifest.json")
	require.NoError(t, err)
	assert.Equal(t, "manifest", string(got), "Put copies its input")

	blob, err := store.Open(ctx, "v1/manifest.json")
	require.NoError(t, err)
	n, err := blob.ReadAt(ctx, make([]byte, 20), 4)
	assert.Equal(t, 4, n)
	assert.Equal(t, io.EOF, err)

	require.NoError(t, store.Put(ctx, "v2/manifest.json", nil))
	names, err := store.List(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1/manifest.json", "v2/manifest.json"}, names)

	require.NoError(t, store.Delete(ctx, "v1/manifest.json"))
	_, err = store.Open(ctx, "v1/manifest.json")
	assert.ErrorIs(t, err, ErrNotFound)
}
