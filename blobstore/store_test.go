package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "run/epoch-000001.emb")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "run/epoch-000002.emb", []byte("two")))
	require.NoError(t, s.Put(ctx, "run/epoch-000001.emb", []byte("one")))
	require.NoError(t, s.Put(ctx, "run/manifest.json", []byte("{}")))
	require.NoError(t, s.Put(ctx, "other/epoch-000001.emb", []byte("x")))

	data, err := s.Get(ctx, "run/epoch-000001.emb")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)

	// Overwrite replaces the blob.
	require.NoError(t, s.Put(ctx, "run/epoch-000001.emb", []byte("uno")))
	data, err = s.Get(ctx, "run/epoch-000001.emb")
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), data)

	names, err := s.List(ctx, "run/epoch-")
	require.NoError(t, err)
	assert.Equal(t, []string{"run/epoch-000001.emb", "run/epoch-000002.emb"}, names)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, s.Delete(ctx, "run/epoch-000002.emb"))
	require.NoError(t, s.Delete(ctx, "run/epoch-000002.emb"))
	_, err = s.Get(ctx, "run/epoch-000002.emb")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)
	assert.Equal(t, 3, s.Len())
}

func TestMemoryStore_CopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []byte("abc")
	require.NoError(t, s.Put(ctx, "a", in))
	in[0] = 'x'

	out, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)
}

func TestMemoryStore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	assert.ErrorIs(t, s.Put(ctx, "a", nil), context.Canceled)
}

func TestLocalStore(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "checkpoints"))
	testStore(t, s)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "missing"))

	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_SkipsTempFiles(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".tmp-123"), []byte("partial"), 0o644))
	require.NoError(t, s.Put(context.Background(), "a.emb", []byte("a")))

	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.emb"}, names)
	assert.Equal(t, root, s.Root())
}
