// Package blobstoretest checks BlobStore implementations against the
// behavior publishers and readers rely on.
package blobstoretest

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vocab/blobstore"
)

// Run exercises s. The store must start empty.
func Run(t *testing.T, s blobstore.BlobStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("OpenMissing", func(t *testing.T) {
		_, err := s.Open(ctx, "missing/blob")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("PutOpenRead", func(t *testing.T) {
		data := []byte("hello world, this is a snapshot blob")
		require.NoError(t, s.Put(ctx, "snapshots/a.vwi", data))

		b, err := s.Open(ctx, "snapshots/a.vwi")
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, int64(len(data)), b.Size())

		buf := make([]byte, 5)
		n, err := b.ReadAt(ctx, buf, 6)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "world", string(buf))

		tail := make([]byte, 10)
		n, err = b.ReadAt(ctx, tail, int64(len(data)-4))
		assert.Equal(t, 4, n)
		assert.ErrorIs(t, err, io.EOF)

		got, err := blobstore.ReadAll(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, blobstore.CurrentName, []byte("manifests/one")))
		require.NoError(t, s.Put(ctx, blobstore.CurrentName, []byte("manifests/two")))

		got, err := blobstore.Get(ctx, s, blobstore.CurrentName)
		require.NoError(t, err)
		assert.Equal(t, "manifests/two", string(got))
	})

	t.Run("PutCopiesInput", func(t *testing.T) {
		data := []byte("abc")
		require.NoError(t, s.Put(ctx, "copy", data))
		data[0] = 'x'

		got, err := blobstore.Get(ctx, s, "copy")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "snapshots/b.vwi", []byte("b")))

		names, err := s.List(ctx, "snapshots/")
		require.NoError(t, err)
		assert.Equal(t, []string{"snapshots/a.vwi", "snapshots/b.vwi"}, names)

		names, err = s.List(ctx, "none/")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "snapshots/b.vwi"))
		_, err := s.Open(ctx, "snapshots/b.vwi")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)

		require.NoError(t, s.Delete(ctx, "snapshots/b.vwi"))
	})

	t.Run("EmptyBlob", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "empty", nil))
		got, err := blobstore.Get(ctx, s, "empty")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
