package blobstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vocab/blobstore"
	"github.com/hupe1980/vocab/blobstore/blobstoretest"
	vfs "github.com/hupe1980/vocab/internal/fs"
)

func TestLocalStore(t *testing.T) {
	blobstoretest.Run(t, blobstore.NewLocalStore(t.TempDir()))
}

func TestLocalStore_Layout(t *testing.T) {
	root := t.TempDir()
	s := blobstore.NewLocalStore(root)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "snapshots/x.vwi", []byte("data")))

	got, err := os.ReadFile(filepath.Join(root, "snapshots", "x.vwi"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	b, err := s.Open(ctx, "snapshots/x.vwi")
	require.NoError(t, err)
	m, ok := b.(blobstore.Mappable)
	require.True(t, ok)
	view, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "data", string(view))

	require.NoError(t, b.Close())
	_, err = m.Bytes()
	assert.Error(t, err)
}

func TestLocalStore_FailedPutKeepsBlob(t *testing.T) {
	root := t.TempDir()
	ffs := vfs.NewFaultyFS(nil)
	s := blobstore.NewLocalStore(root, blobstore.WithFileSystem(ffs))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, blobstore.CurrentName, []byte("manifests/one")))

	ffs.AddRule(".tmp-", vfs.Fault{FailAfterBytes: -1, FailOnSync: true})
	err := s.Put(ctx, blobstore.CurrentName, []byte("manifests/two"))
	require.ErrorIs(t, err, vfs.ErrInjected)

	got, err := blobstore.Get(ctx, s, blobstore.CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "manifests/one", string(got))

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{blobstore.CurrentName}, names)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	s := blobstore.NewLocalStore(filepath.Join(t.TempDir(), "absent"))
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
