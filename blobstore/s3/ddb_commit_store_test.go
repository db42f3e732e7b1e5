package s3

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vocab/blobstore"
)

func newTestDDBCommitStore(ddb *mockDDBClient, baseURI string) *DDBCommitStore {
	return NewDDBCommitStore(blobstore.NewMemoryStore(), ddb, "vocab-commits", baseURI)
}

func readCurrent(t *testing.T, s blobstore.BlobStore) string {
	t.Helper()
	data, err := blobstore.Get(context.Background(), s, blobstore.CurrentName)
	require.NoError(t, err)
	return string(data)
}

func TestDDBCommitStore_FirstCommit(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test")

	require.NoError(t, store.Put(ctx, blobstore.CurrentName, []byte("manifests/0001.json")))
	assert.Equal(t, "manifests/0001.json", readCurrent(t, store))

	version, manifest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, "manifests/0001.json", manifest)
}

func TestDDBCommitStore_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test")

	// Past version 9 to make sure versions order numerically.
	for i := 1; i <= 12; i++ {
		require.NoError(t, store.Put(ctx, blobstore.CurrentName, []byte(fmt.Sprintf("manifests/%04d.json", i))))
	}
	assert.Equal(t, "manifests/0012.json", readCurrent(t, store))
}

func TestDDBCommitStore_StaleCommitRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test")

	require.NoError(t, store.Commit(ctx, 0, "manifests/a.json"))
	err := store.Commit(ctx, 0, "manifests/b.json")
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.ErrorIs(t, err, blobstore.ErrConcurrentModification)
	assert.Equal(t, "manifests/a.json", readCurrent(t, store))
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test")
	require.NoError(t, store.Commit(ctx, 0, "manifests/base.json"))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := store.Commit(ctx, 1, fmt.Sprintf("manifests/%d.json", id))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, ErrConcurrentModification):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 4, conflicts)
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test")

	_, err := store.Open(context.Background(), blobstore.CurrentName)
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store1 := newTestDDBCommitStore(ddb, "s3://bucket-a/path")
	store2 := newTestDDBCommitStore(ddb, "s3://bucket-b/path")

	require.NoError(t, store1.Put(ctx, blobstore.CurrentName, []byte("manifests/a.json")))
	require.NoError(t, store2.Put(ctx, blobstore.CurrentName, []byte("manifests/b.json")))

	assert.Equal(t, "manifests/a.json", readCurrent(t, store1))
	assert.Equal(t, "manifests/b.json", readCurrent(t, store2))
}

func TestDDBCommitStore_PassThrough(t *testing.T) {
	ctx := context.Background()
	inner := blobstore.NewMemoryStore()
	store := NewDDBCommitStore(inner, newMockDDBClient(), "vocab-commits", "s3://b/p")

	require.NoError(t, store.Put(ctx, "snapshots/x.vwi", []byte("snap")))

	got, err := blobstore.Get(ctx, inner, "snapshots/x.vwi")
	require.NoError(t, err)
	assert.Equal(t, "snap", string(got))

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/x.vwi"}, names)

	_, err = inner.Open(ctx, blobstore.CurrentName)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
