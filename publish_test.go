package vocab_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vocab"
	"github.com/hupe1980/vocab/blobstore"
	"github.com/hupe1980/vocab/codec"
	"github.com/hupe1980/vocab/resource"
	"github.com/hupe1980/vocab/testutil"
)

func TestPublishFetch(t *testing.T) {
	stores := map[string]func(t *testing.T) blobstore.BlobStore{
		"Memory": func(*testing.T) blobstore.BlobStore { return blobstore.NewMemoryStore() },
		"Local":  func(t *testing.T) blobstore.BlobStore { return blobstore.NewLocalStore(t.TempDir()) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			rng := testutil.NewRNG(21)
			words := rng.DistinctKeys(500, 12)

			_, err := vocab.Fetch(ctx, store)
			require.ErrorIs(t, err, vocab.ErrNotPublished)

			metrics := &vocab.BasicMetricsCollector{}
			rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})
			v1 := build(t, 12, 128, words[:200*12],
				vocab.WithMetricsCollector(metrics),
				vocab.WithResourceController(rc),
			)

			m1, err := vocab.Publish(ctx, store, v1)
			require.NoError(t, err)
			assert.Equal(t, int64(1), metrics.GetStats().PublishCount)
			assert.Positive(t, metrics.GetStats().PublishBytes)

			got, err := vocab.Fetch(ctx, store)
			require.NoError(t, err)
			assert.Equal(t, v1.Arrays(), got.Arrays())

			v2 := build(t, 12, 128, words)
			m2, err := vocab.Publish(ctx, store, v2)
			require.NoError(t, err)
			assert.NotEqual(t, m1, m2)

			manifest, err := vocab.FetchManifest(ctx, store)
			require.NoError(t, err)
			assert.Equal(t, 500, manifest.Words)
			assert.Equal(t, 12, manifest.KeyWidth)
			assert.Equal(t, 128, manifest.ProbeWidth)

			got, err = vocab.Fetch(ctx, store)
			require.NoError(t, err)
			assert.Equal(t, v2.Arrays(), got.Arrays())

			// The previous snapshot stays readable.
			names, err := store.List(ctx, "snapshots/")
			require.NoError(t, err)
			assert.Len(t, names, 2)
		})
	}
}

func TestFetch_DetectsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	v := build(t, 2, 4, []byte{1, 1, 2, 2, 3, 3})

	_, err := vocab.Publish(ctx, store, v)
	require.NoError(t, err)

	m, err := vocab.FetchManifest(ctx, store)
	require.NoError(t, err)

	data, err := blobstore.Get(ctx, store, m.Snapshot)
	require.NoError(t, err)
	data[len(data)-1] ^= 0x01
	require.NoError(t, store.Put(ctx, m.Snapshot, data))

	_, err = vocab.Fetch(ctx, store)
	assert.ErrorIs(t, err, vocab.ErrCorruptSnapshot)
}

func TestFetch_ManifestCodec(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	v := build(t, 1, 2, []byte{7}, vocab.WithCodec(codec.JSON{}))

	_, err := vocab.Publish(ctx, store, v)
	require.NoError(t, err)

	// Both codecs read the same JSON manifest.
	got, err := vocab.Fetch(ctx, store, vocab.WithCodec(codec.GoJSON{}))
	require.NoError(t, err)
	assert.Equal(t, v.Arrays(), got.Arrays())

	require.NoError(t, store.Put(ctx, blobstore.CurrentName, []byte("manifests/missing.json")))
	_, err = vocab.Fetch(ctx, store)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
