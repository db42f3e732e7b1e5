package vocab_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vocab"
)

func TestHistogram(t *testing.T) {
	ctx := context.Background()
	v := build(t, 1, 8, []byte{1, 2, 3, 4})

	ids, err := v.Find(ctx, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	h, err := v.Histogram(ctx, []byte{1, 1, 1, 3, 9, 0})
	require.NoError(t, err)

	assert.Equal(t, v.Len(), h.Size())
	assert.Equal(t, uint32(3), h.Count(ids[0]))
	assert.Zero(t, h.Count(ids[1]))
	assert.Equal(t, uint32(1), h.Count(ids[2]))
	assert.Equal(t, uint64(4), h.Total())
	assert.Equal(t, 2, h.Missing())
	assert.Equal(t, 2, h.Distinct())

	words := h.Words()
	assert.True(t, words.Contains(ids[0]))
	assert.True(t, words.Contains(ids[2]))
	assert.False(t, words.Contains(ids[1]))

	bins := h.Bins()
	var sum uint64
	for _, b := range bins {
		sum += uint64(b)
	}
	assert.Equal(t, h.Total(), sum)

	// Copies do not alias.
	words.Add(ids[3])
	bins[ids[0]-1] = 0
	assert.False(t, h.Words().Contains(ids[3]))
	assert.Equal(t, uint32(3), h.Count(ids[0]))
}

func TestHistogram_Merge(t *testing.T) {
	a := vocab.NewHistogram(4)
	b := vocab.NewHistogram(4)
	require.NoError(t, a.Add([]uint32{1, 1, 2}))
	require.NoError(t, b.Add([]uint32{2, 4, 0}))

	require.NoError(t, a.Merge(b))
	assert.Equal(t, []uint32{2, 2, 0, 1}, a.Bins())
	assert.Equal(t, uint64(5), a.Total())
	assert.Equal(t, 1, a.Missing())
	assert.Equal(t, 3, a.Distinct())

	err := a.Merge(vocab.NewHistogram(3))
	assert.ErrorIs(t, err, vocab.ErrConfig)
}

func TestHistogram_Jaccard(t *testing.T) {
	a := vocab.NewHistogram(10)
	b := vocab.NewHistogram(10)
	assert.Zero(t, a.Jaccard(b))

	require.NoError(t, a.Add([]uint32{1, 2, 3}))
	require.NoError(t, b.Add([]uint32{2, 3, 4, 4}))
	assert.InDelta(t, 0.5, a.Jaccard(b), 1e-9)
	assert.InDelta(t, 1.0, a.Jaccard(a), 1e-9)
}

func TestHistogram_AddRejectsOutOfRange(t *testing.T) {
	h := vocab.NewHistogram(2)
	err := h.Add([]uint32{1, 3})
	assert.ErrorIs(t, err, vocab.ErrInvalidID)
	assert.Equal(t, uint32(1), h.Count(1))
}
