package ihash

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budget struct {
	limit int64
	used  int64
}

func (b *budget) TryAcquireMemory(n int64) bool {
	if b.used+n > b.limit {
		return false
	}
	b.used += n
	return true
}

func (b *budget) ReleaseMemory(n int64) { b.used -= n }

func flatten(keys ...[]byte) []byte {
	var out []byte
	for _, k := range keys {
		out = append(out, k...)
	}
	return out
}

// randomKeys returns n distinct non-zero keys of width kw.
func randomKeys(rng *rand.Rand, n, kw int) []byte {
	seen := make(map[string]struct{}, n)
	out := make([]byte, 0, n*kw)
	key := make([]byte, kw)
	for len(seen) < n {
		rng.Read(key)
		if isZero(key) {
			continue
		}
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		out = append(out, key...)
	}
	return out
}

func findAll(t *testing.T, tbl *Table, keys []byte) []uint32 {
	t.Helper()
	out := make([]uint32, len(keys)/tbl.KeyWidth())
	require.NoError(t, tbl.Find(keys, out))
	return out
}

func TestTable_ExampleScenario(t *testing.T) {
	tbl, err := New(Config{KeyWidth: 2, ProbeWidth: 4, Capacity: 4})
	require.NoError(t, err)

	keys := flatten([]byte{1, 1}, []byte{2, 2}, []byte{1, 1}, []byte{3, 3}, []byte{4, 4}, []byte{5, 5})
	n, err := tbl.Accumulate(keys)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	tbl.Trim()

	assert.GreaterOrEqual(t, tbl.Growths(), 1)
	assert.Equal(t, tbl.HighWaterMark(), tbl.Capacity())

	stats := tbl.Stats()
	assert.Equal(t, 5, stats.Words)
	assert.Equal(t, uint64(6), stats.Occurrences)

	ids := findAll(t, tbl, flatten([]byte{1, 1}, []byte{2, 2}, []byte{3, 3}, []byte{4, 4}, []byte{5, 5}, []byte{9, 9}))
	for i := 0; i < 5; i++ {
		require.NotZero(t, ids[i], "key %d not found", i)
	}
	assert.Equal(t, uint32(0), ids[5])

	assert.Equal(t, uint32(2), tbl.Count(int(ids[0]-1)))
	for i := 1; i < 5; i++ {
		assert.Equal(t, uint32(1), tbl.Count(int(ids[i]-1)))
	}

	again := findAll(t, tbl, []byte{1, 1})
	assert.Equal(t, ids[0], again[0])
}

func TestTable_RoundTripAndCounting(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const kw = 4
	distinct := randomKeys(rng, 500, kw)

	tbl, err := New(Config{KeyWidth: kw, ProbeWidth: 64})
	require.NoError(t, err)

	// Key i is accumulated (i%3)+1 times, spread over several shards.
	want := make(map[string]uint32)
	var shard []byte
	for round := 0; round < 3; round++ {
		shard = shard[:0]
		for i := 0; i < 500; i++ {
			if i%3 >= round {
				key := distinct[i*kw : (i+1)*kw]
				shard = append(shard, key...)
				want[string(key)]++
			}
		}
		_, err := tbl.Accumulate(shard)
		require.NoError(t, err)
		tbl.Trim()
	}

	ids := findAll(t, tbl, distinct)
	seen := make(map[uint32]bool)
	for i, id := range ids {
		key := distinct[i*kw : (i+1)*kw]
		require.NotZero(t, id)
		assert.False(t, seen[id], "slot %d aliased by two keys", id)
		seen[id] = true
		assert.Equal(t, want[string(key)], tbl.Count(int(id-1)))
		assert.Equal(t, key, tbl.Key(int(id-1)))
	}

	assert.Equal(t, ids, findAll(t, tbl, distinct), "ids must be stable across lookups")
}

func TestTable_SentinelExclusion(t *testing.T) {
	tbl, err := New(Config{KeyWidth: 3, ProbeWidth: 8})
	require.NoError(t, err)
	_, err = tbl.Accumulate(flatten([]byte{1, 2, 3}, []byte{0, 0, 1}))
	require.NoError(t, err)

	ids := findAll(t, tbl, flatten([]byte{0, 0, 0}, []byte{0, 0, 1}))
	assert.Equal(t, uint32(0), ids[0])
	assert.NotZero(t, ids[1])
}

func TestTable_GrowthTransparency(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const kw = 8
	keys := randomKeys(rng, 2000, kw)

	small, err := New(Config{KeyWidth: kw, ProbeWidth: 16})
	require.NoError(t, err)
	large, err := New(Config{KeyWidth: kw, ProbeWidth: 16, Capacity: 4096})
	require.NoError(t, err)

	for _, tbl := range []*Table{small, large} {
		_, err := tbl.Accumulate(keys)
		require.NoError(t, err)
		_, err = tbl.Accumulate(keys[:100*kw])
		require.NoError(t, err)
		tbl.Trim()
	}

	assert.Greater(t, small.Growths(), 0)
	assert.Equal(t, 0, large.Growths())

	assert.Equal(t, small.Capacity(), large.Capacity())

	probe := append(append([]byte{}, keys...), randomKeys(rand.New(rand.NewSource(99)), 200, kw)...)
	smallIDs := findAll(t, small, probe)
	largeIDs := findAll(t, large, probe)
	assert.Equal(t, smallIDs, largeIDs)
	for _, id := range smallIDs {
		if id != 0 {
			assert.Equal(t, small.Count(int(id-1)), large.Count(int(id-1)))
		}
	}
}

func TestTable_MonotoneHighWaterMark(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const kw = 2
	tbl, err := New(Config{KeyWidth: kw, ProbeWidth: 4})
	require.NoError(t, err)

	prev := tbl.HighWaterMark()
	for round := 0; round < 20; round++ {
		_, err := tbl.Accumulate(randomKeys(rng, 10, kw))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, tbl.HighWaterMark(), prev)
		assert.LessOrEqual(t, tbl.HighWaterMark(), tbl.Capacity())
		prev = tbl.HighWaterMark()
		if round%2 == 0 {
			tbl.Trim()
			assert.Equal(t, prev, tbl.Capacity())
		}
	}
}

func TestTable_SinglePrimarySlotChains(t *testing.T) {
	tbl, err := New(Config{KeyWidth: 4, ProbeWidth: 1})
	require.NoError(t, err)

	keys := make([]byte, 0, 40)
	for i := uint32(1); i <= 10; i++ {
		keys = binary.LittleEndian.AppendUint32(keys, i)
	}
	_, err = tbl.Accumulate(keys)
	require.NoError(t, err)
	tbl.Trim()

	assert.Equal(t, 10, tbl.Capacity())
	assert.Equal(t, 9, tbl.Stats().MaxChainLength)
	for i, id := range findAll(t, tbl, keys) {
		assert.Equal(t, uint32(i+1), id)
	}
}

func TestTable_NonPowerOfTwoProbeWidth(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	keys := randomKeys(rng, 300, 3)
	tbl, err := New(Config{KeyWidth: 3, ProbeWidth: 7})
	require.NoError(t, err)
	_, err = tbl.Accumulate(keys)
	require.NoError(t, err)

	for _, id := range findAll(t, tbl, keys) {
		assert.NotZero(t, id)
	}
	assert.Equal(t, 300, tbl.Stats().Words)
}

func TestTable_AllocationRefusalLeavesTableIntact(t *testing.T) {
	b := &budget{limit: 1 << 20}
	tbl, err := New(Config{KeyWidth: 2, ProbeWidth: 4, Reserver: b})
	require.NoError(t, err)
	b.limit = b.used // no room for growth

	first := flatten([]byte{1, 1}, []byte{2, 2}, []byte{3, 3}, []byte{4, 4})
	n, err := tbl.Accumulate(first)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	counts, keys, links := tbl.Counts(), tbl.Keys(), tbl.Links()

	n, err = tbl.Accumulate(flatten([]byte{5, 5}, []byte{1, 1}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Equal(t, 0, n)

	var ae *AllocationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 4, ae.Capacity)
	assert.Equal(t, 6, ae.Requested)
	assert.Equal(t, 0, ae.Committed)

	assert.Equal(t, counts, tbl.Counts())
	assert.Equal(t, keys, tbl.Keys())
	assert.Equal(t, links, tbl.Links())
	assert.Equal(t, 4, tbl.HighWaterMark())

	// Existing keys still accumulate without growth.
	n, err = tbl.Accumulate([]byte{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTable_TrimReleasesMemory(t *testing.T) {
	b := &budget{limit: 1 << 20}
	tbl, err := New(Config{KeyWidth: 2, ProbeWidth: 4, Reserver: b})
	require.NoError(t, err)

	_, err = tbl.Accumulate(flatten([]byte{1, 1}, []byte{2, 2}, []byte{3, 3}, []byte{4, 4}, []byte{5, 5}))
	require.NoError(t, err)
	assert.Equal(t, tbl.slotBytes(6), b.used)

	tbl.Trim()
	assert.Equal(t, 5, tbl.Capacity())
	assert.Equal(t, tbl.slotBytes(5), b.used)

	tbl.Release()
	assert.Equal(t, int64(0), b.used)
}

func TestTable_GrowthCallback(t *testing.T) {
	var steps [][2]int
	tbl, err := New(Config{
		KeyWidth:   1,
		ProbeWidth: 2,
		OnGrow:     func(o, n int) { steps = append(steps, [2]int{o, n}) },
	})
	require.NoError(t, err)

	_, err = tbl.Accumulate([]byte{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)

	// 2 -> 4 -> 6 -> 9
	assert.Equal(t, [][2]int{{2, 4}, {4, 6}, {6, 9}}, steps)
	assert.Equal(t, 7, tbl.HighWaterMark())
}

func TestTable_ConfigErrors(t *testing.T) {
	t.Run("InvalidWidths", func(t *testing.T) {
		_, err := New(Config{KeyWidth: 0, ProbeWidth: 1})
		assert.ErrorIs(t, err, ErrConfig)
		_, err = New(Config{KeyWidth: 1, ProbeWidth: 0})
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("ProbeWidthExceedsCapacity", func(t *testing.T) {
		tbl, err := FromArrays(1, 3, []uint32{0, 0}, []byte{0, 0}, []uint32{0, 0}, nil)
		require.NoError(t, err)
		_, err = tbl.Accumulate([]byte{1})
		assert.ErrorIs(t, err, ErrConfig)
		assert.ErrorIs(t, tbl.Find([]byte{1}, make([]uint32, 1)), ErrConfig)
	})

	t.Run("ChainPointerPastTable", func(t *testing.T) {
		tbl, err := FromArrays(1, 2, []uint32{1, 0}, []byte{7, 0}, []uint32{5, 0}, nil)
		require.NoError(t, err)
		_, err = tbl.Accumulate([]byte{1})
		assert.ErrorIs(t, err, ErrConfig)
		assert.ErrorIs(t, tbl.Find([]byte{1}, make([]uint32, 1)), ErrConfig)
	})

	t.Run("SlotCountMismatch", func(t *testing.T) {
		_, err := FromArrays(2, 1, []uint32{0, 0}, []byte{0, 0}, []uint32{0, 0}, nil)
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("RaggedKeys", func(t *testing.T) {
		tbl, err := New(Config{KeyWidth: 2, ProbeWidth: 2})
		require.NoError(t, err)
		_, err = tbl.Accumulate([]byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrConfig)
		assert.ErrorIs(t, tbl.Find([]byte{1, 2}, make([]uint32, 2)), ErrConfig)
	})
}

func TestTable_FromArraysRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	keys := randomKeys(rng, 100, 4)
	src, err := New(Config{KeyWidth: 4, ProbeWidth: 16})
	require.NoError(t, err)
	_, err = src.Accumulate(keys)
	require.NoError(t, err)
	src.Trim()

	dst, err := FromArrays(4, 16, src.Counts(), src.Keys(), src.Links(), nil)
	require.NoError(t, err)
	assert.Equal(t, findAll(t, src, keys), findAll(t, dst, keys))

	// Resume accumulating on the rebuilt table.
	_, err = dst.Accumulate(keys[:4])
	require.NoError(t, err)
	id := findAll(t, dst, keys[:4])[0]
	assert.Equal(t, uint32(2), dst.Count(int(id-1)))
}

func TestLinks_Encoding(t *testing.T) {
	links := []Link{NoLink, LinkTo(0), LinkTo(7)}
	enc := EncodeLinks(links)
	assert.Equal(t, []uint32{0, 1, 8}, enc)
	assert.Equal(t, links, DecodeLinks(enc))

	s, ok := LinkTo(3).Slot()
	assert.True(t, ok)
	assert.Equal(t, 3, s)
	_, ok = NoLink.Slot()
	assert.False(t, ok)
}
