package vocab

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Histogram is a bag of words: per-word occurrence bins for a batch of keys
// looked up in a vocabulary, plus the set of word ids that occurred.
type Histogram struct {
	bins    []uint32 // bins[id-1]
	words   *roaring.Bitmap
	total   uint64
	missing int
}

// NewHistogram returns an empty histogram over a vocabulary of size slots.
func NewHistogram(size int) *Histogram {
	return &Histogram{
		bins:  make([]uint32, size),
		words: roaring.New(),
	}
}

// Histogram looks up keys and sums their occurrences per word id. Keys that
// are not in the vocabulary are counted by Missing.
func (v *Vocabulary) Histogram(ctx context.Context, keys []byte) (*Histogram, error) {
	ids, err := v.Find(ctx, keys)
	if err != nil {
		return nil, err
	}
	h := NewHistogram(v.Len())
	if err := h.Add(ids); err != nil {
		return nil, err
	}
	return h, nil
}

// Add adds one occurrence per id. Id 0 counts as missing. Add stops at the
// first id past the vocabulary size; earlier ids stay counted.
func (h *Histogram) Add(ids []uint32) error {
	for _, id := range ids {
		if id == 0 {
			h.missing++
			continue
		}
		if int64(id) > int64(len(h.bins)) {
			return fmt.Errorf("%w: %d (vocabulary has %d words)", ErrInvalidID, id, len(h.bins))
		}
		h.bins[id-1]++
		h.words.Add(id)
		h.total++
	}
	return nil
}

// Merge adds the bins of other to h. Both must cover the same vocabulary size.
func (h *Histogram) Merge(other *Histogram) error {
	if len(other.bins) != len(h.bins) {
		return fmt.Errorf("%w: histogram sizes %d and %d differ", ErrConfig, len(h.bins), len(other.bins))
	}
	it := other.words.Iterator()
	for it.HasNext() {
		id := it.Next()
		h.bins[id-1] += other.bins[id-1]
	}
	h.words.Or(other.words)
	h.total += other.total
	h.missing += other.missing
	return nil
}

// Size returns the vocabulary size the histogram covers.
func (h *Histogram) Size() int { return len(h.bins) }

// Count returns the occurrences of word id. Out-of-range ids yield 0.
func (h *Histogram) Count(id uint32) uint32 {
	if id == 0 || int64(id) > int64(len(h.bins)) {
		return 0
	}
	return h.bins[id-1]
}

// Bins returns a copy of the dense bins; entry i holds word id i+1.
func (h *Histogram) Bins() []uint32 {
	return append([]uint32(nil), h.bins...)
}

// Words returns a copy of the set of word ids that occurred.
func (h *Histogram) Words() *roaring.Bitmap { return h.words.Clone() }

// Distinct returns the number of distinct words that occurred.
func (h *Histogram) Distinct() int { return int(h.words.GetCardinality()) }

// Total returns the number of keys that resolved to a word.
func (h *Histogram) Total() uint64 { return h.total }

// Missing returns the number of keys that resolved to no word.
func (h *Histogram) Missing() int { return h.missing }

// Jaccard returns the Jaccard similarity of the word sets of h and other.
// Two empty histograms have similarity 0.
func (h *Histogram) Jaccard(other *Histogram) float64 {
	union := roaring.Or(h.words, other.words).GetCardinality()
	if union == 0 {
		return 0
	}
	return float64(roaring.And(h.words, other.words).GetCardinality()) / float64(union)
}
