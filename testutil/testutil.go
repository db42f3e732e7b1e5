package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// FillKey fills dst with random bytes, never leaving it all zero.
func (r *RNG) FillKey(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fillKeyLocked(dst)
}

func (r *RNG) fillKeyLocked(dst []byte) {
	for {
		r.rand.Read(dst)
		if !IsZero(dst) {
			return
		}
	}
}

// DistinctKeys returns n distinct non-zero keys of width keyWidth as one
// flat buffer.
func (r *RNG) DistinctKeys(n, keyWidth int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]byte, n*keyWidth)
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; {
		key := out[i*keyWidth : (i+1)*keyWidth]
		r.fillKeyLocked(key)
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		i++
	}
	return out
}

// ZipfKeys draws n keys from the flat buffer words with a Zipfian word
// frequency, the way visual words occur in real images.
// s=1.0 gives standard Zipf, larger s a heavier head.
func (r *RNG) ZipfKeys(words []byte, keyWidth, n int, s float64) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	numWords := len(words) / keyWidth
	cdf := zipfCDF(numWords, s)

	out := make([]byte, 0, n*keyWidth)
	for range n {
		w := sampleCDF(cdf, r.rand.Float64())
		out = append(out, words[w*keyWidth:(w+1)*keyWidth]...)
	}
	return out
}

// zipfCDF returns the normalized cumulative distribution P(k) ∝ 1/k^s.
func zipfCDF(n int, s float64) []float64 {
	cdf := make([]float64, n)
	var sum float64
	for k := 1; k <= n; k++ {
		sum += 1.0 / math.Pow(float64(k), s)
		cdf[k-1] = sum
	}
	for i := range cdf {
		cdf[i] /= sum
	}
	return cdf
}

func sampleCDF(cdf []float64, u float64) int {
	lo, hi := 0, len(cdf)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if u <= cdf[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// Shuffle permutes the keys of a flat buffer in place.
func (r *RNG) Shuffle(keys []byte, keyWidth int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := make([]byte, keyWidth)
	r.rand.Shuffle(len(keys)/keyWidth, func(i, j int) {
		a := keys[i*keyWidth : (i+1)*keyWidth]
		b := keys[j*keyWidth : (j+1)*keyWidth]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	})
}

// CountKeys returns the number of occurrences of every key of a flat buffer.
// It is the reference the index is checked against.
func CountKeys(keys []byte, keyWidth int) map[string]uint32 {
	counts := make(map[string]uint32)
	for i := 0; i+keyWidth <= len(keys); i += keyWidth {
		counts[string(keys[i:i+keyWidth])]++
	}
	return counts
}

// IsZero reports whether every byte of key is zero.
func IsZero(key []byte) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}
