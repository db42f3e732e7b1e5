// Package testutil provides testing utilities for vocab.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic key generation and a reference counter.
//
// # Random Keys
//
//	rng := testutil.NewRNG(seed)
//	words := rng.DistinctKeys(1000, 16)            // 1000 keys, 16 bytes each
//	batch := rng.ZipfKeys(words, 16, 50000, 1.1)   // skewed word frequencies
//
// # Reference Counts
//
//	want := testutil.CountKeys(batch, 16)
package testutil
