// Package vocab provides an incremental hash index for fixed-width byte keys
// (visual words) with per-key occurrence counts.
//
// A vocabulary maps every distinct key to a stable 1-based word id and
// counts how often it was seen. Keys are hashed with FNV-1 into a primary
// region of probeWidth slots and placed with a bounded double-hashing probe;
// keys the probe cannot place go to overflow chains past the primary region.
// The slot arrays grow by half their size when a chain needs a slot and none
// is free, and are trimmed to the high-water mark after every batch.
//
// # Quick Start
//
//	ctx := context.Background()
//	b, _ := vocab.NewBuilder(128, 1<<16)
//	_ = b.Accumulate(ctx, keys)       // len(keys) is a multiple of 128
//	v, _ := b.Freeze()
//	ids, _ := v.Find(ctx, queries)    // 0 means not found
//
// The all-zero key marks an empty slot. It can never become a word and
// always resolves to id 0, so callers whose codes may be all zero must bias
// them (for example by starting quantization codes at 1).
//
// # Concurrency
//
// A Builder is exclusively owned by its caller. A Vocabulary is immutable and
// may be shared by any number of readers; FindParallel fans a large batch
// out over several goroutines.
//
// # Persistence
//
// Vocabularies are stored as compact snapshots (see package persistence):
//
//	_ = v.Save("words.vwi")
//	v, _ = vocab.LoadVocabulary("words.vwi")
//
// Publish and Fetch share a vocabulary through any blobstore.BlobStore
// (local directory, memory, S3, MinIO, Badger). The writer publishes an
// immutable snapshot and then moves the CURRENT pointer, so readers always
// see a complete vocabulary.
//
// # Resources
//
// WithResourceController charges slot memory against a shared budget; a
// refused growth step fails with *AllocationError and leaves the vocabulary
// untouched except for the keys already committed in that batch.
package vocab
