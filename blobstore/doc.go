// Package blobstore stores published vocabulary snapshots and their
// manifests.
//
// BlobStore is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads, atomic writes
//   - MemoryStore: in-process, for tests and ephemeral serving
//   - s3.Store / s3.DDBCommitStore: Amazon S3, optionally with DynamoDB commits
//   - minio.Store: MinIO and other S3-compatible servers
//   - badger.Store: embedded badger key-value store
//
// # Commit pointer
//
// Publishers write the snapshot and manifest first and then Put the name of
// the manifest under [CurrentName]. Stores that need compare-and-swap
// semantics (DynamoDB) intercept that name.
package blobstore
