// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("vocabularies/oxford5k"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	id, err := vocab.Publish(ctx, store, v)
//
// S3 has no compare-and-swap, so concurrent publishers can overwrite each
// other's commit pointer. DDBCommitStore keeps the pointer in DynamoDB and
// rejects racing commits with blobstore.ErrConcurrentModification:
//
//	store, err := s3.NewCommitStore(ctx, "my-bucket", "vocab-commits",
//	    s3.WithPrefix("vocabularies/oxford5k"),
//	)
//
// # Features
//
//   - Range reads
//   - Multipart uploads for large snapshots
//   - CRC32C integrity checks on upload
//   - Automatic pagination for listing
package s3
