// Package minio stores vocabulary snapshots in MinIO and other
// S3-compatible servers (Ceph, Garage, SeaweedFS) through minio-go.
//
// # Basic Usage
//
//	client, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := minio.NewStore(client, "vocab", "oxford5k/")
//	id, err := vocab.Publish(ctx, store, v)
//
// The package needs no AWS configuration, which makes it the choice for
// air-gapped deployments.
package minio
