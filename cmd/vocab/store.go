package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/vocab/blobstore"
	badgerstore "github.com/hupe1980/vocab/blobstore/badger"
	miniostore "github.com/hupe1980/vocab/blobstore/minio"
	s3store "github.com/hupe1980/vocab/blobstore/s3"
)

// openStore builds the configured blob store. The returned close function
// is never nil.
func openStore(ctx context.Context, cfg StoreConfig) (blobstore.BlobStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Type {
	case "local":
		return blobstore.NewLocalStore(cfg.Path), noop, nil

	case "badger":
		s, err := badgerstore.Open(badgerstore.Options{Dir: cfg.Path, SyncWrites: true})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case "s3":
		var opts []s3store.Option
		if cfg.Prefix != "" {
			opts = append(opts, s3store.WithPrefix(cfg.Prefix))
		}
		if cfg.Region != "" {
			opts = append(opts, s3store.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(cfg.Endpoint))
		}
		if cfg.DynamoDBTable != "" {
			s, err := s3store.NewCommitStore(ctx, cfg.Bucket, cfg.DynamoDBTable, opts...)
			if err != nil {
				return nil, nil, err
			}
			return s, noop, nil
		}
		s, err := s3store.New(ctx, cfg.Bucket, opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case "minio":
		client, err := miniostore.Dial(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Secure)
		if err != nil {
			return nil, nil, err
		}
		return miniostore.NewStore(client, cfg.Bucket, cfg.Prefix), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
