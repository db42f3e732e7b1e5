// Package badger stores vocabulary snapshots in an embedded badger database,
// for single-node deployments that want one file set instead of a directory
// of blobs.
package badger

import (
	"context"
	"errors"
	"io"

	"github.com/dgraph-io/badger/v4"

	"github.com/hupe1980/vocab/blobstore"
)

// Options configures the embedded database.
type Options struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string
	// InMemory keeps everything in RAM; data is lost on Close.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// Logger receives badger's internal logs. Nil silences them.
	Logger badger.Logger
}

// Store implements blobstore.BlobStore on badger.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(opts.Logger)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Open reads the blob value. The value is copied out of the transaction.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &valueBlob{data: data}, nil
}

// Put stores the blob in a single transaction.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		// Set keeps the slice until commit; callers may reuse data afterwards.
		return txn.Set([]byte(name), append([]byte(nil), data...))
	})
}

// Delete removes the blob.
func (s *Store) Delete(_ context.Context, name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(name))
	})
}

// List returns the names with the given prefix in key order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			names = append(names, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// valueBlob serves reads from a copied value.
type valueBlob struct {
	data []byte
}

func (b *valueBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *valueBlob) Size() int64 { return int64(len(b.data)) }

func (b *valueBlob) Close() error { return nil }

func (b *valueBlob) Bytes() ([]byte, error) { return b.data, nil }
