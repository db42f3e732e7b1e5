package vocab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/vocab/blobstore"
	"github.com/hupe1980/vocab/internal/hash"
	"github.com/hupe1980/vocab/persistence"
	"github.com/hupe1980/vocab/resource"
)

const (
	// ManifestVersion is the manifest format version written by Publish.
	ManifestVersion = 1

	snapshotDir = "snapshots"
	manifestDir = "manifests"
)

// Manifest describes a published vocabulary snapshot.
type Manifest struct {
	Version     int       `json:"version"`
	Snapshot    string    `json:"snapshot"`
	Size        int64     `json:"size"`
	Checksum    uint32    `json:"checksum"` // CRC32C of the snapshot blob
	Compression string    `json:"compression"`
	KeyWidth    int       `json:"key_width"`
	ProbeWidth  int       `json:"probe_width"`
	Slots       int       `json:"slots"`
	Words       int       `json:"words"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publish writes v to store as an immutable snapshot blob plus a manifest,
// then points blobstore.CurrentName at the manifest. Readers that Fetch
// before the pointer moves still see the previous vocabulary.
//
// It returns the manifest name. With a compare-and-swap store (for example
// the DynamoDB commit store) a concurrent publisher makes Publish fail with
// blobstore.ErrConcurrentModification; the orphaned blobs are left behind.
func Publish(ctx context.Context, store blobstore.BlobStore, v *Vocabulary) (string, error) {
	start := time.Now()
	name, size, err := publish(ctx, store, v)
	v.logger.LogPublish(ctx, name, size, err)
	v.opts.metricsCollector.RecordPublish(size, time.Since(start), err)
	return name, err
}

func publish(ctx context.Context, store blobstore.BlobStore, v *Vocabulary) (string, int64, error) {
	var buf bytes.Buffer
	if _, err := v.WriteTo(resource.NewRateLimitedWriter(ctx, &buf, v.opts.controller)); err != nil {
		return "", 0, fmt.Errorf("encode snapshot: %w", err)
	}
	data := buf.Bytes()
	size := int64(len(data))

	id := uuid.NewString()
	snapshotName := path.Join(snapshotDir, id+".vwi")
	if err := store.Put(ctx, snapshotName, data); err != nil {
		return "", 0, fmt.Errorf("put snapshot: %w", err)
	}

	stats := v.Stats()
	m := Manifest{
		Version:     ManifestVersion,
		Snapshot:    snapshotName,
		Size:        size,
		Checksum:    hash.CRC32C(data),
		Compression: v.opts.compression.String(),
		KeyWidth:    stats.KeyWidth,
		ProbeWidth:  stats.ProbeWidth,
		Slots:       stats.Capacity,
		Words:       stats.Words,
		CreatedAt:   time.Now().UTC(),
	}
	manifest, err := v.opts.codec.Marshal(&m)
	if err != nil {
		return "", 0, fmt.Errorf("encode manifest: %w", err)
	}
	manifestName := path.Join(manifestDir, id+".json")
	if err := store.Put(ctx, manifestName, manifest); err != nil {
		return "", 0, fmt.Errorf("put manifest: %w", err)
	}

	if err := store.Put(ctx, blobstore.CurrentName, []byte(manifestName)); err != nil {
		return "", 0, fmt.Errorf("commit: %w", err)
	}
	return manifestName, size, nil
}

// Fetch loads the vocabulary blobstore.CurrentName points at.
// It fails with ErrNotPublished if nothing was published yet.
func Fetch(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*Vocabulary, error) {
	o := applyOptions(optFns)

	m, err := FetchManifest(ctx, store, optFns...)
	if err != nil {
		return nil, err
	}

	blob, err := store.Open(ctx, m.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", m.Snapshot, err)
	}
	defer blob.Close()

	if err := o.controller.AcquireIO(ctx, int(blob.Size())); err != nil {
		return nil, err
	}

	var data []byte
	if mb, ok := blob.(blobstore.Mappable); ok {
		data, err = mb.Bytes()
	} else {
		data, err = blobstore.ReadAll(ctx, blob)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", m.Snapshot, err)
	}

	if int64(len(data)) != m.Size {
		return nil, fmt.Errorf("%w: snapshot %s is %d bytes, manifest says %d",
			ErrCorruptSnapshot, m.Snapshot, len(data), m.Size)
	}
	if sum := hash.CRC32C(data); sum != m.Checksum {
		return nil, fmt.Errorf("%w: snapshot %s: %w", ErrCorruptSnapshot, m.Snapshot,
			&persistence.ChecksumMismatchError{Expected: m.Checksum, Actual: sum})
	}

	s, err := persistence.DecodeBytes(data)
	if err != nil {
		return nil, translateError(err)
	}
	return fromSnapshot(s, optFns)
}

// FetchManifest reads the manifest blobstore.CurrentName points at.
func FetchManifest(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*Manifest, error) {
	o := applyOptions(optFns)

	current, err := blobstore.Get(ctx, store, blobstore.CurrentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotPublished, err)
		}
		return nil, err
	}
	manifestName := strings.TrimSpace(string(current))

	raw, err := blobstore.Get(ctx, store, manifestName)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", manifestName, err)
	}
	var m Manifest
	if err := o.codec.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %w", ErrCorruptSnapshot, manifestName, err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("%w: manifest %s has version %d", ErrCorruptSnapshot, manifestName, m.Version)
	}
	return &m, nil
}
