package vocab

import (
	"context"
	"io"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vocab/internal/ihash"
	"github.com/hupe1980/vocab/persistence"
)

// Vocabulary is an immutable, trimmed vocabulary.
//
// Word ids are 1-based slot numbers; 0 means "not found". A Vocabulary is
// safe for concurrent use by multiple goroutines.
type Vocabulary struct {
	table  *ihash.Table
	opts   options
	logger *Logger
}

// ReadVocabulary decodes a snapshot written by WriteTo.
func ReadVocabulary(r io.Reader, optFns ...Option) (*Vocabulary, error) {
	s, err := persistence.Decode(r)
	if err != nil {
		return nil, translateError(err)
	}
	return fromSnapshot(s, optFns)
}

// LoadVocabulary reads a snapshot file written by Save. The file is mapped
// read-only while decoding.
func LoadVocabulary(filename string, optFns ...Option) (*Vocabulary, error) {
	s, err := persistence.OpenFile(filename)
	if err != nil {
		return nil, translateError(err)
	}
	return fromSnapshot(s, optFns)
}

func fromSnapshot(s *persistence.Snapshot, optFns []Option) (*Vocabulary, error) {
	o := applyOptions(optFns)

	var reserver ihash.Reserver
	if o.controller != nil {
		reserver = o.controller
	}
	t, err := ihash.FromArrays(s.KeyWidth, s.ProbeWidth, s.Counts, s.Keys, s.Next, reserver)
	if err != nil {
		return nil, translateError(err)
	}
	return &Vocabulary{
		table:  t,
		opts:   o,
		logger: o.logger.WithKeyWidth(s.KeyWidth).WithProbeWidth(s.ProbeWidth),
	}, nil
}

// Find looks up every key of the flat buffer keys and returns its word id,
// or 0 when the key is absent. The all-zero key always yields 0.
func (v *Vocabulary) Find(ctx context.Context, keys []byte) ([]uint32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := checkKeys(keys, v.table.KeyWidth())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ids := make([]uint32, n)
	err = v.table.Find(keys, ids)
	v.record(ctx, n, ids, time.Since(start), err)
	if err != nil {
		return nil, translateError(err)
	}
	return ids, nil
}

// FindParallel is Find split across up to workers goroutines. Each goroutine
// holds a background slot of the resource controller while it runs.
// workers <= 0 uses the controller's worker limit, or GOMAXPROCS without one.
func (v *Vocabulary) FindParallel(ctx context.Context, keys []byte, workers int) ([]uint32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kw := v.table.KeyWidth()
	n, err := checkKeys(keys, kw)
	if err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = v.opts.controller.MaxBackgroundWorkers()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(min(workers, n), 1)
	chunk := (n + workers - 1) / workers

	start := time.Now()
	ids := make([]uint32, n)

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			rc := v.opts.controller
			if err := rc.AcquireBackground(gctx); err != nil {
				return err
			}
			defer rc.ReleaseBackground()
			return v.table.Find(keys[lo*kw:hi*kw], ids[lo:hi])
		})
	}
	err = g.Wait()

	v.record(ctx, n, ids, time.Since(start), err)
	if err != nil {
		return nil, translateError(err)
	}
	return ids, nil
}

func (v *Vocabulary) record(ctx context.Context, n int, ids []uint32, d time.Duration, err error) {
	found := 0
	for _, id := range ids {
		if id != 0 {
			found++
		}
	}
	v.logger.LogFind(ctx, n, found, err)
	v.opts.metricsCollector.RecordFind(n, d, err)
}

// Len returns the number of slots. Valid word ids are 1..Len().
func (v *Vocabulary) Len() int { return v.table.Capacity() }

// KeyWidth returns the number of bytes per key.
func (v *Vocabulary) KeyWidth() int { return v.table.KeyWidth() }

// ProbeWidth returns the size of the primary region.
func (v *Vocabulary) ProbeWidth() int { return v.table.ProbeWidth() }

func (v *Vocabulary) slot(id uint32) (int, error) {
	if id == 0 || int64(id) > int64(v.table.Capacity()) {
		return 0, ErrInvalidID
	}
	return int(id) - 1, nil
}

// Count returns how often the word id was accumulated.
func (v *Vocabulary) Count(id uint32) (uint32, error) {
	slot, err := v.slot(id)
	if err != nil {
		return 0, err
	}
	return v.table.Count(slot), nil
}

// Key returns a copy of the key stored under id. Unoccupied slots hold the
// all-zero key.
func (v *Vocabulary) Key(id uint32) ([]byte, error) {
	slot, err := v.slot(id)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), v.table.Key(slot)...), nil
}

// Stats computes occupancy statistics.
func (v *Vocabulary) Stats() Stats { return statsOf(v.table) }

// Arrays returns a copy of the slot arrays in host format.
func (v *Vocabulary) Arrays() Arrays { return arraysOf(v.table) }

func (v *Vocabulary) snapshot() *persistence.Snapshot {
	a := v.Arrays()
	return &persistence.Snapshot{
		KeyWidth:   a.KeyWidth,
		ProbeWidth: v.table.ProbeWidth(),
		Counts:     a.Counts,
		Keys:       a.Keys,
		Next:       a.Next,
	}
}

// WriteTo encodes the vocabulary as a snapshot. It implements io.WriterTo.
func (v *Vocabulary) WriteTo(w io.Writer) (int64, error) {
	return persistence.Encode(w, v.snapshot(), v.opts.compression)
}

// Save atomically writes the vocabulary snapshot to filename.
func (v *Vocabulary) Save(filename string) error {
	err := persistence.WriteFile(filename, v.snapshot(), v.opts.compression)
	v.logger.LogSave(context.Background(), filename, err)
	return err
}

// Close returns the memory reserved by the vocabulary to the resource
// controller. The vocabulary must not be used afterwards.
func (v *Vocabulary) Close() error {
	v.table.Release()
	return nil
}
