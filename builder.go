package vocab

import (
	"context"
	"log/slog"
	"time"

	"github.com/hupe1980/vocab/internal/ihash"
)

// Arrays is the host format of a vocabulary: three parallel slot arrays.
//
// Counts and Next hold one entry per slot, Keys holds KeyWidth bytes per
// slot. Next uses 1-based slot ids; 0 ends a chain.
type Arrays struct {
	KeyWidth int
	Counts   []uint32
	Keys     []byte
	Next     []uint32
}

// Slots returns the number of slots.
func (a Arrays) Slots() int { return len(a.Counts) }

// Stats summarizes the occupancy of a vocabulary.
type Stats struct {
	KeyWidth      int
	ProbeWidth    int
	Capacity      int
	HighWaterMark int
	Growths       int

	// Words is the number of distinct keys.
	Words int
	// Occurrences is the sum of all counts.
	Occurrences uint64
	// ChainSlots is the number of occupied slots outside the primary region.
	ChainSlots int
	// MaxChainLength is the longest overflow chain.
	MaxChainLength int
}

func statsOf(t *ihash.Table) Stats {
	s := t.Stats()
	return Stats{
		KeyWidth:       s.KeyWidth,
		ProbeWidth:     s.ProbeWidth,
		Capacity:       s.Capacity,
		HighWaterMark:  s.HighWaterMark,
		Growths:        s.Growths,
		Words:          s.Words,
		Occurrences:    s.Occurrences,
		ChainSlots:     s.OverflowWords,
		MaxChainLength: s.MaxChainLength,
	}
}

// Builder accumulates keys into a vocabulary.
//
// A Builder is not safe for concurrent use. Call Freeze to obtain an
// immutable Vocabulary that can be shared between readers.
type Builder struct {
	table      *ihash.Table
	keyWidth   int
	probeWidth int
	opts       options
	logger     *Logger

	// ctx of the running batch, for growth logging.
	batchCtx context.Context
	frozen   bool
}

// NewBuilder creates an empty vocabulary builder for keys of keyWidth bytes
// with a primary region of probeWidth slots.
func NewBuilder(keyWidth, probeWidth int, optFns ...Option) (*Builder, error) {
	b := newBuilder(optFns)

	t, err := ihash.New(ihash.Config{
		KeyWidth:   keyWidth,
		ProbeWidth: probeWidth,
		Capacity:   b.opts.initialCapacity,
		Reserver:   b.reserver(),
		OnGrow:     b.onGrow,
	})
	if err != nil {
		return nil, translateError(err)
	}
	b.table, b.keyWidth, b.probeWidth = t, keyWidth, probeWidth
	b.logger = b.logger.WithKeyWidth(keyWidth).WithProbeWidth(probeWidth)
	return b, nil
}

// ResumeBuilder continues building from host-format arrays, for example
// the output of Vocabulary.Arrays. The arrays are copied.
func ResumeBuilder(arrays Arrays, probeWidth int, optFns ...Option) (*Builder, error) {
	b := newBuilder(optFns)

	t, err := ihash.FromArrays(arrays.KeyWidth, probeWidth, arrays.Counts, arrays.Keys, arrays.Next, b.reserver())
	if err != nil {
		return nil, translateError(err)
	}
	t.OnGrow(b.onGrow)
	b.table, b.keyWidth, b.probeWidth = t, arrays.KeyWidth, probeWidth
	b.logger = b.logger.WithKeyWidth(arrays.KeyWidth).WithProbeWidth(probeWidth)
	return b, nil
}

func newBuilder(optFns []Option) *Builder {
	o := applyOptions(optFns)
	return &Builder{
		opts:     o,
		logger:   o.logger,
		batchCtx: context.Background(),
	}
}

func (b *Builder) reserver() ihash.Reserver {
	if b.opts.controller == nil {
		return nil
	}
	return b.opts.controller
}

func (b *Builder) onGrow(oldCapacity, newCapacity int) {
	b.logger.LogGrow(b.batchCtx, oldCapacity, newCapacity)
	b.opts.metricsCollector.RecordGrow(oldCapacity, newCapacity)
}

// Accumulate inserts every key of the flat buffer keys, or increments its
// count when already present, then trims the slot arrays to the high-water
// mark. keys holds KeyWidth bytes per key.
//
// The all-zero key marks an unused slot and cannot be a word: its
// occurrences are added to an unused slot, it is never reported by Stats
// and Find always resolves it to 0. Callers whose codes may be all zero
// must bias them first.
//
// The context is checked once before the batch; a started batch runs to
// completion. On *AllocationError the keys before Committed stay
// accumulated; on any other error nothing changed.
func (b *Builder) Accumulate(ctx context.Context, keys []byte) error {
	if b.frozen {
		return ErrFrozen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := checkKeys(keys, b.keyWidth)
	if err != nil {
		return err
	}

	b.batchCtx = ctx
	defer func() { b.batchCtx = context.Background() }()

	start := time.Now()
	committed, err := b.table.Accumulate(keys)
	b.table.Trim()
	elapsed := time.Since(start)

	words := 0
	if err == nil && b.logger.Enabled(ctx, slog.LevelDebug) {
		words = b.table.Stats().Words
	}
	b.logger.LogAccumulate(ctx, n, committed, words, elapsed, err)
	b.opts.metricsCollector.RecordAccumulate(n, elapsed, err)
	return translateError(err)
}

// Stats computes occupancy statistics.
func (b *Builder) Stats() (Stats, error) {
	if b.frozen {
		return Stats{}, ErrFrozen
	}
	return statsOf(b.table), nil
}

// KeyWidth returns the number of bytes per key.
func (b *Builder) KeyWidth() int { return b.keyWidth }

// ProbeWidth returns the size of the primary region.
func (b *Builder) ProbeWidth() int { return b.probeWidth }

// Arrays returns a copy of the current slot arrays in host format.
func (b *Builder) Arrays() (Arrays, error) {
	if b.frozen {
		return Arrays{}, ErrFrozen
	}
	return arraysOf(b.table), nil
}

// Freeze trims the slot arrays and hands them to an immutable Vocabulary.
// Every later call on the Builder returns ErrFrozen.
func (b *Builder) Freeze() (*Vocabulary, error) {
	if b.frozen {
		return nil, ErrFrozen
	}
	b.table.Trim()
	b.table.OnGrow(nil)

	v := &Vocabulary{
		table:  b.table,
		opts:   b.opts,
		logger: b.logger,
	}
	b.table = nil
	b.frozen = true
	return v, nil
}

// Close releases the memory reserved by an unfrozen Builder.
// Closing a frozen Builder is a no-op.
func (b *Builder) Close() error {
	if b.frozen {
		return nil
	}
	b.table.Release()
	b.table = nil
	b.frozen = true
	return nil
}

func arraysOf(t *ihash.Table) Arrays {
	return Arrays{
		KeyWidth: t.KeyWidth(),
		Counts:   t.Counts(),
		Keys:     t.Keys(),
		Next:     t.Links(),
	}
}
