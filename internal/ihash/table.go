package ihash

import (
	"bytes"
	"math"

	"github.com/hupe1980/vocab/internal/hash"
	"github.com/hupe1980/vocab/internal/mem"
)

// maxSlots keeps every 1-based slot id representable as uint32.
const maxSlots = math.MaxUint32

// Reserver accounts the memory held by a table.
// resource.Controller satisfies it.
type Reserver interface {
	// TryAcquireMemory reserves bytes without blocking.
	TryAcquireMemory(bytes int64) bool
	// ReleaseMemory returns bytes previously reserved.
	ReleaseMemory(bytes int64)
}

// Config describes a new, empty table.
type Config struct {
	// KeyWidth is the number of bytes per key. Must be >= 1.
	KeyWidth int
	// ProbeWidth is the size of the primary region. Must be >= 1.
	ProbeWidth int
	// Capacity is the initial number of slots. Values below ProbeWidth are
	// raised to ProbeWidth; slots past ProbeWidth are overflow headroom that
	// chains consume before the table has to grow.
	Capacity int
	// Reserver, if set, is charged for every allocation. Optional.
	Reserver Reserver
	// OnGrow, if set, is called after each successful growth step. Optional.
	OnGrow func(oldCapacity, newCapacity int)
}

// Table is the visual-word hash index.
type Table struct {
	keyWidth   int
	probeWidth int

	counts []uint32
	keys   []byte
	next   []Link

	// last is the high-water mark: slots [0, last) are in logical use.
	last int

	zero     []byte
	reserver Reserver
	onGrow   func(oldCapacity, newCapacity int)
	growths  int
}

// New creates an empty table with every slot zeroed and the high-water mark
// at the end of the primary region.
func New(cfg Config) (*Table, error) {
	if cfg.KeyWidth < 1 {
		return nil, configErrorf("key width must be positive, got %d", cfg.KeyWidth)
	}
	if cfg.ProbeWidth < 1 {
		return nil, configErrorf("probe width must be positive, got %d", cfg.ProbeWidth)
	}
	capacity := max(cfg.Capacity, cfg.ProbeWidth)
	if uint64(capacity) > maxSlots {
		return nil, &AllocationError{Requested: capacity, Reason: "slot ids exceed 32 bits"}
	}

	t := &Table{
		keyWidth:   cfg.KeyWidth,
		probeWidth: cfg.ProbeWidth,
		zero:       make([]byte, cfg.KeyWidth),
		reserver:   cfg.Reserver,
		onGrow:     cfg.OnGrow,
	}

	need := t.slotBytes(capacity)
	if t.reserver != nil && !t.reserver.TryAcquireMemory(need) {
		return nil, &AllocationError{Requested: capacity, Bytes: need, Reason: "memory limit exceeded"}
	}

	t.counts = make([]uint32, capacity)
	t.keys = make([]byte, capacity*cfg.KeyWidth)
	t.next = make([]Link, capacity)
	t.last = cfg.ProbeWidth
	return t, nil
}

// FromArrays rebuilds a table from its host-format arrays.
//
// counts and next must have one entry per slot, keys keyWidth bytes per slot.
// next uses the 1-based encoding (0 ends a chain). The arrays are copied.
// Chain consistency is checked by every subsequent operation, not here.
func FromArrays(keyWidth, probeWidth int, counts []uint32, keys []byte, next []uint32, reserver Reserver) (*Table, error) {
	if keyWidth < 1 {
		return nil, configErrorf("key width must be positive, got %d", keyWidth)
	}
	if probeWidth < 1 {
		return nil, configErrorf("probe width must be positive, got %d", probeWidth)
	}
	capacity := len(counts)
	if len(next) != capacity || len(keys) != capacity*keyWidth {
		return nil, configErrorf("slot count mismatch: %d counts, %d links, %d key bytes (key width %d)",
			len(counts), len(next), len(keys), keyWidth)
	}
	if uint64(capacity) > maxSlots {
		return nil, &AllocationError{Requested: capacity, Reason: "slot ids exceed 32 bits"}
	}

	t := &Table{
		keyWidth:   keyWidth,
		probeWidth: probeWidth,
		zero:       make([]byte, keyWidth),
		reserver:   reserver,
	}

	need := t.slotBytes(capacity)
	if reserver != nil && !reserver.TryAcquireMemory(need) {
		return nil, &AllocationError{Requested: capacity, Bytes: need, Reason: "memory limit exceeded"}
	}

	t.counts = mem.Resize(counts, capacity)
	t.keys = mem.Resize(keys, len(keys))
	t.next = DecodeLinks(next)
	t.last = capacity
	return t, nil
}

// KeyWidth returns the number of bytes per key.
func (t *Table) KeyWidth() int { return t.keyWidth }

// ProbeWidth returns the size of the primary region.
func (t *Table) ProbeWidth() int { return t.probeWidth }

// Capacity returns the number of allocated slots.
func (t *Table) Capacity() int { return len(t.counts) }

// HighWaterMark returns the number of slots in logical use.
func (t *Table) HighWaterMark() int { return t.last }

// Growths returns how many growth steps the table has performed.
func (t *Table) Growths() int { return t.growths }

// OnGrow replaces the growth callback. nil disables it.
func (t *Table) OnGrow(fn func(oldCapacity, newCapacity int)) { t.onGrow = fn }

// Count returns the occurrence count of slot.
func (t *Table) Count(slot int) uint32 { return t.counts[slot] }

// Key returns the key stored in slot. The slice aliases the table.
func (t *Table) Key(slot int) []byte { return t.keyAt(slot) }

// Next returns the overflow link of slot.
func (t *Table) Next(slot int) Link { return t.next[slot] }

// Occupied reports whether slot holds a key.
func (t *Table) Occupied(slot int) bool { return !t.isEmpty(slot) }

// Counts returns a copy of the count array.
func (t *Table) Counts() []uint32 { return mem.Resize(t.counts, len(t.counts)) }

// Keys returns a copy of the key array.
func (t *Table) Keys() []byte { return mem.Resize(t.keys, len(t.keys)) }

// Links returns the link array in the 1-based encoding.
func (t *Table) Links() []uint32 { return EncodeLinks(t.next) }

// Trim shrinks the arrays to exactly the high-water mark and releases the
// surplus to the Reserver.
func (t *Table) Trim() {
	capacity := len(t.counts)
	if t.last >= capacity {
		return
	}
	freed := t.slotBytes(capacity - t.last)

	t.counts = mem.Resize(t.counts, t.last)
	t.keys = mem.Resize(t.keys, t.last*t.keyWidth)
	t.next = mem.Resize(t.next, t.last)

	if t.reserver != nil {
		t.reserver.ReleaseMemory(freed)
	}
}

// Release returns all memory held by the table to the Reserver.
// The table must not be used afterwards.
func (t *Table) Release() {
	if t.reserver != nil {
		t.reserver.ReleaseMemory(t.slotBytes(len(t.counts)))
	}
	t.counts, t.keys, t.next = nil, nil, nil
	t.last = 0
}

// checkConsistency validates the sizing parameters and chain pointers and
// returns the high-water mark implied by the stored links.
func (t *Table) checkConsistency() (int, error) {
	capacity := len(t.counts)
	if t.probeWidth > capacity {
		return 0, configErrorf("probe width %d exceeds table size %d", t.probeWidth, capacity)
	}
	if len(t.next) != capacity || len(t.keys) != capacity*t.keyWidth {
		return 0, configErrorf("slot count mismatch: %d counts, %d links, %d key bytes",
			capacity, len(t.next), len(t.keys))
	}

	last := t.last
	for _, l := range t.next {
		if s, ok := l.Slot(); ok && s+1 > last {
			last = s + 1
		}
	}
	if last > capacity {
		return 0, configErrorf("chain pointer %d is past table size %d", last, capacity)
	}
	return last, nil
}

// probe runs the bounded double-hashing probe over the primary region and
// returns the first slot that is empty or holds key, or the last slot
// visited when the probe gives up.
func (t *Table) probe(key []byte) int {
	k := uint32(t.probeWidth)
	h1 := hash.FNV1(key) % k
	h2 := h1 | 1

	p := h1 % k
	for j := uint32(0); j < k; j++ {
		if t.isEmpty(int(p)) || t.matches(int(p), key) {
			break
		}
		h1 += h2
		p = h1 % k
	}
	return int(p)
}

func (t *Table) grow() error {
	oldCap := len(t.counts)
	newCap := oldCap + max(oldCap/2, 2)
	if uint64(newCap) > maxSlots {
		return &AllocationError{Capacity: oldCap, Requested: newCap, Reason: "slot ids exceed 32 bits"}
	}

	delta := t.slotBytes(newCap - oldCap)
	if t.reserver != nil && !t.reserver.TryAcquireMemory(delta) {
		return &AllocationError{Capacity: oldCap, Requested: newCap, Bytes: delta, Reason: "memory limit exceeded"}
	}

	counts := mem.Resize(t.counts, newCap)
	keys := mem.Resize(t.keys, newCap*t.keyWidth)
	next := mem.Resize(t.next, newCap)

	t.counts, t.keys, t.next = counts, keys, next
	t.growths++

	if t.onGrow != nil {
		t.onGrow(oldCap, newCap)
	}
	return nil
}

func (t *Table) slotBytes(n int) int64 {
	return mem.SizeOf[uint32](n) + mem.SizeOf[byte](n*t.keyWidth) + mem.SizeOf[Link](n)
}

func (t *Table) keyAt(slot int) []byte {
	return t.keys[slot*t.keyWidth : (slot+1)*t.keyWidth]
}

func (t *Table) isEmpty(slot int) bool {
	return bytes.Equal(t.keyAt(slot), t.zero)
}

func (t *Table) matches(slot int, key []byte) bool {
	return bytes.Equal(t.keyAt(slot), key)
}

func (t *Table) splitKeys(keys []byte) (int, error) {
	if len(keys)%t.keyWidth != 0 {
		return 0, configErrorf("key buffer of %d bytes is not a multiple of key width %d", len(keys), t.keyWidth)
	}
	return len(keys) / t.keyWidth, nil
}
