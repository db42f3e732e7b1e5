// Package ihash implements the incremental byte-vector hash index that
// deduplicates and counts fixed-width keys (quantized visual words).
//
// # Layout
//
// A Table holds three parallel arrays indexed by slot: occurrence counts,
// keys (keyWidth bytes each) and overflow links. The first ProbeWidth slots
// form the primary region, addressed by double hashing seeded with FNV-1.
// Keys the primary probe cannot place are appended past the high-water mark
// and linked from the slot where the probe gave up.
//
//	primary region            overflow region
//	[0 .. probeWidth)   ...   [capacity_0 .. last)
//	      slot p ──next──▶ slot q ──next──▶ slot r ──▶ (end)
//
// Links always point at a slot that was unused when the link was made, so
// chains are acyclic and every walk terminates without a step bound.
//
// # Empty slots
//
// The all-zero key marks an unused slot. A real all-zero key cannot be
// stored: Accumulate would place it in the first empty slot it probes and
// the slot would still read as empty. Callers must bias their codes so that
// zero is never a valid word (e.g. start codes at 1). Find returns 0 for the
// all-zero key without probing.
//
// # Growth
//
// When a chain must be extended and no slot is free, capacity grows by
// max(capacity/2, 2). Growth is copy-and-swap and is accounted against an
// optional Reserver; a refused reservation returns *AllocationError and
// leaves the table exactly as it was before the key was processed.
//
// # Concurrency
//
// A Table is not safe for concurrent mutation. Find does not mutate, so a
// table that is no longer accumulated into may be read concurrently.
package ihash
