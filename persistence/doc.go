// Package persistence reads and writes vocabulary snapshots.
//
// A snapshot is a fixed little-endian header followed by the slot arrays:
//
//	┌──────────────────────────────┐
//	│ FileHeader (48 bytes)        │  magic "VWI1", version, widths,
//	│                              │  slot count, sizes, CRC32C
//	├──────────────────────────────┤
//	│ counts   slots × uint32      │
//	│ keys     slots × keyWidth    │  raw, LZ4 block or zstd
//	│ next     slots × uint32      │  (1-based, 0 ends a chain)
//	└──────────────────────────────┘
//
// The checksum covers the uncompressed payload, so a snapshot verifies the
// same regardless of how it was stored. When compression saves less than a
// tenth of the payload the body is stored raw.
//
// SaveToFile replaces the target atomically. OpenFile maps the file
// read-only and decodes from the mapping.
package persistence
