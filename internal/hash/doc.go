// Package hash provides the hashing primitives used by the index and the
// snapshot format.
//
// # FNV-1
//
// FNV1 seeds the probe sequence of the visual-word index. It is the classic
// multiply-then-xor variant (not FNV-1a) with 32-bit wrap-around:
//
//	h := hash.FNV1(key)
//
// Collisions are expected; the index resolves them by double hashing and
// overflow chaining, so FNV1 is never used for integrity.
//
// # CRC32-Castagnoli (CRC32C)
//
// Snapshot payloads are checksummed with CRC32C, which Go's crc32 package
// accelerates in hardware on x86 (SSE4.2) and ARM (CRC extension):
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
