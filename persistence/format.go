package persistence

import (
	"encoding/binary"
	"errors"
)

const (
	// Version is the current snapshot format version.
	Version = 1

	// HeaderSize is the encoded size of FileHeader.
	HeaderSize = 48
)

// Magic identifies snapshot files (ASCII "VWI1" on disk).
var Magic = binary.LittleEndian.Uint32([]byte("VWI1"))

var (
	// ErrInvalidMagic is returned when the input is not a snapshot.
	ErrInvalidMagic = errors.New("invalid magic number")
	// ErrInvalidVersion is returned for snapshots written by an unknown format version.
	ErrInvalidVersion = errors.New("unsupported version")
	// ErrCorrupt is returned when header fields contradict each other or the payload.
	ErrCorrupt = errors.New("corrupt snapshot")
)

// FileHeader is the fixed header at the start of every snapshot.
type FileHeader struct {
	Magic       uint32
	Version     uint16
	Compression Compression
	Padding1    uint8
	KeyWidth    uint32
	ProbeWidth  uint32
	Slots       uint64
	PayloadSize uint64 // uncompressed counts|keys|next
	StoredSize  uint64 // bytes following the header
	Checksum    uint32 // CRC32C of the uncompressed payload
	Reserved    uint32
}

// payloadSize is the uncompressed body size for the given shape.
func payloadSize(slots, keyWidth uint64) uint64 {
	return slots * (8 + keyWidth)
}
