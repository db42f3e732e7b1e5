package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/vocab/internal/conv"
	"github.com/hupe1980/vocab/internal/hash"
)

// Snapshot is the host format of a vocabulary: three parallel slot arrays
// plus the sizing parameters needed to resume probing.
type Snapshot struct {
	KeyWidth   int
	ProbeWidth int
	Counts     []uint32
	Keys       []byte
	Next       []uint32 // 1-based, 0 ends a chain
}

// Slots returns the number of slots in the snapshot.
func (s *Snapshot) Slots() int { return len(s.Counts) }

// Validate checks that the arrays agree with each other and the widths.
func (s *Snapshot) Validate() error {
	if s.KeyWidth < 1 || s.ProbeWidth < 1 {
		return fmt.Errorf("%w: key width %d, probe width %d", ErrCorrupt, s.KeyWidth, s.ProbeWidth)
	}
	n := len(s.Counts)
	if len(s.Next) != n || len(s.Keys) != n*s.KeyWidth {
		return fmt.Errorf("%w: %d counts, %d links, %d key bytes (key width %d)",
			ErrCorrupt, n, len(s.Next), len(s.Keys), s.KeyWidth)
	}
	return nil
}

// Encode writes s to w and returns the number of bytes written.
// The requested compression is a preference; incompressible payloads are
// stored raw.
func Encode(w io.Writer, s *Snapshot, c Compression) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	keyWidth, err := conv.IntToUint32(s.KeyWidth)
	if err != nil {
		return 0, err
	}
	probeWidth, err := conv.IntToUint32(s.ProbeWidth)
	if err != nil {
		return 0, err
	}

	payload, checksum := encodePayload(s)
	stored, used, err := compress(payload, c)
	if err != nil {
		return 0, err
	}

	h := FileHeader{
		Magic:       Magic,
		Version:     Version,
		Compression: used,
		KeyWidth:    keyWidth,
		ProbeWidth:  probeWidth,
		Slots:       uint64(s.Slots()),
		PayloadSize: uint64(len(payload)),
		StoredSize:  uint64(len(stored)),
		Checksum:    checksum,
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return 0, err
	}
	n, err := w.Write(stored)
	return int64(HeaderSize + n), err
}

// Decode reads a snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	// The stored size is untrusted; let the body grow as bytes arrive.
	stored, err := io.ReadAll(io.LimitReader(r, int64(h.storedSize)))
	if err != nil {
		return nil, err
	}
	if len(stored) != h.storedSize {
		return nil, fmt.Errorf("%w: body is %d bytes, want %d", ErrCorrupt, len(stored), h.storedSize)
	}
	return decodeBody(h, stored)
}

// DecodeBytes decodes a snapshot held in memory. The result never aliases data.
func DecodeBytes(data []byte) (*Snapshot, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(data))
	}
	h, err := readHeader(bytes.NewReader(data[:HeaderSize]))
	if err != nil {
		return nil, err
	}
	if len(data)-HeaderSize < h.storedSize {
		return nil, fmt.Errorf("%w: body is %d bytes, want %d", ErrCorrupt, len(data)-HeaderSize, h.storedSize)
	}
	return decodeBody(h, data[HeaderSize:HeaderSize+h.storedSize])
}

// header is a FileHeader whose sizes were checked and converted to int.
type header struct {
	FileHeader
	keyWidth    int
	probeWidth  int
	slots       int
	payloadSize int
	storedSize  int
}

func readHeader(r io.Reader) (*header, error) {
	var fh FileHeader
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrCorrupt, err)
	}
	if fh.Magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, fh.Magic)
	}
	if fh.Version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, fh.Version)
	}
	if fh.KeyWidth == 0 || fh.ProbeWidth == 0 {
		return nil, fmt.Errorf("%w: key width %d, probe width %d", ErrCorrupt, fh.KeyWidth, fh.ProbeWidth)
	}
	if fh.Slots > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: %d slots exceed 32-bit ids", ErrCorrupt, fh.Slots)
	}
	if want := payloadSize(fh.Slots, uint64(fh.KeyWidth)); fh.PayloadSize != want {
		return nil, fmt.Errorf("%w: payload size %d, want %d", ErrCorrupt, fh.PayloadSize, want)
	}

	h := &header{FileHeader: fh}
	var err error
	if h.keyWidth, err = conv.Uint32ToInt(fh.KeyWidth); err != nil {
		return nil, err
	}
	if h.probeWidth, err = conv.Uint32ToInt(fh.ProbeWidth); err != nil {
		return nil, err
	}
	if h.slots, err = conv.Uint64ToInt(fh.Slots); err != nil {
		return nil, err
	}
	if h.payloadSize, err = conv.Uint64ToInt(fh.PayloadSize); err != nil {
		return nil, err
	}
	if h.storedSize, err = conv.Uint64ToInt(fh.StoredSize); err != nil {
		return nil, err
	}
	if fh.Compression == CompressionNone && h.storedSize != h.payloadSize {
		return nil, fmt.Errorf("%w: raw body is %d bytes, want %d", ErrCorrupt, h.storedSize, h.payloadSize)
	}
	return h, nil
}

func decodeBody(h *header, stored []byte) (*Snapshot, error) {
	payload, err := decompress(stored, h.Compression, h.payloadSize)
	if err != nil {
		return nil, err
	}
	if sum := hash.CRC32C(payload); sum != h.Checksum {
		return nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: sum}
	}

	n := h.slots
	s := &Snapshot{
		KeyWidth:   h.keyWidth,
		ProbeWidth: h.probeWidth,
		Counts:     make([]uint32, n),
		Keys:       make([]byte, n*h.keyWidth),
		Next:       make([]uint32, n),
	}

	off := 0
	for i := range s.Counts {
		s.Counts[i] = binary.LittleEndian.Uint32(payload[off:])
		off += 4
	}
	off += copy(s.Keys, payload[off:off+len(s.Keys)])
	for i := range s.Next {
		s.Next[i] = binary.LittleEndian.Uint32(payload[off:])
		off += 4
	}
	return s, nil
}

func encodePayload(s *Snapshot) ([]byte, uint32) {
	payload := make([]byte, 0, payloadSize(uint64(s.Slots()), uint64(s.KeyWidth)))
	for _, c := range s.Counts {
		payload = binary.LittleEndian.AppendUint32(payload, c)
	}
	payload = append(payload, s.Keys...)
	for _, l := range s.Next {
		payload = binary.LittleEndian.AppendUint32(payload, l)
	}

	crc := hash.NewCRC32C()
	_, _ = crc.Write(payload)
	return payload, crc.Sum32()
}
