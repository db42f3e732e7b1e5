package persistence

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hupe1980/vocab/internal/fs"
	"github.com/hupe1980/vocab/internal/mmap"
)

// SaveToFile atomically replaces filename with the output of writeFunc.
// The data is written to a temp file in the same directory, synced and
// renamed over the target.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	return fs.WriteFileAtomic(fs.Default, filename, 0o644, writeFunc)
}

// WriteFile encodes s into filename atomically.
func WriteFile(filename string, s *Snapshot, c Compression) error {
	return SaveToFile(filename, func(w io.Writer) error {
		_, err := Encode(w, s, c)
		return err
	})
}

// OpenFile maps filename read-only and decodes the snapshot from the mapping.
// The mapping is released before OpenFile returns.
func OpenFile(filename string) (*Snapshot, error) {
	m, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if m.Size() < HeaderSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrCorrupt, filename, m.Size())
	}
	_ = m.Advise(mmap.AccessSequential)

	hdr, err := m.Region(0, HeaderSize)
	if err != nil {
		return nil, err
	}
	h, err := readHeader(bytes.NewReader(hdr.Bytes()))
	if err != nil {
		return nil, err
	}

	body, err := m.Region(HeaderSize, h.storedSize)
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrCorrupt, err)
	}
	return decodeBody(h, body.Bytes())
}
