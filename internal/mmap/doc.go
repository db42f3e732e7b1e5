// Package mmap maps snapshot files read-only so that a vocabulary can be
// decoded without first copying the file through a read buffer.
//
// # Usage
//
//	m, err := mmap.Open("words.vwi")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	header, _ := m.Region(0, headerSize)
//
// # Platform Support
//
//   - Unix: mmap(2) with madvise(2) hints
//   - Windows: CreateFileMapping/MapViewOfFile, hints are no-ops
//
// Close is idempotent. Slices returned by Bytes are invalid once Close
// returns.
package mmap
