package fvsource

import (
	"fmt"
	"io"
	"sort"
)

type segment struct {
	base uint64
	data []byte
}

func (s segment) end() uint64 { return s.base + uint64(len(s.data)) }

// Memory is a sparse physical memory image. Reads outside any loaded
// segment fail, so a bad hand-off base address surfaces as an error.
type Memory struct {
	segments []segment
}

var _ io.ReaderAt = (*Memory)(nil)

// Load places data at base. Overlapping segments are rejected.
func (m *Memory) Load(base uint64, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty segment at %#x", base)
	}
	if base+uint64(len(data)) < base {
		return fmt.Errorf("segment at %#x wraps the address space", base)
	}
	s := segment{base: base, data: data}
	for _, o := range m.segments {
		if s.base < o.end() && o.base < s.end() {
			return fmt.Errorf("segment %#x-%#x overlaps %#x-%#x", s.base, s.end(), o.base, o.end())
		}
	}
	m.segments = append(m.segments, s)
	sort.Slice(m.segments, func(i, j int) bool { return m.segments[i].base < m.segments[j].base })
	return nil
}

// ReadAt implements io.ReaderAt. A read must fall inside one segment.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	addr := uint64(off)
	for _, s := range m.segments {
		if addr < s.base || addr >= s.end() {
			continue
		}
		n := copy(p, s.data[addr-s.base:])
		if n < len(p) {
			return n, io.ErrUnexpectedEOF
		}
		return n, nil
	}
	return 0, fmt.Errorf("address %#x is not backed by any loaded image", addr)
}

// Len returns the number of loaded segments.
func (m *Memory) Len() int { return len(m.segments) }
