// Package ffs reads PI firmware volumes: the volume header, the files it
// holds and the sections inside each file. Everything it returns is a
// read-only view over the caller's buffer.
package ffs

import (
	"encoding/binary"

	"github.com/vk/dxecore/internal/guid"
)

const (
	volumeFixedHeaderSize = 56
	blockMapEntrySize     = 8
	extHeaderMinSize      = 20
)

var le = binary.LittleEndian

// Block is one block map entry.
type Block struct {
	NumBlocks uint32
	Length    uint32
}

// Volume is a parsed firmware volume.
type Volume struct {
	FileSystem    guid.GUID
	Name          guid.GUID
	HasName       bool
	Length        uint64
	Attributes    uint32
	HeaderLength  uint16
	Revision      uint8
	BlockMap      []Block
	ErasePolarity bool
	Files         []*File
}

// EraseByte is the value of erased flash in this volume.
func (v *Volume) EraseByte() byte {
	if v.ErasePolarity {
		return 0xFF
	}
	return 0x00
}

// File returns the first file with the given name.
func (v *Volume) File(name guid.GUID) (*File, bool) {
	for _, f := range v.Files {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// ParseVolume validates the volume header in data and walks its files.
// Files whose state is not DATA_VALID are skipped, as are pad files.
func ParseVolume(data []byte) (*Volume, error) {
	if len(data) < volumeFixedHeaderSize {
		return nil, errorf(ErrTruncated, "volume header needs %d bytes, have %d", volumeFixedHeaderSize, len(data))
	}
	fs, _ := guid.FromBytes(data[16:])
	if fs != FileSystem2 && fs != FileSystem3 {
		return nil, errorf(ErrInvalidHeader, "unknown file system %s", fs)
	}
	if string(data[40:44]) != "_FVH" {
		return nil, errorf(ErrInvalidHeader, "bad signature %q", data[40:44])
	}
	v := &Volume{
		FileSystem:   fs,
		Length:       le.Uint64(data[32:]),
		Attributes:   le.Uint32(data[44:]),
		HeaderLength: le.Uint16(data[48:]),
		Revision:     data[55],
	}
	v.ErasePolarity = v.Attributes&AttribErasePolarity != 0

	if v.Length > uint64(len(data)) {
		return nil, errorf(ErrTruncated, "volume length %#x exceeds buffer of %#x", v.Length, len(data))
	}
	hdrLen := int(v.HeaderLength)
	if hdrLen%2 != 0 || hdrLen < volumeFixedHeaderSize+2*blockMapEntrySize || uint64(hdrLen) > v.Length {
		return nil, errorf(ErrInvalidHeader, "header length %#x", hdrLen)
	}
	if v.Revision < 2 {
		return nil, errorf(ErrInvalidHeader, "revision %d", v.Revision)
	}
	var sum uint16
	for i := 0; i < hdrLen; i += 2 {
		sum += le.Uint16(data[i:])
	}
	if sum != 0 {
		return nil, errorf(ErrChecksum, "volume header sums to %#04x", sum)
	}

	for off := volumeFixedHeaderSize; ; off += blockMapEntrySize {
		if off+blockMapEntrySize > hdrLen {
			return nil, errorf(ErrInvalidHeader, "block map not terminated")
		}
		b := Block{NumBlocks: le.Uint32(data[off:]), Length: le.Uint32(data[off+4:])}
		if b.NumBlocks == 0 && b.Length == 0 {
			break
		}
		v.BlockMap = append(v.BlockMap, b)
	}
	if len(v.BlockMap) == 0 {
		return nil, errorf(ErrInvalidHeader, "empty block map")
	}

	body := data[:v.Length]
	start := hdrLen
	if extOff := int(le.Uint16(data[52:])); extOff != 0 {
		if extOff+extHeaderMinSize > len(body) {
			return nil, errorf(ErrTruncated, "extended header at %#x", extOff)
		}
		v.Name, _ = guid.FromBytes(body[extOff:])
		v.HasName = true
		extSize := int(le.Uint32(body[extOff+16:]))
		if extSize < extHeaderMinSize || extOff+extSize > len(body) {
			return nil, errorf(ErrInvalidHeader, "extended header size %#x", extSize)
		}
		start = extOff + extSize
	}

	files, err := parseFiles(body, align(start, 8), v.EraseByte())
	if err != nil {
		return nil, err
	}
	v.Files = files
	return v, nil
}

func align(n, to int) int {
	return (n + to - 1) &^ (to - 1)
}
