package ffs

import (
	"unicode/utf16"

	"github.com/vk/dxecore/internal/guid"
)

const (
	fileHeaderSize      = 24
	largeFileHeaderSize = 32
)

// File is one file in a volume.
type File struct {
	Name       guid.GUID
	Type       FileType
	Attributes uint8
	State      uint8
	// Offset is the position of the file header within the volume.
	Offset int
	// Data is the file content following the header.
	Data []byte
}

// Sections parses the top-level sections of the file. Raw and pad files
// have no sections.
func (f *File) Sections() ([]*Section, error) {
	if f.Type == FileTypeRaw || f.Type == FileTypePad {
		return nil, nil
	}
	return ParseSections(f.Data)
}

// Leaves returns every leaf section of the file, expanding encapsulations
// with ex.
func (f *File) Leaves(ex Extractor) ([]*Section, error) {
	top, err := f.Sections()
	if err != nil {
		return nil, err
	}
	return Flatten(top, ex)
}

// UIName returns the USER_INTERFACE name from a list of leaf sections.
func UIName(leaves []*Section) (string, bool) {
	for _, s := range leaves {
		if s.Type != SectionUserInterface {
			continue
		}
		u := make([]uint16, 0, len(s.Data)/2)
		for i := 0; i+1 < len(s.Data); i += 2 {
			c := le.Uint16(s.Data[i:])
			if c == 0 {
				break
			}
			u = append(u, c)
		}
		return string(utf16.Decode(u)), true
	}
	return "", false
}

func parseFiles(body []byte, offset int, erase byte) ([]*File, error) {
	var files []*File
	for offset+fileHeaderSize <= len(body) {
		hdr := body[offset : offset+fileHeaderSize]
		if allBytes(hdr, erase) {
			break
		}
		f, size, err := parseFile(body, offset, erase)
		if err != nil {
			return nil, err
		}
		if f != nil {
			files = append(files, f)
		}
		offset = align(offset+size, 8)
	}
	return files, nil
}

// parseFile decodes the file at offset. It returns a nil file for entries
// that are skipped but still occupy space.
func parseFile(body []byte, offset int, erase byte) (*File, int, error) {
	hdr := body[offset:]
	attrs := hdr[19]
	size := int(hdr[20]) | int(hdr[21])<<8 | int(hdr[22])<<16
	hdrSize := fileHeaderSize
	if attrs&AttribLargeFile != 0 {
		if offset+largeFileHeaderSize > len(body) {
			return nil, 0, errorf(ErrTruncated, "large file header at %#x", offset)
		}
		hdrSize = largeFileHeaderSize
		ext := le.Uint64(hdr[24:])
		if ext > uint64(len(body)-offset) {
			return nil, 0, errorf(ErrTruncated, "large file at %#x has size %#x", offset, ext)
		}
		size = int(ext)
	}
	if size < hdrSize || offset+size > len(body) {
		return nil, 0, errorf(ErrTruncated, "file at %#x has size %#x", offset, size)
	}

	state := hdr[23]
	if erase == 0xFF {
		state = ^state
	}
	if state&0xFC != StateDataValid {
		return nil, size, nil
	}

	var sum byte
	for i, b := range hdr[:hdrSize] {
		if i == 17 || i == 23 {
			continue
		}
		sum += b
	}
	name, _ := guid.FromBytes(hdr)
	if sum != 0 {
		return nil, 0, errorf(ErrChecksum, "file %s header sums to %#02x", name, sum)
	}

	data := body[offset+hdrSize : offset+size]
	if attrs&AttribChecksum != 0 {
		fileSum := hdr[17]
		for _, b := range data {
			fileSum += b
		}
		if fileSum != 0 {
			return nil, 0, errorf(ErrChecksum, "file %s data sums to %#02x", name, fileSum)
		}
	} else if hdr[17] != FileChecksumUnused {
		return nil, 0, errorf(ErrChecksum, "file %s checksum byte %#02x without checksum attribute", name, hdr[17])
	}

	ft := FileType(hdr[18])
	if ft == FileTypePad {
		return nil, size, nil
	}
	return &File{
		Name:       name,
		Type:       ft,
		Attributes: attrs,
		State:      state,
		Offset:     offset,
		Data:       data,
	}, size, nil
}

func allBytes(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return true
}
