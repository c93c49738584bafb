package ffs

import (
	"unicode/utf16"

	"github.com/vk/dxecore/internal/guid"
)

// FileSpec describes a file for VolumeBuilder.
type FileSpec struct {
	Name     guid.GUID
	Type     FileType
	Sections [][]byte
	// Raw replaces Sections as the file body when set.
	Raw []byte
	// Checksum sets AttribChecksum and computes the data checksum.
	Checksum bool
	// State overrides the DATA_VALID state written by default.
	State uint8
}

// VolumeBuilder assembles firmware volume images for tests and host tools.
type VolumeBuilder struct {
	polarity bool
	ffs3     bool
	name     *guid.GUID
	files    []FileSpec
}

// NewVolumeBuilder creates a builder for an FFS2 volume with erase polarity
// cleared.
func NewVolumeBuilder() *VolumeBuilder {
	return &VolumeBuilder{}
}

// ErasePolarity selects 0xFF as the erased byte.
func (b *VolumeBuilder) ErasePolarity(set bool) *VolumeBuilder {
	b.polarity = set
	return b
}

// FFS3 switches the file system GUID.
func (b *VolumeBuilder) FFS3() *VolumeBuilder {
	b.ffs3 = true
	return b
}

// Name adds an extended header carrying the volume name.
func (b *VolumeBuilder) Name(g guid.GUID) *VolumeBuilder {
	b.name = &g
	return b
}

// File appends a file.
func (b *VolumeBuilder) File(f FileSpec) *VolumeBuilder {
	b.files = append(b.files, f)
	return b
}

// Bytes renders the volume.
func (b *VolumeBuilder) Bytes() []byte {
	erase := byte(0)
	if b.polarity {
		erase = 0xFF
	}
	const hdrLen = volumeFixedHeaderSize + 2*blockMapEntrySize
	out := make([]byte, hdrLen)

	start := hdrLen
	if b.name != nil {
		ext := make([]byte, extHeaderMinSize)
		b.name.Put(ext)
		le.PutUint32(ext[16:], extHeaderMinSize)
		out = append(out, ext...)
		start += extHeaderMinSize
		le.PutUint16(out[52:], hdrLen)
	}
	out = pad(out, align(start, 8), erase)

	for _, f := range b.files {
		out = append(out, renderFile(f, erase)...)
		out = pad(out, align(len(out), 8), erase)
	}
	// Trailing erased space so the walker sees an all-erase header.
	out = pad(out, len(out)+fileHeaderSize, erase)

	fs := FileSystem2
	if b.ffs3 {
		fs = FileSystem3
	}
	fs.Put(out[16:])
	le.PutUint64(out[32:], uint64(len(out)))
	copy(out[40:], "_FVH")
	attrs := uint32(0)
	if b.polarity {
		attrs |= AttribErasePolarity
	}
	le.PutUint32(out[44:], attrs)
	le.PutUint16(out[48:], hdrLen)
	out[55] = 2
	le.PutUint32(out[56:], 1)
	le.PutUint32(out[60:], uint32(len(out)))

	var sum uint16
	for i := 0; i < hdrLen; i += 2 {
		sum += le.Uint16(out[i:])
	}
	le.PutUint16(out[50:], -sum)
	return out
}

func pad(b []byte, to int, v byte) []byte {
	for len(b) < to {
		b = append(b, v)
	}
	return b
}

func renderFile(f FileSpec, erase byte) []byte {
	body := f.Raw
	if body == nil {
		for _, s := range f.Sections {
			body = pad(body, align(len(body), 4), 0)
			body = append(body, s...)
		}
	}
	size := fileHeaderSize + len(body)
	hdr := make([]byte, fileHeaderSize)
	f.Name.Put(hdr)
	hdr[18] = byte(f.Type)
	hdr[20], hdr[21], hdr[22] = byte(size), byte(size>>8), byte(size>>16)
	if f.Checksum {
		hdr[19] |= AttribChecksum
		var s byte
		for _, c := range body {
			s += c
		}
		hdr[17] = -s
	} else {
		hdr[17] = FileChecksumUnused
	}
	var s byte
	for i, c := range hdr {
		if i == 17 || i == 23 {
			continue
		}
		s += c
	}
	hdr[16] = -s

	state := f.State
	if state == 0 {
		state = StateHeaderConstruction | StateHeaderValid | StateDataValid
	}
	if erase == 0xFF {
		state = ^state
	}
	hdr[23] = state
	return append(hdr, body...)
}

// SectionBytes renders a leaf section.
func SectionBytes(typ SectionType, data []byte) []byte {
	return sectionWithHeader(typ, nil, data)
}

// CompressionSection renders a COMPRESSION section around data.
func CompressionSection(compressionType uint8, uncompressed uint32, data []byte) []byte {
	h := make([]byte, 5)
	le.PutUint32(h, uncompressed)
	h[4] = compressionType
	return sectionWithHeader(SectionCompression, h, data)
}

// GuidDefinedSection renders a GUID_DEFINED section. guidHeader is placed
// between the fixed header and data.
func GuidDefinedSection(def guid.GUID, attrs uint16, guidHeader, data []byte) []byte {
	h := make([]byte, guid.Size+4, guid.Size+4+len(guidHeader))
	def.Put(h)
	le.PutUint16(h[16:], uint16(sectionHeaderSize+guid.Size+4+len(guidHeader)))
	le.PutUint16(h[18:], attrs)
	h = append(h, guidHeader...)
	return sectionWithHeader(SectionGuidDefined, h, data)
}

// UISection renders a USER_INTERFACE section holding name as UCS-2.
func UISection(name string) []byte {
	u := utf16.Encode([]rune(name))
	data := make([]byte, 2*len(u)+2)
	for i, c := range u {
		le.PutUint16(data[2*i:], c)
	}
	return SectionBytes(SectionUserInterface, data)
}

func sectionWithHeader(typ SectionType, header, data []byte) []byte {
	size := sectionHeaderSize + len(header) + len(data)
	out := make([]byte, sectionHeaderSize, size)
	out[0], out[1], out[2], out[3] = byte(size), byte(size>>8), byte(size>>16), byte(typ)
	out = append(out, header...)
	return append(out, data...)
}
