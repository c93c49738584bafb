package ffs

import (
	"github.com/vk/dxecore/internal/guid"
)

const (
	sectionHeaderSize         = 4
	extendedSectionHeaderSize = 8
	maxNesting                = 8
)

// Section is one section of a file. Encapsulation sections carry their
// type-specific header fields, leaf sections only Data.
type Section struct {
	Type SectionType

	// COMPRESSION fields.
	CompressionType    uint8
	UncompressedLength uint32

	// GUID_DEFINED fields. GuidHeader holds the definition-specific bytes
	// between the fixed header and the data offset.
	Definition     guid.GUID
	GuidAttributes uint16
	GuidHeader     []byte

	// Data is the section body after all headers.
	Data []byte
}

// ProcessingRequired reports whether a GUID_DEFINED section must be run
// through its extractor before its contents can be parsed.
func (s *Section) ProcessingRequired() bool {
	return s.Type == SectionGuidDefined && s.GuidAttributes&GuidProcessingRequired != 0
}

// Extractor expands a COMPRESSION or GUID_DEFINED section into the raw bytes
// of the sections it encapsulates.
type Extractor interface {
	Extract(s *Section) ([]byte, error)
}

// ParseSections decodes a run of 4-byte aligned sections.
func ParseSections(data []byte) ([]*Section, error) {
	var out []*Section
	offset := 0
	for offset+sectionHeaderSize <= len(data) {
		s, size, err := parseSection(data[offset:])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		offset = align(offset+size, 4)
	}
	return out, nil
}

func parseSection(b []byte) (*Section, int, error) {
	size := int(b[0]) | int(b[1])<<8 | int(b[2])<<16
	typ := SectionType(b[3])
	hdr := sectionHeaderSize
	if size == 0xFFFFFF {
		if len(b) < extendedSectionHeaderSize {
			return nil, 0, errorf(ErrTruncated, "extended %s section header", typ)
		}
		size = int(le.Uint32(b[4:]))
		hdr = extendedSectionHeaderSize
	}
	if size < hdr || size > len(b) {
		return nil, 0, errorf(ErrTruncated, "%s section of size %#x in %#x bytes", typ, size, len(b))
	}
	body := b[hdr:size]
	s := &Section{Type: typ}

	switch typ {
	case SectionCompression:
		if len(body) < 5 {
			return nil, 0, errorf(ErrInvalidHeader, "compression section header")
		}
		s.UncompressedLength = le.Uint32(body)
		s.CompressionType = body[4]
		s.Data = body[5:]
	case SectionGuidDefined:
		if len(body) < guid.Size+4 {
			return nil, 0, errorf(ErrInvalidHeader, "guid defined section header")
		}
		s.Definition, _ = guid.FromBytes(body)
		dataOffset := int(le.Uint16(body[16:]))
		s.GuidAttributes = le.Uint16(body[18:])
		fixed := hdr + guid.Size + 4
		if dataOffset < fixed || dataOffset > size {
			return nil, 0, errorf(ErrInvalidHeader, "guid defined data offset %#x", dataOffset)
		}
		s.GuidHeader = b[fixed:dataOffset]
		s.Data = b[dataOffset:size]
	default:
		s.Data = body
	}
	return s, size, nil
}

// Flatten expands encapsulation sections recursively and returns the leaf
// sections in order.
func Flatten(sections []*Section, ex Extractor) ([]*Section, error) {
	return flatten(sections, ex, 0)
}

func flatten(sections []*Section, ex Extractor, depth int) ([]*Section, error) {
	if depth > maxNesting {
		return nil, errorf(ErrTooDeep, "depth %d", depth)
	}
	var out []*Section
	for _, s := range sections {
		if !s.Type.IsEncapsulation() {
			out = append(out, s)
			continue
		}
		inner, err := expand(s, ex)
		if err != nil {
			return nil, err
		}
		children, err := ParseSections(inner)
		if err != nil {
			return nil, err
		}
		leaves, err := flatten(children, ex, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, leaves...)
	}
	return out, nil
}

func expand(s *Section, ex Extractor) ([]byte, error) {
	switch {
	case s.Type == SectionDisposable:
		return s.Data, nil
	case s.Type == SectionGuidDefined && !s.ProcessingRequired():
		return s.Data, nil
	case ex == nil:
		return nil, errorf(ErrUnsupported, "no extractor for %s section", s.Type)
	default:
		return ex.Extract(s)
	}
}
