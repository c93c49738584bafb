// Package extractor expands encapsulated firmware sections. A Composite
// routes each section to the extractor registered for its algorithm GUID.
package extractor

import (
	"fmt"
	"sort"

	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/ffs"
	"github.com/vk/dxecore/internal/guid"
)

// SectionExtractor returns the bytes a COMPRESSION or GUID_DEFINED section
// encapsulates.
type SectionExtractor interface {
	Extract(s *ffs.Section) ([]byte, error)
}

// Func adapts a function to SectionExtractor.
type Func func(s *ffs.Section) ([]byte, error)

func (f Func) Extract(s *ffs.Section) ([]byte, error) { return f(s) }

// Composite dispatches on the section's algorithm GUID. Standard compressed
// COMPRESSION sections are routed to ffs.TianoCompress.
type Composite struct {
	byGUID map[guid.GUID]SectionExtractor
}

// NewComposite returns a composite with nothing registered.
func NewComposite() *Composite {
	return &Composite{byGUID: make(map[guid.GUID]SectionExtractor)}
}

// Default returns a composite with the brotli, LZMA and CRC32 extractors.
func Default() *Composite {
	c := NewComposite()
	c.Register(BrotliGUID, Brotli{})
	c.Register(LzmaGUID, Lzma{})
	c.Register(Crc32GUID, Crc32{})
	return c
}

// Register binds an extractor to an algorithm GUID. It panics if the GUID is
// already bound.
func (c *Composite) Register(g guid.GUID, ex SectionExtractor) {
	if _, exists := c.byGUID[g]; exists {
		panic(fmt.Sprintf("extractor: algorithm %s already registered", g))
	}
	c.byGUID[g] = ex
}

// Supports reports whether an extractor is bound to g.
func (c *Composite) Supports(g guid.GUID) bool {
	_, ok := c.byGUID[g]
	return ok
}

// Algorithms returns the registered GUIDs in text order.
func (c *Composite) Algorithms() []guid.GUID {
	out := make([]guid.GUID, 0, len(c.byGUID))
	for g := range c.byGUID {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Extract implements SectionExtractor.
func (c *Composite) Extract(s *ffs.Section) ([]byte, error) {
	var algo guid.GUID
	switch s.Type {
	case ffs.SectionCompression:
		switch s.CompressionType {
		case ffs.NotCompressed:
			return s.Data, nil
		case ffs.StandardCompressed:
			algo = ffs.TianoCompress
		default:
			return nil, efierr.Errorf(efierr.Unsupported, "compression type %#02x", s.CompressionType)
		}
	case ffs.SectionGuidDefined:
		algo = s.Definition
	default:
		return nil, efierr.Errorf(efierr.InvalidParameter, "%s is not an encapsulation section", s.Type)
	}
	ex, ok := c.byGUID[algo]
	if !ok {
		return nil, efierr.Errorf(efierr.Unsupported, "no extractor for algorithm %s", algo)
	}
	return ex.Extract(s)
}
