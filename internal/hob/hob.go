// Package hob decodes and builds PI hand-off block lists: the records an
// earlier boot phase leaves behind to describe memory, firmware volumes and
// GUIDed platform data.
package hob

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vk/dxecore/internal/guid"
)

// HOB types.
const (
	TypeHandoff            uint16 = 0x0001
	TypeMemoryAllocation   uint16 = 0x0002
	TypeResourceDescriptor uint16 = 0x0003
	TypeGuidExtension      uint16 = 0x0004
	TypeFirmwareVolume     uint16 = 0x0005
	TypeCPU                uint16 = 0x0006
	TypeMemoryPool         uint16 = 0x0007
	TypeFirmwareVolume2    uint16 = 0x0009
	TypeFirmwareVolume3    uint16 = 0x000C
	TypeUnused             uint16 = 0xFFFE
	TypeEndOfList          uint16 = 0xFFFF
)

// HeaderSize is the size of the generic HOB header.
const HeaderSize = 8

var (
	ErrTruncated  = errors.New("hob: record runs past the end of the list")
	ErrBadLength  = errors.New("hob: record length is not valid for its layout")
	ErrMissingEnd = errors.New("hob: list has no end-of-list record")
)

// Hob is one decoded record.
type Hob interface {
	HobType() uint16
}

// Handoff is the PHIT record that starts every list.
type Handoff struct {
	Version          uint32
	BootMode         uint32
	MemoryTop        uint64
	MemoryBottom     uint64
	FreeMemoryTop    uint64
	FreeMemoryBottom uint64
	EndOfHobList     uint64
}

// MemoryAllocation describes memory already allocated by an earlier phase.
type MemoryAllocation struct {
	Name       guid.GUID
	Base       uint64
	Length     uint64
	MemoryType uint32
}

// ResourceDescriptor describes a system memory or I/O resource.
type ResourceDescriptor struct {
	Owner        guid.GUID
	ResourceType uint32
	Attribute    uint32
	Start        uint64
	Length       uint64
}

// GuidExtension carries opaque data tagged with a GUID.
type GuidExtension struct {
	Name guid.GUID
	Data []byte
}

// FirmwareVolume locates a firmware volume in memory. FV2 and FV3 records
// decode into the same type with the extra fields set.
type FirmwareVolume struct {
	Type                 uint16
	Base                 uint64
	Length               uint64
	FvName               guid.GUID
	FileName             guid.GUID
	AuthenticationStatus uint32
	ExtractedFv          bool
}

// CPU describes the addressable memory and I/O space.
type CPU struct {
	SizeOfMemorySpace uint8
	SizeOfIOSpace     uint8
}

// Raw keeps records this package does not decode.
type Raw struct {
	Type uint16
	Data []byte
}

func (Handoff) HobType() uint16            { return TypeHandoff }
func (MemoryAllocation) HobType() uint16   { return TypeMemoryAllocation }
func (ResourceDescriptor) HobType() uint16 { return TypeResourceDescriptor }
func (GuidExtension) HobType() uint16      { return TypeGuidExtension }
func (f FirmwareVolume) HobType() uint16   { return f.Type }
func (CPU) HobType() uint16                { return TypeCPU }
func (r Raw) HobType() uint16              { return r.Type }

// List is a decoded hand-off list in original order.
type List struct {
	Hobs []Hob
}

var le = binary.LittleEndian

// Parse decodes a hand-off list up to and including its end record.
func Parse(data []byte) (*List, error) {
	list := &List{}
	offset := 0
	for {
		if offset+HeaderSize > len(data) {
			return nil, ErrMissingEnd
		}
		typ := le.Uint16(data[offset:])
		length := int(le.Uint16(data[offset+2:]))
		if typ == TypeEndOfList {
			return list, nil
		}
		if length < HeaderSize || length%8 != 0 {
			return nil, fmt.Errorf("hob at offset %#x: %w", offset, ErrBadLength)
		}
		if offset+length > len(data) {
			return nil, fmt.Errorf("hob at offset %#x: %w", offset, ErrTruncated)
		}
		h, err := decode(typ, data[offset+HeaderSize:offset+length])
		if err != nil {
			return nil, fmt.Errorf("hob type %#x at offset %#x: %w", typ, offset, err)
		}
		if h != nil {
			list.Hobs = append(list.Hobs, h)
		}
		offset += length
	}
}

func need(body []byte, n int) error {
	if len(body) < n {
		return ErrBadLength
	}
	return nil
}

func readGUID(b []byte) guid.GUID {
	g, _ := guid.FromBytes(b)
	return g
}

func decode(typ uint16, body []byte) (Hob, error) {
	switch typ {
	case TypeHandoff:
		if err := need(body, 48); err != nil {
			return nil, err
		}
		return Handoff{
			Version:          le.Uint32(body[0:]),
			BootMode:         le.Uint32(body[4:]),
			MemoryTop:        le.Uint64(body[8:]),
			MemoryBottom:     le.Uint64(body[16:]),
			FreeMemoryTop:    le.Uint64(body[24:]),
			FreeMemoryBottom: le.Uint64(body[32:]),
			EndOfHobList:     le.Uint64(body[40:]),
		}, nil
	case TypeMemoryAllocation:
		if err := need(body, 36); err != nil {
			return nil, err
		}
		return MemoryAllocation{
			Name:       readGUID(body[0:]),
			Base:       le.Uint64(body[16:]),
			Length:     le.Uint64(body[24:]),
			MemoryType: le.Uint32(body[32:]),
		}, nil
	case TypeResourceDescriptor:
		if err := need(body, 40); err != nil {
			return nil, err
		}
		return ResourceDescriptor{
			Owner:        readGUID(body[0:]),
			ResourceType: le.Uint32(body[16:]),
			Attribute:    le.Uint32(body[20:]),
			Start:        le.Uint64(body[24:]),
			Length:       le.Uint64(body[32:]),
		}, nil
	case TypeGuidExtension:
		if err := need(body, guid.Size); err != nil {
			return nil, err
		}
		data := make([]byte, len(body)-guid.Size)
		copy(data, body[guid.Size:])
		return GuidExtension{Name: readGUID(body), Data: data}, nil
	case TypeFirmwareVolume:
		if err := need(body, 16); err != nil {
			return nil, err
		}
		return FirmwareVolume{Type: typ, Base: le.Uint64(body[0:]), Length: le.Uint64(body[8:])}, nil
	case TypeFirmwareVolume2:
		if err := need(body, 48); err != nil {
			return nil, err
		}
		return FirmwareVolume{
			Type:     typ,
			Base:     le.Uint64(body[0:]),
			Length:   le.Uint64(body[8:]),
			FvName:   readGUID(body[16:]),
			FileName: readGUID(body[32:]),
		}, nil
	case TypeFirmwareVolume3:
		if err := need(body, 56); err != nil {
			return nil, err
		}
		return FirmwareVolume{
			Type:                 typ,
			Base:                 le.Uint64(body[0:]),
			Length:               le.Uint64(body[8:]),
			AuthenticationStatus: le.Uint32(body[16:]),
			ExtractedFv:          body[20] != 0,
			FvName:               readGUID(body[24:]),
			FileName:             readGUID(body[40:]),
		}, nil
	case TypeCPU:
		if err := need(body, 2); err != nil {
			return nil, err
		}
		return CPU{SizeOfMemorySpace: body[0], SizeOfIOSpace: body[1]}, nil
	case TypeUnused:
		return nil, nil
	default:
		data := make([]byte, len(body))
		copy(data, body)
		return Raw{Type: typ, Data: data}, nil
	}
}

// GuidExtensions returns every GUIDed record in list order.
func (l *List) GuidExtensions() []GuidExtension {
	var out []GuidExtension
	for _, h := range l.Hobs {
		if g, ok := h.(GuidExtension); ok {
			out = append(out, g)
		}
	}
	return out
}

// FirmwareVolumes returns FV, FV2 and FV3 records in list order.
func (l *List) FirmwareVolumes() []FirmwareVolume {
	var out []FirmwareVolume
	for _, h := range l.Hobs {
		if fv, ok := h.(FirmwareVolume); ok {
			out = append(out, fv)
		}
	}
	return out
}

// Resources returns every resource descriptor in list order.
func (l *List) Resources() []ResourceDescriptor {
	var out []ResourceDescriptor
	for _, h := range l.Hobs {
		if r, ok := h.(ResourceDescriptor); ok {
			out = append(out, r)
		}
	}
	return out
}

// Handoff returns the PHIT record, if present.
func (l *List) Handoff() (Handoff, bool) {
	for _, h := range l.Hobs {
		if p, ok := h.(Handoff); ok {
			return p, true
		}
	}
	return Handoff{}, false
}
