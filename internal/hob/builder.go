package hob

import (
	"encoding/binary"

	"github.com/vk/dxecore/internal/guid"
)

// Builder assembles a hand-off list. It is used by tests and by the CLI to
// synthesize lists from the platform description.
type Builder struct {
	buf []byte
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) record(typ uint16, body []byte) *Builder {
	length := HeaderSize + len(body)
	padded := (length + 7) &^ 7
	rec := make([]byte, padded)
	le.PutUint16(rec[0:], typ)
	le.PutUint16(rec[2:], uint16(padded))
	copy(rec[HeaderSize:], body)
	b.buf = append(b.buf, rec...)
	return b
}

// Handoff appends a PHIT record.
func (b *Builder) Handoff(h Handoff) *Builder {
	body := make([]byte, 48)
	le.PutUint32(body[0:], h.Version)
	le.PutUint32(body[4:], h.BootMode)
	le.PutUint64(body[8:], h.MemoryTop)
	le.PutUint64(body[16:], h.MemoryBottom)
	le.PutUint64(body[24:], h.FreeMemoryTop)
	le.PutUint64(body[32:], h.FreeMemoryBottom)
	le.PutUint64(body[40:], h.EndOfHobList)
	return b.record(TypeHandoff, body)
}

// MemoryAllocation appends a memory allocation record.
func (b *Builder) MemoryAllocation(m MemoryAllocation) *Builder {
	body := make([]byte, 40)
	m.Name.Put(body[0:])
	le.PutUint64(body[16:], m.Base)
	le.PutUint64(body[24:], m.Length)
	le.PutUint32(body[32:], m.MemoryType)
	return b.record(TypeMemoryAllocation, body)
}

// ResourceDescriptor appends a resource descriptor record.
func (b *Builder) ResourceDescriptor(r ResourceDescriptor) *Builder {
	body := make([]byte, 40)
	r.Owner.Put(body[0:])
	le.PutUint32(body[16:], r.ResourceType)
	le.PutUint32(body[20:], r.Attribute)
	le.PutUint64(body[24:], r.Start)
	le.PutUint64(body[32:], r.Length)
	return b.record(TypeResourceDescriptor, body)
}

// GuidExtension appends a GUIDed data record. The data is zero padded to the
// record alignment, so parsers must not rely on its exact length.
func (b *Builder) GuidExtension(name guid.GUID, data []byte) *Builder {
	body := make([]byte, guid.Size+len(data))
	name.Put(body)
	copy(body[guid.Size:], data)
	return b.record(TypeGuidExtension, body)
}

// FirmwareVolume appends an FV record.
func (b *Builder) FirmwareVolume(base, length uint64) *Builder {
	body := make([]byte, 16)
	le.PutUint64(body[0:], base)
	le.PutUint64(body[8:], length)
	return b.record(TypeFirmwareVolume, body)
}

// FirmwareVolume2 appends an FV2 record.
func (b *Builder) FirmwareVolume2(base, length uint64, fvName, fileName guid.GUID) *Builder {
	body := make([]byte, 48)
	le.PutUint64(body[0:], base)
	le.PutUint64(body[8:], length)
	fvName.Put(body[16:])
	fileName.Put(body[32:])
	return b.record(TypeFirmwareVolume2, body)
}

// CPU appends a CPU record.
func (b *Builder) CPU(memBits, ioBits uint8) *Builder {
	return b.record(TypeCPU, []byte{memBits, ioBits, 0, 0, 0, 0})
}

// Bytes returns the list terminated with an end-of-list record.
func (b *Builder) Bytes() []byte {
	out := make([]byte, len(b.buf), len(b.buf)+HeaderSize)
	copy(out, b.buf)
	end := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(end[0:], TypeEndOfList)
	binary.LittleEndian.PutUint16(end[2:], HeaderSize)
	return append(out, end...)
}
