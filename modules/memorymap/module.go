// Package memorymap turns the hand-off list into a memory map service and
// decodes the board information GUID extension.
package memorymap

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/vk/dxecore/internal/component"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/hob"
	"github.com/vk/dxecore/internal/param"
	"github.com/vk/dxecore/internal/registry"
	"github.com/vk/dxecore/internal/storage"
)

// Resource types of hand-off resource descriptors.
const (
	ResourceSystemMemory   uint32 = 0x00
	ResourceMemoryMappedIO uint32 = 0x01
	ResourceIO             uint32 = 0x02
	ResourceFirmwareDevice uint32 = 0x03
	ResourceMemoryReserved uint32 = 0x05
)

// Region is one contiguous resource range.
type Region struct {
	Type   uint32
	Start  uint64
	Length uint64
}

// End returns the first address past the region.
func (r Region) End() uint64 { return r.Start + r.Length }

// Map is the memory map built from resource descriptors.
type Map struct {
	Regions []Region
}

// SystemMemory returns the total size of system memory regions.
func (m *Map) SystemMemory() uint64 {
	var total uint64
	for _, r := range m.Regions {
		if r.Type == ResourceSystemMemory {
			total += r.Length
		}
	}
	return total
}

// Build sorts the resource descriptors of list into a Map. Overlapping
// regions are an error.
func Build(list *hob.List) (*Map, error) {
	m := &Map{}
	for _, rd := range list.Resources() {
		if rd.Length == 0 {
			continue
		}
		m.Regions = append(m.Regions, Region{Type: rd.ResourceType, Start: rd.Start, Length: rd.Length})
	}
	sort.Slice(m.Regions, func(i, j int) bool { return m.Regions[i].Start < m.Regions[j].Start })
	for i := 1; i < len(m.Regions); i++ {
		prev, cur := m.Regions[i-1], m.Regions[i]
		if cur.Start < prev.End() {
			return nil, fmt.Errorf("resource %#x-%#x overlaps %#x-%#x", cur.Start, cur.End(), prev.Start, prev.End())
		}
	}
	return m, nil
}

// BoardInfoGUID names the board information GUID extension.
var BoardInfoGUID = guid.MustParse("b7f0a5a6-1c2d-4e6f-8a9b-0c1d2e3f4a5b")

// BoardInfo is carried in a GUID extension: a little-endian u16 revision
// followed by the board name.
type BoardInfo struct {
	Revision uint16
	Name     string
}

// HobGUID implements param.FromHob.
func (BoardInfo) HobGUID() guid.GUID { return BoardInfoGUID }

// ParseHob implements param.FromHob.
func (BoardInfo) ParseHob(data []byte) (BoardInfo, error) {
	if len(data) < 2 {
		return BoardInfo{}, fmt.Errorf("board info: %d bytes, need at least 2", len(data))
	}
	name := data[2:]
	for i, b := range name {
		if b == 0 {
			name = name[:i]
			break
		}
	}
	return BoardInfo{Revision: binary.LittleEndian.Uint16(data), Name: string(name)}, nil
}

// BoardInfoBytes encodes info the way ParseHob reads it.
func BoardInfoBytes(info BoardInfo) []byte {
	out := make([]byte, 2, 2+len(info.Name)+1)
	binary.LittleEndian.PutUint16(out, info.Revision)
	out = append(out, info.Name...)
	return append(out, 0)
}

// Module registers the memory map components.
type Module struct{}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterComponent(component.New2("memory_map", Publish))
	r.RegisterComponent(component.New1("board_info", LogBoardInfo))
}

// Publish builds the memory map and provides it as a service.
func Publish(ctx context.Context, list param.Service[*hob.List], cmds param.Commands) error {
	mm, err := Build(list.Get())
	if err != nil {
		return err
	}
	cmds.AddService(storage.Provide[*Map](mm))
	ctxlog.FromContext(ctx).Info("Memory map published.",
		"regions", len(mm.Regions),
		"system_memory", mm.SystemMemory(),
	)
	return nil
}

// LogBoardInfo runs once a board information extension was handed off.
func LogBoardInfo(ctx context.Context, info param.Hob[BoardInfo]) error {
	for _, b := range info.All() {
		ctxlog.FromContext(ctx).Info("Board information.", "name", b.Name, "revision", b.Revision)
	}
	return nil
}
