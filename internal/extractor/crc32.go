package extractor

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/ffs"
	"github.com/vk/dxecore/internal/guid"
)

// Crc32GUID identifies CRC32 protected GUID_DEFINED sections.
var Crc32GUID = guid.MustParse("fc1bcdb0-7d31-49aa-936a-a4600d9dd083")

// Crc32 checks the section data against the CRC in its GUID header and
// returns the data unchanged.
type Crc32 struct{}

func (Crc32) Extract(s *ffs.Section) ([]byte, error) {
	if len(s.GuidHeader) < 4 {
		return nil, efierr.Errorf(efierr.VolumeCorrupted, "crc32 section without checksum")
	}
	want := binary.LittleEndian.Uint32(s.GuidHeader)
	if got := crc32.ChecksumIEEE(s.Data); got != want {
		return nil, efierr.Errorf(efierr.VolumeCorrupted, "crc32 %#08x, header says %#08x", got, want)
	}
	return s.Data, nil
}

// Crc32Header builds the GUID header for data.
func Crc32Header(data []byte) []byte {
	h := make([]byte, 4)
	binary.LittleEndian.PutUint32(h, crc32.ChecksumIEEE(data))
	return h
}
