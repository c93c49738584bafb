package extractor

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/ulikunitz/xz/lzma"
	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/ffs"
	"github.com/vk/dxecore/internal/guid"
)

// LzmaGUID identifies LZMA compressed GUID_DEFINED sections.
var LzmaGUID = guid.MustParse("ee4e5898-3914-4259-9d6e-dc7bd79403cf")

const (
	lzmaHeaderSize  = 13
	lzmaUnknownSize = ^uint64(0)
)

// Lzma decodes sections holding a classic .lzma stream.
type Lzma struct{}

func (Lzma) Extract(s *ffs.Section) ([]byte, error) {
	if len(s.Data) < lzmaHeaderSize {
		return nil, efierr.Errorf(efierr.VolumeCorrupted, "lzma section shorter than its header")
	}
	size := binary.LittleEndian.Uint64(s.Data[5:])
	if size != lzmaUnknownSize && size > maxOutput {
		return nil, efierr.Errorf(efierr.OutOfResources, "lzma output of %d bytes", size)
	}
	r, err := lzma.NewReader(bytes.NewReader(s.Data))
	if err != nil {
		return nil, efierr.Errorf(efierr.VolumeCorrupted, "lzma: %v", err)
	}
	out, err := io.ReadAll(io.LimitReader(r, maxOutput+1))
	if err != nil {
		return nil, efierr.Errorf(efierr.VolumeCorrupted, "lzma: %v", err)
	}
	if len(out) > maxOutput {
		return nil, efierr.Errorf(efierr.OutOfResources, "lzma output exceeds %d bytes", maxOutput)
	}
	return out, nil
}

// LzmaPayload builds the data of an LZMA GUID_DEFINED section.
func LzmaPayload(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.WriterConfig{SizeInHeader: true, Size: int64(len(raw))}.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
