package extractor

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/ffs"
	"github.com/vk/dxecore/internal/guid"
)

// BrotliGUID identifies brotli compressed GUID_DEFINED sections.
var BrotliGUID = guid.MustParse("3d532050-5cda-4fd0-879e-0f7f630d5afb")

// maxOutput bounds the size a section may claim to decompress to.
const maxOutput = 256 << 20

// Brotli decodes sections whose data is the output size (u64), a scratch
// size (u64) and a brotli stream.
type Brotli struct{}

func (Brotli) Extract(s *ffs.Section) ([]byte, error) {
	if len(s.Data) < 16 {
		return nil, efierr.Errorf(efierr.VolumeCorrupted, "brotli section shorter than its size header")
	}
	outSize := binary.LittleEndian.Uint64(s.Data)
	if outSize > maxOutput {
		return nil, efierr.Errorf(efierr.OutOfResources, "brotli output of %d bytes", outSize)
	}
	out, err := io.ReadAll(io.LimitReader(brotli.NewReader(bytes.NewReader(s.Data[16:])), int64(outSize)+1))
	if err != nil {
		return nil, efierr.Errorf(efierr.VolumeCorrupted, "brotli: %v", err)
	}
	if uint64(len(out)) != outSize {
		return nil, efierr.Errorf(efierr.VolumeCorrupted, "brotli produced %d bytes, header says %d", len(out), outSize)
	}
	return out, nil
}

// BrotliPayload builds the data of a brotli GUID_DEFINED section.
func BrotliPayload(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	hdr := make([]byte, 16)
	binary.LittleEndian.PutUint64(hdr, uint64(len(raw)))
	buf.Write(hdr)
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
