package fvsource

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxImageSize bounds the decompressed size of one input file.
const MaxImageSize = 1 << 30

// Encoding is the on-disk encoding of an input file.
type Encoding int

const (
	Raw Encoding = iota
	Zstd
	Gzip
)

func (e Encoding) String() string {
	switch e {
	case Zstd:
		return "zstd"
	case Gzip:
		return "gzip"
	default:
		return "raw"
	}
}

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
)

// Detect picks the encoding from the file extension and, failing that, from
// the leading magic bytes.
func Detect(path string, head []byte) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".gz":
		return Gzip
	}
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	}
	return Raw
}

// ReadFile reads and, when needed, decompresses one input file.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	out, err := Decode(Detect(path, data), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return out, nil
}

// Decode decompresses data in the given encoding.
func Decode(enc Encoding, data []byte) ([]byte, error) {
	switch enc {
	case Zstd:
		dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(MaxImageSize))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		return readLimited(dec)
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer r.Close()
		return readLimited(r)
	default:
		return data, nil
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	if len(out) > MaxImageSize {
		return nil, fmt.Errorf("decompressed image exceeds %d bytes", MaxImageSize)
	}
	return out, nil
}

// Encode compresses data. Tests and the image packer use it.
func Encode(enc Encoding, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch enc {
	case Zstd:
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to write zstd data: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to close zstd writer: %w", err)
		}
	case Gzip:
		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to write gzip data: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to close gzip writer: %w", err)
		}
	default:
		return data, nil
	}
	return buf.Bytes(), nil
}
