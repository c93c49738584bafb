package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/ffs"
	"github.com/vk/dxecore/internal/guid"
)

var inner = append(ffs.SectionBytes(ffs.SectionPE32, []byte("MZ driver image")), 0)

func guided(t *testing.T, def guid.GUID, header, data []byte) *ffs.Section {
	t.Helper()
	secs, err := ffs.ParseSections(ffs.GuidDefinedSection(def, ffs.GuidProcessingRequired, header, data))
	require.NoError(t, err)
	require.Len(t, secs, 1)
	return secs[0]
}

func TestDefault_RoundTrip(t *testing.T) {
	brotliData, err := BrotliPayload(inner)
	require.NoError(t, err)
	lzmaData, err := LzmaPayload(inner)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		section *ffs.Section
	}{
		{name: "brotli", section: guided(t, BrotliGUID, nil, brotliData)},
		{name: "lzma", section: guided(t, LzmaGUID, nil, lzmaData)},
		{name: "crc32", section: guided(t, Crc32GUID, Crc32Header(inner), inner)},
	}

	ex := Default()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ex.Extract(tc.section)
			require.NoError(t, err)
			assert.Equal(t, inner, out)

			leaves, err := ffs.Flatten([]*ffs.Section{tc.section}, ex)
			require.NoError(t, err)
			require.Len(t, leaves, 1)
			assert.Equal(t, ffs.SectionPE32, leaves[0].Type)
		})
	}
}

func TestDefault_Errors(t *testing.T) {
	brotliData, err := BrotliPayload(inner)
	require.NoError(t, err)
	brotliData[0]++ // claimed size no longer matches

	testCases := []struct {
		name    string
		section *ffs.Section
		target  error
	}{
		{name: "crc mismatch", section: guided(t, Crc32GUID, []byte{0, 0, 0, 0}, inner), target: efierr.VolumeCorrupted},
		{name: "crc header missing", section: guided(t, Crc32GUID, nil, inner), target: efierr.VolumeCorrupted},
		{name: "brotli size mismatch", section: guided(t, BrotliGUID, nil, brotliData), target: efierr.VolumeCorrupted},
		{name: "brotli too short", section: guided(t, BrotliGUID, nil, []byte{1, 2}), target: efierr.VolumeCorrupted},
		{name: "lzma too short", section: guided(t, LzmaGUID, nil, []byte{1, 2}), target: efierr.VolumeCorrupted},
		{name: "unknown algorithm", section: guided(t, guid.MustParse("00000000-0000-0000-0000-00000000beef"), nil, inner), target: efierr.Unsupported},
		{name: "tiano not registered", section: &ffs.Section{Type: ffs.SectionCompression, CompressionType: ffs.StandardCompressed}, target: efierr.Unsupported},
		{name: "leaf section", section: &ffs.Section{Type: ffs.SectionRaw}, target: efierr.InvalidParameter},
	}

	ex := Default()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ex.Extract(tc.section)
			require.ErrorIs(t, err, tc.target)
		})
	}
}

func TestComposite_NotCompressed(t *testing.T) {
	secs, err := ffs.ParseSections(ffs.CompressionSection(ffs.NotCompressed, uint32(len(inner)), inner))
	require.NoError(t, err)
	out, err := NewComposite().Extract(secs[0])
	require.NoError(t, err)
	assert.Equal(t, inner, out)
}

func TestComposite_Register(t *testing.T) {
	c := NewComposite()
	c.Register(ffs.TianoCompress, Func(func(s *ffs.Section) ([]byte, error) { return []byte("tiano"), nil }))
	require.True(t, c.Supports(ffs.TianoCompress))

	out, err := c.Extract(&ffs.Section{Type: ffs.SectionCompression, CompressionType: ffs.StandardCompressed})
	require.NoError(t, err)
	assert.Equal(t, []byte("tiano"), out)

	assert.Panics(t, func() { c.Register(ffs.TianoCompress, Crc32{}) })
	assert.Equal(t, []guid.GUID{ffs.TianoCompress}, c.Algorithms())
}
