package guid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytes_MixedEndian(t *testing.T) {
	// FFS2 file system GUID as it appears in a volume header.
	onDisk := []byte{
		0x78, 0xE5, 0x8C, 0x8C, 0x3D, 0x8A, 0x1C, 0x4F,
		0x99, 0x35, 0x89, 0x61, 0x85, 0xC3, 0x2D, 0xD3,
	}

	g, err := FromBytes(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "8c8ce578-8a3d-4f1c-9935-896185c32dd3", g.String())
	assert.Equal(t, onDisk, g.Bytes())
}

func TestFromBytes_Short(t *testing.T) {
	_, err := FromBytes(make([]byte, 15))
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		in        string
		expectErr bool
	}{
		{name: "lowercase", in: "3d532050-5cda-4fd0-879e-0f7f630d5afb"},
		{name: "uppercase", in: "3D532050-5CDA-4FD0-879E-0F7F630D5AFB"},
		{name: "garbage", in: "not-a-guid", expectErr: true},
		{name: "empty", in: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Parse(tc.in)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, g.IsNil())
			assert.Equal(t, "3d532050-5cda-4fd0-879e-0f7f630d5afb", g.String())
		})
	}
}

func TestText(t *testing.T) {
	g := MustParse("fc1bcdb0-7d31-49aa-936a-a4600d9dd083")
	text, err := g.MarshalText()
	require.NoError(t, err)

	var back GUID
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, g, back)
	assert.True(t, Nil.IsNil())
}
