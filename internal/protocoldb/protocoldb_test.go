package protocoldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/guid"
)

func TestInstallAndLocate(t *testing.T) {
	db := New()
	p := guid.MustParse("12345678-0000-0000-0000-000000000000")

	_, err := db.Locate(p)
	require.ErrorIs(t, err, efierr.NotFound)
	require.False(t, db.Installed(p))

	require.NoError(t, db.Install(p, "first", "driver.a"))
	require.NoError(t, db.Install(p, "second", "driver.b"))

	iface, err := db.Locate(p)
	require.NoError(t, err)
	assert.Equal(t, "first", iface)
	assert.Equal(t, 2, db.Len())
	assert.Equal(t, "driver.b", db.Installations()[1].By)

	require.ErrorIs(t, db.Install(guid.Nil, nil, "x"), efierr.InvalidParameter)
}

func TestMissingArch(t *testing.T) {
	db := New()
	require.Len(t, db.MissingArch(), len(ArchProtocols))

	for _, g := range ArchGUIDs()[1:] {
		require.NoError(t, db.Install(g, nil, "stub"))
	}
	missing := db.MissingArch()
	require.Len(t, missing, 1)
	assert.Equal(t, "Security", missing[0].Name)
}
