//go:build !dxe_release

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccess_Conflicts(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(a *Access)
	}{
		{
			name: "read then write same type",
			setup: func(a *Access) {
				a.ReadConfig(TypeOf[int]())
				a.WriteConfig(TypeOf[int]())
			},
		},
		{
			name: "write then read same type",
			setup: func(a *Access) {
				a.WriteConfig(TypeOf[int]())
				a.ReadConfig(TypeOf[int]())
			},
		},
		{
			name: "two writers",
			setup: func(a *Access) {
				a.WriteConfig(TypeOf[int]())
				a.WriteConfig(TypeOf[int]())
			},
		},
		{
			name: "storage with config",
			setup: func(a *Access) {
				a.ReadConfig(TypeOf[bool]())
				a.WriteAll()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Panics(t, func() { tc.setup(NewAccess("conflicting")) })
		})
	}
}

func TestAccess_Compatible(t *testing.T) {
	a := NewAccess("fine")
	assert.NotPanics(t, func() {
		a.ReadConfig(TypeOf[int]())
		a.ReadConfig(TypeOf[int]())
		a.WriteConfig(TypeOf[string]())
		a.UseDeferred()
	})
	assert.True(t, a.ReadsConfig(TypeOf[int]()))
	assert.True(t, a.WritesConfig(TypeOf[string]()))
	assert.True(t, a.Deferred())
	assert.True(t, ChecksEnabled())
}
