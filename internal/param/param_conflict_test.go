//go:build !dxe_release

package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/dxecore/internal/storage"
)

func TestAccessConflicts_Panic(t *testing.T) {
	s := storage.New()

	assert.Panics(t, func() {
		register[Tuple2[ConfigMut[uint32], Config[uint32]]](s)
	})
	assert.Panics(t, func() {
		register[Tuple2[ConfigMut[uint32], ConfigMut[uint32]]](s)
	})
	assert.Panics(t, func() {
		register[Tuple2[Config[bool], Storage]](s)
	})
	assert.NotPanics(t, func() {
		register[Tuple2[Config[bool], Config[bool]]](s)
	})
}
