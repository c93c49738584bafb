package app

import (
	"io"

	"github.com/vk/dxecore/internal/registry"
	"github.com/vk/dxecore/modules/archstub"
	"github.com/vk/dxecore/modules/console"
	"github.com/vk/dxecore/modules/memorymap"
	"github.com/vk/dxecore/modules/platform"
)

// DefaultModules is the definitive list of all modules that are compiled
// into the dxecore binary. The console writes to out.
func DefaultModules(out io.Writer) []registry.Module {
	return []registry.Module{
		&platform.Module{},
		&memorymap.Module{},
		&console.Module{Out: out},
		&archstub.Module{},
	}
}
