// Package console provides a text console service and the boot banner that
// uses it.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vk/dxecore/internal/component"
	"github.com/vk/dxecore/internal/param"
	"github.com/vk/dxecore/internal/registry"
	"github.com/vk/dxecore/internal/storage"
	"github.com/vk/dxecore/modules/memorymap"
	"github.com/vk/dxecore/modules/platform"
)

// Console writes lines of text.
type Console interface {
	Println(line string)
}

type writerConsole struct {
	mu  sync.Mutex
	out io.Writer
}

func (c *writerConsole) Println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// Module registers the console components. Out defaults to io.Discard.
type Module struct {
	Out io.Writer
}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = io.Discard
	}
	r.RegisterComponent(component.New1("console_init", func(ctx context.Context, cmds param.Commands) error {
		return Init(ctx, cmds, out)
	}))
	r.RegisterComponent(component.New3("console_banner", Banner))
}

// Init provides a Console writing to out.
func Init(_ context.Context, cmds param.Commands, out io.Writer) error {
	cmds.AddService(storage.Provide[Console](&writerConsole{out: out}))
	return nil
}

// Banner prints the board line, and the memory size when the memory map was
// already published.
func Banner(
	_ context.Context,
	con param.Service[Console],
	settings param.Config[platform.Settings],
	mm param.Option[param.Service[*memorymap.Map]],
) error {
	s := settings.Get()
	con.Get().Println(fmt.Sprintf("Board %s, boot timeout %ds", s.Board, s.BootTimeout))
	if m, ok := mm.Get(); ok {
		con.Get().Println(fmt.Sprintf("System memory: %d MiB", m.Get().SystemMemory()>>20))
	}
	return nil
}
