package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/component"
	"github.com/vk/dxecore/internal/core"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/param"
	"github.com/vk/dxecore/internal/registry"
	"github.com/vk/dxecore/internal/storage"
)

func TestModule(t *testing.T) {
	tests := []struct {
		name      string
		initial   Settings
		wantBoard string
	}{
		{name: "keeps configured board", initial: Settings{Board: "qemu", Features: []string{" NET "}}, wantBoard: "qemu"},
		{name: "fills empty board", initial: Settings{Features: []string{"Net"}}, wantBoard: "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ctxlog.Discard(context.Background())
			r := registry.New()
			r.RegisterModules(&Module{})

			var got Settings
			c := core.New()
			c.WithConfig(storage.NewConfig(tt.initial))
			for _, comp := range r.Components() {
				c.WithComponent(comp)
			}
			c.WithComponent(component.New1("reader", func(_ context.Context, cfg param.Config[Settings]) error {
				got = cfg.Get()
				return nil
			}))

			report, err := c.Start(ctx)
			require.NoError(t, err)
			assert.Len(t, report.Executed(), 3)
			assert.True(t, got.Finalized)
			assert.Equal(t, tt.wantBoard, got.Board)
			assert.True(t, got.HasFeature("net"))
			assert.False(t, got.HasFeature("usb"))
		})
	}
}

func TestModule_RegistersDefaults(t *testing.T) {
	r := registry.New()
	r.RegisterModules(&Module{})
	b, ok := r.Config(ConfigName)
	require.True(t, ok)
	assert.Equal(t, Defaults, *b.New().(*Settings))
}
