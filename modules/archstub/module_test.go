package archstub

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
)

func TestVolumeInstallsEveryArchProtocol(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	r := registry.New()
	r.RegisterModules(&Module{})
	require.Len(t, r.Drivers(), len(Drivers))

	var seen []byte
	c := core.New(core.WithNoDepexRequiresArch())
	for _, d := range r.Drivers() {
		c.WithDriver(d.File, d.Fn)
	}
	c.WithFirmwareVolume("archstub", Volume())
	c.WithComponent(component.New1("boot_order", func(_ context.Context, v param.Service[Variables]) error {
		v.Get().Set("BootOrder", []byte{0, 1})
		seen, _ = v.Get().Get("BootOrder")
		return nil
	}))

	report, err := c.Start(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.MissingArch)
	assert.Empty(t, report.Failed())
	assert.Empty(t, report.Stuck())
	assert.Len(t, report.Executed(), len(Drivers)+1)
	assert.Equal(t, []byte{0, 1}, seen)
}

func TestArchGUID_Unknown(t *testing.T) {
	_, err := archGUID("Teleporter")
	require.Error(t, err)
}
