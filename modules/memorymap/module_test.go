package memorymap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/component"
	"github.com/vk/dxecore/internal/core"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/hob"
	"github.com/vk/dxecore/internal/param"
	"github.com/vk/dxecore/internal/registry"
)

func handoff(t *testing.T, resources ...hob.ResourceDescriptor) []byte {
	t.Helper()
	b := hob.NewBuilder().Handoff(hob.Handoff{Version: 9})
	for _, r := range resources {
		b.ResourceDescriptor(r)
	}
	b.GuidExtension(BoardInfoGUID, BoardInfoBytes(BoardInfo{Revision: 2, Name: "qemu-q35"}))
	return b.Bytes()
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		resources []hob.ResourceDescriptor
		wantMem   uint64
		wantErr   string
	}{
		{
			name: "sorted and summed",
			resources: []hob.ResourceDescriptor{
				{ResourceType: ResourceSystemMemory, Start: 0x100000, Length: 0x7F00000},
				{ResourceType: ResourceMemoryMappedIO, Start: 0xFEC00000, Length: 0x1000},
				{ResourceType: ResourceSystemMemory, Start: 0, Length: 0xA0000},
			},
			wantMem: 0x7F00000 + 0xA0000,
		},
		{
			name: "overlap",
			resources: []hob.ResourceDescriptor{
				{ResourceType: ResourceSystemMemory, Start: 0, Length: 0x2000},
				{ResourceType: ResourceMemoryReserved, Start: 0x1000, Length: 0x1000},
			},
			wantErr: "overlaps",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := hob.Parse(handoff(t, tt.resources...))
			require.NoError(t, err)
			mm, err := Build(list)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMem, mm.SystemMemory())
			assert.Equal(t, uint64(0), mm.Regions[0].Start)
		})
	}
}

func TestBoardInfo(t *testing.T) {
	info, err := BoardInfo{}.ParseHob(BoardInfoBytes(BoardInfo{Revision: 7, Name: "ovmf"}))
	require.NoError(t, err)
	assert.Equal(t, BoardInfo{Revision: 7, Name: "ovmf"}, info)

	_, err = BoardInfo{}.ParseHob([]byte{1})
	require.Error(t, err)
}

func TestModule(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	r := registry.New()
	r.RegisterModules(&Module{})

	var total uint64
	c := core.New()
	for _, comp := range r.Components() {
		c.WithComponent(comp)
	}
	c.WithComponent(component.New1("consumer", func(_ context.Context, mm param.Service[*Map]) error {
		total = mm.Get().SystemMemory()
		return nil
	}))
	require.NoError(t, c.InitMemory(handoff(t, hob.ResourceDescriptor{ResourceType: ResourceSystemMemory, Length: 0x1000}), nil))

	report, err := c.Start(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Executed(), 3)
	assert.Equal(t, uint64(0x1000), total)
}
