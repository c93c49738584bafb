package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/dispatchstore"
	"github.com/vk/dxecore/internal/monitor"
	"github.com/vk/dxecore/internal/unitid"
)

func gathered(t *testing.T, m *Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range metric.GetLabel() {
				key += "," + l.GetName() + "=" + l.GetValue()
			}
			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[key] = metric.GetGauge().GetValue()
			}
		}
	}
	return out
}

func TestObserve(t *testing.T) {
	m := New()
	ctx := context.Background()
	comp := unitid.ForComponent("a")

	events := []monitor.Event{
		{Unit: comp, Status: dispatchstore.StatusPending, Round: 1, Reason: "Config unavailable: Config<uint32>"},
		{Unit: comp, Status: dispatchstore.StatusExecuted, Round: 2},
		{Unit: unitid.ID{Kind: unitid.Driver, Name: "x"}, Status: dispatchstore.StatusFailed, Round: 1},
		{Unit: unitid.ForComponent("b"), Status: dispatchstore.StatusExecuted, Round: 1},
	}
	for _, ev := range events {
		m.Observe(ctx, ev)
	}

	got := gathered(t, m)
	assert.Equal(t, 2.0, got["dxe_unit_transitions_total,kind=component,status=executed"])
	assert.Equal(t, 1.0, got["dxe_unit_transitions_total,kind=driver,status=failed"])
	assert.Equal(t, 1.0, got["dxe_unit_blocked_total,kind=component"])
	assert.Equal(t, 2.0, got["dxe_dispatch_rounds,kind=component"], "the gauge keeps the highest round")
	assert.Equal(t, 1.0, got["dxe_dispatch_rounds,kind=driver"])
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.Observe(context.Background(), monitor.Event{Unit: unitid.ForComponent("a"), Status: dispatchstore.StatusExecuted, Round: 1})

	path := filepath.Join(t.TempDir(), "dxe.prom")
	require.NoError(t, m.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `dxe_unit_transitions_total{kind="component",status="executed"} 1`)
}
