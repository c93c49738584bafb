package monitor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/dispatchstore"
	"github.com/vk/dxecore/internal/unitid"
)

func TestMulti_FansOut(t *testing.T) {
	first, second := &Recorder{}, &Recorder{}
	m := Multi{first, nil, second}

	ev := Event{Unit: unitid.ForComponent("a"), Status: dispatchstore.StatusExecuted, Round: 1}
	m.Observe(context.Background(), ev)

	require.Len(t, first.Events, 1)
	require.Len(t, second.Events, 1)
	assert.Equal(t, []unitid.ID{unitid.ForComponent("a")}, first.Units(dispatchstore.StatusExecuted))
	assert.Empty(t, first.Units(dispatchstore.StatusFailed))
}

func TestLog_WritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	Log{}.Observe(ctx, Event{
		Unit:   unitid.ForComponent("b"),
		Status: dispatchstore.StatusFailed,
		Round:  2,
		Err:    errors.New("boom"),
	})

	out := buf.String()
	assert.Contains(t, out, "unit=component.b")
	assert.Contains(t, out, "status=failed")
	assert.Contains(t, out, "error=boom")
}

func TestEventPayload(t *testing.T) {
	p := eventPayload(Event{
		Unit:   unitid.ForComponent("c"),
		Status: dispatchstore.StatusPending,
		Round:  3,
		Reason: "Service unavailable",
	})
	assert.Equal(t, "component.c", p["unit"])
	assert.Equal(t, "component", p["kind"])
	assert.Equal(t, "pending", p["status"])
	assert.Equal(t, 3, p["round"])
	assert.Equal(t, "Service unavailable", p["reason"])
	assert.NotContains(t, p, "error")
}
