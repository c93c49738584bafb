package component

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/param"
	"github.com/vk/dxecore/internal/storage"
)

type widget interface {
	Spin() int
}

type widgetImpl struct{}

func (widgetImpl) Spin() int { return 3 }

type probe struct {
	calls int
}

func (p *probe) Run(_ context.Context, w param.Service[widget]) error {
	p.calls += w.Get().Spin()
	return nil
}

func TestFunction_RunsWhenAvailable(t *testing.T) {
	ctx := context.Background()
	s := storage.New()
	invoked := 0

	c := New2("needs-widget", func(_ context.Context, cfg param.Config[bool], w param.Service[widget]) error {
		invoked++
		assert.Equal(t, 3, w.Get().Spin())
		return nil
	})
	c.Initialize(s)
	s.LockUnclaimedConfigs()

	ran, err := c.Run(ctx, s)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, Pending, c.State())
	kind, name := c.Blocker()
	assert.Equal(t, "Service", kind)
	assert.Equal(t, "Service<component.widget>", name)

	require.NoError(t, s.AddService(storage.Provide[widget](widgetImpl{})))
	ran, err = c.Run(ctx, s)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, Executed, c.State())
	kind, _ = c.Blocker()
	assert.Empty(t, kind)

	ran, err = c.Run(ctx, s)
	require.ErrorIs(t, err, ErrNotPending)
	assert.False(t, ran)
	assert.Equal(t, 1, invoked)
}

func TestFunction_Failure(t *testing.T) {
	s := storage.New()
	boom := errors.New("boom")
	c := New0("fails", func(context.Context) error { return boom })
	c.Initialize(s)

	ran, err := c.Run(context.Background(), s)
	assert.True(t, ran)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Failed, c.State())
	assert.Equal(t, "failed", c.State().String())
}

func TestFunction_NoPartialFetch(t *testing.T) {
	s := storage.New()
	c := New2("mut-then-blocked", func(_ context.Context, m param.ConfigMut[uint32], _ param.Service[widget]) error {
		return m.Set(99)
	})
	c.Initialize(s)
	s.LockUnclaimedConfigs()

	ran, err := c.Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, ran)

	v, _ := storage.ConfigValue[uint32](s)
	assert.Zero(t, v)
}

func TestStruct_Adapter(t *testing.T) {
	s := storage.New()
	p := &probe{}
	c := Struct(p, (*probe).Run)
	assert.Equal(t, "component.probe", c.Name())
	assert.Equal(t, []string{"Service<component.widget>"}, c.Params())

	c.Initialize(s)
	require.NoError(t, s.AddService(storage.Provide[widget](widgetImpl{})))
	ran, err := c.Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 3, p.calls)
}

func TestInitialize_Once(t *testing.T) {
	s := storage.New()
	c := New1("once", func(context.Context, param.ConfigMut[int]) error { return nil })
	c.Initialize(s)
	first := c.Access()
	assert.NotPanics(t, func() { c.Initialize(s) })
	assert.Same(t, first, c.Access())
	assert.True(t, first.WritesConfig(storage.TypeOf[int]()))
}
