package param

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/storage"
)

var bootCountGUID = guid.MustParse("6b7f3a8e-1d0c-4e6f-a2b9-5c4d3e2f1a0b")

type bootCount struct {
	N uint32
}

func (bootCount) HobGUID() guid.GUID { return bootCountGUID }

func (bootCount) ParseHob(data []byte) (bootCount, error) {
	if len(data) < 4 {
		return bootCount{}, errors.New("short boot count hob")
	}
	return bootCount{N: binary.LittleEndian.Uint32(data)}, nil
}

type clock interface {
	Now() uint64
}

type fixedClock uint64

func (c fixedClock) Now() uint64 { return uint64(c) }

func register[P Param[P]](s *storage.Storage) *storage.Access {
	a := storage.NewAccess("test")
	Describe[P]().Register(s, a)
	return a
}

func TestConfig_AvailableOnlyWhenLocked(t *testing.T) {
	s := storage.New()
	register[Config[uint32]](s)

	var p Config[uint32]
	assert.False(t, p.Available(s))

	require.NoError(t, storage.SetConfig[uint32](s, 7))
	storage.LockConfig[uint32](s)
	require.True(t, p.Available(s))
	assert.Equal(t, uint32(7), p.Fetch(s).Get())
	assert.Equal(t, "Config<uint32>", p.String())
}

func TestConfigMut_WriteAndLock(t *testing.T) {
	s := storage.New()
	register[ConfigMut[uint32]](s)

	var p ConfigMut[uint32]
	require.True(t, p.Available(s))

	m := p.Fetch(s)
	require.NoError(t, m.Set(5))
	require.NoError(t, m.Update(func(v *uint32) { *v++ }))
	assert.Equal(t, uint32(6), m.Get())

	m.Lock()
	assert.True(t, m.Locked())
	assert.False(t, p.Available(s))
	require.ErrorIs(t, m.Set(9), storage.ErrConfigLocked)
	assert.Equal(t, uint32(6), m.Get())

	var reader Config[uint32]
	assert.True(t, reader.Available(s))
	assert.Equal(t, uint32(6), reader.Fetch(s).Get())
}

func TestConfigMut_SurvivesEagerLock(t *testing.T) {
	s := storage.New()
	register[ConfigMut[uint32]](s)
	register[Config[bool]](s)

	s.LockUnclaimedConfigs()

	var mut ConfigMut[uint32]
	var flag Config[bool]
	assert.True(t, mut.Available(s))
	assert.True(t, flag.Available(s))
	assert.False(t, flag.Fetch(s).Get())
}

func TestHob_ParsesRegisteredGUID(t *testing.T) {
	s := storage.New()
	register[Hob[bootCount]](s)

	var p Hob[bootCount]
	assert.False(t, p.Available(s))

	_, err := s.ParseGuidHob(bootCountGUID, []byte{3, 0, 0, 0})
	require.NoError(t, err)
	_, err = s.ParseGuidHob(bootCountGUID, []byte{4, 0, 0, 0})
	require.NoError(t, err)

	require.True(t, p.Available(s))
	h := p.Fetch(s)
	assert.Equal(t, uint32(3), h.Get().N)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []bootCount{{N: 3}, {N: 4}}, h.All())
	assert.Equal(t, "Hob", p.Kind())
}

func TestService_Handle(t *testing.T) {
	s := storage.New()
	var p Service[clock]
	assert.False(t, p.Available(s))

	require.NoError(t, s.AddService(storage.Provide[clock](fixedClock(42))))
	require.True(t, p.Available(s))
	assert.Equal(t, uint64(42), p.Fetch(s).Get().Now())
	assert.Equal(t, "Service<param.clock>", p.String())
}

func TestOption_AlwaysAvailable(t *testing.T) {
	s := storage.New()
	var p Option[Service[clock]]
	require.True(t, p.Available(s))

	none := p.Fetch(s)
	assert.False(t, none.Some())

	require.NoError(t, s.AddService(storage.Provide[clock](fixedClock(1))))
	some := p.Fetch(s)
	svc, ok := some.Get()
	require.True(t, ok)
	assert.Equal(t, uint64(1), svc.Get().Now())

	// The earlier fetch is a snapshot and does not change.
	assert.False(t, none.Some())
}

func TestTuple_Blocker(t *testing.T) {
	s := storage.New()
	register[Tuple3[Service[clock], Config[bool], Hob[bootCount]]](s)
	s.LockUnclaimedConfigs()

	var p Tuple3[Service[clock], Config[bool], Hob[bootCount]]
	assert.False(t, p.Available(s))

	kind, name := Blocking[Tuple3[Service[clock], Config[bool], Hob[bootCount]]](s)
	assert.Equal(t, "Service", kind)
	assert.Equal(t, "Service<param.clock>", name)

	require.NoError(t, s.AddService(storage.Provide[clock](fixedClock(1))))
	kind, _ = Blocking[Tuple3[Service[clock], Config[bool], Hob[bootCount]]](s)
	assert.Equal(t, "Hob", kind)

	_, err := s.ParseGuidHob(bootCountGUID, []byte{1, 0, 0, 0})
	require.NoError(t, err)
	require.True(t, p.Available(s))

	got := p.Fetch(s)
	assert.Equal(t, uint64(1), got.First.Get().Now())
	assert.False(t, got.Second.Get())
	assert.Equal(t, uint32(1), got.Third.Get().N)
	assert.Equal(t, "(Service<param.clock>, Config<bool>, Hob<param.bootCount>)", p.String())
}

func TestCommands_Deferred(t *testing.T) {
	s := storage.New()
	a := register[Commands](s)
	assert.True(t, a.Deferred())

	var p Commands
	cmds := p.Fetch(s)
	cmds.AddService(storage.Provide[clock](fixedClock(9)))
	cmds.AddConfig(storage.NewConfig("board-a"))

	assert.False(t, s.HasService(storage.TypeOf[clock]()), "commands must not apply before the queue is drained")
	require.NoError(t, s.ApplyDeferred())
	assert.True(t, s.HasService(storage.TypeOf[clock]()))

	v, ok := storage.ConfigValue[string](s)
	require.True(t, ok)
	assert.Equal(t, "board-a", v)
}

func TestStorage_Param(t *testing.T) {
	s := storage.New()
	register[Storage](s)

	var p Storage
	require.True(t, p.Available(s))
	assert.Same(t, s, p.Fetch(s).Storage)
}
