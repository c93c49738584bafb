package registry

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/component"
	"github.com/vk/dxecore/internal/config"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/extractor"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/legacy"
	"github.com/vk/dxecore/internal/storage"
)

type bootOptions struct {
	Timeout uint32 `dxe:"timeout"`
	Board   string `dxe:"board"`
}

type greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

type testModule struct{}

func (testModule) Register(r *Registry) {
	RegisterConfig(r, "boot", bootOptions{Timeout: 3})
	r.RegisterComponent(component.New0("noop", func(context.Context) error { return nil }))
	r.RegisterDriver(guid.MustParse("11111111-2222-3333-4444-555555555555"), "stub",
		func(context.Context, *legacy.Env) error { return nil })
	r.RegisterService(storage.Provide[greeter](english{}))
	r.RegisterSectionExtractor(guid.MustParse("aaaaaaaa-2222-3333-4444-555555555555"), extractor.Crc32{})
}

func modelWith(t *testing.T, configs map[string]string, components ...string) *config.Model {
	t.Helper()
	m := config.NewModel()
	for name, src := range configs {
		f, diags := hclsyntax.ParseConfig([]byte(src), name+".hcl", hcl.Pos{Line: 1, Column: 1})
		require.False(t, diags.HasErrors(), diags.Error())
		attrs, diags := f.Body.JustAttributes()
		require.False(t, diags.HasErrors(), diags.Error())
		block := &config.ConfigBlock{Name: name, Arguments: map[string]hcl.Expression{}}
		for n, a := range attrs {
			block.Arguments[n] = a.Expr
		}
		m.Configs[name] = block
	}
	for _, c := range components {
		m.Components[c] = &config.ComponentSettings{Name: c}
	}
	return m
}

func TestRegisterModules(t *testing.T) {
	r := New()
	r.RegisterModules(testModule{})

	require.Len(t, r.Components(), 1)
	assert.True(t, r.HasComponent("noop"))
	require.Len(t, r.Drivers(), 1)
	assert.Equal(t, "stub", r.Drivers()[0].Name)
	require.Len(t, r.Services(), 1)

	var algorithms []guid.GUID
	r.SectionExtractors(func(g guid.GUID, _ extractor.SectionExtractor) { algorithms = append(algorithms, g) })
	assert.Len(t, algorithms, 1)

	b, ok := r.Config("boot")
	require.True(t, ok)
	ptr := b.New()
	assert.Equal(t, bootOptions{Timeout: 3}, *ptr.(*bootOptions))
	ptr.(*bootOptions).Timeout = 9
	assert.Equal(t, bootOptions{Timeout: 3}, *b.New().(*bootOptions), "New returns a fresh copy")

	s := storage.New()
	require.NoError(t, s.AddConfig(b.Entry(ptr)))
	v, ok := storage.ConfigValue[bootOptions](s)
	require.True(t, ok)
	assert.Equal(t, uint32(9), v.Timeout)
}

func TestRegister_DuplicatesPanic(t *testing.T) {
	tests := []struct {
		name string
		fn   func(r *Registry)
	}{
		{"component", func(r *Registry) {
			r.RegisterComponent(component.New0("noop", func(context.Context) error { return nil }))
		}},
		{"config name", func(r *Registry) { RegisterConfig(r, "boot", struct{ X int }{}) }},
		{"config type", func(r *Registry) { RegisterConfig(r, "other", bootOptions{}) }},
		{"driver", func(r *Registry) {
			r.RegisterDriver(guid.MustParse("11111111-2222-3333-4444-555555555555"), "again", nil)
		}},
		{"service", func(r *Registry) { r.RegisterService(storage.Provide[greeter](english{})) }},
		{"extractor", func(r *Registry) {
			r.RegisterSectionExtractor(guid.MustParse("aaaaaaaa-2222-3333-4444-555555555555"), extractor.Crc32{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			r.RegisterModules(testModule{})
			assert.Panics(t, func() { tt.fn(r) })
		})
	}
}

func TestValidate(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	r := New()
	r.RegisterModules(testModule{})

	t.Run("valid", func(t *testing.T) {
		m := modelWith(t, map[string]string{"boot": `timeout = 10`}, "noop")
		assert.NoError(t, r.Validate(ctx, m))
	})

	t.Run("all problems reported", func(t *testing.T) {
		m := modelWith(t, map[string]string{
			"boot":    "timeout = \"soon\"\ncolour = \"red\"",
			"missing": `a = 1`,
		}, "ghost")
		err := r.Validate(ctx, m)
		require.Error(t, err)
		msg := err.Error()
		assert.Contains(t, msg, "argument 'colour' is not a field")
		assert.Contains(t, msg, "argument 'timeout': type mismatch")
		assert.Contains(t, msg, "config 'missing': no module registers")
		assert.Contains(t, msg, "component 'ghost': no module registers")
	})
}
