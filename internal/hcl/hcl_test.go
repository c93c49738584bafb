package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/guid"
)

func testCtx() context.Context {
	return ctxlog.Discard(context.Background())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const platformHCL = `
core {
  strict = true
  untrusted = ["4d37da42-3a0c-4eda-b9eb-bc0e1db4713b"]
}

hob_list = "hobs.bin"

firmware_volume "dxe.fv.zst" {
  base = "0xFFC00000"
}

firmware_volume "extra" {}

guid_hob "b7f0a5a6-1c2d-4e6f-8a9b-0c1d2e3f4a5b" {
  hex = "01 02 03 04"
}

config "platform" {
  boot_timeout = 5
  board        = "qemu"
}

component "console_banner" {
  enabled = false
}
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "platform.hcl", platformHCL)
	writeFile(t, dir, "more/options.hcl", `core { no_depex_requires_arch = true }`)

	model, conv, err := NewLoader().Load(testCtx(), dir)
	require.NoError(t, err)
	require.NotNil(t, conv)

	assert.True(t, model.Core.Strict)
	assert.True(t, model.Core.NoDepexRequiresArch)
	assert.Equal(t, []guid.GUID{guid.MustParse("4d37da42-3a0c-4eda-b9eb-bc0e1db4713b")}, model.Core.Untrusted)
	assert.Equal(t, filepath.Join(dir, "hobs.bin"), model.HobList)

	require.Len(t, model.Volumes, 2)
	assert.Equal(t, filepath.Join(dir, "dxe.fv.zst"), model.Volumes[0].Path)
	assert.True(t, model.Volumes[0].HasBase)
	assert.Equal(t, uint64(0xFFC00000), model.Volumes[0].Base)
	assert.False(t, model.Volumes[1].HasBase)

	require.Len(t, model.GuidHobs, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, model.GuidHobs[0].Data)

	require.Contains(t, model.Configs, "platform")
	assert.Len(t, model.Configs["platform"].Arguments, 2)

	assert.False(t, model.ComponentEnabled("console_banner"))
	assert.True(t, model.ComponentEnabled("anything_else"))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `core {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown block",
			files:   map[string]string{"a.hcl": `bogus "x" {}`},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "bad base",
			files:   map[string]string{"a.hcl": `firmware_volume "a.fv" { base = "high" }`},
			wantErr: "invalid base",
		},
		{
			name:    "bad guid",
			files:   map[string]string{"a.hcl": `guid_hob "not-a-guid" {}`},
			wantErr: "guid_hob",
		},
		{
			name: "two payloads",
			files: map[string]string{"a.hcl": `guid_hob "b7f0a5a6-1c2d-4e6f-8a9b-0c1d2e3f4a5b" {
  hex  = "00"
  text = "x"
}`},
			wantErr: "only one of",
		},
		{
			name: "duplicate config",
			files: map[string]string{
				"a.hcl": `config "platform" {}`,
				"b.hcl": `config "platform" {}`,
			},
			wantErr: `config "platform" defined more than once`,
		},
		{
			name: "duplicate hob list",
			files: map[string]string{
				"a.hcl": `hob_list = "a.bin"`,
				"b.hcl": `hob_list = "b.bin"`,
			},
			wantErr: "hob_list already set",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}
			_, _, err := NewLoader().Load(testCtx(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_EmptyDirectory(t *testing.T) {
	model, _, err := NewLoader().Load(testCtx(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, model.Volumes)
}

func parseArgs(t *testing.T, src string) map[string]hcl.Expression {
	t.Helper()
	f, diags := hclsyntax.ParseConfig([]byte(src), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), diags.Error())
	attrs, diags := f.Body.JustAttributes()
	require.False(t, diags.HasErrors(), diags.Error())
	out := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		out[name] = attr.Expr
	}
	return out
}

type platformConfig struct {
	BootTimeout uint32   `dxe:"boot_timeout"`
	Board       string   `dxe:"board"`
	Features    []string `dxe:"features"`
	Debug       bool
	Internal    string `dxe:"-"`
}

func TestDecodeBody(t *testing.T) {
	conv := NewConverter()

	t.Run("tagged and untagged fields", func(t *testing.T) {
		cfg := platformConfig{Board: "default", Internal: "keep"}
		args := parseArgs(t, `
boot_timeout = "7"
features     = ["net", "usb"]
debug        = true
`)
		require.NoError(t, conv.DecodeBody(testCtx(), &cfg, args))
		assert.Equal(t, uint32(7), cfg.BootTimeout)
		assert.Equal(t, "default", cfg.Board, "unset fields keep their value")
		assert.Equal(t, []string{"net", "usb"}, cfg.Features)
		assert.True(t, cfg.Debug)
		assert.Equal(t, "keep", cfg.Internal)
	})

	t.Run("unknown argument", func(t *testing.T) {
		var cfg platformConfig
		err := conv.DecodeBody(testCtx(), &cfg, parseArgs(t, `internal = "x"`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported argument "internal"`)
	})

	t.Run("type mismatch", func(t *testing.T) {
		var cfg platformConfig
		err := conv.DecodeBody(testCtx(), &cfg, parseArgs(t, `boot_timeout = "soon"`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boot_timeout")
	})

	t.Run("non-pointer target", func(t *testing.T) {
		err := conv.DecodeBody(testCtx(), platformConfig{}, nil)
		require.Error(t, err)
	})
}
