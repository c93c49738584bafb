package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/app"
)

func TestParse(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, exit, err := Parse([]string{
		"-fv", "a.fv", "-fv", "dir",
		"-platform", "base.hcl",
		"-strict", "-color", "never",
		"-log-level", "DEBUG",
		"-metrics-file", "m.prom",
		"board.hcl",
	}, out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, []string{"base.hcl", "board.hcl"}, cfg.PlatformPaths)
	assert.Equal(t, []string{"a.fv", "dir"}, cfg.Volumes)
	assert.True(t, cfg.Strict)
	assert.False(t, cfg.Colored)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "m.prom", cfg.MetricsFile)
}

func TestParse_Exits(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantExit bool
		wantCode int
		wantMsg  string
	}{
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "nothing to boot", args: nil, wantExit: true},
		{name: "unknown flag", args: []string{"-bogus"}, wantCode: 2, wantMsg: "flag provided but not defined"},
		{name: "bad format", args: []string{"-log-format", "xml", "p.hcl"}, wantCode: 2, wantMsg: "invalid log-format"},
		{name: "bad level", args: []string{"-log-level", "loud", "p.hcl"}, wantCode: 2, wantMsg: "invalid log-level"},
		{name: "bad color", args: []string{"-color", "pink", "p.hcl"}, wantCode: 2, wantMsg: "invalid color"},
		{name: "bad port", args: []string{"-healthcheck-port", "-1", "p.hcl"}, wantCode: 2, wantMsg: "invalid healthcheck port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tt.args, out)
			assert.Nil(t, cfg)
			assert.Equal(t, tt.wantExit, exit)
			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tt.wantCode, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.wantMsg)
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(&ExitError{Code: 2}))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("%w: 1 failed", app.ErrUnclean)))
	assert.Equal(t, 3, ExitCode(errors.New("boom")))
}
