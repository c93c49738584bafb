// Package platform owns the board settings every other module reads. The
// settings start from the platform description and are finalized by one
// component before the configuration lock.
package platform

import (
	"context"
	"strings"

	"github.com/vk/dxecore/internal/component"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/param"
	"github.com/vk/dxecore/internal/registry"
)

// ConfigName is the `config` block that sets Settings.
const ConfigName = "platform"

// Settings describes the board.
type Settings struct {
	Board       string   `dxe:"board"`
	BootTimeout uint32   `dxe:"boot_timeout"`
	Features    []string `dxe:"features"`
	Finalized   bool     `dxe:"-"`
}

// HasFeature reports whether name is enabled.
func (s Settings) HasFeature(name string) bool {
	for _, f := range s.Features {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// Defaults is used when the platform description has no platform block.
var Defaults = Settings{Board: "generic", BootTimeout: 3}

// Module registers the settings and the components that own them.
type Module struct{}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	registry.RegisterConfig(r, ConfigName, Defaults)
	r.RegisterComponent(component.New1("platform_finalize", Finalize))
	r.RegisterComponent(component.New1("platform_summary", Summary))
}

// Finalize normalizes the settings and locks them, so readers run in the
// same round.
func Finalize(ctx context.Context, cfg param.ConfigMut[Settings]) error {
	err := cfg.Update(func(s *Settings) {
		if s.Board == "" {
			s.Board = Defaults.Board
		}
		features := make([]string, 0, len(s.Features))
		for _, f := range s.Features {
			features = append(features, strings.ToLower(strings.TrimSpace(f)))
		}
		s.Features = features
		s.Finalized = true
	})
	if err != nil {
		return err
	}
	cfg.Lock()
	ctxlog.FromContext(ctx).Debug("Platform settings finalized.", "board", cfg.Get().Board)
	return nil
}

// Summary logs the locked settings.
func Summary(ctx context.Context, cfg param.Config[Settings]) error {
	s := cfg.Get()
	ctxlog.FromContext(ctx).Info("Platform settings.",
		"board", s.Board,
		"boot_timeout", s.BootTimeout,
		"features", s.Features,
		"finalized", s.Finalized,
	)
	return nil
}
