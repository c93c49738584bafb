package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/dxecore/internal/guid"
)

// Model is the merged platform description.
type Model struct {
	Core       Core
	HobList    string // Path of a raw hand-off list; empty to synthesize one
	Volumes    []*Volume
	GuidHobs   []*GuidHob
	Configs    map[string]*ConfigBlock
	Components map[string]*ComponentSettings
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Configs:    make(map[string]*ConfigBlock),
		Components: make(map[string]*ComponentSettings),
	}
}

// Core holds the session options.
type Core struct {
	NoDepexRequiresArch bool
	Strict              bool
	Untrusted           []guid.GUID // Legacy files the host security policy refuses
}

// Volume is one firmware volume input. A volume with a base address is
// placed in the memory image and described by a hand-off record; others are
// handed to the dispatcher directly.
type Volume struct {
	Path    string
	Base    uint64
	HasBase bool
}

// GuidHob is a GUID extension record added to a synthesized hand-off list.
type GuidHob struct {
	Name guid.GUID
	Data []byte
}

// ConfigBlock is the raw body of a `config "<name>"` block.
type ConfigBlock struct {
	Name      string
	Arguments map[string]hcl.Expression
}

// ComponentSettings toggles one registered component.
type ComponentSettings struct {
	Name    string
	Enabled bool
}

// ComponentEnabled reports whether the named component should be added to
// the session. Components not mentioned are enabled.
func (m *Model) ComponentEnabled(name string) bool {
	s, ok := m.Components[name]
	return !ok || s.Enabled
}
