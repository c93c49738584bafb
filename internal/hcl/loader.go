package hcl

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/dxecore/internal/config"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/fvsource"
	"github.com/vk/dxecore/internal/guid"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every description file under paths and merges them.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := findFiles(paths)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find platform files: %w", err)
	}
	model := config.NewModel()
	if len(files) == 0 {
		logger.Warn("No platform description files found.", "paths", paths)
		return model, NewConverter(), nil
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		var parsed fileSchema
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := l.merge(model, file, &parsed); err != nil {
			return nil, nil, fmt.Errorf("in %s: %w", file, err)
		}
		logger.Debug("Loaded platform description file.", "file", file)
	}

	logger.Info("Platform description loaded.",
		"files", len(files),
		"volumes", len(model.Volumes),
		"configs", len(model.Configs),
	)
	return model, NewConverter(), nil
}

func (l *Loader) merge(m *config.Model, file string, f *fileSchema) error {
	if f.Core != nil {
		if f.Core.NoDepexRequiresArch != nil && *f.Core.NoDepexRequiresArch {
			m.Core.NoDepexRequiresArch = true
		}
		if f.Core.Strict != nil && *f.Core.Strict {
			m.Core.Strict = true
		}
		for _, s := range f.Core.Untrusted {
			g, err := guid.Parse(s)
			if err != nil {
				return fmt.Errorf("core untrusted: %w", err)
			}
			m.Core.Untrusted = append(m.Core.Untrusted, g)
		}
	}

	if f.HobList != nil {
		if m.HobList != "" {
			return fmt.Errorf("hob_list already set to %s", m.HobList)
		}
		m.HobList = resolve(file, *f.HobList)
	}

	for _, v := range f.Volumes {
		vol := &config.Volume{Path: resolve(file, v.Path)}
		if v.Base != nil {
			base, err := strconv.ParseUint(*v.Base, 0, 64)
			if err != nil {
				return fmt.Errorf("firmware_volume %q: invalid base %q: %w", v.Path, *v.Base, err)
			}
			vol.Base, vol.HasBase = base, true
		}
		m.Volumes = append(m.Volumes, vol)
	}

	for _, h := range f.GuidHobs {
		g, err := guid.Parse(h.Name)
		if err != nil {
			return fmt.Errorf("guid_hob: %w", err)
		}
		data, err := guidHobData(file, h)
		if err != nil {
			return fmt.Errorf("guid_hob %q: %w", h.Name, err)
		}
		m.GuidHobs = append(m.GuidHobs, &config.GuidHob{Name: g, Data: data})
	}

	for _, c := range f.Configs {
		if _, exists := m.Configs[c.Name]; exists {
			return fmt.Errorf("config %q defined more than once", c.Name)
		}
		attrs, diags := c.Body.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("config %q: %w", c.Name, diags)
		}
		block := &config.ConfigBlock{Name: c.Name, Arguments: make(map[string]hcl.Expression, len(attrs))}
		for name, attr := range attrs {
			block.Arguments[name] = attr.Expr
		}
		m.Configs[c.Name] = block
	}

	for _, c := range f.Components {
		if _, exists := m.Components[c.Name]; exists {
			return fmt.Errorf("component %q defined more than once", c.Name)
		}
		enabled := true
		if c.Enabled != nil {
			enabled = *c.Enabled
		}
		m.Components[c.Name] = &config.ComponentSettings{Name: c.Name, Enabled: enabled}
	}
	return nil
}

func guidHobData(file string, h *guidHobBlock) ([]byte, error) {
	set := 0
	for _, p := range []*string{h.Hex, h.Text, h.File} {
		if p != nil {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("only one of hex, text or file may be set")
	}
	switch {
	case h.Hex != nil:
		clean := strings.Join(strings.Fields(*h.Hex), "")
		data, err := hex.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("invalid hex payload: %w", err)
		}
		return data, nil
	case h.Text != nil:
		return []byte(*h.Text), nil
	case h.File != nil:
		return fvsource.ReadFile(resolve(file, *h.File))
	default:
		return nil, nil
	}
}
