package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/dxecore/internal/core"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/extractor"
	"github.com/vk/dxecore/internal/fvsource"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/hob"
	"github.com/vk/dxecore/internal/legacy"
	"github.com/vk/dxecore/internal/monitor"
)

// handoffVersion is the PHIT version written into synthesized lists.
const handoffVersion = 0x0009

// buildCore assembles a boot session from the registry and the platform
// description. The returned closers release observer connections.
func (a *App) buildCore(ctx context.Context) (*core.Core, []io.Closer, error) {
	logger := ctxlog.FromContext(ctx)
	var closers []io.Closer

	var opts []core.Option
	if a.config.NoDepexRequiresArch || a.model.Core.NoDepexRequiresArch {
		opts = append(opts, core.WithNoDepexRequiresArch())
	}
	if len(a.model.Core.Untrusted) > 0 {
		opts = append(opts, core.WithSecurity(untrustedPolicy(a.model.Core.Untrusted)))
	}
	if a.metrics != nil {
		opts = append(opts, core.WithObserver(a.metrics))
	}
	if a.config.MonitorURL != "" {
		sio, err := monitor.DialSocketIO(ctx, monitor.SocketIOOptions{URL: a.config.MonitorURL})
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, core.WithObserver(sio))
		closers = append(closers, sio)
	}
	c := core.New(opts...)

	for _, e := range a.registry.Services() {
		c.WithService(e)
	}
	a.registry.SectionExtractors(func(algorithm guid.GUID, ex extractor.SectionExtractor) {
		c.WithSectionExtractor(algorithm, ex)
	})
	for _, d := range a.registry.Drivers() {
		c.WithDriver(d.File, d.Fn)
	}

	for _, b := range a.registry.Configs() {
		value := b.New()
		if block, ok := a.model.Configs[b.Name]; ok {
			if err := a.converter.DecodeBody(ctx, value, block.Arguments); err != nil {
				return nil, closers, fmt.Errorf("config %q: %w", b.Name, err)
			}
		}
		c.WithConfig(b.Entry(value))
	}

	for _, comp := range a.registry.Components() {
		if !a.model.ComponentEnabled(comp.Name()) {
			logger.Info("Component disabled by platform description.", "component", comp.Name())
			continue
		}
		c.WithComponent(comp)
	}

	if err := a.loadMemory(ctx, c); err != nil {
		return nil, closers, err
	}
	if err := a.loadVolumes(ctx, c); err != nil {
		return nil, closers, err
	}
	return c, closers, nil
}

// loadMemory hands the session its hand-off list. A list file is used as
// is; otherwise one is synthesized from based volumes and guid_hob blocks.
func (a *App) loadMemory(ctx context.Context, c *core.Core) error {
	logger := ctxlog.FromContext(ctx)
	mem := &fvsource.Memory{}

	type placed struct {
		base   uint64
		length uint64
	}
	var volumes []placed
	for _, v := range a.model.Volumes {
		if !v.HasBase {
			continue
		}
		data, err := fvsource.ReadFile(v.Path)
		if err != nil {
			return err
		}
		if err := mem.Load(v.Base, data); err != nil {
			return fmt.Errorf("firmware volume %s: %w", v.Path, err)
		}
		volumes = append(volumes, placed{base: v.Base, length: uint64(len(data))})
		logger.Debug("Firmware volume placed in memory.", "path", v.Path, "base", fmt.Sprintf("%#x", v.Base))
	}

	hobPath := a.model.HobList
	if a.config.HobList != "" {
		hobPath = a.config.HobList
	}
	if hobPath != "" {
		list, err := fvsource.ReadFile(hobPath)
		if err != nil {
			return err
		}
		if len(a.model.GuidHobs) > 0 {
			logger.Warn("guid_hob blocks ignored, a hand-off list file is in use.", "hob_list", hobPath)
		}
		return c.InitMemory(list, mem)
	}

	if len(volumes) == 0 && len(a.model.GuidHobs) == 0 {
		return nil
	}
	b := hob.NewBuilder().Handoff(hob.Handoff{Version: handoffVersion})
	for _, v := range volumes {
		b.FirmwareVolume(v.base, v.length)
	}
	for _, h := range a.model.GuidHobs {
		b.GuidExtension(h.Name, h.Data)
	}
	logger.Debug("Hand-off list synthesized.", "volumes", len(volumes), "guid_hobs", len(a.model.GuidHobs))
	return c.InitMemory(b.Bytes(), mem)
}

func (a *App) loadVolumes(ctx context.Context, c *core.Core) error {
	logger := ctxlog.FromContext(ctx)
	var roots []string
	for _, v := range a.model.Volumes {
		if !v.HasBase {
			roots = append(roots, v.Path)
		}
	}
	roots = append(roots, a.config.Volumes...)

	for _, root := range roots {
		files, err := fvsource.FindVolumes(root)
		if err != nil {
			return fmt.Errorf("failed to find firmware volumes in %s: %w", root, err)
		}
		if len(files) == 0 {
			logger.Warn("No firmware volume files found.", "path", root)
		}
		for _, file := range files {
			data, err := fvsource.ReadFile(file)
			if err != nil {
				return err
			}
			c.WithFirmwareVolume(file, data)
			logger.Debug("Firmware volume queued.", "path", file, "size", len(data))
		}
	}
	return nil
}

// untrustedPolicy refuses the listed files with a security violation, which
// defers them instead of failing them.
func untrustedPolicy(files []guid.GUID) legacy.SecurityPolicy {
	untrusted := make(map[guid.GUID]bool, len(files))
	for _, g := range files {
		untrusted[g] = true
	}
	return legacy.SecurityFunc(func(_ context.Context, img *legacy.Image) error {
		if untrusted[img.File] {
			return efierr.Errorf(efierr.SecurityViolation, "%s is not trusted by the platform", img)
		}
		return nil
	})
}

