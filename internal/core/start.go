package core

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/extractor"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/hob"
	"github.com/vk/dxecore/internal/legacy"
	"github.com/vk/dxecore/internal/protocoldb"
	"github.com/vk/dxecore/internal/scheduler"
	"github.com/vk/dxecore/internal/storage"
)

// maxVolumeSize bounds firmware volume records read from memory.
const maxVolumeSize = 1 << 30

// Start runs the boot session to convergence. A returned error means the
// session could not run at all, or the context was cancelled; unit
// failures are reported, not returned.
func (c *Core) Start(ctx context.Context) (*Report, error) {
	if c.started {
		return nil, fmt.Errorf("session already started")
	}
	c.started = true
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Starting dispatch...", "components", len(c.components), "volumes", len(c.volumes))

	c.publishHandoff(ctx)

	observer := c.observers
	sched := scheduler.New(c.storage, c.store, observer)
	lock := scheduler.NewLockController(c.storage)
	c.legacy = legacy.New(legacy.Config{
		Storage:   c.storage,
		Protocols: c.protocols,
		Loader:    c.loader,
		Security:  c.security,
		Store:     c.store,
		Observer:  observer,
		Options:   c.legacyOpts,
	})

	for _, comp := range c.components {
		if err := sched.Add(ctx, comp); err != nil {
			return nil, err
		}
	}
	if err := c.feedGuidHobs(ctx); err != nil {
		return nil, err
	}
	if err := c.addVolumes(ctx); err != nil {
		return nil, err
	}
	lock.Start(ctx)

	r := &runner{core: c, sched: sched, lock: lock}
	c.runner = r
	loopErr := r.run(ctx)
	report, err := c.report(ctx, r)
	if err != nil {
		return nil, err
	}
	logger.Info("🏁 Dispatch finished.",
		"executed", len(report.Executed()),
		"failed", len(report.Failed()),
		"stuck", len(report.Stuck()),
		"iterations", report.Iterations,
	)
	return report, loopErr
}

// Trust releases a legacy file the security policy deferred. Call Resume to
// dispatch it.
func (c *Core) Trust(ctx context.Context, volume, file guid.GUID) error {
	if c.legacy == nil {
		return fmt.Errorf("session not started")
	}
	return c.legacy.Trust(ctx, volume, file)
}

// Resume runs the super-loop again after Schedule or Trust released more
// work, and returns a fresh report.
func (c *Core) Resume(ctx context.Context) (*Report, error) {
	if c.runner == nil {
		return nil, fmt.Errorf("session not started")
	}
	loopErr := c.runner.run(ctx)
	report, err := c.report(ctx, c.runner)
	if err != nil {
		return nil, err
	}
	return report, loopErr
}

type runner struct {
	core       *Core
	sched      *scheduler.Scheduler
	lock       *scheduler.LockController
	iterations int
}

func (r *runner) run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for {
		r.iterations++
		components, err := r.sched.Dispatch(ctx)
		if err != nil {
			return err
		}
		if _, advanced := r.lock.Advance(ctx); advanced {
			n, err := r.sched.Dispatch(ctx)
			if err != nil {
				return err
			}
			components += n
		}
		files, err := r.core.legacy.Dispatch(ctx)
		if err != nil {
			return err
		}
		logger.Debug("Super-loop iteration finished.", "iteration", r.iterations, "components", components, "files", files)
		if components == 0 && files == 0 {
			return nil
		}
	}
}

// publishHandoff registers the services every session provides unless the
// caller supplied its own.
func (c *Core) publishHandoff(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	provide := func(e storage.ServiceEntry) {
		if c.storage.HasService(e.Type()) {
			logger.Debug("Hand-off service overridden by caller.", "service", e.Name())
			return
		}
		if err := c.storage.AddService(e); err != nil {
			logger.Warn("Hand-off service not registered.", "service", e.Name(), "error", err)
		}
	}
	if c.hobList != nil {
		provide(storage.Provide[*hob.List](c.hobList))
	}
	provide(storage.Provide[*protocoldb.DB](c.protocols))
	provide(storage.Provide[extractor.SectionExtractor](c.extractors))
}

func (c *Core) feedGuidHobs(ctx context.Context) error {
	if c.hobList == nil {
		return nil
	}
	logger := ctxlog.FromContext(ctx)
	for _, ext := range c.hobList.GuidExtensions() {
		if !c.storage.HasHobParser(ext.Name) {
			logger.Debug("GUID HOB has no parser.", "guid", ext.Name.String())
			continue
		}
		n, err := c.storage.ParseGuidHob(ext.Name, ext.Data)
		if err != nil {
			return fmt.Errorf("parse GUID HOB %s: %w", ext.Name, err)
		}
		logger.Debug("GUID HOB parsed.", "guid", ext.Name.String(), "values", n)
	}
	return nil
}

func (c *Core) addVolumes(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for _, v := range c.volumes {
		if _, err := c.legacy.AddVolume(ctx, v.source, v.data); err != nil {
			return err
		}
	}
	if c.hobList == nil {
		return nil
	}
	seen := make(map[uint64]bool)
	for _, fv := range c.hobList.FirmwareVolumes() {
		if seen[fv.Base] {
			continue
		}
		seen[fv.Base] = true
		data, err := c.readVolume(fv)
		if err != nil {
			return err
		}
		if _, err := c.legacy.AddVolume(ctx, fmt.Sprintf("hob@%#x", fv.Base), data); err != nil {
			logger.Error("Firmware volume from hand-off list ignored.", "base", fmt.Sprintf("%#x", fv.Base), "error", err)
		}
	}
	return nil
}

func (c *Core) readVolume(fv hob.FirmwareVolume) ([]byte, error) {
	if c.memory == nil {
		return nil, fmt.Errorf("firmware volume at %#x but no memory image", fv.Base)
	}
	if fv.Length == 0 || fv.Length > maxVolumeSize {
		return nil, fmt.Errorf("firmware volume at %#x has length %#x", fv.Base, fv.Length)
	}
	data := make([]byte, fv.Length)
	n, err := c.memory.ReadAt(data, int64(fv.Base))
	if n < len(data) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read firmware volume at %#x: %w", fv.Base, err)
	}
	return data, nil
}
