package legacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/depex"
	"github.com/vk/dxecore/internal/dispatchstore"
	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/extractor"
	"github.com/vk/dxecore/internal/ffs"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/monitor"
	"github.com/vk/dxecore/internal/protocoldb"
	"github.com/vk/dxecore/internal/storage"
	"github.com/vk/dxecore/internal/unitid"
)

var rejectedTypes = map[ffs.FileType]bool{
	ffs.FileTypeCombinedPeimDriver: true,
	ffs.FileTypeMm:                 true,
	ffs.FileTypeCombinedMmDxe:      true,
	ffs.FileTypeMmCore:             true,
}

// Options tune dependency evaluation.
type Options struct {
	// NoDepexRequiresArch makes drivers without a dependency expression wait
	// for every architectural protocol.
	NoDepexRequiresArch bool
}

// Config wires a Dispatcher.
type Config struct {
	Storage   *storage.Storage
	Protocols *protocoldb.DB
	Loader    ImageLoader
	// Security may be nil, in which case every image is trusted.
	Security SecurityPolicy
	Store    dispatchstore.Store
	Observer monitor.Observer
	Options  Options
}

type file struct {
	id     unitid.ID
	volume guid.GUID
	file   *ffs.File

	prepared bool
	leaves   []*ffs.Section
	name     string
	depex    *depex.Depex

	untrusted bool
	trusted   bool
	reason    string
}

// Dispatcher is the legacy file dispatch loop.
type Dispatcher struct {
	cfg     Config
	volumes map[string]bool
	ids     map[unitid.ID]bool
	pending []*file
	rounds  int
}

// New creates a dispatcher. Storage, Protocols, Loader and Store are
// required.
func New(cfg Config) *Dispatcher {
	if cfg.Observer == nil {
		cfg.Observer = monitor.Multi{}
	}
	return &Dispatcher{cfg: cfg, volumes: make(map[string]bool), ids: make(map[unitid.ID]bool)}
}

// unitID names a file. A GUID already seen in another volume is qualified
// with the volume name, and with a counter if that is taken too.
func (d *Dispatcher) unitID(ctx context.Context, kind unitid.Kind, name, volume guid.GUID) unitid.ID {
	id := unitid.ForFile(kind, name)
	if d.ids[id] {
		qualified := unitid.ForFileIn(kind, name, volume)
		for n := 2; d.ids[qualified]; n++ {
			qualified.Name = fmt.Sprintf("%s@%s~%d", name, volume, n)
		}
		ctxlog.FromContext(ctx).Warn("File GUID already seen in another volume.", "file", name, "volume", volume, "unit", qualified.String())
		id = qualified
	}
	d.ids[id] = true
	return id
}

// Rounds returns how many rounds have run in total.
func (d *Dispatcher) Rounds() int { return d.rounds }

// AddVolume parses a firmware volume and queues its eligible files. source
// identifies the volume; adding the same source twice is a no-op. It returns
// how many files were queued.
func (d *Dispatcher) AddVolume(ctx context.Context, source string, data []byte) (int, error) {
	logger := ctxlog.FromContext(ctx)
	if d.volumes[source] {
		logger.Debug("Firmware volume already added.", "source", source)
		return 0, nil
	}
	v, err := ffs.ParseVolume(data)
	if err != nil {
		return 0, fmt.Errorf("volume %s: %w", source, err)
	}
	d.volumes[source] = true
	return d.queueFiles(ctx, source, v, v.Name)
}

func (d *Dispatcher) queueFiles(ctx context.Context, source string, v *ffs.Volume, name guid.GUID) (int, error) {
	logger := ctxlog.FromContext(ctx)
	queued := 0
	for _, f := range v.Files {
		var kind unitid.Kind
		switch {
		case f.Type == ffs.FileTypeDriver:
			kind = unitid.Driver
		case f.Type == ffs.FileTypeFirmwareVolumeImage:
			kind = unitid.Volume
		case rejectedTypes[f.Type]:
			id := d.unitID(ctx, unitid.Driver, f.Name, name)
			logger.Debug("File type rejected.", "file", f.Name, "type", f.Type.String())
			if err := d.cfg.Store.SetStatus(ctx, id, dispatchstore.StatusRejected); err != nil {
				return queued, err
			}
			if err := d.cfg.Store.SetReason(ctx, id, "file type "+f.Type.String()+" is never dispatched"); err != nil {
				return queued, err
			}
			d.cfg.Observer.Observe(ctx, monitor.Event{Unit: id, Status: dispatchstore.StatusRejected, Round: d.rounds})
			continue
		default:
			continue
		}
		u := &file{id: d.unitID(ctx, kind, f.Name, name), volume: name, file: f}
		d.pending = append(d.pending, u)
		if err := d.cfg.Store.SetStatus(ctx, u.id, dispatchstore.StatusPending); err != nil {
			return queued, err
		}
		queued++
	}
	logger.Info("Firmware volume added.", "source", source, "files", len(v.Files), "queued", queued)
	return queued, nil
}

// Dispatch runs rounds until one dispatches nothing. The context is only
// checked between rounds.
func (d *Dispatcher) Dispatch(ctx context.Context) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := d.Round(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			ctxlog.FromContext(ctx).Debug("Legacy dispatch converged.", "dispatched", total, "pending", len(d.pending))
			return total, nil
		}
	}
}

// Round evaluates every pending file once and returns how many left the
// queue.
func (d *Dispatcher) Round(ctx context.Context) (int, error) {
	d.rounds++
	ctxlog.FromContext(ctx).Debug("Legacy round started.", "round", d.rounds, "pending", len(d.pending))

	done := make(map[*file]bool)
	progress := 0
	var firstErr error

	// Snapshot: volumes expanded this round queue their files for the next.
	queue := d.pending
	for _, u := range queue {
		if u.prepared {
			continue
		}
		if err := d.prepare(u); err != nil {
			done[u] = true
			progress++
			if ferr := d.finish(ctx, u, err); ferr != nil && firstErr == nil {
				firstErr = ferr
			}
		}
	}
	for _, u := range queue {
		if done[u] {
			continue
		}
		ready, reason := d.ready(u)
		if !ready {
			d.block(ctx, u, reason)
			continue
		}
		n, err := d.dispatch(ctx, u, done)
		progress += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	remaining := make([]*file, 0, len(d.pending))
	for _, u := range d.pending {
		if !done[u] {
			remaining = append(remaining, u)
		}
	}
	d.pending = remaining
	return progress, firstErr
}

func (d *Dispatcher) extractor() ffs.Extractor {
	if ex, ok := storage.LookupService[extractor.SectionExtractor](d.cfg.Storage); ok && ex != nil {
		return ex
	}
	return extractor.Default()
}

func (d *Dispatcher) prepare(u *file) error {
	leaves, err := u.file.Leaves(d.extractor())
	if err != nil {
		return fmt.Errorf("extract sections: %w", err)
	}
	u.leaves = leaves
	u.name, _ = ffs.UIName(leaves)
	for _, s := range leaves {
		if s.Type == ffs.SectionDxeDepex {
			u.depex = depex.Parse(s.Data)
			break
		}
	}
	if u.depex == nil && u.file.Type == ffs.FileTypeDriver && d.cfg.Options.NoDepexRequiresArch {
		u.depex = depex.Parse(depex.AllOf(protocoldb.ArchGUIDs()...))
	}
	u.prepared = true
	return nil
}

func (d *Dispatcher) ready(u *file) (bool, string) {
	if u.untrusted && !u.trusted {
		return false, "security: waiting for Trust"
	}
	if u.depex == nil {
		return true, ""
	}
	if op, target, ok := u.depex.Association(); ok {
		return false, fmt.Sprintf("%s %s", op, target)
	}
	if u.depex.IsSOR() {
		return false, "SOR: waiting for Schedule"
	}
	if !u.depex.Eval(d.cfg.Protocols) {
		return false, "depex unsatisfied: " + u.depex.String()
	}
	return true, ""
}

// dispatch starts u together with the drivers associated with it and
// returns how many left the queue.
func (d *Dispatcher) dispatch(ctx context.Context, u *file, done map[*file]bool) (int, error) {
	progress := 0
	var firstErr error
	record := func(n int, err error) {
		progress += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, b := range d.associated(depex.OpBefore, u.file.Name, done) {
		record(d.dispatch(ctx, b, done))
	}
	started, err := d.start(ctx, u)
	if err != nil {
		record(0, err)
	}
	if !started {
		return progress, firstErr
	}
	done[u] = true
	progress++
	for _, a := range d.associated(depex.OpAfter, u.file.Name, done) {
		record(d.dispatch(ctx, a, done))
	}
	return progress, firstErr
}

func (d *Dispatcher) associated(op depex.Opcode, target guid.GUID, done map[*file]bool) []*file {
	var out []*file
	for _, u := range d.pending {
		if done[u] || !u.prepared || u.depex == nil {
			continue
		}
		if o, g, ok := u.depex.Association(); ok && o == op && g == target {
			out = append(out, u)
		}
	}
	return out
}

// start authenticates and runs u. It reports false when the security policy
// deferred the file.
func (d *Dispatcher) start(ctx context.Context, u *file) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	img := &Image{Volume: u.volume, File: u.file.Name, Name: u.name, Sections: u.leaves}

	if d.cfg.Security != nil && !u.trusted {
		if err := d.cfg.Security.Authenticate(ctx, img); err != nil {
			if errors.Is(err, efierr.SecurityViolation) {
				u.untrusted = true
				logger.Warn("File deferred by security policy.", "file", img.String(), "error", err)
				return false, d.deferFile(ctx, u)
			}
			return true, d.finish(ctx, u, fmt.Errorf("authenticate: %w", err))
		}
	}

	var runErr error
	switch u.file.Type {
	case ffs.FileTypeFirmwareVolumeImage:
		runErr = d.expandVolume(ctx, u)
	default:
		env := &Env{Image: img, unit: u.id, db: d.cfg.Protocols, storage: d.cfg.Storage}
		runErr = d.cfg.Loader.Start(ctx, img, env)
		if err := d.cfg.Storage.ApplyDeferred(); err != nil {
			logger.Warn("Deferred storage commands failed.", "file", img.String(), "error", err)
		}
	}
	return true, d.finish(ctx, u, runErr)
}

func (d *Dispatcher) expandVolume(ctx context.Context, u *file) error {
	for _, s := range u.leaves {
		if s.Type != ffs.SectionFirmwareVolumeImage {
			continue
		}
		source := u.id.String()
		if d.volumes[source] {
			return nil
		}
		v, err := ffs.ParseVolume(s.Data)
		if err != nil {
			return fmt.Errorf("nested volume: %w", err)
		}
		d.volumes[source] = true
		name := u.file.Name
		if v.HasName {
			name = v.Name
		}
		_, err = d.queueFiles(ctx, source, v, name)
		return err
	}
	return efierr.Errorf(efierr.NotFound, "no FIRMWARE_VOLUME_IMAGE section")
}

func (d *Dispatcher) block(ctx context.Context, u *file, reason string) {
	if u.reason == reason {
		return
	}
	u.reason = reason
	if err := d.cfg.Store.SetReason(ctx, u.id, reason); err != nil {
		ctxlog.FromContext(ctx).Warn("Could not record reason.", "unit", u.id.String(), "error", err)
	}
	d.cfg.Observer.Observe(ctx, monitor.Event{Unit: u.id, Status: dispatchstore.StatusPending, Round: d.rounds, Reason: reason})
}

func (d *Dispatcher) deferFile(ctx context.Context, u *file) error {
	u.reason = "security: waiting for Trust"
	if err := d.cfg.Store.SetStatus(ctx, u.id, dispatchstore.StatusDeferred); err != nil {
		return err
	}
	if err := d.cfg.Store.SetReason(ctx, u.id, u.reason); err != nil {
		return err
	}
	d.cfg.Observer.Observe(ctx, monitor.Event{Unit: u.id, Status: dispatchstore.StatusDeferred, Round: d.rounds, Reason: u.reason})
	return nil
}

// finish records the outcome of a file that left the queue. Only store
// failures are returned.
func (d *Dispatcher) finish(ctx context.Context, u *file, runErr error) error {
	logger := ctxlog.FromContext(ctx)
	u.reason = ""
	if err := d.cfg.Store.SetReason(ctx, u.id, ""); err != nil {
		return err
	}
	status := dispatchstore.StatusExecuted
	if runErr != nil {
		status = dispatchstore.StatusFailed
		logger.Error("Legacy file failed.", "unit", u.id.String(), "name", u.name, "round", d.rounds, "error", runErr)
		if err := d.cfg.Store.SetError(ctx, u.id, runErr); err != nil {
			return err
		}
	} else {
		logger.Info("Legacy file dispatched.", "unit", u.id.String(), "name", u.name, "round", d.rounds)
	}
	if err := d.cfg.Store.SetStatus(ctx, u.id, status); err != nil {
		return err
	}
	d.cfg.Observer.Observe(ctx, monitor.Event{Unit: u.id, Status: status, Round: d.rounds, Err: runErr})
	return nil
}

func (d *Dispatcher) find(volume, name guid.GUID) *file {
	for _, u := range d.pending {
		if u.volume == volume && u.file.Name == name {
			return u
		}
	}
	return nil
}

// Schedule releases a SOR driver so its dependency expression is evaluated
// from the next round on.
func (d *Dispatcher) Schedule(volume, name guid.GUID) error {
	u := d.find(volume, name)
	if u == nil || !u.prepared || u.depex == nil || !u.depex.IsSOR() {
		return efierr.Errorf(efierr.NotFound, "no SOR file %s in volume %s", name, volume)
	}
	u.depex.Schedule()
	return nil
}

// Trust lets a file the security policy deferred load on the next round.
func (d *Dispatcher) Trust(ctx context.Context, volume, name guid.GUID) error {
	u := d.find(volume, name)
	if u == nil || !u.untrusted {
		return efierr.Errorf(efierr.NotFound, "no untrusted file %s in volume %s", name, volume)
	}
	u.trusted = true
	u.reason = ""
	return d.cfg.Store.SetStatus(ctx, u.id, dispatchstore.StatusPending)
}

// PendingFile describes a file discovered but not dispatched.
type PendingFile struct {
	ID     unitid.ID
	Volume guid.GUID
	Name   string
	Depex  string
	Reason string
}

// Pending lists the files still waiting, in volume order.
func (d *Dispatcher) Pending() []PendingFile {
	out := make([]PendingFile, 0, len(d.pending))
	for _, u := range d.pending {
		p := PendingFile{ID: u.id, Volume: u.volume, Name: u.name, Reason: u.reason}
		if u.depex != nil {
			p.Depex = u.depex.String()
		}
		out = append(out, p)
	}
	return out
}
