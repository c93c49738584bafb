package core

import (
	"context"
	"fmt"
	"io"

	"github.com/gookit/color"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/dispatchstore"
	"github.com/vk/dxecore/internal/legacy"
	"github.com/vk/dxecore/internal/protocoldb"
)

// Report is the end-of-boot audit.
type Report struct {
	Units           []dispatchstore.Record
	PendingFiles    []legacy.PendingFile
	MissingArch     []protocoldb.ArchProtocol
	Iterations      int
	ComponentRounds int
	LegacyRounds    int
}

func (c *Core) report(ctx context.Context, r *runner) (*Report, error) {
	records, err := c.store.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("read dispatch records: %w", err)
	}
	rep := &Report{
		Units:           records,
		PendingFiles:    c.legacy.Pending(),
		MissingArch:     c.protocols.MissingArch(),
		Iterations:      r.iterations,
		ComponentRounds: r.sched.Rounds(),
		LegacyRounds:    c.legacy.Rounds(),
	}
	if len(rep.MissingArch) > 0 {
		names := make([]string, len(rep.MissingArch))
		for i, a := range rep.MissingArch {
			names[i] = a.Name
		}
		ctxlog.FromContext(ctx).Warn("Architectural protocols missing after dispatch.", "protocols", names)
	}
	return rep, nil
}

func (r *Report) filter(match func(dispatchstore.Status) bool) []dispatchstore.Record {
	var out []dispatchstore.Record
	for _, u := range r.Units {
		if match(u.Status) {
			out = append(out, u)
		}
	}
	return out
}

// Executed lists units that ran successfully.
func (r *Report) Executed() []dispatchstore.Record {
	return r.filter(func(s dispatchstore.Status) bool { return s == dispatchstore.StatusExecuted })
}

// Failed lists units that ran, or tried to, and failed.
func (r *Report) Failed() []dispatchstore.Record {
	return r.filter(func(s dispatchstore.Status) bool { return s == dispatchstore.StatusFailed })
}

// Stuck lists units still waiting when the session converged.
func (r *Report) Stuck() []dispatchstore.Record {
	return r.filter(func(s dispatchstore.Status) bool {
		return s == dispatchstore.StatusPending || s == dispatchstore.StatusDeferred
	})
}

// Rejected lists legacy files of a type that is never dispatched.
func (r *Report) Rejected() []dispatchstore.Record {
	return r.filter(func(s dispatchstore.Status) bool { return s == dispatchstore.StatusRejected })
}

// Clean reports whether nothing failed or got stuck.
func (r *Report) Clean() bool {
	return len(r.Failed()) == 0 && len(r.Stuck()) == 0
}

// Print writes a human readable report. Colors are used only when colored is
// set and the terminal supports them.
func (r *Report) Print(w io.Writer, colored bool) {
	paint := func(c color.Color, s string) string {
		if !colored {
			return s
		}
		return c.Render(s)
	}
	fmt.Fprintf(w, "Boot report: %d iterations, %d component rounds, %d legacy rounds\n",
		r.Iterations, r.ComponentRounds, r.LegacyRounds)

	for _, u := range r.Units {
		var label string
		switch u.Status {
		case dispatchstore.StatusExecuted:
			label = paint(color.Green, "EXECUTED")
		case dispatchstore.StatusFailed:
			label = paint(color.Red, "FAILED  ")
		case dispatchstore.StatusRejected:
			label = paint(color.Gray, "REJECTED")
		default:
			label = paint(color.Yellow, "STUCK   ")
		}
		line := fmt.Sprintf("  %s %s", label, u.ID)
		switch {
		case u.Err != nil:
			line += ": " + u.Err.Error()
		case u.Reason != "":
			line += ": " + u.Reason
		}
		fmt.Fprintln(w, line)
	}

	for _, p := range r.PendingFiles {
		name := p.Name
		if name == "" {
			name = "-"
		}
		depex := p.Depex
		if depex == "" {
			depex = "none"
		}
		fmt.Fprintf(w, "  discovered, not dispatched: %s (%s) depex: %s\n", p.ID, name, depex)
	}

	if len(r.MissingArch) == 0 {
		fmt.Fprintln(w, paint(color.Green, "All architectural protocols installed."))
		return
	}
	fmt.Fprintln(w, paint(color.Red, "Missing architectural protocols:"))
	for _, a := range r.MissingArch {
		fmt.Fprintf(w, "  %s %s\n", a.Name, a.GUID)
	}
}
