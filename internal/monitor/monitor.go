// Package monitor fans dispatch events out to observers: the debug log, the
// metrics recorder and, when configured, a remote socket.io monitor.
package monitor

import (
	"context"

	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/dispatchstore"
	"github.com/vk/dxecore/internal/unitid"
)

// Event describes one status transition of a dispatch unit.
type Event struct {
	Unit   unitid.ID
	Status dispatchstore.Status
	Round  int
	Err    error
	Reason string
}

// Observer receives dispatch events. Observe must not block for long; it runs
// on the dispatch thread.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// Multi forwards every event to each observer in order.
type Multi []Observer

// Observe implements Observer.
func (m Multi) Observe(ctx context.Context, ev Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(ctx, ev)
		}
	}
}

// Log writes every event to the context logger at debug level.
type Log struct{}

// Observe implements Observer.
func (Log) Observe(ctx context.Context, ev Event) {
	attrs := []any{"unit", ev.Unit.String(), "status", ev.Status.String(), "round", ev.Round}
	if ev.Err != nil {
		attrs = append(attrs, "error", ev.Err)
	}
	if ev.Reason != "" {
		attrs = append(attrs, "reason", ev.Reason)
	}
	ctxlog.FromContext(ctx).Debug("Dispatch event.", attrs...)
}

// Recorder keeps every event in memory. Tests use it to assert ordering.
type Recorder struct {
	Events []Event
}

// Observe implements Observer.
func (r *Recorder) Observe(_ context.Context, ev Event) {
	r.Events = append(r.Events, ev)
}

// Units returns the units that reached status, in event order.
func (r *Recorder) Units(status dispatchstore.Status) []unitid.ID {
	var ids []unitid.ID
	for _, ev := range r.Events {
		if ev.Status == status {
			ids = append(ids, ev.Unit)
		}
	}
	return ids
}
