package scheduler

import (
	"context"
	"fmt"

	"github.com/vk/dxecore/internal/component"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/dispatchstore"
	"github.com/vk/dxecore/internal/monitor"
	"github.com/vk/dxecore/internal/storage"
	"github.com/vk/dxecore/internal/unitid"
)

// Scheduler is the component dispatch loop.
type Scheduler struct {
	storage  *storage.Storage
	store    dispatchstore.Store
	observer monitor.Observer

	pending    []component.Component
	lastReason map[string]string
	rounds     int
}

// New creates a scheduler over s. The observer may be nil.
func New(s *storage.Storage, store dispatchstore.Store, observer monitor.Observer) *Scheduler {
	if observer == nil {
		observer = monitor.Multi{}
	}
	return &Scheduler{
		storage:    s,
		store:      store,
		observer:   observer,
		lastReason: make(map[string]string),
	}
}

// Add initializes c against Storage and appends it to the queue.
func (s *Scheduler) Add(ctx context.Context, c component.Component) error {
	c.Initialize(s.storage)
	s.pending = append(s.pending, c)
	if err := s.store.SetStatus(ctx, unitid.ForComponent(c.Name()), dispatchstore.StatusPending); err != nil {
		return fmt.Errorf("record component %s: %w", c.Name(), err)
	}
	ctxlog.FromContext(ctx).Debug("Component registered.", "component", c.Name())
	return nil
}

// Pending returns the components still waiting, in registration order.
func (s *Scheduler) Pending() []component.Component {
	out := make([]component.Component, len(s.pending))
	copy(out, s.pending)
	return out
}

// Rounds returns how many rounds have run in total.
func (s *Scheduler) Rounds() int { return s.rounds }

// Dispatch runs rounds until one removes nothing from the queue. The context
// is only checked between rounds.
func (s *Scheduler) Dispatch(ctx context.Context) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.Round(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			ctxlog.FromContext(ctx).Debug("Component dispatch converged.", "dispatched", total, "pending", len(s.pending))
			return total, nil
		}
	}
}

// Round tries every pending component once and returns how many left the
// queue.
func (s *Scheduler) Round(ctx context.Context) (int, error) {
	s.rounds++
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Component round started.", "round", s.rounds, "pending", len(s.pending))

	remaining := make([]component.Component, 0, len(s.pending))
	progress := 0
	for _, c := range s.pending {
		id := unitid.ForComponent(c.Name())
		ran, runErr := c.Run(ctx, s.storage)
		if !ran {
			if runErr != nil {
				// Already dispatched elsewhere; drop it without counting progress.
				logger.Warn("Component left the queue unexpectedly.", "component", c.Name(), "error", runErr)
				continue
			}
			remaining = append(remaining, c)
			if err := s.block(ctx, id, c); err != nil {
				return progress, err
			}
			continue
		}

		progress++
		if err := s.storage.ApplyDeferred(); err != nil {
			logger.Warn("Deferred storage commands failed.", "component", c.Name(), "error", err)
		}
		if err := s.finish(ctx, id, runErr); err != nil {
			return progress, err
		}
	}
	s.pending = remaining
	return progress, nil
}

func (s *Scheduler) block(ctx context.Context, id unitid.ID, c component.Component) error {
	kind, name := c.Blocker()
	reason := fmt.Sprintf("%s unavailable: %s", kind, name)
	if s.lastReason[id.String()] == reason {
		return nil
	}
	s.lastReason[id.String()] = reason
	if err := s.store.SetReason(ctx, id, reason); err != nil {
		return fmt.Errorf("record reason for %s: %w", id, err)
	}
	s.observer.Observe(ctx, monitor.Event{Unit: id, Status: dispatchstore.StatusPending, Round: s.rounds, Reason: reason})
	return nil
}

func (s *Scheduler) finish(ctx context.Context, id unitid.ID, runErr error) error {
	logger := ctxlog.FromContext(ctx)
	delete(s.lastReason, id.String())
	if err := s.store.SetReason(ctx, id, ""); err != nil {
		return fmt.Errorf("clear reason for %s: %w", id, err)
	}

	status := dispatchstore.StatusExecuted
	if runErr != nil {
		status = dispatchstore.StatusFailed
		logger.Error("Component failed.", "component", id.Name, "round", s.rounds, "error", runErr)
		if err := s.store.SetError(ctx, id, runErr); err != nil {
			return fmt.Errorf("record error for %s: %w", id, err)
		}
	} else {
		logger.Info("Component executed.", "component", id.Name, "round", s.rounds)
	}
	if err := s.store.SetStatus(ctx, id, status); err != nil {
		return fmt.Errorf("record status for %s: %w", id, err)
	}
	s.observer.Observe(ctx, monitor.Event{Unit: id, Status: status, Round: s.rounds, Err: runErr})
	return nil
}
