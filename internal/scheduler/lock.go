package scheduler

import (
	"context"

	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/storage"
)

// Phase is the global configuration lock phase.
type Phase int

const (
	// Unlocked is the initial phase: claimed configurations can be written.
	Unlocked Phase = iota
	// Locked is terminal: every configuration is frozen.
	Locked
)

func (p Phase) String() string {
	if p == Locked {
		return "locked"
	}
	return "unlocked"
}

// LockController advances the lock phase exactly once.
type LockController struct {
	storage *storage.Storage
	phase   Phase
	started bool
}

// NewLockController creates a controller in the Unlocked phase.
func NewLockController(s *storage.Storage) *LockController {
	return &LockController{storage: s}
}

// Phase returns the current phase.
func (l *LockController) Phase() Phase { return l.phase }

// Start locks every configuration no component claimed for writing. It must
// run after all components are initialized and before the first round.
func (l *LockController) Start(ctx context.Context) []string {
	if l.started {
		return nil
	}
	l.started = true
	locked := l.storage.LockUnclaimedConfigs()
	ctxlog.FromContext(ctx).Debug("Unclaimed configurations locked.", "configs", locked)
	return locked
}

// Advance force-locks every configuration still unlocked and moves to the
// Locked phase. It reports false if the phase already advanced.
func (l *LockController) Advance(ctx context.Context) ([]string, bool) {
	if l.phase == Locked {
		return nil, false
	}
	l.phase = Locked
	locked := l.storage.LockAllConfigs()
	logger := ctxlog.FromContext(ctx)
	if len(locked) > 0 {
		logger.Info("🔒 Force-locked remaining configurations.", "configs", locked)
	} else {
		logger.Debug("Lock phase advanced with nothing left to lock.")
	}
	return locked, true
}
