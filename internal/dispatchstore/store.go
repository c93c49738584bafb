// Package dispatchstore defines the interface for recording the outcome of
// every dispatch unit during a boot session.
//
// # Why a Dispatch Store Exists
//
// The component scheduler and the legacy dispatcher each keep their own
// pending queues, but the end-of-boot audit needs one place that answers
// "what happened to unit X". The store is that place: both dispatchers write
// status transitions, errors and blocking reasons into it, and the core
// builds its final report by reading it back.
//
// # Lifecycle and Usage
//
// The store is:
//  1. **Created** once per boot session by the core
//  2. **Seeded** with every unit in Pending status as it is discovered
//  3. **Mutated** as units execute, fail, get deferred or rejected
//  4. **Read** by the core when it assembles the report
//
// # State Transitions
//
//	Pending → Executed
//	Pending → Failed
//	Pending → Deferred → Pending (legacy files only, after Trust)
//	Rejected (legacy files only, terminal from discovery)
package dispatchstore

import (
	"context"

	"github.com/vk/dxecore/internal/unitid"
)

// Status is the recorded state of a dispatch unit.
type Status int32

const (
	// StatusPending means the unit is waiting for its dependencies.
	StatusPending Status = iota
	// StatusExecuted means the unit ran successfully.
	StatusExecuted
	// StatusFailed means the unit ran, or tried to load, and failed.
	StatusFailed
	// StatusDeferred means a legacy file was refused by the security policy
	// and waits to be trusted.
	StatusDeferred
	// StatusRejected means a legacy file type this core never dispatches.
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusExecuted:
		return "executed"
	case StatusFailed:
		return "failed"
	case StatusDeferred:
		return "deferred"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Record is a snapshot of everything stored about one unit.
type Record struct {
	ID     unitid.ID
	Status Status
	Err    error
	Reason string
}

// Store is the interface for recording dispatch outcomes.
//
// Implementations MUST be safe for concurrent use. The core itself is single
// threaded, but observers and the CLI may read while dispatch continues.
type Store interface {
	// SetStatus records the current status of a unit. The first call for a
	// unit fixes its position in Records.
	SetStatus(ctx context.Context, id unitid.ID, status Status) error

	// GetStatus returns StatusPending for units never recorded.
	GetStatus(ctx context.Context, id unitid.ID) (Status, error)

	// SetError records why a unit failed.
	SetError(ctx context.Context, id unitid.ID, unitErr error) error

	// GetError returns nil if no error was recorded.
	GetError(ctx context.Context, id unitid.ID) (error, error)

	// SetReason records the human-readable reason a unit is still waiting,
	// such as the argument or dependency expression that blocked it. An
	// empty reason clears it.
	SetReason(ctx context.Context, id unitid.ID, reason string) error

	// GetReason returns "" if nothing is blocking the unit.
	GetReason(ctx context.Context, id unitid.ID) (string, error)

	// Records returns every unit in the order it was first recorded.
	Records(ctx context.Context) ([]Record, error)
}
