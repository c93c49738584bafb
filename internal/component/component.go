package component

import (
	"context"
	"errors"

	"github.com/vk/dxecore/internal/storage"
)

// ErrNotPending is returned when Run is called on a component that already
// left the dispatch queue.
var ErrNotPending = errors.New("component already dispatched")

// State is the dispatch state of a component.
type State int32

const (
	// Pending means the component is waiting for its arguments.
	Pending State = iota
	// Executed means the entry point ran and returned nil.
	Executed
	// Failed means the entry point ran and returned an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Executed:
		return "executed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Component is a unit the dispatcher can run.
type Component interface {
	// Name identifies the component in logs and reports.
	Name() string
	// Initialize registers argument access with s. It is called once, before
	// the first dispatch round.
	Initialize(s *storage.Storage)
	// Run invokes the entry point if every argument is available. It reports
	// whether the entry point was invoked and, if so, what it returned.
	Run(ctx context.Context, s *storage.Storage) (bool, error)
	// State returns the current dispatch state.
	State() State
	// Blocker returns the kind and name of the argument that stopped the most
	// recent Run. Both are empty once the component was invoked.
	Blocker() (kind, name string)
}
