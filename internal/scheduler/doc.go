// Package scheduler implements the fixpoint dispatch loop for native
// components and the configuration lock phase that runs between passes.
//
// # How It Works
//
// The loop runs in rounds:
//  1. Every Pending component is tried once, in registration order
//  2. A component whose arguments are all available runs to completion and
//     leaves the queue as Executed or Failed
//  3. A component that cannot run records which argument blocked it
//  4. A round that removed at least one component starts another round
//  5. A round that removed nothing means the loop converged
//
// Registration order only affects which round a component runs in and the
// blocker reported for it. For acyclic dependencies the final outcome does
// not depend on it, and the loop converges within the longest dependency
// chain plus one rounds.
//
// # Lock Phase
//
// LockController owns the global configuration phase. Start locks every
// configuration nobody claimed for writing; Advance force-locks the rest
// after the first convergence and can only fire once.
//
// # Relationship with Other Components
//
//   - **Storage:** components read from and write to it between rounds
//   - **Dispatch Store:** every status transition and blocking reason is recorded
//   - **Core:** interleaves this loop with the legacy dispatcher
package scheduler

import "context"

// Dispatcher is one substrate of the boot super-loop.
type Dispatcher interface {
	// Dispatch runs rounds until one makes no progress. It returns how many
	// units left the pending set.
	Dispatch(ctx context.Context) (int, error)
}
