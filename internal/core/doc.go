// Package core assembles a boot session: it owns Storage, the component
// scheduler, the lock controller and the legacy dispatcher, and runs them
// in a super-loop until neither makes progress.
//
// # Lifecycle
//
//  1. New creates the session; With* methods register components, services,
//     configurations and firmware volumes
//  2. InitMemory hands over the hand-off block list and the memory image
//     its firmware volume records point into
//  3. Start initializes every component, publishes the hand-off services,
//     locks unclaimed configurations and runs the super-loop
//  4. Start returns a Report describing every unit
//
// # Super-Loop
//
// Each outer iteration converges the component loop, force-locks the
// remaining configurations the first time it converges, converges the
// component loop again, then converges the legacy dispatcher. The boot ends
// when an iteration makes no progress in either.
package core
