// Package storage holds the shared state of one boot session: typed
// configuration cells with their lock state, values parsed from GUIDed
// hand-off blocks, registered service implementations, and the queue of
// deferred mutations produced by running components.
//
// # Ownership
//
// A Storage is created by the core once per session and passed explicitly to
// every Param. It is never a process global, so tests build a fresh one per
// case.
//
// # Configuration lifecycle
//
// A configuration cell starts unlocked. When the core starts it calls
// LockUnclaimedConfigs, which locks every cell that no component claimed for
// mutation; cells created after that point are born locked unless claimed.
// Claimed cells stay writable until LockConfig or LockAllConfigs is called.
// A locked cell is never written again.
//
// # Concurrency
//
// Storage is not safe for concurrent use. The dispatcher runs one component
// at a time and is the only writer.
package storage
