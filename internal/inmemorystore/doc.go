// Package inmemorystore provides a thread-safe, in-memory implementation
// of the dispatchstore.Store interface. It is the store used for every boot
// session; nothing about dispatch outcomes needs to outlive the process.
package inmemorystore
