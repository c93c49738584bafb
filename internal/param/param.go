// Package param defines the capability contract every component argument
// satisfies, and the concrete argument kinds: configuration views, parsed
// hand-off blocks, services, deferred commands, optional values and tuples.
//
// A Param is used through its zero value. Register runs once when the
// component is added to the core, Available is asked every dispatch round,
// and Fetch is called only after every argument of the component reported
// available. Available never changes Storage and Fetch only reads it; the
// one state transition any Param performs is ConfigMut.Lock.
package param

import (
	"github.com/vk/dxecore/internal/storage"
)

// Param is implemented by every component argument type. The type parameter
// is the implementing type itself, so Fetch returns a concrete value.
type Param[P any] interface {
	// Register records the access the argument needs and prepares Storage,
	// for example by creating a default configuration cell.
	Register(s *storage.Storage, a *storage.Access)
	// Available reports whether Fetch can produce a value right now.
	Available(s *storage.Storage) bool
	// Fetch produces the argument. Only valid after Available returned true.
	Fetch(s *storage.Storage) P
	// Kind is the short argument kind, such as "Config" or "Hob".
	Kind() string
	// String is the full diagnostic name, such as "Config<uint32>".
	String() string
}

// blocker is implemented by combinators that can point at the member that is
// holding them back.
type blocker interface {
	Blocker(s *storage.Storage) (kind, name string)
}

// Descriptor is the type-erased view of a Param used by component runners.
type Descriptor struct {
	Kind string
	Name string

	register  func(*storage.Storage, *storage.Access)
	available func(*storage.Storage) bool
	blocker   func(*storage.Storage) (string, string)
}

// Describe erases P into a Descriptor.
func Describe[P Param[P]]() Descriptor {
	var p P
	return Descriptor{
		Kind:      p.Kind(),
		Name:      p.String(),
		register:  p.Register,
		available: p.Available,
		blocker:   func(s *storage.Storage) (string, string) { return Blocking[P](s) },
	}
}

// Register forwards to the described Param.
func (d Descriptor) Register(s *storage.Storage, a *storage.Access) { d.register(s, a) }

// Available forwards to the described Param.
func (d Descriptor) Available(s *storage.Storage) bool { return d.available(s) }

// Blocker names the innermost Param responsible for d being unavailable.
func (d Descriptor) Blocker(s *storage.Storage) (kind, name string) { return d.blocker(s) }

// Blocking returns the kind and name of the Param that keeps P unavailable.
// For plain Params that is P itself; tuples report their first unavailable
// member.
func Blocking[P Param[P]](s *storage.Storage) (kind, name string) {
	var p P
	if b, ok := any(p).(blocker); ok {
		return b.Blocker(s)
	}
	return p.Kind(), p.String()
}
