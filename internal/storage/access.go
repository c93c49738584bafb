package storage

import (
	"fmt"
	"reflect"
)

// Access records what a single component reads and writes. Params fill it in
// when the component is initialized; in debug builds a conflicting
// combination panics immediately.
//
// Release builds (tag dxe_release) skip the conflict check entirely. In those
// builds a component asking for overlapping mutable and immutable views of
// the same configuration is undefined behaviour.
type Access struct {
	owner        string
	configReads  map[reflect.Type]struct{}
	configWrites map[reflect.Type]struct{}
	readsAll     bool
	writesAll    bool
	deferred     bool
}

// NewAccess creates an empty access set for the named component.
func NewAccess(owner string) *Access {
	return &Access{
		owner:        owner,
		configReads:  make(map[reflect.Type]struct{}),
		configWrites: make(map[reflect.Type]struct{}),
	}
}

// ChecksEnabled reports whether conflicting access panics in this build.
func ChecksEnabled() bool { return accessChecks }

func (a *Access) conflict(format string, args ...any) {
	if accessChecks {
		panic(fmt.Sprintf("%s: conflicting storage access: %s", a.owner, fmt.Sprintf(format, args...)))
	}
}

// ReadConfig records an immutable view of t.
func (a *Access) ReadConfig(t reflect.Type) {
	if _, ok := a.configWrites[t]; ok {
		a.conflict("Config<%s> requested alongside ConfigMut<%s>", TypeName(t), TypeName(t))
	}
	if a.writesAll {
		a.conflict("Config<%s> requested alongside mutable Storage", TypeName(t))
	}
	a.configReads[t] = struct{}{}
}

// WriteConfig records a mutable view of t.
func (a *Access) WriteConfig(t reflect.Type) {
	if _, ok := a.configWrites[t]; ok {
		a.conflict("ConfigMut<%s> requested twice", TypeName(t))
	}
	if _, ok := a.configReads[t]; ok {
		a.conflict("ConfigMut<%s> requested alongside Config<%s>", TypeName(t), TypeName(t))
	}
	if a.readsAll || a.writesAll {
		a.conflict("ConfigMut<%s> requested alongside Storage", TypeName(t))
	}
	a.configWrites[t] = struct{}{}
}

// ReadAll records a read of the whole store.
func (a *Access) ReadAll() {
	if len(a.configWrites) > 0 || a.writesAll {
		a.conflict("Storage read requested alongside a mutable view")
	}
	a.readsAll = true
}

// WriteAll records mutable access to the whole store.
func (a *Access) WriteAll() {
	if len(a.configReads) > 0 || len(a.configWrites) > 0 || a.readsAll || a.writesAll {
		a.conflict("mutable Storage requested alongside another view")
	}
	a.writesAll = true
}

// UseDeferred records that the component queues commands.
func (a *Access) UseDeferred() { a.deferred = true }

// Owner returns the component name the set belongs to.
func (a *Access) Owner() string { return a.owner }

// ReadsConfig reports whether t was requested immutably.
func (a *Access) ReadsConfig(t reflect.Type) bool {
	_, ok := a.configReads[t]
	return ok || a.readsAll
}

// WritesConfig reports whether t was requested mutably.
func (a *Access) WritesConfig(t reflect.Type) bool {
	_, ok := a.configWrites[t]
	return ok || a.writesAll
}

// Deferred reports whether the component queues commands.
func (a *Access) Deferred() bool { return a.deferred }
