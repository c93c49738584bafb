package param

import (
	"github.com/vk/dxecore/internal/storage"
)

// Commands queues Storage mutations. The dispatcher applies the queue right
// after the component returns, before the next component is evaluated.
type Commands struct {
	s *storage.Storage
}

func (Commands) Register(_ *storage.Storage, a *storage.Access) { a.UseDeferred() }

func (Commands) Available(*storage.Storage) bool { return true }

func (Commands) Fetch(s *storage.Storage) Commands { return Commands{s: s} }

func (Commands) Kind() string { return "Commands" }

func (Commands) String() string { return "Commands" }

// AddService registers e once the component returns.
func (c Commands) AddService(e storage.ServiceEntry) {
	c.s.Defer(func(s *storage.Storage) error { return s.AddService(e) })
}

// AddConfig stores e once the component returns.
func (c Commands) AddConfig(e storage.ConfigEntry) {
	c.s.Defer(func(s *storage.Storage) error { return s.AddConfig(e) })
}

// Defer queues an arbitrary mutation.
func (c Commands) Defer(cmd storage.Command) {
	c.s.Defer(cmd)
}

// Storage grants a component the whole store. It cannot be combined with any
// configuration view in the same component.
type Storage struct {
	*storage.Storage
}

func (Storage) Register(_ *storage.Storage, a *storage.Access) { a.WriteAll() }

func (Storage) Available(*storage.Storage) bool { return true }

func (Storage) Fetch(s *storage.Storage) Storage { return Storage{Storage: s} }

func (Storage) Kind() string { return "Storage" }

func (Storage) String() string { return "Storage" }
