package param

import (
	"fmt"

	"github.com/vk/dxecore/internal/storage"
)

// Config is an immutable view of configuration T. It becomes available once
// T is locked and stays available for the rest of the session.
type Config[T any] struct {
	value T
}

func (Config[T]) Register(s *storage.Storage, a *storage.Access) {
	a.ReadConfig(storage.TypeOf[T]())
	storage.RegisterConfig[T](s)
}

func (Config[T]) Available(s *storage.Storage) bool {
	return storage.IsConfigLocked[T](s)
}

func (Config[T]) Fetch(s *storage.Storage) Config[T] {
	v, _ := storage.ConfigValue[T](s)
	return Config[T]{value: v}
}

func (Config[T]) Kind() string { return "Config" }

func (Config[T]) String() string {
	return fmt.Sprintf("Config<%s>", storage.TypeName(storage.TypeOf[T]()))
}

// Get returns the locked value.
func (c Config[T]) Get() T { return c.value }

// ConfigMut is a mutable view of configuration T. It is available only while
// T is unlocked. Requesting it keeps T from being locked at core start.
type ConfigMut[T any] struct {
	s *storage.Storage
}

func (ConfigMut[T]) Register(s *storage.Storage, a *storage.Access) {
	a.WriteConfig(storage.TypeOf[T]())
	storage.ClaimConfig[T](s)
}

func (ConfigMut[T]) Available(s *storage.Storage) bool {
	return s.ConfigExists(storage.TypeOf[T]()) && !storage.IsConfigLocked[T](s)
}

func (ConfigMut[T]) Fetch(s *storage.Storage) ConfigMut[T] {
	return ConfigMut[T]{s: s}
}

func (ConfigMut[T]) Kind() string { return "ConfigMut" }

func (ConfigMut[T]) String() string {
	return fmt.Sprintf("ConfigMut<%s>", storage.TypeName(storage.TypeOf[T]()))
}

// Get returns the current value.
func (c ConfigMut[T]) Get() T {
	v, _ := storage.ConfigValue[T](c.s)
	return v
}

// Set replaces the value. It fails with storage.ErrConfigLocked once the
// configuration has been locked, including by this handle.
func (c ConfigMut[T]) Set(v T) error {
	return storage.SetConfig(c.s, v)
}

// Update applies fn to a copy of the value and stores the result.
func (c ConfigMut[T]) Update(fn func(v *T)) error {
	v := c.Get()
	fn(&v)
	return c.Set(v)
}

// Lock freezes the value and releases every Config[T] consumer.
func (c ConfigMut[T]) Lock() {
	storage.LockConfig[T](c.s)
}

// Locked reports whether the value can no longer change.
func (c ConfigMut[T]) Locked() bool {
	return storage.IsConfigLocked[T](c.s)
}
