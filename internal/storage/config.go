package storage

import (
	"fmt"
	"reflect"
)

type configCell struct {
	value   any
	locked  bool
	claimed bool
}

// ConfigEntry is a configuration value paired with its type key. Build one
// with NewConfig.
type ConfigEntry struct {
	typ   reflect.Type
	value any
}

// NewConfig wraps v so it can be handed to AddConfig without generics at the
// call site.
func NewConfig[T any](v T) ConfigEntry {
	return ConfigEntry{typ: reflect.TypeFor[T](), value: v}
}

// Type returns the key the entry is stored under.
func (e ConfigEntry) Type() reflect.Type { return e.typ }

func (s *Storage) cell(t reflect.Type) *configCell {
	if c, ok := s.configs[t]; ok {
		return c
	}
	c := &configCell{value: reflect.Zero(t).Interface(), locked: s.sealed}
	s.configs[t] = c
	s.configOrder = append(s.configOrder, t)
	return c
}

// AddConfig stores the value carried by e, creating the cell if needed. A
// cell created after the store is sealed takes e's value and starts locked.
func (s *Storage) AddConfig(e ConfigEntry) error {
	if e.typ == nil {
		return fmt.Errorf("add config: empty entry")
	}
	if _, ok := s.configs[e.typ]; !ok {
		s.configs[e.typ] = &configCell{value: e.value, locked: s.sealed}
		s.configOrder = append(s.configOrder, e.typ)
		return nil
	}
	c := s.configs[e.typ]
	if c.locked {
		return fmt.Errorf("add config %s: %w", TypeName(e.typ), ErrConfigLocked)
	}
	c.value = e.value
	return nil
}

// RegisterConfig makes sure a cell for T exists, holding the zero value if
// nothing was added yet.
func RegisterConfig[T any](s *Storage) {
	s.cell(reflect.TypeFor[T]())
}

// ClaimConfig marks T as written by some component. Claimed cells survive
// LockUnclaimedConfigs. Claiming never unlocks a cell.
func ClaimConfig[T any](s *Storage) {
	s.cell(reflect.TypeFor[T]()).claimed = true
}

// ConfigValue returns the current value of T and whether a cell exists.
func ConfigValue[T any](s *Storage) (T, bool) {
	c, ok := s.configs[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	v, _ := c.value.(T)
	return v, true
}

// IsConfigLocked reports whether T exists and is locked.
func IsConfigLocked[T any](s *Storage) bool {
	c, ok := s.configs[reflect.TypeFor[T]()]
	return ok && c.locked
}

// SetConfig overwrites the value of T unless it is locked.
func SetConfig[T any](s *Storage, v T) error {
	return s.AddConfig(NewConfig(v))
}

// LockConfig locks T. It reports whether the call changed the lock state.
func LockConfig[T any](s *Storage) bool {
	c := s.cell(reflect.TypeFor[T]())
	if c.locked {
		return false
	}
	c.locked = true
	return true
}

// LockUnclaimedConfigs locks every cell no component claimed and seals the
// store so later cells start locked. It returns the names it locked.
func (s *Storage) LockUnclaimedConfigs() []string {
	s.sealed = true
	return s.lockWhere(func(c *configCell) bool { return !c.claimed })
}

// LockAllConfigs locks every remaining unlocked cell and returns their names.
func (s *Storage) LockAllConfigs() []string {
	s.sealed = true
	return s.lockWhere(func(*configCell) bool { return true })
}

func (s *Storage) lockWhere(match func(*configCell) bool) []string {
	var locked []string
	for _, t := range s.configOrder {
		c := s.configs[t]
		if c.locked || !match(c) {
			continue
		}
		c.locked = true
		locked = append(locked, TypeName(t))
	}
	return locked
}

// UnlockedConfigs lists the names of cells that can still be written, in
// registration order.
func (s *Storage) UnlockedConfigs() []string {
	var names []string
	for _, t := range s.configOrder {
		if !s.configs[t].locked {
			names = append(names, TypeName(t))
		}
	}
	return names
}

// ConfigLocked is the untyped form of IsConfigLocked used by Params.
func (s *Storage) ConfigLocked(t reflect.Type) bool {
	c, ok := s.configs[t]
	return ok && c.locked
}

// ConfigExists reports whether a cell for t exists.
func (s *Storage) ConfigExists(t reflect.Type) bool {
	_, ok := s.configs[t]
	return ok
}
