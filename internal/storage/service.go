package storage

import (
	"fmt"
	"reflect"
)

// ServiceEntry is a service implementation keyed by the interface it
// satisfies. Build one with Provide.
type ServiceEntry struct {
	typ  reflect.Type
	impl any
}

// Provide registers impl under T, which is normally an interface type. A nil
// implementation is a programmer error.
func Provide[T any](impl T) ServiceEntry {
	if any(impl) == nil {
		panic(fmt.Sprintf("storage: nil implementation for service %s", TypeName(reflect.TypeFor[T]())))
	}
	return ServiceEntry{typ: reflect.TypeFor[T](), impl: impl}
}

// Type returns the key the entry is stored under.
func (e ServiceEntry) Type() reflect.Type { return e.typ }

// Name returns the diagnostic name of the service interface.
func (e ServiceEntry) Name() string { return TypeName(e.typ) }

// AddService registers e. Each interface holds exactly one implementation.
func (s *Storage) AddService(e ServiceEntry) error {
	if e.typ == nil {
		return fmt.Errorf("add service: empty entry")
	}
	if _, exists := s.services[e.typ]; exists {
		return fmt.Errorf("add service %s: %w", e.Name(), ErrDuplicateService)
	}
	s.services[e.typ] = e.impl
	s.serviceOrder = append(s.serviceOrder, e.typ)
	return nil
}

// HasService reports whether an implementation is registered for t.
func (s *Storage) HasService(t reflect.Type) bool {
	_, ok := s.services[t]
	return ok
}

// LookupService returns the implementation registered for T.
func LookupService[T any](s *Storage) (T, bool) {
	impl, ok := s.services[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return impl.(T), true
}

// Services lists registered service names in registration order.
func (s *Storage) Services() []string {
	names := make([]string, 0, len(s.serviceOrder))
	for _, t := range s.serviceOrder {
		names = append(names, TypeName(t))
	}
	return names
}
