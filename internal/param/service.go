package param

import (
	"fmt"

	"github.com/vk/dxecore/internal/storage"
)

// Service is a handle to the single implementation registered for T. It is
// available once something registered T.
type Service[T any] struct {
	impl T
}

func (Service[T]) Register(*storage.Storage, *storage.Access) {}

func (Service[T]) Available(s *storage.Storage) bool {
	return s.HasService(storage.TypeOf[T]())
}

func (Service[T]) Fetch(s *storage.Storage) Service[T] {
	impl, _ := storage.LookupService[T](s)
	return Service[T]{impl: impl}
}

func (Service[T]) Kind() string { return "Service" }

func (Service[T]) String() string {
	return fmt.Sprintf("Service<%s>", storage.TypeName(storage.TypeOf[T]()))
}

// Get returns the shared implementation.
func (s Service[T]) Get() T { return s.impl }
