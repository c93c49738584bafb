package param

import (
	"fmt"

	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/storage"
)

// FromHob is implemented by types decoded from a GUIDed hand-off block. The
// methods are called on the zero value.
type FromHob[T any] interface {
	HobGUID() guid.GUID
	ParseHob(data []byte) (T, error)
}

// Hob gives access to every value of T parsed from the hand-off list. It is
// available once at least one block with T's GUID was parsed.
type Hob[T FromHob[T]] struct {
	values []T
}

func (Hob[T]) Register(s *storage.Storage, _ *storage.Access) {
	var zero T
	s.AddHobParser(zero.HobGUID(), storage.TypeOf[T](), func(data []byte) (any, error) {
		v, err := zero.ParseHob(data)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

func (Hob[T]) Available(s *storage.Storage) bool {
	return s.HasHob(storage.TypeOf[T]())
}

func (Hob[T]) Fetch(s *storage.Storage) Hob[T] {
	raw := s.HobValues(storage.TypeOf[T]())
	values := make([]T, 0, len(raw))
	for _, v := range raw {
		values = append(values, v.(T))
	}
	return Hob[T]{values: values}
}

func (Hob[T]) Kind() string { return "Hob" }

func (Hob[T]) String() string {
	return fmt.Sprintf("Hob<%s>", storage.TypeName(storage.TypeOf[T]()))
}

// Get returns the first parsed value.
func (h Hob[T]) Get() T { return h.values[0] }

// All returns every parsed value in hand-off list order.
func (h Hob[T]) All() []T { return h.values }

// Len returns the number of parsed values.
func (h Hob[T]) Len() int { return len(h.values) }
