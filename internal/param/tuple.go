package param

import (
	"fmt"

	"github.com/vk/dxecore/internal/storage"
)

// Tuple2 is available when both members are.
type Tuple2[A Param[A], B Param[B]] struct {
	First  A
	Second B
}

func (Tuple2[A, B]) Register(s *storage.Storage, a *storage.Access) {
	var p1 A
	var p2 B
	p1.Register(s, a)
	p2.Register(s, a)
}

func (Tuple2[A, B]) Available(s *storage.Storage) bool {
	var p1 A
	var p2 B
	return p1.Available(s) && p2.Available(s)
}

func (Tuple2[A, B]) Fetch(s *storage.Storage) Tuple2[A, B] {
	var p1 A
	var p2 B
	return Tuple2[A, B]{First: p1.Fetch(s), Second: p2.Fetch(s)}
}

func (Tuple2[A, B]) Blocker(s *storage.Storage) (string, string) {
	var p1 A
	if !p1.Available(s) {
		return Blocking[A](s)
	}
	return Blocking[B](s)
}

func (Tuple2[A, B]) Kind() string { return "Tuple" }

func (Tuple2[A, B]) String() string {
	var p1 A
	var p2 B
	return fmt.Sprintf("(%s, %s)", p1, p2)
}

// Tuple3 is available when all three members are.
type Tuple3[A Param[A], B Param[B], C Param[C]] struct {
	First  A
	Second B
	Third  C
}

func (Tuple3[A, B, C]) Register(s *storage.Storage, a *storage.Access) {
	var p1 A
	var p2 B
	var p3 C
	p1.Register(s, a)
	p2.Register(s, a)
	p3.Register(s, a)
}

func (Tuple3[A, B, C]) Available(s *storage.Storage) bool {
	var p1 A
	var p2 B
	var p3 C
	return p1.Available(s) && p2.Available(s) && p3.Available(s)
}

func (Tuple3[A, B, C]) Fetch(s *storage.Storage) Tuple3[A, B, C] {
	var p1 A
	var p2 B
	var p3 C
	return Tuple3[A, B, C]{First: p1.Fetch(s), Second: p2.Fetch(s), Third: p3.Fetch(s)}
}

func (Tuple3[A, B, C]) Blocker(s *storage.Storage) (string, string) {
	var p1 A
	var p2 B
	switch {
	case !p1.Available(s):
		return Blocking[A](s)
	case !p2.Available(s):
		return Blocking[B](s)
	}
	return Blocking[C](s)
}

func (Tuple3[A, B, C]) Kind() string { return "Tuple" }

func (Tuple3[A, B, C]) String() string {
	var p1 A
	var p2 B
	var p3 C
	return fmt.Sprintf("(%s, %s, %s)", p1, p2, p3)
}

// Tuple4 is available when all four members are.
type Tuple4[A Param[A], B Param[B], C Param[C], D Param[D]] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

func (Tuple4[A, B, C, D]) Register(s *storage.Storage, a *storage.Access) {
	var p1 A
	var p2 B
	var p3 C
	var p4 D
	p1.Register(s, a)
	p2.Register(s, a)
	p3.Register(s, a)
	p4.Register(s, a)
}

func (Tuple4[A, B, C, D]) Available(s *storage.Storage) bool {
	var p1 A
	var p2 B
	var p3 C
	var p4 D
	return p1.Available(s) && p2.Available(s) && p3.Available(s) && p4.Available(s)
}

func (Tuple4[A, B, C, D]) Fetch(s *storage.Storage) Tuple4[A, B, C, D] {
	var p1 A
	var p2 B
	var p3 C
	var p4 D
	return Tuple4[A, B, C, D]{First: p1.Fetch(s), Second: p2.Fetch(s), Third: p3.Fetch(s), Fourth: p4.Fetch(s)}
}

func (Tuple4[A, B, C, D]) Blocker(s *storage.Storage) (string, string) {
	var p1 A
	var p2 B
	var p3 C
	switch {
	case !p1.Available(s):
		return Blocking[A](s)
	case !p2.Available(s):
		return Blocking[B](s)
	case !p3.Available(s):
		return Blocking[C](s)
	}
	return Blocking[D](s)
}

func (Tuple4[A, B, C, D]) Kind() string { return "Tuple" }

func (Tuple4[A, B, C, D]) String() string {
	var p1 A
	var p2 B
	var p3 C
	var p4 D
	return fmt.Sprintf("(%s, %s, %s, %s)", p1, p2, p3, p4)
}
