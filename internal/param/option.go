package param

import (
	"fmt"

	"github.com/vk/dxecore/internal/storage"
)

// Option always reports available and holds P only if P was available when
// the component ran.
//
// A component taking Option[P] may run before P is ever produced. Once it has
// run it leaves the dispatch queue, so it never observes P appearing later.
type Option[P Param[P]] struct {
	value P
	ok    bool
}

func (Option[P]) Register(s *storage.Storage, a *storage.Access) {
	var p P
	p.Register(s, a)
}

func (Option[P]) Available(*storage.Storage) bool { return true }

func (Option[P]) Fetch(s *storage.Storage) Option[P] {
	var p P
	if !p.Available(s) {
		return Option[P]{}
	}
	return Option[P]{value: p.Fetch(s), ok: true}
}

func (Option[P]) Kind() string { return "Option" }

func (Option[P]) String() string {
	var p P
	return fmt.Sprintf("Option<%s>", p.String())
}

// Get returns the value and whether it was present.
func (o Option[P]) Get() (P, bool) { return o.value, o.ok }

// Some reports whether the value was present.
func (o Option[P]) Some() bool { return o.ok }
