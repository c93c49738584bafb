package storage

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/vk/dxecore/internal/guid"
)

// HobParser turns the payload of a GUIDed hand-off block into a typed value.
type HobParser func(data []byte) (any, error)

type hobParser struct {
	typ   reflect.Type
	parse HobParser
}

// AddHobParser registers parse as the decoder of GUID g into values of type
// t. Registering the same type twice for a GUID is a no-op.
func (s *Storage) AddHobParser(g guid.GUID, t reflect.Type, parse HobParser) {
	for _, p := range s.hobParsers[g] {
		if p.typ == t {
			return
		}
	}
	s.hobParsers[g] = append(s.hobParsers[g], hobParser{typ: t, parse: parse})
}

// HasHobParser reports whether any parser is registered for g.
func (s *Storage) HasHobParser(g guid.GUID) bool {
	return len(s.hobParsers[g]) > 0
}

// ParseGuidHob runs every parser registered for g over data and appends the
// results. It returns how many values were stored; parser failures are
// joined into the returned error and do not stop the other parsers.
func (s *Storage) ParseGuidHob(g guid.GUID, data []byte) (int, error) {
	var (
		stored int
		errs   []error
	)
	for _, p := range s.hobParsers[g] {
		v, err := p.parse(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("hob %s as %s: %w", g, TypeName(p.typ), err))
			continue
		}
		s.hobs[p.typ] = append(s.hobs[p.typ], v)
		stored++
	}
	return stored, errors.Join(errs...)
}

// HobValues returns the values of type t in hand-off list order.
func (s *Storage) HobValues(t reflect.Type) []any {
	return s.hobs[t]
}

// HasHob reports whether at least one value of type t was parsed.
func (s *Storage) HasHob(t reflect.Type) bool {
	return len(s.hobs[t]) > 0
}
