package storage

import (
	"errors"
	"reflect"

	"github.com/vk/dxecore/internal/guid"
)

var (
	// ErrConfigLocked is returned when writing a configuration that is locked.
	ErrConfigLocked = errors.New("configuration is locked")
	// ErrDuplicateService is returned when an interface already has an implementation.
	ErrDuplicateService = errors.New("service already registered")
)

// Storage is the typed store shared by all components of a boot session.
type Storage struct {
	configs     map[reflect.Type]*configCell
	configOrder []reflect.Type
	sealed      bool

	services     map[reflect.Type]any
	serviceOrder []reflect.Type

	hobs       map[reflect.Type][]any
	hobParsers map[guid.GUID][]hobParser

	deferred []Command
}

// New creates an empty Storage.
func New() *Storage {
	return &Storage{
		configs:    make(map[reflect.Type]*configCell),
		services:   make(map[reflect.Type]any),
		hobs:       make(map[reflect.Type][]any),
		hobParsers: make(map[guid.GUID][]hobParser),
	}
}

// TypeName is the diagnostic name used for a stored type.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// TypeOf returns the key used for T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
