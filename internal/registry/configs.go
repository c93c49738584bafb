package registry

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vk/dxecore/internal/storage"
)

// ConfigBinding ties a `config "<name>"` block to a configuration type.
type ConfigBinding struct {
	Name string
	Type reflect.Type
	// New returns a pointer to a fresh copy of the default value.
	New func() any
	// Entry turns a pointer returned by New into a storage entry.
	Entry func(ptr any) storage.ConfigEntry
}

// RegisterConfig binds the configuration type T to name. def is the value the
// configuration starts with when the platform description does not set it.
func RegisterConfig[T any](r *Registry, name string, def T) {
	t := storage.TypeOf[T]()
	if _, exists := r.configs[name]; exists {
		panic(fmt.Sprintf("config with name '%s' already registered", name))
	}
	if prev, exists := r.configTypes[t]; exists {
		panic(fmt.Sprintf("config type %s already registered as '%s'", storage.TypeName(t), prev))
	}
	slog.Debug("Registering config.", "name", name, "type", storage.TypeName(t))
	r.configs[name] = &ConfigBinding{
		Name: name,
		Type: t,
		New: func() any {
			v := def
			return &v
		},
		Entry: func(ptr any) storage.ConfigEntry {
			return storage.NewConfig[T](*ptr.(*T))
		},
	}
	r.configTypes[t] = name
	r.configOrder = append(r.configOrder, name)
}

// Config returns the binding registered under name.
func (r *Registry) Config(name string) (*ConfigBinding, bool) {
	b, ok := r.configs[name]
	return b, ok
}

// Configs returns every binding in registration order.
func (r *Registry) Configs() []*ConfigBinding {
	out := make([]*ConfigBinding, 0, len(r.configOrder))
	for _, name := range r.configOrder {
		out = append(out, r.configs[name])
	}
	return out
}
