package registry

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vk/dxecore/internal/component"
	"github.com/vk/dxecore/internal/extractor"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/legacy"
	"github.com/vk/dxecore/internal/storage"
)

// Module is the interface that all platform modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds everything the registered modules contribute to a session.
type Registry struct {
	components     []component.Component
	componentNames map[string]bool

	configs     map[string]*ConfigBinding
	configOrder []string
	configTypes map[reflect.Type]string

	drivers     map[guid.GUID]*DriverBinding
	driverOrder []guid.GUID

	services     []storage.ServiceEntry
	serviceTypes map[reflect.Type]bool

	extractors     map[guid.GUID]extractor.SectionExtractor
	extractorOrder []guid.GUID
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		componentNames: make(map[string]bool),
		configs:        make(map[string]*ConfigBinding),
		configTypes:    make(map[reflect.Type]string),
		drivers:        make(map[guid.GUID]*DriverBinding),
		serviceTypes:   make(map[reflect.Type]bool),
		extractors:     make(map[guid.GUID]extractor.SectionExtractor),
	}
}

// RegisterModules calls Register on every module in order.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// RegisterComponent adds a component. Names must be unique.
func (r *Registry) RegisterComponent(c component.Component) {
	if r.componentNames[c.Name()] {
		panic(fmt.Sprintf("component with name '%s' already registered", c.Name()))
	}
	slog.Debug("Registering component.", "name", c.Name())
	r.componentNames[c.Name()] = true
	r.components = append(r.components, c)
}

// Components returns the registered components in registration order.
func (r *Registry) Components() []component.Component {
	return r.components
}

// HasComponent reports whether a component with the given name exists.
func (r *Registry) HasComponent(name string) bool {
	return r.componentNames[name]
}

// DriverBinding is a host implementation of a legacy driver file.
type DriverBinding struct {
	File guid.GUID
	Name string
	Fn   legacy.DriverFunc
}

// RegisterDriver binds fn to the legacy file with the given GUID.
func (r *Registry) RegisterDriver(file guid.GUID, name string, fn legacy.DriverFunc) {
	if prev, exists := r.drivers[file]; exists {
		panic(fmt.Sprintf("driver for file '%s' already registered as '%s'", file, prev.Name))
	}
	slog.Debug("Registering driver.", "file", file.String(), "name", name)
	r.drivers[file] = &DriverBinding{File: file, Name: name, Fn: fn}
	r.driverOrder = append(r.driverOrder, file)
}

// Drivers returns the registered drivers in registration order.
func (r *Registry) Drivers() []*DriverBinding {
	out := make([]*DriverBinding, 0, len(r.driverOrder))
	for _, g := range r.driverOrder {
		out = append(out, r.drivers[g])
	}
	return out
}

// RegisterService adds a service available from the start of the session.
func (r *Registry) RegisterService(e storage.ServiceEntry) {
	if r.serviceTypes[e.Type()] {
		panic(fmt.Sprintf("service '%s' already registered", e.Name()))
	}
	slog.Debug("Registering service.", "service", e.Name())
	r.serviceTypes[e.Type()] = true
	r.services = append(r.services, e)
}

// Services returns the registered services in registration order.
func (r *Registry) Services() []storage.ServiceEntry {
	return r.services
}

// RegisterSectionExtractor binds an extractor to a GUIDed section algorithm.
func (r *Registry) RegisterSectionExtractor(algorithm guid.GUID, ex extractor.SectionExtractor) {
	if _, exists := r.extractors[algorithm]; exists {
		panic(fmt.Sprintf("section extractor for '%s' already registered", algorithm))
	}
	r.extractors[algorithm] = ex
	r.extractorOrder = append(r.extractorOrder, algorithm)
}

// SectionExtractors calls fn for every registered extractor in registration
// order.
func (r *Registry) SectionExtractors(fn func(algorithm guid.GUID, ex extractor.SectionExtractor)) {
	for _, g := range r.extractorOrder {
		fn(g, r.extractors[g])
	}
}
