package core

import (
	"fmt"
	"io"

	"github.com/vk/dxecore/internal/component"
	"github.com/vk/dxecore/internal/dispatchstore"
	"github.com/vk/dxecore/internal/extractor"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/hob"
	"github.com/vk/dxecore/internal/inmemorystore"
	"github.com/vk/dxecore/internal/legacy"
	"github.com/vk/dxecore/internal/monitor"
	"github.com/vk/dxecore/internal/protocoldb"
	"github.com/vk/dxecore/internal/storage"
)

// Option configures the session infrastructure.
type Option func(*Core)

// WithStore replaces the in-memory dispatch store.
func WithStore(s dispatchstore.Store) Option {
	return func(c *Core) { c.store = s }
}

// WithObserver adds an observer for dispatch events.
func WithObserver(o monitor.Observer) Option {
	return func(c *Core) { c.observers = append(c.observers, o) }
}

// WithLoader replaces the handler-based image loader.
func WithLoader(l legacy.ImageLoader) Option {
	return func(c *Core) { c.loader = l }
}

// WithSecurity installs a security policy for legacy images.
func WithSecurity(p legacy.SecurityPolicy) Option {
	return func(c *Core) { c.security = p }
}

// WithNoDepexRequiresArch makes legacy drivers without a dependency
// expression wait for every architectural protocol.
func WithNoDepexRequiresArch() Option {
	return func(c *Core) { c.legacyOpts.NoDepexRequiresArch = true }
}

type volumeInput struct {
	source string
	data   []byte
}

// Core is one boot session.
type Core struct {
	storage    *storage.Storage
	store      dispatchstore.Store
	observers  monitor.Multi
	protocols  *protocoldb.DB
	extractors *extractor.Composite
	handlers   *legacy.HandlerLoader
	loader     legacy.ImageLoader
	security   legacy.SecurityPolicy
	legacyOpts legacy.Options

	components []component.Component
	volumes    []volumeInput
	hobList    *hob.List
	memory     io.ReaderAt

	legacy  *legacy.Dispatcher
	runner  *runner
	started bool
}

// New creates a session.
func New(opts ...Option) *Core {
	c := &Core{
		storage:    storage.New(),
		protocols:  protocoldb.New(),
		extractors: extractor.Default(),
		handlers:   legacy.NewHandlerLoader(),
		observers:  monitor.Multi{monitor.Log{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = inmemorystore.New()
	}
	if c.loader == nil {
		c.loader = c.handlers
	}
	return c
}

// Storage exposes the session storage.
func (c *Core) Storage() *storage.Storage { return c.storage }

// Protocols exposes the protocol database.
func (c *Core) Protocols() *protocoldb.DB { return c.protocols }

// Store exposes the dispatch store.
func (c *Core) Store() dispatchstore.Store { return c.store }

// WithComponent registers a component. Components run in registration order
// within a round.
func (c *Core) WithComponent(comp component.Component) *Core {
	c.components = append(c.components, comp)
	return c
}

// WithService registers a service. It panics if the service type is already
// registered.
func (c *Core) WithService(e storage.ServiceEntry) *Core {
	if err := c.storage.AddService(e); err != nil {
		panic(err)
	}
	return c
}

// WithConfig sets the initial value of a configuration.
func (c *Core) WithConfig(e storage.ConfigEntry) *Core {
	if err := c.storage.AddConfig(e); err != nil {
		panic(err)
	}
	return c
}

// WithSectionExtractor binds an extractor to a GUIDed section algorithm. It
// panics if the algorithm is already bound.
func (c *Core) WithSectionExtractor(algorithm guid.GUID, ex extractor.SectionExtractor) *Core {
	c.extractors.Register(algorithm, ex)
	return c
}

// WithDriver binds a host driver body to a legacy file GUID.
func (c *Core) WithDriver(file guid.GUID, fn legacy.DriverFunc) *Core {
	c.handlers.Register(file, fn)
	return c
}

// WithFirmwareVolume queues a firmware volume image for the legacy
// dispatcher.
func (c *Core) WithFirmwareVolume(source string, data []byte) *Core {
	c.volumes = append(c.volumes, volumeInput{source: source, data: data})
	return c
}

// InitMemory parses the hand-off block list. Firmware volume records are
// read from mem when the session starts; mem may be nil when the list holds
// none.
func (c *Core) InitMemory(hobList []byte, mem io.ReaderAt) error {
	if c.hobList != nil {
		return fmt.Errorf("hand-off list already initialized")
	}
	list, err := hob.Parse(hobList)
	if err != nil {
		return fmt.Errorf("parse hand-off list: %w", err)
	}
	c.hobList = list
	c.memory = mem
	return nil
}

// Schedule releases a SOR legacy driver. It is only valid after Start.
func (c *Core) Schedule(volume, file guid.GUID) error {
	if c.legacy == nil {
		return fmt.Errorf("session not started")
	}
	return c.legacy.Schedule(volume, file)
}
