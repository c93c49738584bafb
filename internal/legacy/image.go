package legacy

import (
	"bytes"
	"context"
	"debug/pe"
	"fmt"

	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/ffs"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/protocoldb"
	"github.com/vk/dxecore/internal/storage"
	"github.com/vk/dxecore/internal/unitid"
)

// Image is a driver file ready to load.
type Image struct {
	Volume   guid.GUID
	File     guid.GUID
	Name     string
	Sections []*ffs.Section

	// Machine and EntryPoint are filled in when the PE32 section holds a
	// PE/COFF image.
	Machine    uint16
	EntryPoint uint32
}

// Code returns the first PE32 or TE section body.
func (img *Image) Code() ([]byte, bool) {
	for _, s := range img.Sections {
		if s.Type == ffs.SectionPE32 || s.Type == ffs.SectionTE {
			return s.Data, true
		}
	}
	return nil, false
}

func (img *Image) String() string {
	if img.Name != "" {
		return fmt.Sprintf("%s (%s)", img.Name, img.File)
	}
	return img.File.String()
}

// ImageLoader loads and starts a driver image.
type ImageLoader interface {
	Start(ctx context.Context, img *Image, env *Env) error
}

// SecurityPolicy authenticates an image before it loads. Returning an error
// wrapping efierr.SecurityViolation defers the file until it is trusted; any
// other error abandons it.
type SecurityPolicy interface {
	Authenticate(ctx context.Context, img *Image) error
}

// SecurityFunc adapts a function to SecurityPolicy.
type SecurityFunc func(ctx context.Context, img *Image) error

func (f SecurityFunc) Authenticate(ctx context.Context, img *Image) error { return f(ctx, img) }

// Env is what a starting driver can reach.
type Env struct {
	Image   *Image
	unit    unitid.ID
	db      *protocoldb.DB
	storage *storage.Storage
}

// InstallProtocol installs a protocol. Dependency expressions see it from
// the next evaluation on.
func (e *Env) InstallProtocol(protocol guid.GUID, iface any) error {
	return e.db.Install(protocol, iface, e.unit.String())
}

// LocateProtocol returns the first installed interface for protocol.
func (e *Env) LocateProtocol(protocol guid.GUID) (any, error) {
	return e.db.Locate(protocol)
}

// ProvideService queues a service for Storage. It is added once the driver
// returns, which can unblock components waiting on it.
func (e *Env) ProvideService(entry storage.ServiceEntry) {
	unit := e.unit
	e.storage.Defer(func(s *storage.Storage) error {
		if err := s.AddService(entry); err != nil {
			return fmt.Errorf("%s: %w", unit, err)
		}
		return nil
	})
}

// DriverFunc is a host-side driver body.
type DriverFunc func(ctx context.Context, env *Env) error

// HandlerLoader starts drivers by running the Go function registered for
// their file GUID. PE/COFF payloads are inspected first, so a corrupt image
// fails to load even when a handler exists.
type HandlerLoader struct {
	handlers map[guid.GUID]DriverFunc
}

// NewHandlerLoader creates an empty loader.
func NewHandlerLoader() *HandlerLoader {
	return &HandlerLoader{handlers: make(map[guid.GUID]DriverFunc)}
}

// Register binds a driver body to a file GUID. It panics on duplicates.
func (l *HandlerLoader) Register(file guid.GUID, fn DriverFunc) {
	if _, exists := l.handlers[file]; exists {
		panic(fmt.Sprintf("legacy: driver handler for %s already registered", file))
	}
	l.handlers[file] = fn
}

// Start implements ImageLoader.
func (l *HandlerLoader) Start(ctx context.Context, img *Image, env *Env) error {
	if code, ok := img.Code(); ok && bytes.HasPrefix(code, []byte("MZ")) {
		machine, entry, err := inspectPE(code)
		if err != nil {
			return efierr.Errorf(efierr.LoadError, "%s: %v", img, err)
		}
		img.Machine, img.EntryPoint = machine, entry
	}
	fn, ok := l.handlers[img.File]
	if !ok {
		return efierr.Errorf(efierr.NotFound, "no handler for %s", img)
	}
	return fn(ctx, env)
}

func inspectPE(code []byte) (uint16, uint32, error) {
	f, err := pe.NewFile(bytes.NewReader(code))
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	var entry uint32
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		entry = oh.AddressOfEntryPoint
	case *pe.OptionalHeader32:
		entry = oh.AddressOfEntryPoint
	default:
		return 0, 0, fmt.Errorf("image has no optional header")
	}
	return f.FileHeader.Machine, entry, nil
}
