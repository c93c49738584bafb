// internal/unitid/unitid.go
package unitid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vk/dxecore/internal/guid"
)

// Kind distinguishes the dispatch substrates.
type Kind string

const (
	// Component is a native dependency-injected component.
	Component Kind = "component"
	// Driver is a legacy DRIVER file.
	Driver Kind = "driver"
	// Volume is a legacy FIRMWARE_VOLUME_IMAGE file.
	Volume Kind = "fv"
)

var nameRegex = regexp.MustCompile(`^\S+$`)

// ID identifies one dispatch unit.
type ID struct {
	Kind Kind
	Name string
}

// ForComponent returns the ID of a named component.
func ForComponent(name string) ID {
	return ID{Kind: Component, Name: name}
}

// ForFile returns the ID of a legacy file.
func ForFile(kind Kind, name guid.GUID) ID {
	return ID{Kind: kind, Name: name.String()}
}

// ForFileIn returns the ID of a legacy file qualified by the volume holding
// it. It tells apart files that share a GUID across volumes.
func ForFileIn(kind Kind, name, volume guid.GUID) ID {
	return ID{Kind: kind, Name: name.String() + "@" + volume.String()}
}

// String serializes the ID into its canonical form.
func (id ID) String() string {
	if id.Kind == "" && id.Name == "" {
		return ""
	}
	return string(id.Kind) + "." + id.Name
}

// Parse creates an ID from its canonical string representation.
func Parse(raw string) (ID, error) {
	if raw == "" {
		return ID{}, fmt.Errorf("identifier cannot be empty")
	}
	kind, name, found := strings.Cut(raw, ".")
	if !found || name == "" {
		return ID{}, fmt.Errorf("identifier %q has no name", raw)
	}
	switch Kind(kind) {
	case Component, Driver, Volume:
	default:
		return ID{}, fmt.Errorf("unknown identifier kind: %q", kind)
	}
	if !nameRegex.MatchString(name) {
		return ID{}, fmt.Errorf("invalid identifier name: %q", name)
	}
	return ID{Kind: Kind(kind), Name: name}, nil
}
