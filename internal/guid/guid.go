// Package guid implements the 128-bit identifiers used throughout the firmware
// formats. Values are kept in canonical RFC 4122 byte order; the mixed-endian
// layout used on disk is only produced or consumed at the encoding boundary.
package guid

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Size is the encoded length of a GUID in bytes.
const Size = 16

// ErrShortBuffer is returned when fewer than Size bytes are available.
var ErrShortBuffer = errors.New("guid: buffer shorter than 16 bytes")

// GUID is a firmware GUID in canonical byte order.
type GUID uuid.UUID

// Nil is the all-zero GUID.
var Nil GUID

// Parse parses the textual form "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx".
func Parse(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("guid: parse %q: %w", s, err)
	}
	return GUID(u), nil
}

// MustParse is like Parse but panics on malformed input. It is meant for
// package-level constants.
func MustParse(s string) GUID {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

// FromBytes decodes the on-disk mixed-endian encoding: Data1, Data2 and Data3
// little-endian followed by the eight Data4 bytes.
func FromBytes(b []byte) (GUID, error) {
	if len(b) < Size {
		return Nil, ErrShortBuffer
	}
	var g GUID
	g[0], g[1], g[2], g[3] = b[3], b[2], b[1], b[0]
	g[4], g[5] = b[5], b[4]
	g[6], g[7] = b[7], b[6]
	copy(g[8:], b[8:16])
	return g, nil
}

// Bytes returns the on-disk mixed-endian encoding.
func (g GUID) Bytes() []byte {
	b := make([]byte, Size)
	g.Put(b)
	return b
}

// Put writes the on-disk encoding into b, which must hold at least Size bytes.
func (g GUID) Put(b []byte) {
	_ = b[Size-1]
	b[0], b[1], b[2], b[3] = g[3], g[2], g[1], g[0]
	b[4], b[5] = g[5], g[4]
	b[6], b[7] = g[7], g[6]
	copy(b[8:16], g[8:])
}

// String returns the canonical lowercase text form.
func (g GUID) String() string {
	return uuid.UUID(g).String()
}

// IsNil reports whether g is the all-zero GUID.
func (g GUID) IsNil() bool {
	return g == Nil
}

// MarshalText implements encoding.TextMarshaler.
func (g GUID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GUID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
