// Package protocoldb is the minimal protocol database the dispatchers share:
// which protocol GUIDs are installed, and the interface behind each.
package protocoldb

import (
	"fmt"

	"github.com/vk/dxecore/internal/efierr"
	"github.com/vk/dxecore/internal/guid"
)

// Installation records one installed protocol instance.
type Installation struct {
	Protocol  guid.GUID
	Interface any
	// By names the unit that installed it.
	By string
}

// DB tracks installed protocols in installation order.
type DB struct {
	byGUID map[guid.GUID][]Installation
	order  []Installation
}

// New returns an empty database.
func New() *DB {
	return &DB{byGUID: make(map[guid.GUID][]Installation)}
}

// Install records a protocol instance. A protocol may be installed more than
// once; the first instance is the one Locate returns.
func (db *DB) Install(protocol guid.GUID, iface any, by string) error {
	if protocol.IsNil() {
		return efierr.Errorf(efierr.InvalidParameter, "install of the nil protocol by %s", by)
	}
	in := Installation{Protocol: protocol, Interface: iface, By: by}
	db.byGUID[protocol] = append(db.byGUID[protocol], in)
	db.order = append(db.order, in)
	return nil
}

// Installed reports whether at least one instance of protocol exists.
func (db *DB) Installed(protocol guid.GUID) bool {
	return len(db.byGUID[protocol]) > 0
}

// Locate returns the first installed interface for protocol.
func (db *DB) Locate(protocol guid.GUID) (any, error) {
	ins := db.byGUID[protocol]
	if len(ins) == 0 {
		return nil, efierr.Errorf(efierr.NotFound, "protocol %s", protocol)
	}
	return ins[0].Interface, nil
}

// Installations returns every installation in order.
func (db *DB) Installations() []Installation {
	return append([]Installation(nil), db.order...)
}

// Len is the number of installations.
func (db *DB) Len() int {
	return len(db.order)
}

func (i Installation) String() string {
	return fmt.Sprintf("%s by %s", i.Protocol, i.By)
}
