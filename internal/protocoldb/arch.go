package protocoldb

import "github.com/vk/dxecore/internal/guid"

// ArchProtocol is one of the protocols boot services cannot start without.
type ArchProtocol struct {
	Name string
	GUID guid.GUID
}

// ArchProtocols lists the architectural protocols.
var ArchProtocols = []ArchProtocol{
	{"Security", guid.MustParse("a46423e3-4617-49f1-b9ff-d1bfa9115839")},
	{"Cpu", guid.MustParse("26baccb1-6f42-11d4-bce7-0080c73c8881")},
	{"Metronome", guid.MustParse("26baccb2-6f42-11d4-bce7-0080c73c8881")},
	{"Timer", guid.MustParse("26baccb3-6f42-11d4-bce7-0080c73c8881")},
	{"Bds", guid.MustParse("665e3ff6-46cc-11d4-9a38-0090273fc14d")},
	{"Watchdog", guid.MustParse("665e3ff5-46cc-11d4-9a38-0090273fc14d")},
	{"Runtime", guid.MustParse("b7dfb4e1-052f-449f-87be-9818fc91b733")},
	{"Variable", guid.MustParse("1e5668e2-8481-11d4-bcf1-0080c73c8881")},
	{"Variable Write", guid.MustParse("6441f818-6362-4e44-b570-7dba31dd2453")},
	{"Capsule", guid.MustParse("5053697e-2cbc-4819-90d9-0580deee5754")},
	{"Monotonic Counter", guid.MustParse("1da97072-bddc-4b30-99f1-72a0b56fff2a")},
	{"Reset", guid.MustParse("27cfac88-46cc-11d4-9a38-0090273fc14d")},
	{"Real Time Clock", guid.MustParse("27cfac87-46cc-11d4-9a38-0090273fc14d")},
}

// MissingArch returns the architectural protocols not yet installed.
func (db *DB) MissingArch() []ArchProtocol {
	var out []ArchProtocol
	for _, a := range ArchProtocols {
		if !db.Installed(a.GUID) {
			out = append(out, a)
		}
	}
	return out
}

// ArchGUIDs returns the GUIDs of every architectural protocol.
func ArchGUIDs() []guid.GUID {
	out := make([]guid.GUID, len(ArchProtocols))
	for i, a := range ArchProtocols {
		out[i] = a.GUID
	}
	return out
}
