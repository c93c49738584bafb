// Package archstub provides host implementations of the drivers that install
// the architectural protocols, so a platform built from stub volumes reaches
// a complete boot services table.
package archstub

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/depex"
	"github.com/vk/dxecore/internal/ffs"
	"github.com/vk/dxecore/internal/guid"
	"github.com/vk/dxecore/internal/legacy"
	"github.com/vk/dxecore/internal/protocoldb"
	"github.com/vk/dxecore/internal/registry"
	"github.com/vk/dxecore/internal/storage"
)

// Driver describes one stub driver file.
type Driver struct {
	Name      string
	File      guid.GUID
	Installs  []string // Architectural protocol names
	DependsOn []string // Architectural protocols the depex waits for
}

// Drivers is the stub driver set in dispatch-friendly order. The depex of
// each driver only names protocols an earlier driver installs.
var Drivers = []Driver{
	{Name: "SecurityStubDxe", File: guid.MustParse("f80697e9-7fd6-4665-8646-88e33ef71dfc"), Installs: []string{"Security"}},
	{Name: "CpuDxe", File: guid.MustParse("1a1e4886-9517-440e-9fde-3be44cee2136"), Installs: []string{"Cpu"}},
	{Name: "MetronomeDxe", File: guid.MustParse("c8339973-a563-4561-b858-d8476f9defc4"), Installs: []string{"Metronome"}, DependsOn: []string{"Cpu"}},
	{Name: "TimerDxe", File: guid.MustParse("f2765dec-6b41-11d5-8e71-00902707b35e"), Installs: []string{"Timer"}, DependsOn: []string{"Cpu"}},
	{Name: "WatchdogTimerDxe", File: guid.MustParse("f099d67f-71ae-4c36-b2a3-dceb0eb2b7d8"), Installs: []string{"Watchdog"}, DependsOn: []string{"Timer"}},
	{Name: "RuntimeDxe", File: guid.MustParse("b601f8c4-43b7-4784-95b1-f4226cb40cee"), Installs: []string{"Runtime"}},
	{Name: "ResetSystemRuntimeDxe", File: guid.MustParse("4b28e4c7-ff36-4e10-93cf-a82159e777c5"), Installs: []string{"Reset"}, DependsOn: []string{"Runtime"}},
	{Name: "PcRtc", File: guid.MustParse("378d7b65-8da9-4773-b6e4-a47826a833e1"), Installs: []string{"Real Time Clock"}, DependsOn: []string{"Runtime"}},
	{Name: "CapsuleRuntimeDxe", File: guid.MustParse("42857f0a-13f2-4b21-8a23-53d3f714b840"), Installs: []string{"Capsule"}, DependsOn: []string{"Runtime"}},
	{Name: "MonotonicCounterRuntimeDxe", File: guid.MustParse("ad608272-d07f-4964-801e-7bd3b7888652"), Installs: []string{"Monotonic Counter"}, DependsOn: []string{"Runtime"}},
	{Name: "VariableRuntimeDxe", File: guid.MustParse("cbd2e4d5-7068-4ff5-b462-9822b4ad8d60"), Installs: []string{"Variable", "Variable Write"}, DependsOn: []string{"Runtime"}},
	{Name: "BdsDxe", File: guid.MustParse("6d33944a-ec75-4855-a54d-809c75241f6c"), Installs: []string{"Bds"}, DependsOn: []string{"Variable", "Variable Write"}},
}

// Variables is the service VariableRuntimeDxe provides to components.
type Variables interface {
	Get(name string) ([]byte, bool)
	Set(name string, value []byte)
}

type variableStore struct {
	mu   sync.Mutex
	vars map[string][]byte
}

func (v *variableStore) Get(name string) ([]byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.vars[name]
	return b, ok
}

func (v *variableStore) Set(name string, value []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vars[name] = append([]byte(nil), value...)
}

// Module registers every stub driver.
type Module struct{}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	for _, d := range Drivers {
		r.RegisterDriver(d.File, d.Name, body(d))
	}
}

func body(d Driver) legacy.DriverFunc {
	return func(ctx context.Context, env *legacy.Env) error {
		logger := ctxlog.FromContext(ctx)
		for _, name := range d.Installs {
			g, err := archGUID(name)
			if err != nil {
				return err
			}
			if err := env.InstallProtocol(g, d.Name); err != nil {
				return fmt.Errorf("%s: install %s: %w", d.Name, name, err)
			}
			logger.Debug("Architectural protocol installed.", "driver", d.Name, "protocol", name)
		}
		if d.Name == "VariableRuntimeDxe" {
			env.ProvideService(storage.Provide[Variables](&variableStore{vars: make(map[string][]byte)}))
		}
		return nil
	}
}

func archGUID(name string) (guid.GUID, error) {
	for _, a := range protocoldb.ArchProtocols {
		if a.Name == name {
			return a.GUID, nil
		}
	}
	return guid.Nil, fmt.Errorf("unknown architectural protocol %q", name)
}

// Volume builds a firmware volume holding a DXE driver file for every stub,
// each with a dependency expression on the protocols it needs.
func Volume() []byte {
	b := ffs.NewVolumeBuilder().Name(guid.MustParse("9a4a5e3c-7b1f-4f0e-8d2c-5b6a7c8d9e0f"))
	for _, d := range Drivers {
		deps := make([]guid.GUID, 0, len(d.DependsOn))
		for _, name := range d.DependsOn {
			g, err := archGUID(name)
			if err != nil {
				panic(err)
			}
			deps = append(deps, g)
		}
		b.File(ffs.FileSpec{
			Name: d.File,
			Type: ffs.FileTypeDriver,
			Sections: [][]byte{
				ffs.SectionBytes(ffs.SectionDxeDepex, depex.AllOf(deps...)),
				ffs.UISection(d.Name),
			},
			Checksum: true,
		})
	}
	return b.Bytes()
}
