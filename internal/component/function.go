package component

import (
	"context"
	"reflect"
	"strings"

	"github.com/vk/dxecore/internal/param"
	"github.com/vk/dxecore/internal/storage"
)

// Function is a Component built from a Go function and its argument
// descriptors.
type Function struct {
	name   string
	params []param.Descriptor
	invoke func(ctx context.Context, s *storage.Storage) error

	access    *storage.Access
	state     State
	blockKind string
	blockName string
}

// Name implements Component.
func (f *Function) Name() string { return f.name }

// State implements Component.
func (f *Function) State() State { return f.state }

// Blocker implements Component.
func (f *Function) Blocker() (string, string) { return f.blockKind, f.blockName }

// Access returns the recorded access set, or nil before Initialize.
func (f *Function) Access() *storage.Access { return f.access }

// Params returns the diagnostic names of the arguments.
func (f *Function) Params() []string {
	names := make([]string, 0, len(f.params))
	for _, p := range f.params {
		names = append(names, p.Name)
	}
	return names
}

// Initialize implements Component. Repeated calls are ignored.
func (f *Function) Initialize(s *storage.Storage) {
	if f.access != nil {
		return
	}
	f.access = storage.NewAccess(f.name)
	for _, p := range f.params {
		p.Register(s, f.access)
	}
}

// Run implements Component. Every argument is checked before any is fetched.
func (f *Function) Run(ctx context.Context, s *storage.Storage) (bool, error) {
	if f.state != Pending {
		return false, ErrNotPending
	}
	for _, p := range f.params {
		if !p.Available(s) {
			f.blockKind, f.blockName = p.Blocker(s)
			return false, nil
		}
	}
	f.blockKind, f.blockName = "", ""

	if err := f.invoke(ctx, s); err != nil {
		f.state = Failed
		return true, err
	}
	f.state = Executed
	return true, nil
}

// New0 builds a component without arguments. It runs in the first round.
func New0(name string, fn func(ctx context.Context) error) *Function {
	return &Function{
		name:   name,
		invoke: func(ctx context.Context, _ *storage.Storage) error { return fn(ctx) },
	}
}

// New1 builds a component taking one argument.
func New1[P1 param.Param[P1]](name string, fn func(context.Context, P1) error) *Function {
	return &Function{
		name:   name,
		params: []param.Descriptor{param.Describe[P1]()},
		invoke: func(ctx context.Context, s *storage.Storage) error {
			var p1 P1
			return fn(ctx, p1.Fetch(s))
		},
	}
}

// New2 builds a component taking two arguments.
func New2[P1 param.Param[P1], P2 param.Param[P2]](name string, fn func(context.Context, P1, P2) error) *Function {
	return &Function{
		name:   name,
		params: []param.Descriptor{param.Describe[P1](), param.Describe[P2]()},
		invoke: func(ctx context.Context, s *storage.Storage) error {
			var p1 P1
			var p2 P2
			return fn(ctx, p1.Fetch(s), p2.Fetch(s))
		},
	}
}

// New3 builds a component taking three arguments.
func New3[P1 param.Param[P1], P2 param.Param[P2], P3 param.Param[P3]](name string, fn func(context.Context, P1, P2, P3) error) *Function {
	return &Function{
		name:   name,
		params: []param.Descriptor{param.Describe[P1](), param.Describe[P2](), param.Describe[P3]()},
		invoke: func(ctx context.Context, s *storage.Storage) error {
			var p1 P1
			var p2 P2
			var p3 P3
			return fn(ctx, p1.Fetch(s), p2.Fetch(s), p3.Fetch(s))
		},
	}
}

// New4 builds a component taking four arguments. Use tuples for more.
func New4[P1 param.Param[P1], P2 param.Param[P2], P3 param.Param[P3], P4 param.Param[P4]](name string, fn func(context.Context, P1, P2, P3, P4) error) *Function {
	return &Function{
		name:   name,
		params: []param.Descriptor{param.Describe[P1](), param.Describe[P2](), param.Describe[P3](), param.Describe[P4]()},
		invoke: func(ctx context.Context, s *storage.Storage) error {
			var p1 P1
			var p2 P2
			var p3 P3
			var p4 P4
			return fn(ctx, p1.Fetch(s), p2.Fetch(s), p3.Fetch(s), p4.Fetch(s))
		},
	}
}

// Struct wraps value and an entry point taking it as receiver, typically a
// method expression such as (*Probe).Run. The component is named after the
// value's type.
func Struct[S any, P param.Param[P]](value S, entry func(S, context.Context, P) error) *Function {
	name := strings.TrimPrefix(reflect.TypeFor[S]().String(), "*")
	return New1(name, func(ctx context.Context, p P) error {
		return entry(value, ctx, p)
	})
}
