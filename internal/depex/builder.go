package depex

import "github.com/vk/dxecore/internal/guid"

// Builder emits expression bytes.
type Builder struct {
	b []byte
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) op(o Opcode) *Builder {
	b.b = append(b.b, byte(o))
	return b
}

func (b *Builder) withGUID(o Opcode, g guid.GUID) *Builder {
	b.b = append(b.b, byte(o))
	b.b = append(b.b, g.Bytes()...)
	return b
}

func (b *Builder) Before(g guid.GUID) *Builder { return b.withGUID(OpBefore, g) }
func (b *Builder) After(g guid.GUID) *Builder  { return b.withGUID(OpAfter, g) }
func (b *Builder) Push(g guid.GUID) *Builder   { return b.withGUID(OpPush, g) }
func (b *Builder) And() *Builder               { return b.op(OpAnd) }
func (b *Builder) Or() *Builder                { return b.op(OpOr) }
func (b *Builder) Not() *Builder               { return b.op(OpNot) }
func (b *Builder) True() *Builder              { return b.op(OpTrue) }
func (b *Builder) False() *Builder             { return b.op(OpFalse) }
func (b *Builder) End() *Builder               { return b.op(OpEnd) }
func (b *Builder) Sor() *Builder               { return b.op(OpSor) }

// Bytes returns the expression built so far.
func (b *Builder) Bytes() []byte {
	return append([]byte(nil), b.b...)
}

// AllOf builds an expression requiring every protocol in gs.
func AllOf(gs ...guid.GUID) []byte {
	b := NewBuilder()
	if len(gs) == 0 {
		return b.True().End().Bytes()
	}
	for i, g := range gs {
		b.Push(g)
		if i > 0 {
			b.And()
		}
	}
	return b.End().Bytes()
}
