// Package depex parses and evaluates driver dependency expressions.
package depex

import (
	"fmt"
	"strings"

	"github.com/vk/dxecore/internal/guid"
)

// Opcode is a dependency expression opcode.
type Opcode uint8

const (
	OpBefore Opcode = 0x00
	OpAfter  Opcode = 0x01
	OpPush   Opcode = 0x02
	OpAnd    Opcode = 0x03
	OpOr     Opcode = 0x04
	OpNot    Opcode = 0x05
	OpTrue   Opcode = 0x06
	OpFalse  Opcode = 0x07
	OpEnd    Opcode = 0x08
	OpSor    Opcode = 0x09

	// OpMalformed marks an opcode whose GUID operand was cut short, and any
	// byte outside the defined set.
	OpMalformed Opcode = 0xFF
)

var opNames = [...]string{"BEFORE", "AFTER", "PUSH", "AND", "OR", "NOT", "TRUE", "FALSE", "END", "SOR"}

func (o Opcode) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "MALFORMED"
}

func (o Opcode) hasOperand() bool {
	return o == OpBefore || o == OpAfter || o == OpPush
}

// Instr is one decoded instruction.
type Instr struct {
	Op   Opcode
	GUID guid.GUID
	// Raw is the original byte for malformed instructions.
	Raw byte
}

func (i Instr) String() string {
	switch {
	case i.Op.hasOperand():
		return fmt.Sprintf("%s(%s)", i.Op, i.GUID)
	case i.Op == OpMalformed:
		return fmt.Sprintf("MALFORMED(%#02x)", i.Raw)
	default:
		return i.Op.String()
	}
}

// Protocols answers whether a protocol is installed.
type Protocols interface {
	Installed(g guid.GUID) bool
}

// Depex is a parsed expression. It remembers PUSH operands that were seen
// installed, so it must not be shared between files.
type Depex struct {
	instrs    []Instr
	satisfied map[guid.GUID]bool
}

// Parse decodes an expression. Decoding never fails: bytes that do not form
// a valid instruction become a malformed instruction, which evaluates to
// false.
func Parse(b []byte) *Depex {
	d := &Depex{satisfied: make(map[guid.GUID]bool)}
	for i := 0; i < len(b); {
		op := Opcode(b[i])
		switch {
		case op.hasOperand():
			if i+1+guid.Size > len(b) {
				d.instrs = append(d.instrs, Instr{Op: OpMalformed, Raw: b[i]})
				return d
			}
			g, _ := guid.FromBytes(b[i+1:])
			d.instrs = append(d.instrs, Instr{Op: op, GUID: g})
			i += 1 + guid.Size
		case op <= OpSor:
			d.instrs = append(d.instrs, Instr{Op: op})
			i++
		default:
			d.instrs = append(d.instrs, Instr{Op: OpMalformed, Raw: b[i]})
			i++
		}
	}
	return d
}

// Eval evaluates the expression against the installed protocols. BEFORE,
// AFTER and an unscheduled SOR evaluate to false; the dispatcher resolves
// those itself.
func (d *Depex) Eval(p Protocols) bool {
	var stack []bool
	pop := func() bool {
		if len(stack) == 0 {
			return false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	for _, in := range d.instrs {
		switch in.Op {
		case OpBefore, OpAfter, OpSor, OpMalformed:
			return false
		case OpPush:
			if !d.satisfied[in.GUID] && p.Installed(in.GUID) {
				d.satisfied[in.GUID] = true
			}
			stack = append(stack, d.satisfied[in.GUID])
		case OpAnd:
			a, b := pop(), pop()
			stack = append(stack, a && b)
		case OpOr:
			a, b := pop(), pop()
			stack = append(stack, a || b)
		case OpNot:
			stack = append(stack, !pop())
		case OpTrue:
			stack = append(stack, true)
		case OpFalse:
			stack = append(stack, false)
		case OpEnd:
			return len(stack) == 1 && stack[0]
		}
	}
	return false
}

// Association returns the BEFORE or AFTER target of the expression.
func (d *Depex) Association() (Opcode, guid.GUID, bool) {
	if len(d.instrs) == 0 {
		return 0, guid.Nil, false
	}
	first := d.instrs[0]
	if first.Op != OpBefore && first.Op != OpAfter {
		return 0, guid.Nil, false
	}
	return first.Op, first.GUID, true
}

// IsSOR reports whether the expression waits for an explicit schedule.
func (d *Depex) IsSOR() bool {
	return len(d.instrs) > 0 && d.instrs[0].Op == OpSor
}

// Schedule drops a leading SOR so the rest of the expression can be
// evaluated.
func (d *Depex) Schedule() {
	if d.IsSOR() {
		d.instrs = d.instrs[1:]
	}
}

// Pushes returns the PUSH operands in expression order.
func (d *Depex) Pushes() []guid.GUID {
	var out []guid.GUID
	for _, in := range d.instrs {
		if in.Op == OpPush {
			out = append(out, in.GUID)
		}
	}
	return out
}

func (d *Depex) String() string {
	parts := make([]string, len(d.instrs))
	for i, in := range d.instrs {
		parts[i] = in.String()
	}
	return strings.Join(parts, " ")
}
