package depex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dxecore/internal/guid"
)

var (
	protoA = guid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	protoB = guid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
)

type set map[guid.GUID]bool

func (s set) Installed(g guid.GUID) bool { return s[g] }

func TestEval(t *testing.T) {
	testCases := []struct {
		name      string
		expr      []byte
		installed set
		want      bool
	}{
		{name: "true", expr: NewBuilder().True().End().Bytes(), want: true},
		{name: "false", expr: NewBuilder().False().End().Bytes(), want: false},
		{name: "push installed", expr: NewBuilder().Push(protoA).End().Bytes(), installed: set{protoA: true}, want: true},
		{name: "push missing", expr: NewBuilder().Push(protoA).End().Bytes(), want: false},
		{name: "and", expr: AllOf(protoA, protoB), installed: set{protoA: true}, want: false},
		{name: "and both", expr: AllOf(protoA, protoB), installed: set{protoA: true, protoB: true}, want: true},
		{name: "or", expr: NewBuilder().Push(protoA).Push(protoB).Or().End().Bytes(), installed: set{protoB: true}, want: true},
		{name: "not", expr: NewBuilder().Push(protoA).Not().End().Bytes(), want: true},
		{name: "pop on empty stack", expr: NewBuilder().Not().End().Bytes(), want: true},
		{name: "and on empty stack", expr: NewBuilder().And().End().Bytes(), want: false},
		{name: "two values at end", expr: NewBuilder().True().True().End().Bytes(), want: false},
		{name: "empty stack at end", expr: NewBuilder().End().Bytes(), want: false},
		{name: "no end", expr: NewBuilder().True().Bytes(), want: false},
		{name: "unknown opcode", expr: []byte{0x06, 0x42, 0x08}, want: false},
		{name: "truncated guid", expr: []byte{0x02, 0x01, 0x02}, want: false},
		{name: "before", expr: NewBuilder().Before(protoA).End().Bytes(), want: false},
		{name: "sor unscheduled", expr: NewBuilder().Sor().True().End().Bytes(), want: false},
		{name: "sor not first", expr: NewBuilder().True().Sor().End().Bytes(), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			installed := tc.installed
			if installed == nil {
				installed = set{}
			}
			assert.Equal(t, tc.want, Parse(tc.expr).Eval(installed))
		})
	}
}

func TestEval_PushSatisfiedIsCached(t *testing.T) {
	d := Parse(NewBuilder().Push(protoA).End().Bytes())
	require.True(t, d.Eval(set{protoA: true}))
	assert.True(t, d.Eval(set{}), "a push seen satisfied stays satisfied")
}

func TestSchedule(t *testing.T) {
	d := Parse(NewBuilder().Sor().Push(protoA).End().Bytes())
	require.True(t, d.IsSOR())
	require.False(t, d.Eval(set{protoA: true}))

	d.Schedule()
	assert.False(t, d.IsSOR())
	assert.True(t, d.Eval(set{protoA: true}))
}

func TestAssociation(t *testing.T) {
	op, g, ok := Parse(NewBuilder().After(protoB).End().Bytes()).Association()
	require.True(t, ok)
	assert.Equal(t, OpAfter, op)
	assert.Equal(t, protoB, g)

	_, _, ok = Parse(AllOf(protoA)).Association()
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	d := Parse(append(AllOf(protoA), 0x42))
	assert.Equal(t, "PUSH(aaaaaaaa-0000-0000-0000-000000000001) END MALFORMED(0x42)", d.String())
	assert.Equal(t, []guid.GUID{protoA}, d.Pushes())
}
