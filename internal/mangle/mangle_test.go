package mangle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/types"
)

func newTestMangler(t *testing.T) (*Mangler, *types.Registry) {
	t.Helper()
	in := intern.New()
	reg := types.NewRegistry(in)
	return New(reg, X86_64Itanium{}), reg
}

func TestMangleCLinkageIsVerbatim(t *testing.T) {
	m, _ := newTestMangler(t)
	name := m.Mangle(Signature{Name: "malloc", Linkage: ast.LinkageC})
	require.Equal(t, "malloc", name)
}

func TestMangleFreeFunctionIsStableAndUnique(t *testing.T) {
	m, reg := newTestMangler(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	doubleIdx, _ := reg.AddType("double", types.KindFloat64, 64)

	sig1 := Signature{Name: "add", ParamTypes: []types.TypeIndex{intIdx, intIdx}}
	sig2 := Signature{Name: "add", ParamTypes: []types.TypeIndex{intIdx, doubleIdx}}

	n1 := m.Mangle(sig1)
	n2 := m.Mangle(sig1)
	n3 := m.Mangle(sig2)

	require.Equal(t, n1, n2)
	require.NotEqual(t, n1, n3)
}

func TestMangleMemberFunctionIncludesParentStruct(t *testing.T) {
	m, reg := newTestMangler(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)

	sig := Signature{Name: "getValue", ParentStruct: "Widget", ParamTypes: []types.TypeIndex{intIdx}}
	name := m.Mangle(sig)
	require.Contains(t, name, "Widget")
	require.Contains(t, name, "getValue")
}

func TestMangleOperatorOverloadUsesOperatorToken(t *testing.T) {
	m, _ := newTestMangler(t)
	sig := Signature{OperatorName: "+", ParentStruct: "Vec2"}
	name := m.Mangle(sig)
	require.Contains(t, name, "pl")
}

func TestMangleVariadicAppendsZ(t *testing.T) {
	m, reg := newTestMangler(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)

	sig := Signature{Name: "printf", ParamTypes: []types.TypeIndex{intIdx}, IsVariadic: true}
	name := m.Mangle(sig)
	require.True(t, len(name) > 0 && name[len(name)-1] == 'z')
}
