package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/intern"
)

func newTestRegistry() (*Registry, *intern.Interner) {
	in := intern.New()
	return NewRegistry(in), in
}

func TestAddTypeAssignsStableIndex(t *testing.T) {
	r, _ := newTestRegistry()
	idx, err := r.AddType("int", KindInt32, 32)
	require.NoError(t, err)
	require.Equal(t, TypeIndex(0), idx)

	info := r.Get(idx)
	require.Equal(t, KindInt32, info.Kind)
	require.Equal(t, 4, info.SizeBytes())
}

func TestAddTypeDuplicateNameRejected(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.AddType("Widget", KindStruct, 0)
	require.NoError(t, err)

	_, err = r.AddType("Widget", KindStruct, 0)
	require.Error(t, err)
	var dup *DuplicateTypeError
	require.ErrorAs(t, err, &dup)
}

func TestFinalizeSimpleStruct(t *testing.T) {
	r, in := newTestRegistry()
	intIdx, err := r.AddType("int", KindInt32, 32)
	require.NoError(t, err)
	charIdx, err := r.AddType("char", KindChar, 8)
	require.NoError(t, err)

	si := &StructInfo{
		Name: in.Intern("Pair"),
		Members: []StructMember{
			{Name: in.Intern("a"), Type: charIdx, Alignment: 1},
			{Name: in.Intern("b"), Type: intIdx, Alignment: 4},
		},
	}
	require.NoError(t, si.finalize(r))

	require.Equal(t, 0, si.Members[0].Offset)
	require.Equal(t, 4, si.Members[1].Offset) // padded up to int's alignment
	require.Equal(t, 8, si.TotalSize)
	require.Equal(t, 4, si.Alignment)
}

func TestFinalizeUnionSharesOffsetZero(t *testing.T) {
	r, in := newTestRegistry()
	intIdx, _ := r.AddType("int", KindInt32, 32)
	doubleIdx, _ := r.AddType("double", KindFloat64, 64)

	si := &StructInfo{
		Name:    in.Intern("U"),
		IsUnion: true,
		Members: []StructMember{
			{Name: in.Intern("i"), Type: intIdx, Alignment: 4},
			{Name: in.Intern("d"), Type: doubleIdx, Alignment: 8},
		},
	}
	require.NoError(t, si.finalize(r))

	require.Equal(t, 0, si.Members[0].Offset)
	require.Equal(t, 0, si.Members[1].Offset)
	require.Equal(t, 8, si.TotalSize)
	require.Equal(t, 8, si.Alignment)
}

func TestFinalizeRespectsPackAlignment(t *testing.T) {
	r, in := newTestRegistry()
	charIdx, _ := r.AddType("char", KindChar, 8)
	intIdx, _ := r.AddType("int", KindInt32, 32)

	si := &StructInfo{
		Name:          in.Intern("Packed"),
		PackAlignment: 1,
		Members: []StructMember{
			{Name: in.Intern("a"), Type: charIdx, Alignment: 1},
			{Name: in.Intern("b"), Type: intIdx, Alignment: 4},
		},
	}
	require.NoError(t, si.finalize(r))

	require.Equal(t, 1, si.Members[1].Offset) // no padding under pack(1)
	require.Equal(t, 5, si.TotalSize)
	require.Equal(t, 1, si.Alignment)
}

func TestFinalizeWithBasesLaysOutBaseFirst(t *testing.T) {
	r, in := newTestRegistry()
	intIdx, _ := r.AddType("int", KindInt32, 32)
	charIdx, _ := r.AddType("char", KindChar, 8)

	baseIdx, _ := r.AddType("Base", KindStruct, 0)
	baseInfo := &StructInfo{
		Name:    in.Intern("Base"),
		Members: []StructMember{{Name: in.Intern("x"), Type: intIdx, Alignment: 4}},
	}
	require.NoError(t, baseInfo.finalize(r))
	r.SetStructInfo(baseIdx, baseInfo)
	r.RefreshSize(baseIdx)

	derived := &StructInfo{
		Name:    in.Intern("Derived"),
		Members: []StructMember{{Name: in.Intern("y"), Type: charIdx, Alignment: 1}},
	}
	bases := []BaseClass{{Type: baseIdx, Access: AccessPublic}}
	require.NoError(t, derived.finalizeWithBases(r, bases))

	require.Equal(t, 0, derived.Bases[0].Offset)
	require.Equal(t, 4, derived.Members[0].Offset)
	require.Equal(t, 8, derived.TotalSize) // padded up to the base's 4-byte alignment
}

func TestFinalizePacksConsecutiveBitfieldsIntoOneUnit(t *testing.T) {
	r, in := newTestRegistry()
	intIdx, _ := r.AddType("int", KindInt32, 32)

	si := &StructInfo{
		Name: in.Intern("Flags"),
		Members: []StructMember{
			{Name: in.Intern("a"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 3},
			{Name: in.Intern("b"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 5},
			{Name: in.Intern("c"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 20},
		},
	}
	require.NoError(t, si.finalize(r))

	require.Equal(t, 0, si.Members[0].Offset)
	require.Equal(t, 0, si.Members[0].BitfieldBitOffset)
	require.Equal(t, 0, si.Members[1].Offset)
	require.Equal(t, 3, si.Members[1].BitfieldBitOffset)
	require.Equal(t, 0, si.Members[2].Offset)
	require.Equal(t, 8, si.Members[2].BitfieldBitOffset)
	require.Equal(t, 4, si.TotalSize) // all three share one 4-byte storage unit
}

func TestFinalizeBitfieldOverflowStartsNewUnit(t *testing.T) {
	r, in := newTestRegistry()
	intIdx, _ := r.AddType("int", KindInt32, 32)

	si := &StructInfo{
		Name: in.Intern("Flags"),
		Members: []StructMember{
			{Name: in.Intern("a"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 24},
			{Name: in.Intern("b"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 16},
		},
	}
	require.NoError(t, si.finalize(r))

	require.Equal(t, 0, si.Members[0].Offset)
	require.Equal(t, 4, si.Members[1].Offset) // doesn't fit in the remaining 8 bits, starts a fresh unit
	require.Equal(t, 0, si.Members[1].BitfieldBitOffset)
	require.Equal(t, 8, si.TotalSize)
}

func TestFinalizeZeroWidthBitfieldForcesNewUnit(t *testing.T) {
	r, in := newTestRegistry()
	intIdx, _ := r.AddType("int", KindInt32, 32)

	si := &StructInfo{
		Name: in.Intern("Flags"),
		Members: []StructMember{
			{Name: in.Intern("a"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 3},
			{Name: in.Intern("pad"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 0},
			{Name: in.Intern("b"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 3},
		},
	}
	require.NoError(t, si.finalize(r))

	require.Equal(t, 0, si.Members[0].Offset)
	require.Equal(t, 4, si.Members[2].Offset) // `: 0` breaks the unit even though 3+3 bits would have fit
	require.Equal(t, 0, si.Members[2].BitfieldBitOffset)
	require.Equal(t, 8, si.TotalSize)
}

func TestFinalizeNonBitfieldMemberBreaksUnit(t *testing.T) {
	r, in := newTestRegistry()
	intIdx, _ := r.AddType("int", KindInt32, 32)
	charIdx, _ := r.AddType("char", KindChar, 8)

	si := &StructInfo{
		Name: in.Intern("Mixed"),
		Members: []StructMember{
			{Name: in.Intern("a"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 3},
			{Name: in.Intern("mid"), Type: charIdx, Alignment: 1},
			{Name: in.Intern("b"), Type: intIdx, Alignment: 4, IsBitfield: true, BitfieldWidth: 3},
		},
	}
	require.NoError(t, si.finalize(r))

	require.Equal(t, 0, si.Members[0].Offset)
	require.Equal(t, 4, si.Members[1].Offset)
	require.Equal(t, 8, si.Members[2].Offset) // a non-bitfield member ends the unit even mid-byte
}

func TestAddArrayTypeDedupsByElementAndLength(t *testing.T) {
	r, _ := newTestRegistry()
	intIdx, _ := r.AddType("int", KindInt32, 32)

	a1, err := r.AddArrayType(intIdx, 5)
	require.NoError(t, err)
	a2, err := r.AddArrayType(intIdx, 5)
	require.NoError(t, err)
	require.Equal(t, a1, a2)

	a3, err := r.AddArrayType(intIdx, 3)
	require.NoError(t, err)
	require.NotEqual(t, a1, a3)

	info := r.Get(a1)
	require.Equal(t, KindArray, info.Kind)
	require.Equal(t, 20, info.SizeBytes())
	require.Equal(t, intIdx, info.Array.ElementType)
	require.Equal(t, 5, info.Array.Length)
}

func TestInstantiationKeyStableAndOrderSensitive(t *testing.T) {
	in := intern.New()
	name := in.Intern("Vector")

	k1 := NewInstantiationKey(name, []TemplateArgument{TypeArgument{Type: 3}, ValueArgument{Type: 1, Value: 4}})
	k2 := NewInstantiationKey(name, []TemplateArgument{TypeArgument{Type: 3}, ValueArgument{Type: 1, Value: 4}})
	require.Equal(t, k1.Hash, k2.Hash)
	require.True(t, k1.Equal(k2))

	k3 := NewInstantiationKey(name, []TemplateArgument{ValueArgument{Type: 1, Value: 4}, TypeArgument{Type: 3}})
	require.False(t, k1.Equal(k3))
}

func TestPackArgumentDependentPropagates(t *testing.T) {
	pack := PackArgument{Elems: []TemplateArgument{
		TypeArgument{Type: 5},
		TypeArgument{Type: InvalidTypeIndex},
	}}
	require.True(t, pack.IsDependent())

	resolved := PackArgument{Elems: []TemplateArgument{TypeArgument{Type: 5}, TypeArgument{Type: 6}}}
	require.False(t, resolved.IsDependent())
}
