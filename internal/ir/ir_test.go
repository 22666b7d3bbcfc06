package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

func TestAddInstructionAllocatesFreshTemp(t *testing.T) {
	b := NewBuilder("add")
	t1 := b.AddInstruction(OpLoad, nil, "x", token.Span{})
	t2 := b.AddInstruction(OpLoad, nil, "y", token.Span{})
	require.NotEqual(t, t1, t2)

	sum := b.AddInstruction(OpBinary, []TempVar{t1, t2}, "+", token.Span{})
	require.Len(t, b.Function().Instructions, 3)
	require.Equal(t, []TempVar{t1, t2}, b.Function().Instructions[2].Args)
	require.Equal(t, sum, b.Function().Instructions[2].Dest)
}

func TestVoidInstructionHasNoDest(t *testing.T) {
	b := NewBuilder("assign")
	lv := b.AddInstruction(OpLValueAddress, nil, "v", token.Span{})
	rv := b.AddInstruction(OpLoad, nil, 42, token.Span{})
	b.AddVoidInstruction(OpStore, []TempVar{lv, rv}, nil, token.Span{})

	last := b.Function().Instructions[len(b.Function().Instructions)-1]
	require.Equal(t, InvalidTempVar, last.Dest)
}

func TestMetadataRoundTrips(t *testing.T) {
	b := NewBuilder("f")
	temp := b.AddInstruction(OpLValueAddress, nil, "member_field", token.Span{})
	b.SetMetadata(temp, TempVarMetadata{
		Category: LValue,
		LValue:   &LValueInfo{Kind: LValueMember, MemberName: "field", Offset: 4},
		PointeeKind: types.KindInt32,
		PointeeBits: 32,
	})

	got, ok := b.Metadata(temp)
	require.True(t, ok)
	require.Equal(t, LValue, got.Category)
	require.Equal(t, "field", got.LValue.MemberName)
	require.Equal(t, 4, got.LValue.Offset)
}

func TestPrettyPrintRendersInstructionsAndTemps(t *testing.T) {
	b := NewBuilder("sum")
	a := b.AddInstruction(OpLoad, nil, "a", token.Span{})
	c := b.AddInstruction(OpBinary, []TempVar{a}, "+1", token.Span{})
	b.SetMetadata(c, TempVarMetadata{Category: PRValue})

	out := PrettyPrint(b.Function())
	require.Contains(t, out, "fn sum {")
	require.Contains(t, out, "binop")
	require.Contains(t, out, "}")
}
