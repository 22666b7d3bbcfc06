package overload

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

func newTestResolver(t *testing.T) (*Resolver, *types.Registry, types.TypeIndex, types.TypeIndex) {
	t.Helper()
	in := intern.New()
	reg := types.NewRegistry(in)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	doubleIdx, _ := reg.AddType("double", types.KindFloat64, 64)
	return New(reg), reg, intIdx, doubleIdx
}

func TestResolvePicksExactMatchOverConversion(t *testing.T) {
	r, _, intIdx, doubleIdx := newTestResolver(t)
	exact := &ast.FunctionDecl{Name: "f"}
	convert := &ast.FunctionDecl{Name: "f"}

	candidates := []*Candidate{
		{Decl: exact, Params: []Param{{Type: intIdx}}},
		{Decl: convert, Params: []Param{{Type: doubleIdx}}},
	}
	args := []Argument{{Type: intIdx, Category: PRValue}}

	winner, err := r.Resolve(candidates, args)
	require.NoError(t, err)
	require.Same(t, exact, winner.Decl)
}

func TestResolveRejectsRValueRefBindingToLValue(t *testing.T) {
	r, _, intIdx, _ := newTestResolver(t)
	candidate := &Candidate{Decl: &ast.FunctionDecl{Name: "take"}, Params: []Param{{Type: intIdx, Ref: ParamRValueRef}}}

	_, err := r.Resolve([]*Candidate{candidate}, []Argument{{Type: intIdx, Category: LValue}})
	require.Error(t, err)
	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
}

func TestResolveAllowsRValueRefBindingToXValue(t *testing.T) {
	r, _, intIdx, _ := newTestResolver(t)
	candidate := &Candidate{Decl: &ast.FunctionDecl{Name: "take"}, Params: []Param{{Type: intIdx, Ref: ParamRValueRef}}}

	winner, err := r.Resolve([]*Candidate{candidate}, []Argument{{Type: intIdx, Category: XValue}})
	require.NoError(t, err)
	require.Same(t, candidate, winner)
}

func TestResolveAmbiguousWhenTwoCandidatesTie(t *testing.T) {
	r, _, intIdx, _ := newTestResolver(t)
	a := &Candidate{Decl: &ast.FunctionDecl{Name: "g"}, Params: []Param{{Type: intIdx}}}
	b := &Candidate{Decl: &ast.FunctionDecl{Name: "g"}, Params: []Param{{Type: intIdx}}}

	_, err := r.Resolve([]*Candidate{a, b}, []Argument{{Type: intIdx, Category: PRValue}})
	require.Error(t, err)
	var ambiguous *AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	require.Len(t, ambiguous.Candidates, 2)
}

func TestResolveVariadicAcceptsExtraArguments(t *testing.T) {
	r, _, intIdx, _ := newTestResolver(t)
	printf := &Candidate{Decl: &ast.FunctionDecl{Name: "printf"}, Params: []Param{{Type: intIdx}}, IsVariadic: true}

	winner, err := r.Resolve([]*Candidate{printf}, []Argument{{Type: intIdx, Category: PRValue}, {Type: intIdx, Category: PRValue}})
	require.NoError(t, err)
	require.Same(t, printf, winner)
}

func TestResolveUserDefinedConversionWhenConvertingConstructorExists(t *testing.T) {
	r, reg, _, doubleIdx := newTestResolver(t)
	widgetIdx, _ := reg.AddType("Widget", types.KindStruct, 0)
	take := &Candidate{
		Decl:                         &ast.FunctionDecl{Name: "take"},
		Params:                       []Param{{Type: doubleIdx}},
		ConvertingConstructorTargets: map[int]bool{0: true},
	}
	// A struct argument has no standard conversion to double, so the call is
	// viable only through the converting-constructor (user-defined) path.
	_ = token.Span{}
	_, err := r.Resolve([]*Candidate{take}, []Argument{{Type: widgetIdx, Category: PRValue}})
	require.NoError(t, err)
}
