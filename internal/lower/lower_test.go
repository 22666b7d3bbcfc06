package lower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/ir"
	"github.com/flashcpp/corefront/internal/mangle"
	"github.com/flashcpp/corefront/internal/overload"
	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

type fakeResolver map[string]VariableInfo

func (f fakeResolver) ResolveVariable(name string) (VariableInfo, bool) {
	v, ok := f[name]
	return v, ok
}

type fakeCandidates map[string][]*overload.Candidate

func (f fakeCandidates) Candidates(name string) []*overload.Candidate { return f[name] }

func newFixture(t *testing.T) (*Lowering, *types.Registry, *ir.Builder) {
	t.Helper()
	in := intern.New()
	reg := types.NewRegistry(in)
	b := ir.NewBuilder("f")
	l := New(b, reg, fakeResolver{}, fakeCandidates{}, overload.New(reg), mangle.New(reg, mangle.X86_64Itanium{}))
	return l, reg, b
}

func TestLowerIdentProducesDirectLValueThenLoads(t *testing.T) {
	l, reg, b := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	l.resolver = fakeResolver{"x": {Type: intIdx, IsLocal: true}}

	result, err := l.Lower(ast.NewIdent("x", token.Span{}), Context{})
	require.NoError(t, err)
	require.Equal(t, ir.PRValue, result.Category)

	fn := b.Function()
	require.Len(t, fn.Instructions, 2)
	require.Equal(t, ir.OpLValueAddress, fn.Instructions[0].Op)
	require.Equal(t, ir.OpLoad, fn.Instructions[1].Op)
}

func TestLowerIdentAddressContextSkipsLoad(t *testing.T) {
	l, reg, b := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	l.resolver = fakeResolver{"x": {Type: intIdx, IsLocal: true}}

	result, err := l.Lower(ast.NewIdent("x", token.Span{}), Context{WantAddress: true})
	require.NoError(t, err)
	require.Equal(t, ir.LValue, result.Category)
	require.Equal(t, ir.LValueDirect, result.LValue.Kind)
	require.Len(t, b.Function().Instructions, 1)
}

func TestLowerAssignStoresThroughLValueKind(t *testing.T) {
	l, reg, b := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	l.resolver = fakeResolver{"x": {Type: intIdx, IsLocal: true}}

	assign := ast.NewBinaryExpr(ast.OpAssign, ast.NewIdent("x", token.Span{}), ast.NewIntLiteral(7, token.Span{}), token.Span{})
	_, err := l.Lower(assign, Context{})
	require.NoError(t, err)

	fn := b.Function()
	last := fn.Instructions[len(fn.Instructions)-1]
	require.Equal(t, ir.OpStore, last.Op)
	require.Equal(t, ir.LValueDirect, last.Payload)
}

func TestLowerMemberAccessComputesOffsetFromStructLayout(t *testing.T) {
	l, reg, _ := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	in := reg.Interner()

	structIdx, err := reg.AddType("Point", types.KindStruct, 0)
	require.NoError(t, err)
	si := &types.StructInfo{
		Members: []types.StructMember{
			{Name: in.Intern("x"), Type: intIdx},
			{Name: in.Intern("y"), Type: intIdx},
		},
	}
	require.NoError(t, si.Finalize(reg, nil))
	reg.SetStructInfo(structIdx, si)
	reg.RefreshSize(structIdx)

	l.resolver = fakeResolver{"p": {Type: structIdx, IsLocal: true}}
	access := ast.NewMemberAccessExpr(ast.NewIdent("p", token.Span{}), ast.AccessDot, "y", token.Span{})

	result, err := l.Lower(access, Context{WantAddress: true})
	require.NoError(t, err)
	require.Equal(t, ir.LValueMember, result.LValue.Kind)
	require.Equal(t, 4, result.LValue.Offset)
}

func TestLowerSizeofOfTypeFoldsToStructSize(t *testing.T) {
	l, reg, _ := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	structIdx, _ := reg.AddType("Pair", types.KindStruct, 0)
	si := &types.StructInfo{Members: []types.StructMember{
		{Name: reg.Interner().Intern("a"), Type: intIdx},
		{Name: reg.Interner().Intern("b"), Type: intIdx},
	}}
	require.NoError(t, si.Finalize(reg, nil))
	reg.SetStructInfo(structIdx, si)
	reg.RefreshSize(structIdx)

	expr := ast.NewSizeofExprOfType(ast.NewResolvedTypeExpr(structIdx, types.CVQualNone, types.RefQualNone, token.Span{}), token.Span{})
	result, err := l.Lower(expr, Context{})
	require.NoError(t, err)

	fn := l.builder.Function()
	last := fn.Instructions[len(fn.Instructions)-1]
	require.Equal(t, int64(8), last.Payload)
	require.Equal(t, ir.PRValue, result.Category)
}

func TestLowerCastStaticFloatToIntEmitsConversionOp(t *testing.T) {
	l, reg, b := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	doubleIdx, _ := reg.AddType("double", types.KindFloat64, 64)
	l.resolver = fakeResolver{"d": {Type: doubleIdx, IsLocal: true}}

	cast := ast.NewCastExpr(ast.CastStatic, ast.NewResolvedTypeExpr(intIdx, types.CVQualNone, types.RefQualNone, token.Span{}), ast.NewIdent("d", token.Span{}), token.Span{})
	_, err := l.Lower(cast, Context{})
	require.NoError(t, err)

	fn := b.Function()
	last := fn.Instructions[len(fn.Instructions)-1]
	require.Equal(t, ir.OpFloatToInt, last.Op)
}

func TestLowerCastRvalueReferenceIsAlwaysXValue(t *testing.T) {
	l, reg, _ := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	l.resolver = fakeResolver{"x": {Type: intIdx, IsLocal: true}}

	target := ast.NewReferenceTypeExpr(ast.NewResolvedTypeExpr(intIdx, types.CVQualNone, types.RefQualNone, token.Span{}), ast.RefRValue, token.Span{})
	cast := ast.NewCastExpr(ast.CastStatic, target, ast.NewIdent("x", token.Span{}), token.Span{})

	result, err := l.Lower(cast, Context{})
	require.NoError(t, err)
	require.Equal(t, ir.XValue, result.Category)
	require.NotNil(t, result.LValue)
	require.Equal(t, "x", result.LValue.BaseName)
}

func TestLowerCallResolvesOverloadAndEmitsMangledTarget(t *testing.T) {
	l, reg, b := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	l.resolver = fakeResolver{"n": {Type: intIdx, IsLocal: true}}

	decl := ast.NewFunctionDecl("square", token.Span{})
	decl.Params = []*ast.ParamDecl{ast.NewParamDecl("v", ast.NewResolvedTypeExpr(intIdx, types.CVQualNone, types.RefQualNone, token.Span{}), token.Span{})}
	decl.ReturnType = ast.NewResolvedTypeExpr(intIdx, types.CVQualNone, types.RefQualNone, token.Span{})
	candidate := &overload.Candidate{Decl: decl, Params: []overload.Param{{Type: intIdx}}}
	l.candidates = fakeCandidates{"square": {candidate}}

	call := ast.NewCallExpr(ast.NewIdent("square", token.Span{}), []ast.Expr{ast.NewIdent("n", token.Span{})}, token.Span{})
	result, err := l.Lower(call, Context{})
	require.NoError(t, err)
	require.Equal(t, intIdx, result.Type)

	fn := b.Function()
	last := fn.Instructions[len(fn.Instructions)-1]
	require.Equal(t, ir.OpFunctionCall, last.Op)
	require.NotEmpty(t, last.Payload)
}

func TestLowerCallNoMatchingOverloadFails(t *testing.T) {
	l, reg, _ := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	l.resolver = fakeResolver{"n": {Type: intIdx, IsLocal: true}}
	l.candidates = fakeCandidates{}

	call := ast.NewCallExpr(ast.NewIdent("missing", token.Span{}), []ast.Expr{ast.NewIdent("n", token.Span{})}, token.Span{})
	_, err := l.Lower(call, Context{})
	require.Error(t, err)
}
