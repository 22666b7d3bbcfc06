package constexpr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/token"
)

func TestEvaluateArithmeticFoldsConstant(t *testing.T) {
	e := New()
	expr := ast.NewBinaryExpr(ast.OpAdd,
		ast.NewIntLiteral(2, token.Span{}),
		ast.NewBinaryExpr(ast.OpMul, ast.NewIntLiteral(3, token.Span{}), ast.NewIntLiteral(4, token.Span{}), token.Span{}),
		token.Span{})

	res := e.Evaluate(expr, NewEvaluationContext())
	require.True(t, res.Ok)
	require.Equal(t, int64(14), res.Int)
}

func TestEvaluateDivisionByZeroFails(t *testing.T) {
	e := New()
	expr := ast.NewBinaryExpr(ast.OpDiv, ast.NewIntLiteral(1, token.Span{}), ast.NewIntLiteral(0, token.Span{}), token.Span{})

	res := e.Evaluate(expr, NewEvaluationContext())
	require.False(t, res.Ok)
	require.Error(t, res.Err)
}

func TestEvaluateUnresolvedIdentifierFails(t *testing.T) {
	e := New()
	res := e.Evaluate(ast.NewTemplateParameterRefExpr("N", token.Span{}), NewEvaluationContext())
	require.False(t, res.Ok)
}

func TestEvaluateTernaryPicksBranchWithoutEvaluatingOther(t *testing.T) {
	e := New()
	// The else-branch divides by zero; since cond is true, it must never be
	// evaluated.
	expr := ast.NewTernaryExpr(
		ast.NewBoolLiteral(true, token.Span{}),
		ast.NewIntLiteral(1, token.Span{}),
		ast.NewBinaryExpr(ast.OpDiv, ast.NewIntLiteral(1, token.Span{}), ast.NewIntLiteral(0, token.Span{}), token.Span{}),
		token.Span{})

	res := e.Evaluate(expr, NewEvaluationContext())
	require.True(t, res.Ok)
	require.Equal(t, int64(1), res.Int)
}

func TestEvaluateBoundIdentifierResolvesFromContext(t *testing.T) {
	e := New()
	ctx := NewEvaluationContext()
	ctx.Values["N"] = EvalResult{Ok: true, Kind: KindInt, Int: 7}

	res := e.Evaluate(ast.NewTemplateParameterRefExpr("N", token.Span{}), ctx)
	require.True(t, res.Ok)
	require.Equal(t, int64(7), res.Int)
}

func TestEvaluateMixedFloatPromotesComparison(t *testing.T) {
	e := New()
	expr := ast.NewBinaryExpr(ast.OpLt, ast.NewIntLiteral(1, token.Span{}), ast.NewFloatLiteral(1.5, token.Span{}), token.Span{})

	res := e.Evaluate(expr, NewEvaluationContext())
	require.True(t, res.Ok)
	require.True(t, res.Bool)
}
