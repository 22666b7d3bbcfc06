// Package constexpr implements the ConstExprEvaluator external
// collaborator: a pure, recursive evaluator over the literal/arithmetic
// subset of the expression grammar, used for sizeof/alignof results,
// non-type default arguments, bitfield widths, array dimensions,
// static_assert conditions, and fold-expression reduction.
package constexpr

import (
	"fmt"

	"github.com/flashcpp/corefront/internal/ast"
)

// Kind classifies an EvalResult's payload.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
)

// EvalResult is the outcome of evaluating one expression: either a value of
// the stated Kind, or an error describing why evaluation failed (not a
// constant expression, division by zero, unresolved identifier, etc).
type EvalResult struct {
	Ok    bool
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
	Err   error
}

func ok(v int64) EvalResult    { return EvalResult{Ok: true, Kind: KindInt, Int: v} }
func okF(v float64) EvalResult { return EvalResult{Ok: true, Kind: KindFloat, Float: v} }
func okB(v bool) EvalResult    { return EvalResult{Ok: true, Kind: KindBool, Bool: v} }
func fail(format string, args ...interface{}) EvalResult {
	return EvalResult{Ok: false, Err: fmt.Errorf(format, args...)}
}

// AsInt64 coerces a successful result to an int64, treating bool as 0/1 and
// truncating float. Used by callers (array dimensions, bitfield widths)
// that need an integral value regardless of the literal's original kind.
func (r EvalResult) AsInt64() (int64, bool) {
	if !r.Ok {
		return 0, false
	}
	switch r.Kind {
	case KindInt:
		return r.Int, true
	case KindBool:
		if r.Bool {
			return 1, true
		}
		return 0, true
	case KindFloat:
		return int64(r.Float), true
	}
	return 0, false
}

// EvaluationContext supplies the bindings a constant expression may
// reference: named non-type template parameters or enclosing-scope
// constants already folded to a value.
type EvaluationContext struct {
	Values map[string]EvalResult
}

// NewEvaluationContext returns an empty context.
func NewEvaluationContext() *EvaluationContext {
	return &EvaluationContext{Values: make(map[string]EvalResult)}
}

// Evaluator is the ConstExprEvaluator component.
type Evaluator struct{}

// New constructs an Evaluator. It holds no state: every call is a pure
// function of (expr, ctx).
func New() *Evaluator { return &Evaluator{} }

// Evaluate recursively folds expr to a constant, or returns a non-Ok result
// describing why it is not a constant expression.
func (e *Evaluator) Evaluate(expr ast.Expr, ctx *EvaluationContext) EvalResult {
	switch n := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(n)
	case *ast.ResolvedValueExpr:
		return ok(n.Value)
	case *ast.TemplateParameterRefExpr:
		if v, found := ctx.Values[n.Name]; found {
			return v
		}
		return fail("unresolved constant identifier %q", n.Name)
	case *ast.UnaryExpr:
		return e.evalUnary(n, ctx)
	case *ast.BinaryExpr:
		return e.evalBinary(n, ctx)
	case *ast.TernaryExpr:
		cond := e.Evaluate(n.Cond, ctx)
		if !cond.Ok {
			return cond
		}
		if truthy(cond) {
			return e.Evaluate(n.Then, ctx)
		}
		return e.Evaluate(n.Else, ctx)
	case *ast.SizeofPackExpr:
		if v, found := ctx.Values["..."+n.ParamName]; found {
			return v
		}
		return fail("sizeof...(%s) requires a bound pack", n.ParamName)
	default:
		return fail("expression of type %T is not a constant expression", expr)
	}
}

func (e *Evaluator) evalLiteral(lit *ast.Literal) EvalResult {
	switch lit.Kind {
	case ast.LitInt, ast.LitChar:
		return ok(lit.Int)
	case ast.LitFloat:
		return okF(lit.Float)
	case ast.LitBool:
		return okB(lit.Bool)
	default:
		return fail("literal kind %v is not a constant integral/floating/boolean expression", lit.Kind)
	}
}

func (e *Evaluator) evalUnary(n *ast.UnaryExpr, ctx *EvaluationContext) EvalResult {
	v := e.Evaluate(n.Operand, ctx)
	if !v.Ok {
		return v
	}
	switch n.Op {
	case ast.OpNeg:
		if v.Kind == KindFloat {
			return okF(-v.Float)
		}
		return ok(-v.Int)
	case ast.OpNot:
		return okB(!truthy(v))
	case ast.OpBitNot:
		return ok(^v.Int)
	default:
		return fail("operator %q is not valid in a constant expression", n.Op)
	}
}

func (e *Evaluator) evalBinary(n *ast.BinaryExpr, ctx *EvaluationContext) EvalResult {
	lhs := e.Evaluate(n.LHS, ctx)
	if !lhs.Ok {
		return lhs
	}
	rhs := e.Evaluate(n.RHS, ctx)
	if !rhs.Ok {
		return rhs
	}

	if lhs.Kind == KindFloat || rhs.Kind == KindFloat {
		return evalFloatBinary(n.Op, toFloat(lhs), toFloat(rhs))
	}
	return evalIntBinary(n.Op, toInt(lhs), toInt(rhs))
}

func evalIntBinary(op ast.BinaryOp, l, r int64) EvalResult {
	switch op {
	case ast.OpAdd:
		return ok(l + r)
	case ast.OpSub:
		return ok(l - r)
	case ast.OpMul:
		return ok(l * r)
	case ast.OpDiv:
		if r == 0 {
			return fail("division by zero in constant expression")
		}
		return ok(l / r)
	case ast.OpMod:
		if r == 0 {
			return fail("modulo by zero in constant expression")
		}
		return ok(l % r)
	case ast.OpBitAnd:
		return ok(l & r)
	case ast.OpBitOr:
		return ok(l | r)
	case ast.OpBitXor:
		return ok(l ^ r)
	case ast.OpShl:
		return ok(l << uint(r))
	case ast.OpShr:
		return ok(l >> uint(r))
	case ast.OpEq:
		return okB(l == r)
	case ast.OpNe:
		return okB(l != r)
	case ast.OpLt:
		return okB(l < r)
	case ast.OpLe:
		return okB(l <= r)
	case ast.OpGt:
		return okB(l > r)
	case ast.OpGe:
		return okB(l >= r)
	case ast.OpAnd:
		return okB(l != 0 && r != 0)
	case ast.OpOr:
		return okB(l != 0 || r != 0)
	default:
		return fail("operator %q is not valid in a constant integer expression", op)
	}
}

func evalFloatBinary(op ast.BinaryOp, l, r float64) EvalResult {
	switch op {
	case ast.OpAdd:
		return okF(l + r)
	case ast.OpSub:
		return okF(l - r)
	case ast.OpMul:
		return okF(l * r)
	case ast.OpDiv:
		if r == 0 {
			return fail("division by zero in constant expression")
		}
		return okF(l / r)
	case ast.OpEq:
		return okB(l == r)
	case ast.OpNe:
		return okB(l != r)
	case ast.OpLt:
		return okB(l < r)
	case ast.OpLe:
		return okB(l <= r)
	case ast.OpGt:
		return okB(l > r)
	case ast.OpGe:
		return okB(l >= r)
	default:
		return fail("operator %q is not valid in a constant floating-point expression", op)
	}
}

func truthy(r EvalResult) bool {
	switch r.Kind {
	case KindBool:
		return r.Bool
	case KindFloat:
		return r.Float != 0
	default:
		return r.Int != 0
	}
}

func toInt(r EvalResult) int64 {
	v, _ := r.AsInt64()
	return v
}

func toFloat(r EvalResult) float64 {
	if r.Kind == KindFloat {
		return r.Float
	}
	v, _ := r.AsInt64()
	return float64(v)
}
