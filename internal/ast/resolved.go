package ast

import (
	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

// ResolvedTypeExpr is a TypeExpr leaf produced only by template
// substitution: a template parameter that has already been resolved to a
// concrete types.TypeIndex. It lets the rest of the pipeline keep working
// in terms of ast.TypeExpr after substitution without re-resolving a name
// back through the type registry.
type ResolvedTypeExpr struct {
	base
	Index types.TypeIndex
	CV    types.CVQual
	Ref   types.RefQual
}

func NewResolvedTypeExpr(index types.TypeIndex, cv types.CVQual, ref types.RefQual, span token.Span) *ResolvedTypeExpr {
	return &ResolvedTypeExpr{base: base{span}, Index: index, CV: cv, Ref: ref}
}

func (*ResolvedTypeExpr) typeNode() {}

// ResolvedValueExpr is an Expr leaf produced only by template substitution:
// a non-type template parameter already resolved to a constant value.
type ResolvedValueExpr struct {
	base
	Type  types.TypeIndex
	Value int64
}

func NewResolvedValueExpr(typ types.TypeIndex, value int64, span token.Span) *ResolvedValueExpr {
	return &ResolvedValueExpr{base: base{span}, Type: typ, Value: value}
}

func (*ResolvedValueExpr) exprNode() {}
