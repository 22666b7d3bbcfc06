package ast

import "github.com/flashcpp/corefront/internal/token"

// CVQualifier is a type's const/volatile qualification.
type CVQualifier uint8

const (
	CVNone CVQualifier = iota
	CVConst
	CVVolatile
	CVConstVolatile
)

// RefQualifier is a reference qualification: none, lvalue (`&`), or rvalue
// (`&&`).
type RefQualifier uint8

const (
	RefNone RefQualifier = iota
	RefLValue
	RefRValue
)

// NamedTypeExpr is a plain type name as written in source (`int`, `Widget`,
// a still-unresolved template parameter name, or a namespace-qualified
// name).
type NamedTypeExpr struct {
	base
	Name         *QualifiedName
	PointerDepth int
	CV           CVQualifier
	Ref          RefQualifier
}

func NewNamedTypeExpr(name *QualifiedName, span token.Span) *NamedTypeExpr {
	return &NamedTypeExpr{base: base{span}, Name: name}
}

func (*NamedTypeExpr) typeNode() {}

// TemplateIdTypeExpr is `Base<Args...>`, the surface syntax for a template
// use-site the InstantiationEngine must resolve.
type TemplateIdTypeExpr struct {
	base
	Base *QualifiedName
	Args []TemplateArgExpr
}

func NewTemplateIdTypeExpr(baseName *QualifiedName, args []TemplateArgExpr, span token.Span) *TemplateIdTypeExpr {
	return &TemplateIdTypeExpr{base: base{span}, Base: baseName, Args: args}
}

func (*TemplateIdTypeExpr) typeNode() {}

// TemplateArgExpr is one argument in a `Base<...>` argument list: either a
// type argument, a constant-expression (non-type) argument, or (when
// Variadic is set on the enclosing parameter) a pack to be expanded.
type TemplateArgExpr struct {
	Type  TypeExpr // non-nil for a type argument
	Value Expr     // non-nil for a non-type argument
}

// PointerTypeExpr is `T*`.
type PointerTypeExpr struct {
	base
	Elem TypeExpr
}

func NewPointerTypeExpr(elem TypeExpr, span token.Span) *PointerTypeExpr {
	return &PointerTypeExpr{base: base{span}, Elem: elem}
}

func (*PointerTypeExpr) typeNode() {}

// ReferenceTypeExpr is `T&` (Ref == RefLValue) or `T&&` (Ref == RefRValue).
type ReferenceTypeExpr struct {
	base
	Elem TypeExpr
	Ref  RefQualifier
}

func NewReferenceTypeExpr(elem TypeExpr, ref RefQualifier, span token.Span) *ReferenceTypeExpr {
	return &ReferenceTypeExpr{base: base{span}, Elem: elem, Ref: ref}
}

func (*ReferenceTypeExpr) typeNode() {}

// ArrayTypeExpr is `T[N]` (Dim nil for an unbounded array, e.g. a function
// parameter written `T[]`) or the multidimensional `T[N][M]` via nested
// ArrayTypeExprs, which subscript lowering flattens to a single offset
// computation.
type ArrayTypeExpr struct {
	base
	Elem TypeExpr
	Dim  Expr // constant-expression dimension, nil if unbounded
}

func NewArrayTypeExpr(elem TypeExpr, dim Expr, span token.Span) *ArrayTypeExpr {
	return &ArrayTypeExpr{base: base{span}, Elem: elem, Dim: dim}
}

func (*ArrayTypeExpr) typeNode() {}

// DecltypeTypeExpr is `decltype(expr)`, used for deferred/template-dependent
// base-class lists.
type DecltypeTypeExpr struct {
	base
	Operand Expr
}

func NewDecltypeTypeExpr(operand Expr, span token.Span) *DecltypeTypeExpr {
	return &DecltypeTypeExpr{base: base{span}, Operand: operand}
}

func (*DecltypeTypeExpr) typeNode() {}

// DependentMemberTypeExpr is `Base<Args...>::member`, a qualified dependent
// name that must trigger instantiation of Base before member can be
// resolved.
type DependentMemberTypeExpr struct {
	base
	Outer  TypeExpr
	Member string
}

func NewDependentMemberTypeExpr(outer TypeExpr, member string, span token.Span) *DependentMemberTypeExpr {
	return &DependentMemberTypeExpr{base: base{span}, Outer: outer, Member: member}
}

func (*DependentMemberTypeExpr) typeNode() {}

// TemplateParamTypeExpr is a direct reference to a template type parameter
// (`T`) within a template's own declaration, before substitution.
type TemplateParamTypeExpr struct {
	base
	Name string
}

func NewTemplateParamTypeExpr(name string, span token.Span) *TemplateParamTypeExpr {
	return &TemplateParamTypeExpr{base: base{span}, Name: name}
}

func (*TemplateParamTypeExpr) typeNode() {}
