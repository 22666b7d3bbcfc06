// Package ast defines the AST node shapes the core consumes from the
// external parser driver and produces itself when the
// InstantiationEngine substitutes a template body. Nodes are
// owned by a per-translation-unit arena and are never mutated in
// place by ExpressionSubstitutor: substitution always returns a
// new tree.
package ast

import "github.com/flashcpp/corefront/internal/token"

// Node is any AST node with an associated source span.
type Node interface {
	Span() token.Span
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is a top-level or member declaration.
type Decl interface {
	Node
	declNode()
}

// TypeExpr is a type annotation as written in source, before resolution
// against the TypeRegistry.
type TypeExpr interface {
	Node
	typeNode()
}

// base embeds a span and is itself embedded by every concrete node, giving
// each one a Span() accessor without hand-repeating the field.
type base struct {
	span token.Span
}

func (b base) Span() token.Span { return b.span }

// Ident is a bare identifier reference (a name, not yet resolved against
// any scope).
type Ident struct {
	base
	Name string
}

func NewIdent(name string, span token.Span) *Ident {
	return &Ident{base: base{span}, Name: name}
}

func (*Ident) exprNode() {}
func (*Ident) typeNode() {}

// QualifiedName is a namespace- or struct-qualified name
// (`outer::inner::leaf`), used both as an expression (a static member or
// function reference) and, when it denotes a type, as a TypeExpr.
type QualifiedName struct {
	base
	Segments []string
}

func NewQualifiedName(segments []string, span token.Span) *QualifiedName {
	return &QualifiedName{base: base{span}, Segments: segments}
}

func (q *QualifiedName) Leaf() string {
	if len(q.Segments) == 0 {
		return ""
	}
	return q.Segments[len(q.Segments)-1]
}

func (*QualifiedName) exprNode() {}
func (*QualifiedName) typeNode() {}
