package ast

import "github.com/flashcpp/corefront/internal/token"

// Access is a C++ member access specifier.
type Access uint8

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

// ParamKind distinguishes the three kinds of template parameter.
type ParamKind uint8

const (
	ParamType ParamKind = iota
	ParamNonType
	ParamTemplate
)

// TemplateParamDecl is a single entry in a template's parameter list: a
// name, its kind, whether it is a variadic pack, and an optional default.
type TemplateParamDecl struct {
	Name       string
	Kind       ParamKind
	NonTypeOf  TypeExpr // for ParamNonType: the parameter's own type, e.g. `int N`
	IsVariadic bool
	Default    Node // TypeExpr for ParamType/ParamTemplate, Expr for ParamNonType; nil if none
}

// ParamDecl is a function parameter.
type ParamDecl struct {
	base
	Name    string
	Type    TypeExpr
	Default Expr // nil if none
}

func NewParamDecl(name string, t TypeExpr, span token.Span) *ParamDecl {
	return &ParamDecl{base: base{span}, Name: name, Type: t}
}

func (*ParamDecl) declNode() {}

// FieldDecl is a non-static data member.
type FieldDecl struct {
	base
	Name               string
	Type               TypeExpr
	Access             Access
	IsReference        bool
	Ref                RefQualifier
	PointerDepth       int
	BitfieldWidth      Expr // nil if not a bitfield
	DefaultInitializer Expr // nil if none
}

func NewFieldDecl(name string, t TypeExpr, span token.Span) *FieldDecl {
	return &FieldDecl{base: base{span}, Name: name, Type: t}
}

func (*FieldDecl) declNode() {}

// StaticFieldDecl is a static data member.
type StaticFieldDecl struct {
	base
	Name        string
	Type        TypeExpr
	Access      Access
	Initializer Expr
}

func (*StaticFieldDecl) declNode() {}

// FunctionDecl is a free function or member-function declaration/definition.
// ParentStruct is empty for a free function. Mangling and diagnostics always
// resolve the owning type against the StructInfo's qualified name supplied
// by the caller at mangle time, never against this field directly — see
// DESIGN.md for why ParentStruct is kept only as a display hint.
type FunctionDecl struct {
	base
	Name           string
	ParentStruct   string
	Namespace      []string
	TemplateParams []TemplateParamDecl
	Params         []*ParamDecl
	ReturnType     TypeExpr
	// RequiresClause is the function template's trailing `requires(...)`
	// constraint expression, nil if none. Evaluated by the instantiation
	// engine after substitution; failure removes the candidate silently
	// (SFINAE) rather than raising a diagnostic.
	RequiresClause Expr
	Body           []Stmt // nil for a declaration-only / lazy member
	IsVariadic     bool
	IsVirtual      bool
	IsPureVirtual  bool
	IsOverride     bool
	IsFinal        bool
	IsConstMethod  bool
	IsConstructor  bool
	IsDestructor   bool
	IsOperator     bool
	OperatorName   string // e.g. "+" when IsOperator
	Access         Access
	Linkage        Linkage
	// BodyPosition is set instead of Body for an out-of-line member-function
	// definition whose body was not yet parsed; the engine re-parses it from
	// this saved position once the enclosing class is instantiated.
	BodyPosition *token.Position
}

func NewFunctionDecl(name string, span token.Span) *FunctionDecl {
	return &FunctionDecl{base: base{span}, Name: name}
}

func (*FunctionDecl) declNode() {}

// Linkage distinguishes C linkage (verbatim name) from the default C++
// linkage (mangled name).
type Linkage uint8

const (
	LinkageCXX Linkage = iota
	LinkageC
)

// BaseClassDecl is one entry in a struct's base-class list.
type BaseClassDecl struct {
	Type      TypeExpr
	Access    Access
	IsVirtual bool
}

// StructDecl is a struct/class/union declaration, and also the pattern body
// for a class template (when TemplateParams is non-empty) or a partial
// specialization (when SpecializationArgs is non-empty).
type StructDecl struct {
	base
	Name               string
	Namespace          []string
	TemplateParams     []TemplateParamDecl
	SpecializationArgs []TemplateArgExpr // non-empty iff this is a partial specialization pattern
	Bases              []BaseClassDecl
	Fields             []*FieldDecl
	StaticFields       []*StaticFieldDecl
	Methods            []*FunctionDecl
	NestedTypes        []*StructDecl
	Aliases            []*AliasDecl
	StaticAsserts      []*StaticAssertDecl
	IsUnion            bool
	IsFinal            bool
	IsAbstract         bool
	PackAlignment      int // 0 = natural alignment, else `#pragma pack`-style override
}

func NewStructDecl(name string, span token.Span) *StructDecl {
	return &StructDecl{base: base{span}, Name: name}
}

func (*StructDecl) declNode() {}

// AliasDecl is `using Name = Target;`, including an alias template when
// TemplateParams is non-empty.
type AliasDecl struct {
	base
	Name           string
	TemplateParams []TemplateParamDecl
	Target         TypeExpr
}

func (*AliasDecl) declNode() {}

// ConceptDecl is `template<...> concept Name = requires-expr;`.
type ConceptDecl struct {
	base
	Name           string
	TemplateParams []TemplateParamDecl
	Requirement    Expr
}

func (*ConceptDecl) declNode() {}

// StaticAssertDecl is `static_assert(cond, "message");`.
type StaticAssertDecl struct {
	base
	Condition Expr
	Message   string
}

func (*StaticAssertDecl) declNode() {}

// NamespaceDecl groups declarations under a namespace name.
type NamespaceDecl struct {
	base
	Name  string
	Decls []Decl
}

func (*NamespaceDecl) declNode() {}

// ---- statements (minimal: enough to re-parse and lower function bodies) ----

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	base
	X Expr
}

func (*ExprStmt) stmtNode() {}

// ReturnStmt is `return expr;` (Value nil for `return;`).
type ReturnStmt struct {
	base
	Value Expr
}

func (*ReturnStmt) stmtNode() {}

// DeclStmt is a local variable declaration.
type DeclStmt struct {
	base
	Name        string
	Type        TypeExpr
	Initializer Expr
}

func (*DeclStmt) stmtNode() {}

// BlockStmt is a `{ ... }` statement sequence.
type BlockStmt struct {
	base
	Stmts []Stmt
}

func (*BlockStmt) stmtNode() {}
