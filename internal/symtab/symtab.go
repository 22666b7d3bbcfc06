// Package symtab defines the SymbolTable boundary between the core and the
// parser driver. The real scoped name table lives in the parser driver;
// this package only fixes the interface shape and supplies an in-memory
// implementation used by its tests. No other package of the core imports it.
package symtab

import (
	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/intern"
)

// ScopeKind distinguishes the handful of scope kinds that affect lookup and
// name mangling (namespace scopes contribute to a qualified name; block
// scopes do not).
type ScopeKind uint8

const (
	ScopeNamespace ScopeKind = iota
	ScopeStruct
	ScopeFunction
	ScopeBlock
	ScopeTemplateParams
)

// SymbolTable is the external dependency the core needs from the parser
// driver: a scoped, insert/lookup name table. enter_scope/exit_scope push
// and pop a stack of Scopes; lookup walks outward from the innermost scope.
type SymbolTable interface {
	EnterScope(kind ScopeKind, name intern.Handle)
	ExitScope()
	Insert(name intern.Handle, decl ast.Decl)
	Lookup(name intern.Handle) (ast.Decl, bool)
	LookupAll(name intern.Handle) []ast.Decl
	CurrentNamespace() intern.Handle
}

// scope is one entry on the in-memory table's scope stack.
type scope struct {
	kind    ScopeKind
	name    intern.Handle
	symbols map[intern.Handle][]ast.Decl
}

// InMemory is a straightforward SymbolTable implementation good enough for
// tests: a slice-backed stack of scopes, each holding a
// multimap from name to every declaration inserted under it (overload
// sets accumulate rather than overwrite).
type InMemory struct {
	stack []*scope
}

// NewInMemory constructs a table with a single global scope already
// pushed.
func NewInMemory() *InMemory {
	t := &InMemory{}
	t.EnterScope(ScopeNamespace, intern.Invalid)
	return t
}

func (t *InMemory) EnterScope(kind ScopeKind, name intern.Handle) {
	t.stack = append(t.stack, &scope{kind: kind, name: name, symbols: make(map[intern.Handle][]ast.Decl)})
}

func (t *InMemory) ExitScope() {
	if len(t.stack) <= 1 {
		panic("symtab: cannot exit the global scope")
	}
	t.stack = t.stack[:len(t.stack)-1]
}

func (t *InMemory) Insert(name intern.Handle, decl ast.Decl) {
	top := t.stack[len(t.stack)-1]
	top.symbols[name] = append(top.symbols[name], decl)
}

func (t *InMemory) Lookup(name intern.Handle) (ast.Decl, bool) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if decls := t.stack[i].symbols[name]; len(decls) > 0 {
			return decls[len(decls)-1], true
		}
	}
	return nil, false
}

func (t *InMemory) LookupAll(name intern.Handle) []ast.Decl {
	var all []ast.Decl
	for i := len(t.stack) - 1; i >= 0; i-- {
		all = append(all, t.stack[i].symbols[name]...)
	}
	return all
}

func (t *InMemory) CurrentNamespace() intern.Handle {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].kind == ScopeNamespace && t.stack[i].name != intern.Invalid {
			return t.stack[i].name
		}
	}
	return intern.Invalid
}
