package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/token"
)

func TestLookupWalksOuterScopes(t *testing.T) {
	in := intern.New()
	fn := in.Intern("outer_fn")
	local := in.Intern("local_var")

	tab := NewInMemory()
	decl := ast.NewFunctionDecl("outer_fn", token.Span{})
	tab.Insert(fn, decl)

	tab.EnterScope(ScopeFunction, intern.Invalid)
	localDecl := ast.NewFieldDecl("local_var", nil, token.Span{})
	tab.Insert(local, localDecl)

	got, ok := tab.Lookup(fn)
	require.True(t, ok)
	require.Same(t, decl, got)

	got2, ok := tab.Lookup(local)
	require.True(t, ok)
	require.Same(t, localDecl, got2)

	tab.ExitScope()
	_, ok = tab.Lookup(local)
	require.False(t, ok)
}

func TestLookupAllAccumulatesOverloadSet(t *testing.T) {
	in := intern.New()
	name := in.Intern("f")

	tab := NewInMemory()
	first := ast.NewFunctionDecl("f", token.Span{})
	tab.Insert(name, first)

	tab.EnterScope(ScopeNamespace, in.Intern("ns"))
	second := ast.NewFunctionDecl("f", token.Span{})
	tab.Insert(name, second)

	all := tab.LookupAll(name)
	require.Len(t, all, 2)
}

func TestExitGlobalScopePanics(t *testing.T) {
	tab := NewInMemory()
	require.Panics(t, func() { tab.ExitScope() })
}

func TestCurrentNamespaceReturnsInnermostNamed(t *testing.T) {
	in := intern.New()
	ns := in.Intern("widgets")

	tab := NewInMemory()
	tab.EnterScope(ScopeNamespace, ns)
	tab.EnterScope(ScopeFunction, intern.Invalid)

	require.Equal(t, ns, tab.CurrentNamespace())
}
