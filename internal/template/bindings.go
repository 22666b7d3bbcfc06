package template

import "github.com/flashcpp/corefront/internal/types"

// Bindings is the substitution context ExpressionSubstitutor walks an AST
// against: scalar template-parameter bindings, pack bindings, and the
// parameter name order needed to resolve `sizeof...(P)` against a pack that
// has already been substituted away.
type Bindings struct {
	Scalars    map[string]types.TemplateArgument
	Packs      map[string][]types.TemplateArgument
	ParamOrder []string
}

// NewBindings constructs an empty Bindings.
func NewBindings() *Bindings {
	return &Bindings{
		Scalars: make(map[string]types.TemplateArgument),
		Packs:   make(map[string][]types.TemplateArgument),
	}
}

// Scalar returns the bound argument for a non-pack parameter name.
func (b *Bindings) Scalar(name string) (types.TemplateArgument, bool) {
	a, ok := b.Scalars[name]
	return a, ok
}

// Pack returns the bound argument slice for a pack parameter name.
func (b *Bindings) Pack(name string) ([]types.TemplateArgument, bool) {
	a, ok := b.Packs[name]
	return a, ok
}

// PackCardinality returns len(Packs[name]) for `sizeof...(name)`.
func (b *Bindings) PackCardinality(name string) (int, bool) {
	a, ok := b.Packs[name]
	if !ok {
		return 0, false
	}
	return len(a), true
}
