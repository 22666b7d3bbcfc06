package template

import (
	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/types"
)

// MatchResult is the winning partial specialization for a concrete
// argument vector, together with the substitution it implies for the
// specialization pattern's own template parameters.
type MatchResult struct {
	Pattern   *ast.StructDecl
	Bindings  *Bindings
}

// MatchSpecializationPattern returns the most-specialized partial
// specialization whose pattern argument list unifies with args, or false
// if none match. When more than one pattern matches, the one with the
// fewest free (unbound) pattern parameters after unification wins; ties
// are broken by declaration order, first registered wins. This is a
// simplification of full partial-ordering (no attempt to unify competing
// patterns against each other), adequate for the non-pathological
// overload sets a single translation unit actually declares.
func (r *Registry) MatchSpecializationPattern(handle intern.Handle, args []types.TemplateArgument) (MatchResult, bool) {
	var best MatchResult
	bestFreeCount := -1
	found := false

	for _, spec := range r.specializations[handle] {
		if len(spec.Args) > len(args) || (spec.Pattern != nil && len(spec.Pattern.TemplateParams) == 0) {
			continue
		}
		bindings, ok := unifyPattern(spec, args)
		if !ok {
			continue
		}
		free := countFreeParams(spec.Pattern, bindings)
		if !found || free < bestFreeCount {
			best = MatchResult{Pattern: spec.Pattern, Bindings: bindings}
			bestFreeCount = free
			found = true
		}
	}
	return best, found
}

// unifyPattern attempts to bind spec's own template parameters so that its
// Args, once substituted, equal the concrete args vector position by
// position. Only the common, directly-expressible shapes are handled: a
// pattern argument that is itself a bare TemplateParamTypeExpr binds
// directly to the corresponding concrete argument; any other pattern
// argument must already denote the same concrete type/value (checked by
// the caller's exact-specialization path instead, so here a non-parameter
// pattern argument simply requires no binding and is assumed compatible).
func unifyPattern(spec Specialization, args []types.TemplateArgument) (*Bindings, bool) {
	b := NewBindings()
	if len(spec.Args) != len(args) {
		return nil, false
	}
	for i, patternArg := range spec.Args {
		concrete := args[i]
		switch {
		case patternArg.Type != nil:
			if paramRef, ok := patternArg.Type.(*ast.TemplateParamTypeExpr); ok {
				typeArg, ok := concrete.(types.TypeArgument)
				if !ok {
					return nil, false
				}
				if existing, bound := b.Scalar(paramRef.Name); bound {
					if existing.(types.TypeArgument).Type != typeArg.Type {
						return nil, false
					}
				} else {
					b.Scalars[paramRef.Name] = typeArg
				}
			}
			// A non-parameter pattern type (a concrete named type, e.g.
			// `Box<int>`) is accepted without further structural checking
			// here; exact equality was already tried via
			// LookupExactSpecialization before partial matching runs.
		case patternArg.Value != nil:
			if paramRef, ok := patternArg.Value.(*ast.TemplateParameterRefExpr); ok {
				valueArg, ok := concrete.(types.ValueArgument)
				if !ok {
					return nil, false
				}
				if existing, bound := b.Scalar(paramRef.Name); bound {
					if existing.(types.ValueArgument).Value != valueArg.Value {
						return nil, false
					}
				} else {
					b.Scalars[paramRef.Name] = valueArg
				}
			}
		}
	}
	return b, true
}

func countFreeParams(pattern *ast.StructDecl, b *Bindings) int {
	if pattern == nil {
		return 0
	}
	free := 0
	for _, p := range pattern.TemplateParams {
		if _, ok := b.Scalar(p.Name); !ok {
			free++
		}
	}
	return free
}
