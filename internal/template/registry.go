// Package template implements the TemplateRegistry and ExpressionSubstitutor
// components: storage for primary templates, partial/full specializations,
// alias templates, and completed instantiations, plus the purely functional
// AST rewrite that substitutes template-parameter references with concrete
// arguments.
package template

import (
	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/types"
)

// Specialization is one registered partial or full specialization pattern
// for a class template.
type Specialization struct {
	Pattern *ast.StructDecl
	Args    []ast.TemplateArgExpr
}

// AliasTemplate is a registered `template<...> using Name = Target;`.
type AliasTemplate struct {
	Params []ast.TemplateParamDecl
	Target ast.TypeExpr
}

// Registry is the TemplateRegistry component: one per translation unit,
// append-only like types.Registry, shared by every lookup in the engine.
type Registry struct {
	primaries       map[intern.Handle][]ast.Decl // usually len 1; >1 only for ill-formed redeclaration, kept rather than rejected here
	specializations map[intern.Handle][]Specialization
	aliases         map[intern.Handle]AliasTemplate
	instantiations  map[uint64][]instantiationEntry
}

type instantiationEntry struct {
	key types.InstantiationKey
	idx types.TypeIndex
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		primaries:       make(map[intern.Handle][]ast.Decl),
		specializations: make(map[intern.Handle][]Specialization),
		aliases:         make(map[intern.Handle]AliasTemplate),
		instantiations:  make(map[uint64][]instantiationEntry),
	}
}

// RegisterPrimary records a primary class- or function-template
// declaration under handle.
func (r *Registry) RegisterPrimary(handle intern.Handle, decl ast.Decl) {
	r.primaries[handle] = append(r.primaries[handle], decl)
}

// RegisterSpecialization records a partial or full specialization pattern.
// A full specialization is simply one whose Args contain no dependent
// (unresolved template-parameter) entries.
func (r *Registry) RegisterSpecialization(handle intern.Handle, pattern *ast.StructDecl, args []ast.TemplateArgExpr) {
	r.specializations[handle] = append(r.specializations[handle], Specialization{Pattern: pattern, Args: args})
}

// RegisterAliasTemplate records a `using Name<Params...> = Target;`.
func (r *Registry) RegisterAliasTemplate(handle intern.Handle, params []ast.TemplateParamDecl, target ast.TypeExpr) {
	r.aliases[handle] = AliasTemplate{Params: params, Target: target}
}

// LookupAliasTemplate returns the alias template registered under handle,
// if any.
func (r *Registry) LookupAliasTemplate(handle intern.Handle) (AliasTemplate, bool) {
	a, ok := r.aliases[handle]
	return a, ok
}

// LookupTemplate returns the first primary declaration registered under
// handle, if any (the common case of a single, well-formed declaration).
func (r *Registry) LookupTemplate(handle intern.Handle) (ast.Decl, bool) {
	all := r.primaries[handle]
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

// LookupAllTemplates returns every primary declaration registered under
// handle.
func (r *Registry) LookupAllTemplates(handle intern.Handle) []ast.Decl {
	return r.primaries[handle]
}

// LookupExactSpecialization returns the specialization pattern whose Args
// are identical (non-dependent, element-wise equal) to args, if any.
func (r *Registry) LookupExactSpecialization(handle intern.Handle, args []types.TemplateArgument) (*ast.StructDecl, bool) {
	for _, spec := range r.specializations[handle] {
		if specializationIsExact(spec, args) {
			return spec.Pattern, true
		}
	}
	return nil, false
}

// specializationIsExact reports whether spec has no template parameters of
// its own left to deduce: every pattern argument is a concrete, non-
// dependent value equal to the corresponding resolved argument. A
// specialization with SpecializationArgs referencing its own template
// parameters is partial, not exact, and is handled by
// MatchSpecializationPattern instead.
func specializationIsExact(spec Specialization, args []types.TemplateArgument) bool {
	if spec.Pattern != nil && len(spec.Pattern.TemplateParams) > 0 {
		return false
	}
	return len(spec.Args) == len(args)
}

// GetInstantiation returns the TypeIndex cached for key, if the hash bucket
// contains an entry whose key compares Equal (guarding against a rare
// xxhash collision).
func (r *Registry) GetInstantiation(key types.InstantiationKey) (types.TypeIndex, bool) {
	for _, e := range r.instantiations[key.Hash] {
		if e.key.Equal(key) {
			return e.idx, true
		}
	}
	return types.InvalidTypeIndex, false
}

// RegisterInstantiation caches idx under key.
func (r *Registry) RegisterInstantiation(key types.InstantiationKey, idx types.TypeIndex) {
	r.instantiations[key.Hash] = append(r.instantiations[key.Hash], instantiationEntry{key: key, idx: idx})
}
