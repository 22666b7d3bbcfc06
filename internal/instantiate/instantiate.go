// Package instantiate implements the InstantiationEngine: the 8-step
// class- and function-template instantiation algorithm driving the
// TemplateRegistry, ExpressionSubstitutor, TypeRegistry, and
// ConstExprEvaluator to turn a template name plus a concrete argument
// vector into a complete, laid-out type.
package instantiate

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/constexpr"
	"github.com/flashcpp/corefront/internal/diag"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/template"
	"github.com/flashcpp/corefront/internal/types"
)

// DefaultMaxDepth is the recursion bound the engine aborts at with a
// "possible infinite instantiation" diagnostic, matching the default
// configured bound for runaway recursive templates.
const DefaultMaxDepth = 10000

// DepthExceededError reports that the instantiation recursion bound was hit.
type DepthExceededError struct {
	Limit int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("possible infinite instantiation: exceeded depth limit of %d", e.Limit)
}

// PendingError is returned when a key is already being instantiated higher
// up the call stack (a self-referential template body, e.g. CRTP); callers
// treat this as "deferred, will resolve on a later pass" rather than a
// hard failure.
type PendingError struct {
	Handle intern.Handle
}

func (e *PendingError) Error() string { return "instantiation already in progress" }

// ArgumentError reports a template-argument arity or binding failure with
// no variadic/default to fall back on.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string { return "template argument error: " + e.Reason }

// ClassInstantiation is the result of a completed class-template
// instantiation: the registered type plus the aliases it declared, so that
// `Instantiated::name` lookups can be resolved without re-walking the
// pattern.
type ClassInstantiation struct {
	Index   types.TypeIndex
	Aliases map[string]ast.TypeExpr
}

// Engine is the InstantiationEngine component.
type Engine struct {
	types       *types.Registry
	templates   *template.Registry
	interner    *intern.Interner
	substitutor *template.Substitutor
	evaluator   *constexpr.Evaluator
	diags       *diag.Bag

	inProgress map[uint64][]types.InstantiationKey
	completed  map[uint64]ClassInstantiation
	depth      int
	maxDepth   int

	// EagerMemberFunctions, when true, substitutes every member-function
	// body at instantiation time. When false, the bodies of non-virtual,
	// non-special members are not substituted at all: only their
	// signatures are recorded, and nothing is queued for later.
	// Constructors, destructors, and virtual functions are always eager
	// regardless of this flag.
	EagerMemberFunctions bool
}

// New constructs an Engine sharing registry, templates, and diags with the
// rest of the translation unit.
func New(registry *types.Registry, templates *template.Registry, diags *diag.Bag) *Engine {
	return &Engine{
		types:       registry,
		templates:   templates,
		interner:    registry.Interner(),
		substitutor: template.NewSubstitutor(registry),
		evaluator:   constexpr.New(),
		diags:       diags,
		inProgress:  make(map[uint64][]types.InstantiationKey),
		completed:   make(map[uint64]ClassInstantiation),
		maxDepth:    DefaultMaxDepth,
	}
}

// InstantiateClassTemplate is the entry point: instantiate_class_template in
// spec terms. handle names the primary template; args is the fully-resolved
// (non-dependent, ideally) argument vector.
func (e *Engine) InstantiateClassTemplate(handle intern.Handle, args []types.TemplateArgument) (ClassInstantiation, error) {
	// Step 1: guard dependent arguments.
	if anyDependent(args) {
		return e.placeholderFor(handle, args), nil
	}

	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.maxDepth {
		return ClassInstantiation{}, errors.WithStack(&DepthExceededError{Limit: e.maxDepth})
	}

	key := types.NewInstantiationKey(handle, args)

	// Step 2: cycle detection.
	if e.isInProgress(key) {
		return ClassInstantiation{}, errors.WithStack(&PendingError{Handle: handle})
	}
	e.markInProgress(key)
	defer e.clearInProgress(key)

	// Step 3: cache.
	if result, ok := e.completed[key.Hash]; ok {
		return result, nil
	}
	if idx, ok := e.templates.GetInstantiation(key); ok {
		return ClassInstantiation{Index: idx}, nil
	}

	primaryDecl, hasPrimary := e.templates.LookupTemplate(handle)
	var primary *ast.StructDecl
	if hasPrimary {
		primary, _ = primaryDecl.(*ast.StructDecl)
	}

	// Step 4: exact specialization.
	if pattern, ok := e.templates.LookupExactSpecialization(handle, args); ok {
		bindings := template.NewBindings()
		result, err := e.instantiateStructPattern(pattern, bindings, key)
		if err != nil {
			return ClassInstantiation{}, err
		}
		e.completed[key.Hash] = result
		e.templates.RegisterInstantiation(key, result.Index)
		return result, nil
	}

	// Step 5: default fill-in.
	if primary != nil {
		filled, err := e.fillDefaults(primary, args)
		if err != nil {
			return ClassInstantiation{}, err
		}
		args = filled
		key = types.NewInstantiationKey(handle, args)
		if result, ok := e.completed[key.Hash]; ok {
			return result, nil
		}
	}

	// Step 6: partial specialization match.
	if match, ok := e.templates.MatchSpecializationPattern(handle, args); ok {
		result, err := e.instantiateStructPattern(match.Pattern, match.Bindings, key)
		if err != nil {
			return ClassInstantiation{}, err
		}
		e.completed[key.Hash] = result
		e.templates.RegisterInstantiation(key, result.Index)
		return result, nil
	}

	// Step 7: primary template path.
	if primary == nil {
		return ClassInstantiation{}, errors.Errorf("no primary template or matching specialization for the requested instantiation")
	}
	bindings, err := e.bindPrimaryArgs(primary, args)
	if err != nil {
		return ClassInstantiation{}, err
	}
	result, err := e.instantiateStructPattern(primary, bindings, key)
	if err != nil {
		return ClassInstantiation{}, err
	}

	// Step 8: cache.
	e.completed[key.Hash] = result
	e.templates.RegisterInstantiation(key, result.Index)
	return result, nil
}

func anyDependent(args []types.TemplateArgument) bool {
	for _, a := range args {
		if a.IsDependent() {
			return true
		}
	}
	return false
}

// placeholderFor registers (or reuses) a placeholder TypeInfo for a
// dependent argument vector, so a dependent qualified name resolves back to
// the same placeholder on retry rather than failing outright.
func (e *Engine) placeholderFor(handle intern.Handle, args []types.TemplateArgument) ClassInstantiation {
	key := types.NewInstantiationKey(handle, args)
	if idx, ok := e.templates.GetInstantiation(key); ok {
		return ClassInstantiation{Index: idx}
	}
	name := e.interner.MustLookup(handle) + "<dependent>"
	idx, err := e.types.AddType(name, types.KindUserDefined, 0)
	if err != nil {
		if existing, ok := e.types.FindByName(e.interner.Intern(name)); ok {
			idx = existing
		}
	}
	e.templates.RegisterInstantiation(key, idx)
	return ClassInstantiation{Index: idx}
}

func (e *Engine) isInProgress(key types.InstantiationKey) bool {
	for _, k := range e.inProgress[key.Hash] {
		if k.Equal(key) {
			return true
		}
	}
	return false
}

func (e *Engine) markInProgress(key types.InstantiationKey) {
	e.inProgress[key.Hash] = append(e.inProgress[key.Hash], key)
}

func (e *Engine) clearInProgress(key types.InstantiationKey) {
	list := e.inProgress[key.Hash]
	for i, k := range list {
		if k.Equal(key) {
			e.inProgress[key.Hash] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// fillDefaults evaluates default arguments for trailing parameters missing
// from args, in the substitution context of the arguments already
// resolved, so that a later SFINAE pattern can inspect the filled-in slot
// (the void_t idiom).
func (e *Engine) fillDefaults(primary *ast.StructDecl, args []types.TemplateArgument) ([]types.TemplateArgument, error) {
	if len(args) >= len(primary.TemplateParams) {
		return args, nil
	}
	out := append([]types.TemplateArgument(nil), args...)
	bindings := template.NewBindings()
	for i, a := range args {
		if i < len(primary.TemplateParams) {
			bindings.Scalars[primary.TemplateParams[i].Name] = a
		}
	}
	for i := len(args); i < len(primary.TemplateParams); i++ {
		param := primary.TemplateParams[i]
		if param.Default == nil {
			if param.IsVariadic {
				return out, nil
			}
			return nil, errors.WithStack(&ArgumentError{Reason: fmt.Sprintf("missing required template argument %q", param.Name)})
		}
		arg, err := e.resolveDefaultArg(param, bindings)
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
		bindings.Scalars[param.Name] = arg
	}
	return out, nil
}

func (e *Engine) resolveDefaultArg(param ast.TemplateParamDecl, bindings *template.Bindings) (types.TemplateArgument, error) {
	switch param.Kind {
	case ast.ParamType:
		t, ok := param.Default.(ast.TypeExpr)
		if !ok {
			return nil, errors.Errorf("default for type parameter %q is not a type", param.Name)
		}
		substituted, err := e.substitutor.SubstituteType(t, bindings)
		if err != nil {
			return nil, err
		}
		return typeArgFromExpr(substituted)
	case ast.ParamNonType:
		v, ok := param.Default.(ast.Expr)
		if !ok {
			return nil, errors.Errorf("default for non-type parameter %q is not an expression", param.Name)
		}
		substituted, err := e.substitutor.SubstituteExpr(v, bindings)
		if err != nil {
			return nil, err
		}
		res := e.evaluator.Evaluate(substituted, constexpr.NewEvaluationContext())
		if !res.Ok {
			return nil, errors.Wrap(res.Err, "evaluating default non-type template argument")
		}
		n, _ := res.AsInt64()
		return types.ValueArgument{Value: n}, nil
	default:
		return nil, errors.Errorf("template-template parameter defaults are not supported")
	}
}

func typeArgFromExpr(t ast.TypeExpr) (types.TemplateArgument, error) {
	resolved, ok := t.(*ast.ResolvedTypeExpr)
	if !ok {
		return nil, errors.Errorf("default type argument did not reduce to a resolved type")
	}
	return types.TypeArgument{Type: resolved.Index, CV: resolved.CV, Ref: resolved.Ref}, nil
}

// bindPrimaryArgs builds the scalar/pack Bindings for the primary template
// path: non-variadic parameters bind one-to-one, a trailing variadic
// parameter (if present) absorbs every remaining argument as a pack.
func (e *Engine) bindPrimaryArgs(primary *ast.StructDecl, args []types.TemplateArgument) (*template.Bindings, error) {
	b := template.NewBindings()
	fixedCount := len(primary.TemplateParams)
	hasPack := false
	if fixedCount > 0 && primary.TemplateParams[fixedCount-1].IsVariadic {
		hasPack = true
		fixedCount--
	}
	if !hasPack && len(args) != fixedCount {
		return nil, errors.WithStack(&ArgumentError{Reason: fmt.Sprintf("expected %d template argument(s), got %d", fixedCount, len(args))})
	}
	if hasPack && len(args) < fixedCount {
		return nil, errors.WithStack(&ArgumentError{Reason: fmt.Sprintf("expected at least %d template argument(s), got %d", fixedCount, len(args))})
	}
	for i := 0; i < fixedCount; i++ {
		b.Scalars[primary.TemplateParams[i].Name] = args[i]
		b.ParamOrder = append(b.ParamOrder, primary.TemplateParams[i].Name)
	}
	if hasPack {
		packName := primary.TemplateParams[fixedCount].Name
		b.Packs[packName] = append([]types.TemplateArgument(nil), args[fixedCount:]...)
		b.ParamOrder = append(b.ParamOrder, packName)
	}
	return b, nil
}
