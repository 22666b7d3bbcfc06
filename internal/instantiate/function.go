package instantiate

import (
	"github.com/pkg/errors"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/constexpr"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/template"
	"github.com/flashcpp/corefront/internal/types"
)

// ConstraintFailedError reports that a function template's requires-clause
// evaluated to false after substitution: the candidate is removed from the
// overload set without a diagnostic, per SFINAE, unless the caller finds
// the final candidate set empty.
type ConstraintFailedError struct {
	FunctionName string
}

func (e *ConstraintFailedError) Error() string {
	return "constraint not satisfied for " + e.FunctionName
}

// FunctionInstantiation is a completed function-template instantiation:
// the substituted declaration (return type, parameter types fully
// resolved) ready for mangling and for insertion into the symbol table's
// overload set.
type FunctionInstantiation struct {
	Decl *ast.FunctionDecl
}

// InstantiateFunctionTemplate runs the function-template parallel
// algorithm: substitute return type, parameter types, and the
// requires-clause; evaluate the constraint; on failure the candidate is
// dropped via ConstraintFailedError rather than any other error kind, so
// callers can distinguish "this overload happens not to apply" from a real
// substitution failure.
func (e *Engine) InstantiateFunctionTemplate(handle intern.Handle, primary *ast.FunctionDecl, args []types.TemplateArgument) (FunctionInstantiation, error) {
	if anyDependent(args) {
		return FunctionInstantiation{}, errors.Errorf("cannot instantiate %q with dependent arguments", primary.Name)
	}

	key := types.NewInstantiationKey(handle, args)
	if e.isInProgress(key) {
		return FunctionInstantiation{}, errors.WithStack(&PendingError{Handle: handle})
	}
	e.markInProgress(key)
	defer e.clearInProgress(key)

	bindings, err := e.bindFunctionArgs(primary, args)
	if err != nil {
		return FunctionInstantiation{}, err
	}

	returnType, err := e.substitutor.SubstituteType(primary.ReturnType, bindings)
	if err != nil {
		return FunctionInstantiation{}, errors.Wrapf(err, "substituting return type of %q", primary.Name)
	}

	params := make([]*ast.ParamDecl, 0, len(primary.Params))
	for _, p := range primary.Params {
		t, err := e.substitutor.SubstituteType(p.Type, bindings)
		if err != nil {
			return FunctionInstantiation{}, errors.Wrapf(err, "substituting parameter %q of %q", p.Name, primary.Name)
		}
		params = append(params, ast.NewParamDecl(p.Name, t, p.Span()))
	}

	if primary.RequiresClause != nil {
		constraint, err := e.substitutor.SubstituteExpr(primary.RequiresClause, bindings)
		if err != nil {
			return FunctionInstantiation{}, &ConstraintFailedError{FunctionName: primary.Name}
		}
		res := e.evaluator.Evaluate(constraint, e.bindingsToEvalContext(bindings))
		if !res.Ok || !truthyResult(res) {
			return FunctionInstantiation{}, &ConstraintFailedError{FunctionName: primary.Name}
		}
	}

	instantiated := ast.NewFunctionDecl(primary.Name, primary.Span())
	instantiated.ParentStruct = primary.ParentStruct
	instantiated.Namespace = primary.Namespace
	instantiated.Params = params
	instantiated.ReturnType = returnType
	instantiated.IsVariadic = primary.IsVariadic
	instantiated.IsConstMethod = primary.IsConstMethod
	instantiated.Access = primary.Access
	instantiated.Linkage = primary.Linkage
	instantiated.IsOperator = primary.IsOperator
	instantiated.OperatorName = primary.OperatorName

	e.templates.RegisterInstantiation(key, types.InvalidTypeIndex)
	return FunctionInstantiation{Decl: instantiated}, nil
}

func (e *Engine) bindFunctionArgs(primary *ast.FunctionDecl, args []types.TemplateArgument) (*template.Bindings, error) {
	b := template.NewBindings()
	fixedCount := len(primary.TemplateParams)
	hasPack := fixedCount > 0 && primary.TemplateParams[fixedCount-1].IsVariadic
	if hasPack {
		fixedCount--
	}
	if len(args) < fixedCount {
		return nil, errors.WithStack(&ArgumentError{Reason: "too few template arguments for function template"})
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

func truthyResult(r constexpr.EvalResult) bool {
	switch r.Kind {
	case constexpr.KindBool:
		return r.Bool
	case constexpr.KindFloat:
		return r.Float != 0
	default:
		return r.Int != 0
	}
}
