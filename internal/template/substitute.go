package template

import (
	"github.com/pkg/errors"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

// UnboundParameterError is returned when a TemplateParameterRef or
// TemplateParamTypeExpr names a parameter absent from both the scalar and
// pack binding maps.
type UnboundParameterError struct {
	Name string
}

func (e *UnboundParameterError) Error() string {
	return "unbound template parameter: " + e.Name
}

// Substitutor is the ExpressionSubstitutor component. It holds only a
// read-only reference to the TypeRegistry (needed to fold sizeof against an
// already-resolved parameter type); it never writes to any registry.
type Substitutor struct {
	types *types.Registry
}

// NewSubstitutor constructs a Substitutor backed by registry.
func NewSubstitutor(registry *types.Registry) *Substitutor {
	return &Substitutor{types: registry}
}

// SubstituteType returns a new TypeExpr with every bound
// TemplateParamTypeExpr replaced by its concrete argument's surface form.
// t is never mutated.
func (s *Substitutor) SubstituteType(t ast.TypeExpr, b *Bindings) (ast.TypeExpr, error) {
	if t == nil {
		return nil, nil
	}
	switch n := t.(type) {
	case *ast.TemplateParamTypeExpr:
		arg, ok := b.Scalar(n.Name)
		if !ok {
			return nil, errors.WithStack(&UnboundParameterError{Name: n.Name})
		}
		typeArg, ok := arg.(types.TypeArgument)
		if !ok {
			return nil, errors.Errorf("template parameter %q is not a type argument", n.Name)
		}
		return resolvedTypeExprFor(typeArg, n.Span()), nil

	case *ast.PointerTypeExpr:
		elem, err := s.SubstituteType(n.Elem, b)
		if err != nil {
			return nil, err
		}
		return ast.NewPointerTypeExpr(elem, n.Span()), nil

	case *ast.ReferenceTypeExpr:
		elem, err := s.SubstituteType(n.Elem, b)
		if err != nil {
			return nil, err
		}
		return ast.NewReferenceTypeExpr(elem, n.Ref, n.Span()), nil

	case *ast.ArrayTypeExpr:
		elem, err := s.SubstituteType(n.Elem, b)
		if err != nil {
			return nil, err
		}
		dim, err := s.SubstituteExpr(n.Dim, b)
		if err != nil {
			return nil, err
		}
		return ast.NewArrayTypeExpr(elem, dim, n.Span()), nil

	case *ast.TemplateIdTypeExpr:
		args, err := s.substituteTemplateArgs(n.Args, b)
		if err != nil {
			return nil, err
		}
		return ast.NewTemplateIdTypeExpr(n.Base, args, n.Span()), nil

	case *ast.DependentMemberTypeExpr:
		outer, err := s.SubstituteType(n.Outer, b)
		if err != nil {
			return nil, err
		}
		return ast.NewDependentMemberTypeExpr(outer, n.Member, n.Span()), nil

	case *ast.DecltypeTypeExpr:
		operand, err := s.SubstituteExpr(n.Operand, b)
		if err != nil {
			return nil, err
		}
		return ast.NewDecltypeTypeExpr(operand, n.Span()), nil

	default:
		// NamedTypeExpr and anything else with no dependent parts pass
		// through unchanged.
		return t, nil
	}
}

func (s *Substitutor) substituteTemplateArgs(args []ast.TemplateArgExpr, b *Bindings) ([]ast.TemplateArgExpr, error) {
	out := make([]ast.TemplateArgExpr, 0, len(args))
	for _, a := range args {
		if a.Type != nil {
			t, err := s.SubstituteType(a.Type, b)
			if err != nil {
				return nil, err
			}
			out = append(out, ast.TemplateArgExpr{Type: t})
			continue
		}
		v, err := s.SubstituteExpr(a.Value, b)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.TemplateArgExpr{Value: v})
	}
	return out, nil
}

// resolvedTypeExprFor turns an already-resolved TypeArgument back into a
// TypeExpr surface form so downstream code keeps treating the substituted
// tree uniformly as ast.TypeExpr until the point of real TypeIndex
// resolution.
func resolvedTypeExprFor(arg types.TypeArgument, span token.Span) ast.TypeExpr {
	return ast.NewResolvedTypeExpr(arg.Type, arg.CV, arg.Ref, span)
}
