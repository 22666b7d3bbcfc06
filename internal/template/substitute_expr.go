package template

import (
	"github.com/pkg/errors"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

// SubstituteExpr returns a new Expr with TemplateParameterRefExpr,
// SizeofPackExpr, PackExpansionExpr (single-element context), and FoldExpr
// nodes resolved against b. e is never mutated.
func (s *Substitutor) SubstituteExpr(e ast.Expr, b *Bindings) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch n := e.(type) {
	case *ast.Literal:
		return n, nil

	case *ast.TemplateParameterRefExpr:
		arg, ok := b.Scalar(n.Name)
		if !ok {
			return nil, errors.WithStack(&UnboundParameterError{Name: n.Name})
		}
		return resolvedValueExprFor(arg, n.Span())

	case *ast.SizeofPackExpr:
		card, ok := b.PackCardinality(n.ParamName)
		if !ok {
			return nil, errors.WithStack(&UnboundParameterError{Name: n.ParamName})
		}
		return ast.NewIntLiteral(int64(card), n.Span()), nil

	case *ast.BinaryExpr:
		lhs, err := s.SubstituteExpr(n.LHS, b)
		if err != nil {
			return nil, err
		}
		rhs, err := s.SubstituteExpr(n.RHS, b)
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryExpr(n.Op, lhs, rhs, n.Span()), nil

	case *ast.UnaryExpr:
		operand, err := s.SubstituteExpr(n.Operand, b)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(n.Op, operand, n.Span()), nil

	case *ast.TernaryExpr:
		cond, err := s.SubstituteExpr(n.Cond, b)
		if err != nil {
			return nil, err
		}
		then, err := s.SubstituteExpr(n.Then, b)
		if err != nil {
			return nil, err
		}
		els, err := s.SubstituteExpr(n.Else, b)
		if err != nil {
			return nil, err
		}
		return ast.NewTernaryExpr(cond, then, els, n.Span()), nil

	case *ast.CallExpr:
		callee, err := s.SubstituteExpr(n.Callee, b)
		if err != nil {
			return nil, err
		}
		args, err := s.SubstituteExprList(n.Args, b)
		if err != nil {
			return nil, err
		}
		templateArgs, err := s.substituteTemplateArgs(n.ExplicitTemplateArgs, b)
		if err != nil {
			return nil, err
		}
		call := ast.NewCallExpr(callee, args, n.Span())
		call.ExplicitTemplateArgs = templateArgs
		return call, nil

	case *ast.MemberAccessExpr:
		object, err := s.SubstituteExpr(n.Object, b)
		if err != nil {
			return nil, err
		}
		return ast.NewMemberAccessExpr(object, n.Op, n.Member, n.Span()), nil

	case *ast.SubscriptExpr:
		arr, err := s.SubstituteExpr(n.Array, b)
		if err != nil {
			return nil, err
		}
		idx, err := s.SubstituteExpr(n.Index, b)
		if err != nil {
			return nil, err
		}
		return ast.NewSubscriptExpr(arr, idx, n.Span()), nil

	case *ast.CastExpr:
		target, err := s.SubstituteType(n.Target, b)
		if err != nil {
			return nil, err
		}
		operand, err := s.SubstituteExpr(n.Operand, b)
		if err != nil {
			return nil, err
		}
		return ast.NewCastExpr(n.Kind, target, operand, n.Span()), nil

	case *ast.SizeofExpr:
		if n.Type != nil {
			t, err := s.SubstituteType(n.Type, b)
			if err != nil {
				return nil, err
			}
			if r, ok := t.(*ast.ResolvedTypeExpr); ok && r.Index >= 0 && int(r.Index) < s.types.Len() {
				if info := s.types.Get(r.Index); info.SizeBits > 0 {
					return ast.NewIntLiteral(int64(info.SizeBytes()), n.Span()), nil
				}
			}
			return ast.NewSizeofExprOfType(t, n.Span()), nil
		}
		operand, err := s.SubstituteExpr(n.Operand, b)
		if err != nil {
			return nil, err
		}
		return ast.NewSizeofExprOfExpr(operand, n.Span()), nil

	case *ast.FoldExpr:
		return s.substituteFold(n, b)

	case *ast.QualifiedDependentNameExpr:
		outer, err := s.SubstituteType(n.Outer, b)
		if err != nil {
			return nil, err
		}
		return ast.NewQualifiedDependentNameExpr(outer, n.Member, n.Span()), nil

	default:
		return n, nil
	}
}

func resolvedValueExprFor(arg types.TemplateArgument, span token.Span) (ast.Expr, error) {
	switch a := arg.(type) {
	case types.ValueArgument:
		return ast.NewResolvedValueExpr(a.Type, a.Value, span), nil
	case types.TypeArgument:
		// A type argument referenced in value position (e.g. a template
		// template parameter used as an expression) is not meaningful;
		// callers that need the type back should use SubstituteType instead.
		return nil, errors.Errorf("template parameter resolves to a type, not a value")
	default:
		return nil, errors.Errorf("unsupported template argument kind in value position")
	}
}

func (s *Substitutor) substituteFold(n *ast.FoldExpr, b *Bindings) (ast.Expr, error) {
	packName, ok := singlePackNameIn(n.Pack)
	if !ok {
		pack, err := s.SubstituteExpr(n.Pack, b)
		if err != nil {
			return nil, err
		}
		init, err := s.SubstituteExpr(n.Init, b)
		if err != nil {
			return nil, err
		}
		return ast.NewFoldExpr(n.Op, pack, init, n.RightFold, n.Span()), nil
	}

	elems, ok := b.Pack(packName)
	if !ok {
		return nil, errors.WithStack(&UnboundParameterError{Name: packName})
	}

	expanded := make([]ast.Expr, len(elems))
	for i, el := range elems {
		child := childBindingsWithScalar(b, packName, el)
		ex, err := s.SubstituteExpr(n.Pack, child)
		if err != nil {
			return nil, err
		}
		expanded[i] = ex
	}

	if n.Init == nil && len(expanded) == 0 {
		return nil, errors.Errorf("empty pack in unary fold requires an identity element")
	}

	order := expanded
	init := n.Init
	if init != nil {
		initExpr, err := s.SubstituteExpr(init, b)
		if err != nil {
			return nil, err
		}
		if n.RightFold {
			order = append(append([]ast.Expr{}, order...), initExpr)
		} else {
			order = append([]ast.Expr{initExpr}, order...)
		}
	}
	if len(order) == 0 {
		return nil, errors.Errorf("fold over empty pack with no elements to combine")
	}

	acc := order[0]
	for _, next := range order[1:] {
		acc = ast.NewBinaryExpr(ast.BinaryOp(n.Op), acc, next, n.Span())
	}
	return acc, nil
}

// singlePackNameIn returns the pack parameter name referenced by pattern,
// for the common single-pack-per-fold case (`(args + ...)`,
// `(args op ... op init)`). A pattern with no direct
// TemplateParameterRefExpr is treated as not pack-dependent at this level.
func singlePackNameIn(pattern ast.Expr) (string, bool) {
	switch n := pattern.(type) {
	case *ast.TemplateParameterRefExpr:
		return n.Name, true
	case *ast.PackExpansionExpr:
		return singlePackNameIn(n.Pattern)
	case *ast.UnaryExpr:
		return singlePackNameIn(n.Operand)
	case *ast.BinaryExpr:
		if name, ok := singlePackNameIn(n.LHS); ok {
			return name, true
		}
		return singlePackNameIn(n.RHS)
	case *ast.CallExpr:
		for _, a := range n.Args {
			if name, ok := singlePackNameIn(a); ok {
				return name, true
			}
		}
		return "", false
	default:
		return "", false
	}
}

func childBindingsWithScalar(b *Bindings, name string, value types.TemplateArgument) *Bindings {
	child := NewBindings()
	for k, v := range b.Scalars {
		child.Scalars[k] = v
	}
	for k, v := range b.Packs {
		if k != name {
			child.Packs[k] = v
		}
	}
	child.Scalars[name] = value
	child.ParamOrder = b.ParamOrder
	return child
}

// SubstituteExprList substitutes each expression in es, expanding any
// top-level PackExpansionExpr into zero or more result expressions (a call
// argument list, base-class initializer list, or similar flat context).
func (s *Substitutor) SubstituteExprList(es []ast.Expr, b *Bindings) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(es))
	for _, e := range es {
		expansion, ok := e.(*ast.PackExpansionExpr)
		if !ok {
			sub, err := s.SubstituteExpr(e, b)
			if err != nil {
				return nil, err
			}
			out = append(out, sub)
			continue
		}
		packName, ok := singlePackNameIn(expansion.Pattern)
		if !ok {
			return nil, errors.Errorf("pack expansion pattern has no pack-dependent name")
		}
		elems, ok := b.Pack(packName)
		if !ok {
			return nil, errors.WithStack(&UnboundParameterError{Name: packName})
		}
		for _, el := range elems {
			child := childBindingsWithScalar(b, packName, el)
			sub, err := s.SubstituteExpr(expansion.Pattern, child)
			if err != nil {
				return nil, err
			}
			out = append(out, sub)
		}
	}
	return out, nil
}
