package instantiate

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/constexpr"
	"github.com/flashcpp/corefront/internal/diag"
	"github.com/flashcpp/corefront/internal/template"
	"github.com/flashcpp/corefront/internal/types"
)

// instantiateStructPattern substitutes pattern's bases, members, static
// members, member functions, nested types, aliases, and static_asserts
// against bindings, registers the resulting TypeInfo, lays it out, and
// returns the completed instantiation. key names the instantiated type.
func (e *Engine) instantiateStructPattern(pattern *ast.StructDecl, bindings *template.Bindings, key types.InstantiationKey) (ClassInstantiation, error) {
	mintedName := e.mintName(pattern.Name, key)
	kind := types.KindStruct
	if pattern.IsUnion {
		kind = types.KindUnion
	}
	idx, err := e.types.AddType(mintedName, kind, 0)
	if err != nil {
		return ClassInstantiation{}, errors.Wrap(err, "registering instantiated type")
	}
	e.types.SetTemplateInstantiationInfo(idx, e.interner.Intern(pattern.Name), key.Args)

	info := &types.StructInfo{
		Name:          e.interner.Intern(mintedName),
		IsUnion:       pattern.IsUnion,
		PackAlignment: pattern.PackAlignment,
	}

	result := ClassInstantiation{Index: idx, Aliases: make(map[string]ast.TypeExpr)}

	resolvedBases, err := e.instantiateBases(pattern, bindings)
	if err != nil {
		return ClassInstantiation{}, err
	}
	info.Bases = resolvedBases

	members, err := e.instantiateMembers(pattern, bindings)
	if err != nil {
		return ClassInstantiation{}, err
	}
	info.Members = members

	statics, err := e.instantiateStaticMembers(pattern, bindings)
	if err != nil {
		return ClassInstantiation{}, err
	}
	info.StaticMembers = statics

	methods, hasVTable, err := e.instantiateMethods(pattern, bindings)
	if err != nil {
		return ClassInstantiation{}, err
	}
	info.Methods = methods
	info.HasVTable = hasVTable

	for _, nested := range pattern.NestedTypes {
		if len(nested.TemplateParams) > 0 {
			// A nested template class is instantiated lazily, on its own
			// use-site, not eagerly alongside its enclosing template.
			continue
		}
		nestedBindings := bindings
		if _, err := e.instantiateStructPattern(nested, nestedBindings, types.NewInstantiationKey(e.interner.Intern(pattern.Name+"::"+nested.Name), nil)); err != nil {
			e.diags.Add(diag.New(diag.StageInstantiate, diag.CodeInternalInvariant, diag.Span{}, "nested class %q failed to instantiate: %v", nested.Name, err))
		}
	}

	for _, alias := range pattern.Aliases {
		target, err := e.substitutor.SubstituteType(alias.Target, bindings)
		if err != nil {
			e.diags.Add(diag.New(diag.StageInstantiate, diag.CodeTemplateArgMismatch, diag.Span{}, "alias %q: %v", alias.Name, err))
			continue
		}
		result.Aliases[alias.Name] = target
	}

	e.evaluateStaticAsserts(pattern, bindings)

	if err := info.Finalize(e.types, resolvedBases); err != nil {
		return ClassInstantiation{}, errors.Wrap(err, "laying out instantiated struct")
	}
	e.types.SetStructInfo(idx, info)
	e.types.RefreshSize(idx)

	return result, nil
}

func (e *Engine) mintName(baseName string, key types.InstantiationKey) string {
	return fmt.Sprintf("%s@%x", baseName, key.Hash)
}

func (e *Engine) instantiateBases(pattern *ast.StructDecl, bindings *template.Bindings) ([]types.BaseClass, error) {
	var out []types.BaseClass
	for _, base := range pattern.Bases {
		substituted, err := e.substitutor.SubstituteType(base.Type, bindings)
		if err != nil {
			return nil, errors.Wrapf(err, "substituting base class of %q", pattern.Name)
		}
		idx, err := e.resolveTypeIndex(substituted)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving base class of %q", pattern.Name)
		}
		baseInfo := e.types.Get(idx)
		if baseInfo.Struct != nil && baseInfo.Struct.HasVTable {
			// A `final` base is rejected by the caller's own declaration
			// checks before instantiation is attempted; nothing further to
			// verify about finality here since that flag lives on the
			// pattern's AST, not the resolved StructInfo.
		}
		out = append(out, types.BaseClass{Type: idx, Access: resolveAccess(base.Access), IsVirtual: base.IsVirtual})
	}
	return out, nil
}

func (e *Engine) instantiateMembers(pattern *ast.StructDecl, bindings *template.Bindings) ([]types.StructMember, error) {
	var out []types.StructMember
	for _, field := range pattern.Fields {
		substituted, err := e.substitutor.SubstituteType(field.Type, bindings)
		if err != nil {
			return nil, errors.Wrapf(err, "substituting field %q", field.Name)
		}
		idx, err := e.resolveTypeIndex(substituted)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving field %q", field.Name)
		}
		member := types.StructMember{
			Name:         e.interner.Intern(field.Name),
			Type:         idx,
			Access:       resolveAccess(field.Access),
			IsReference:  field.IsReference,
			PointerDepth: field.PointerDepth,
			Alignment:    e.types.Get(idx).Alignment,
		}
		if field.BitfieldWidth != nil {
			substWidth, err := e.substitutor.SubstituteExpr(field.BitfieldWidth, bindings)
			if err != nil {
				return nil, err
			}
			res := e.evaluator.Evaluate(substWidth, e.bindingsToEvalContext(bindings))
			width, ok := res.AsInt64()
			if !ok {
				return nil, errors.Errorf("bitfield width of %q is not a constant expression", field.Name)
			}
			member.IsBitfield = true
			member.BitfieldWidth = int(width)
		}
		out = append(out, member)
	}
	return out, nil
}

func (e *Engine) instantiateStaticMembers(pattern *ast.StructDecl, bindings *template.Bindings) ([]types.StaticMember, error) {
	var out []types.StaticMember
	for _, sf := range pattern.StaticFields {
		substituted, err := e.substitutor.SubstituteType(sf.Type, bindings)
		if err != nil {
			return nil, errors.Wrapf(err, "substituting static field %q", sf.Name)
		}
		idx, err := e.resolveTypeIndex(substituted)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving static field %q", sf.Name)
		}
		out = append(out, types.StaticMember{
			Name:      e.interner.Intern(sf.Name),
			Type:      idx,
			Access:    resolveAccess(sf.Access),
			Alignment: e.types.Get(idx).Alignment,
		})
	}
	return out, nil
}

// instantiateMethods substitutes every method's signature. Constructors,
// destructors, and virtual functions are always eager (body substituted
// now); other members follow e.EagerMemberFunctions, matching the engine's
// lazy-vs-eager selection policy.
func (e *Engine) instantiateMethods(pattern *ast.StructDecl, bindings *template.Bindings) ([]types.MemberFunction, bool, error) {
	var out []types.MemberFunction
	hasVTable := false
	vtableSlot := 0
	for _, method := range pattern.Methods {
		returnType, err := e.substitutor.SubstituteType(method.ReturnType, bindings)
		if err != nil {
			return nil, false, errors.Wrapf(err, "substituting return type of %q", method.Name)
		}
		returnIdx := types.InvalidTypeIndex
		if returnType != nil {
			returnIdx, err = e.resolveTypeIndex(returnType)
			if err != nil {
				return nil, false, errors.Wrapf(err, "resolving return type of %q", method.Name)
			}
		}

		paramTypes := make([]types.TypeIndex, 0, len(method.Params))
		for _, p := range method.Params {
			pt, err := e.substitutor.SubstituteType(p.Type, bindings)
			if err != nil {
				return nil, false, err
			}
			idx, err := e.resolveTypeIndex(pt)
			if err != nil {
				return nil, false, err
			}
			paramTypes = append(paramTypes, idx)
		}

		slot := -1
		if method.IsVirtual {
			hasVTable = true
			slot = vtableSlot
			vtableSlot++
		}

		isEager := method.IsConstructor || method.IsDestructor || method.IsVirtual || e.EagerMemberFunctions
		if isEager && method.Body != nil {
			// Body statements are substituted for their side effect on
			// diagnostics (static_assert-like constructs embedded in
			// constexpr-if bodies would be caught here in a fuller
			// implementation); the resulting AST is not retained on
			// MemberFunction since layout/mangling only need the signature.
			for _, stmt := range method.Body {
				if _, err := e.substituteStmt(stmt, bindings); err != nil {
					e.diags.Add(diag.New(diag.StageInstantiate, diag.CodeTemplateArgMismatch, diag.Span{}, "method %q body: %v", method.Name, err))
					break
				}
			}
		}

		out = append(out, types.MemberFunction{
			Name:          e.interner.Intern(method.Name),
			OperatorName:  method.OperatorName,
			ParamTypes:    paramTypes,
			ReturnType:    returnIdx,
			IsVariadic:    method.IsVariadic,
			IsVirtual:     method.IsVirtual,
			IsPureVirtual: method.IsPureVirtual,
			IsConst:       method.IsConstMethod,
			IsStatic:      false,
			Access:        resolveAccess(method.Access),
			VTableSlot:    slot,
		})
	}
	return out, hasVTable, nil
}

// substituteStmt substitutes the expressions inside a statement, covering
// the minimal statement shapes the core re-parses for out-of-line and
// lazy member-function bodies.
func (e *Engine) substituteStmt(stmt ast.Stmt, bindings *template.Bindings) (ast.Stmt, error) {
	switch n := stmt.(type) {
	case *ast.ExprStmt:
		x, err := e.substitutor.SubstituteExpr(n.X, bindings)
		return &ast.ExprStmt{X: x}, err
	case *ast.ReturnStmt:
		v, err := e.substitutor.SubstituteExpr(n.Value, bindings)
		return &ast.ReturnStmt{Value: v}, err
	case *ast.DeclStmt:
		t, err := e.substitutor.SubstituteType(n.Type, bindings)
		if err != nil {
			return nil, err
		}
		init, err := e.substitutor.SubstituteExpr(n.Initializer, bindings)
		return &ast.DeclStmt{Name: n.Name, Type: t, Initializer: init}, err
	case *ast.BlockStmt:
		for _, s := range n.Stmts {
			if _, err := e.substituteStmt(s, bindings); err != nil {
				return nil, err
			}
		}
		return n, nil
	default:
		return n, nil
	}
}

func (e *Engine) evaluateStaticAsserts(pattern *ast.StructDecl, bindings *template.Bindings) {
	for _, sa := range pattern.StaticAsserts {
		cond, err := e.substitutor.SubstituteExpr(sa.Condition, bindings)
		if err != nil {
			e.diags.Add(diag.New(diag.StageInstantiate, diag.CodeStaticAssertFailed, diag.Span{}, "static_assert in %q: %v", pattern.Name, err))
			continue
		}
		res := e.evaluator.Evaluate(cond, e.bindingsToEvalContext(bindings))
		if !res.Ok {
			e.diags.Add(diag.New(diag.StageInstantiate, diag.CodeStaticAssertFailed, diag.Span{}, "static_assert in %q could not be evaluated: %v", pattern.Name, res.Err))
			continue
		}
		v, _ := res.AsInt64()
		if v == 0 {
			e.diags.Add(diag.New(diag.StageInstantiate, diag.CodeStaticAssertFailed, diag.Span{}, "static_assert failed in %q: %s", pattern.Name, sa.Message))
		}
	}
}

// bindingsToEvalContext projects the scalar non-type bindings into a
// constexpr.EvaluationContext so static_assert conditions and bitfield
// widths can reference already-substituted non-type template parameters.
func (e *Engine) bindingsToEvalContext(bindings *template.Bindings) *constexpr.EvaluationContext {
	ctx := constexpr.NewEvaluationContext()
	for name, arg := range bindings.Scalars {
		if v, ok := arg.(types.ValueArgument); ok {
			ctx.Values[name] = constexpr.EvalResult{Ok: true, Kind: constexpr.KindInt, Int: v.Value}
		}
	}
	for name, elems := range bindings.Packs {
		ctx.Values["..."+name] = constexpr.EvalResult{Ok: true, Kind: constexpr.KindInt, Int: int64(len(elems))}
	}
	return ctx
}

// resolveTypeIndex extracts a TypeIndex from a fully-substituted TypeExpr.
// ResolvedTypeExpr (the substitutor's own output) and NamedTypeExpr (a
// concrete, non-dependent name already present in the registry) resolve
// directly; a TemplateIdTypeExpr (a base or field whose own type is itself
// a template use, e.g. `Tuple<float, char>` appearing as a base of
// `Tuple<int, float, char>`) recursively instantiates that template before
// resolving, so a chain of template-dependent bases bottoms out completely
// rather than failing the first time one is encountered.
func (e *Engine) resolveTypeIndex(t ast.TypeExpr) (types.TypeIndex, error) {
	switch n := t.(type) {
	case *ast.ResolvedTypeExpr:
		return n.Index, nil
	case *ast.NamedTypeExpr:
		handle := e.interner.Intern(n.Name.Leaf())
		idx, ok := e.types.FindByName(handle)
		if !ok {
			return types.InvalidTypeIndex, errors.Errorf("unknown type name %q", n.Name.Leaf())
		}
		return idx, nil
	case *ast.TemplateIdTypeExpr:
		args, err := e.templateArgsFromExprs(n.Args)
		if err != nil {
			return types.InvalidTypeIndex, errors.Wrapf(err, "resolving template arguments of %q", n.Base.Leaf())
		}
		handle := e.interner.Intern(n.Base.Leaf())
		result, err := e.InstantiateClassTemplate(handle, args)
		if err != nil {
			return types.InvalidTypeIndex, errors.Wrapf(err, "recursively instantiating %q", n.Base.Leaf())
		}
		return result.Index, nil
	default:
		return types.InvalidTypeIndex, errors.Errorf("type expression of kind %T did not resolve to a concrete type", t)
	}
}

// templateArgsFromExprs converts a fully-substituted TemplateArgExpr list
// (as found on a TemplateIdTypeExpr after ExpressionSubstitutor has run)
// into the TemplateArgument vector InstantiateClassTemplate expects.
func (e *Engine) templateArgsFromExprs(exprs []ast.TemplateArgExpr) ([]types.TemplateArgument, error) {
	out := make([]types.TemplateArgument, 0, len(exprs))
	for _, arg := range exprs {
		switch {
		case arg.Type != nil:
			idx, err := e.resolveTypeIndex(arg.Type)
			if err != nil {
				return nil, err
			}
			cv, ref := types.CVQualNone, types.RefQualNone
			if resolved, ok := arg.Type.(*ast.ResolvedTypeExpr); ok {
				cv, ref = resolved.CV, resolved.Ref
			}
			out = append(out, types.TypeArgument{Type: idx, CV: cv, Ref: ref})
		case arg.Value != nil:
			resolved, ok := arg.Value.(*ast.ResolvedValueExpr)
			if !ok {
				return nil, errors.Errorf("non-type template argument did not resolve to a constant")
			}
			out = append(out, types.ValueArgument{Type: resolved.Type, Value: resolved.Value})
		default:
			return nil, errors.Errorf("template argument has neither a type nor a value")
		}
	}
	return out, nil
}

func resolveAccess(a ast.Access) types.Access {
	switch a {
	case ast.AccessProtected:
		return types.AccessProtected
	case ast.AccessPrivate:
		return types.AccessPrivate
	default:
		return types.AccessPublic
	}
}
