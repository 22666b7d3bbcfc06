// Package lower implements ExpressionLowering: turning a single expression
// into IR instructions plus the value-category metadata every temporary it
// produces carries forward to assignment, call, and cast lowering.
package lower

import (
	"github.com/pkg/errors"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/constexpr"
	"github.com/flashcpp/corefront/internal/ir"
	"github.com/flashcpp/corefront/internal/mangle"
	"github.com/flashcpp/corefront/internal/overload"
	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

// VariableInfo is what the lowering context needs to know about a named
// variable to lower a reference to it: its type and, for a struct member
// reached without qualification (an implicit `this->`), its byte offset.
type VariableInfo struct {
	Type       types.TypeIndex
	IsLocal    bool
	FieldInfo  *types.StructMember // non-nil if this name actually resolves to an implicit member access
	FieldBase  string              // "this" when FieldInfo is set
}

// NameResolver is the minimal slice of SymbolTable lookup ExpressionLowering
// needs: resolving a bare name to variable/member information. The full
// SymbolTable boundary lives in package symtab; lowering only needs lookup.
type NameResolver interface {
	ResolveVariable(name string) (VariableInfo, bool)
}

// CandidateSource supplies the overload set visible for a callee name,
// deferring to whatever scope-walking SymbolTable or base-class lookup the
// caller wires in. Lowering itself never walks scopes.
type CandidateSource interface {
	Candidates(calleeName string) []*overload.Candidate
}

// Result is the `(kind, bit_size, value, extra_index)` tuple every lowered
// expression produces: Temp identifies the IR temporary holding (or
// addressing) the value, Type is its static type, and Category/LValue
// mirror the TempVarMetadata already recorded on the builder.
type Result struct {
	Temp     ir.TempVar
	Type     types.TypeIndex
	Category ir.Category
	LValue   *ir.LValueInfo
}

// Lowering is the ExpressionLowering component. One instance is scoped to a
// single function body, matching the per-function ownership of its
// ir.Builder and TempVar metadata table.
type Lowering struct {
	builder    *ir.Builder
	types      *types.Registry
	resolver   NameResolver
	candidates CandidateSource
	overload   *overload.Resolver
	mangler    *mangle.Mangler
	evaluator  *constexpr.Evaluator

	// SizeType is the integer type sizeof/alignof/offsetof results are
	// given; left InvalidTypeIndex, the raw constant is still emitted but
	// carries no usable static type.
	SizeType types.TypeIndex

	// RegisterReturnThreshold records the byte size above which a by-value
	// struct return would use a caller-allocated return slot. Lowering does
	// not read it: lowerCall returns every call result in a fresh temp and
	// passes no hidden return-slot argument.
	RegisterReturnThreshold int
}

// New constructs a Lowering writing into builder.
func New(builder *ir.Builder, registry *types.Registry, resolver NameResolver, candidates CandidateSource, overloadResolver *overload.Resolver, mangler *mangle.Mangler) *Lowering {
	return &Lowering{
		builder:                 builder,
		types:                   registry,
		resolver:                resolver,
		candidates:              candidates,
		overload:                overloadResolver,
		mangler:                 mangler,
		evaluator:               constexpr.New(),
		SizeType:                types.InvalidTypeIndex,
		RegisterReturnThreshold: 16,
	}
}

// Context carries the per-call-site addressing mode lowering needs:
// whether the enclosing use is an lvalue-address context (e.g. the target
// of `&expr` or the left-hand side of an assignment), which suppresses the
// trailing load a plain value-context lowering would otherwise emit.
type Context struct {
	WantAddress bool
}

// Lower dispatches on the expression's concrete kind and returns its result
// tuple, recording TempVarMetadata for the produced temp.
func (l *Lowering) Lower(expr ast.Expr, ctx Context) (Result, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return l.lowerLiteral(n)
	case *ast.Ident:
		return l.lowerIdent(n, ctx)
	case *ast.BinaryExpr:
		return l.lowerBinary(n)
	case *ast.UnaryExpr:
		return l.lowerUnary(n, ctx)
	case *ast.MemberAccessExpr:
		return l.lowerMemberAccess(n, ctx)
	case *ast.SubscriptExpr:
		return l.lowerSubscript(n, ctx)
	case *ast.CastExpr:
		return l.lowerCast(n)
	case *ast.SizeofExpr:
		return l.lowerSizeof(n)
	case *ast.AlignofExpr:
		return l.lowerAlignof(n)
	case *ast.OffsetofExpr:
		return l.lowerOffsetof(n)
	case *ast.TypeTraitExpr:
		return l.lowerTypeTrait(n)
	case *ast.CallExpr:
		return l.lowerCall(n)
	case *ast.NewExpr:
		return l.lowerNew(n)
	case *ast.DeleteExpr:
		return l.lowerDelete(n)
	default:
		return Result{}, errors.Errorf("lowering of expression kind %T is not implemented", expr)
	}
}

func (l *Lowering) emit(result Result, meta ir.TempVarMetadata) Result {
	l.builder.SetMetadata(result.Temp, meta)
	result.Category = meta.Category
	result.LValue = meta.LValue
	return result
}

func (l *Lowering) lowerLiteral(n *ast.Literal) (Result, error) {
	temp := l.builder.AddInstruction(ir.OpLoad, nil, literalValue(n), n.Span())
	return l.emit(Result{Temp: temp}, ir.TempVarMetadata{Category: ir.PRValue}), nil
}

func literalValue(n *ast.Literal) interface{} {
	switch n.Kind {
	case ast.LitInt, ast.LitChar:
		return n.Int
	case ast.LitFloat:
		return n.Float
	case ast.LitBool:
		return n.Bool
	case ast.LitString:
		return n.Str
	default:
		return nil
	}
}

// lowerIdent looks up a bare name: a direct local/global variable is a
// Direct lvalue; a name that actually resolves through an implicit `this`
// member is a Member lvalue, matching the rule that a named variable is an
// lvalue of kind Direct and `obj.m` is an lvalue combining bases.
func (l *Lowering) lowerIdent(n *ast.Ident, ctx Context) (Result, error) {
	info, ok := l.resolver.ResolveVariable(n.Name)
	if !ok {
		return Result{}, errors.Errorf("unresolved name %q", n.Name)
	}

	if info.FieldInfo != nil {
		addr := l.builder.AddInstruction(ir.OpMemberAccess, nil, info.FieldInfo.Name, n.Span())
		meta := ir.TempVarMetadata{
			Category: ir.LValue,
			LValue:   &ir.LValueInfo{Kind: ir.LValueMember, BaseName: info.FieldBase, MemberName: n.Name, Offset: info.FieldInfo.Offset},
		}
		result := l.emit(Result{Temp: addr, Type: info.Type}, meta)
		if ctx.WantAddress {
			return result, nil
		}
		return l.load(result)
	}

	op := ir.OpLValueAddress
	addr := l.builder.AddInstruction(op, nil, n.Name, n.Span())
	meta := ir.TempVarMetadata{Category: ir.LValue, LValue: &ir.LValueInfo{Kind: ir.LValueDirect, BaseName: n.Name}}
	result := l.emit(Result{Temp: addr, Type: info.Type}, meta)
	if ctx.WantAddress {
		return result, nil
	}
	return l.load(result)
}

// load emits the trailing Load that turns an lvalue address temp into a
// prvalue temp, unless the caller is in an lvalue-address context.
func (l *Lowering) load(addr Result) (Result, error) {
	temp := l.builder.AddInstruction(ir.OpLoad, []ir.TempVar{addr.Temp}, nil, token.Span{})
	return l.emit(Result{Temp: temp, Type: addr.Type}, ir.TempVarMetadata{Category: ir.PRValue}), nil
}

func (l *Lowering) lowerBinary(n *ast.BinaryExpr) (Result, error) {
	if n.Op == ast.OpAssign {
		return l.lowerAssign(n)
	}
	lhs, err := l.Lower(n.LHS, Context{})
	if err != nil {
		return Result{}, err
	}
	rhs, err := l.Lower(n.RHS, Context{})
	if err != nil {
		return Result{}, err
	}
	temp := l.builder.AddInstruction(ir.OpBinary, []ir.TempVar{lhs.Temp, rhs.Temp}, string(n.Op), n.Span())
	return l.emit(Result{Temp: temp, Type: lhs.Type}, ir.TempVarMetadata{Category: ir.PRValue}), nil
}

// lowerAssign resolves the lvalue metadata recorded for the left-hand side
// and routes the store through Direct/Member/ArrayElement/Indirect, per the
// value-category rules.
func (l *Lowering) lowerAssign(n *ast.BinaryExpr) (Result, error) {
	lhs, err := l.Lower(n.LHS, Context{WantAddress: true})
	if err != nil {
		return Result{}, err
	}
	rhs, err := l.Lower(n.RHS, Context{})
	if err != nil {
		return Result{}, err
	}
	if lhs.LValue == nil {
		return Result{}, errors.Errorf("assignment target is not an lvalue")
	}
	l.builder.AddVoidInstruction(ir.OpStore, []ir.TempVar{lhs.Temp, rhs.Temp}, lhs.LValue.Kind, n.Span())
	return Result{Temp: rhs.Temp, Type: lhs.Type, Category: ir.PRValue}, nil
}

func (l *Lowering) lowerUnary(n *ast.UnaryExpr, ctx Context) (Result, error) {
	switch n.Op {
	case ast.OpAddressOf:
		operand, err := l.Lower(n.Operand, Context{WantAddress: true})
		if err != nil {
			return Result{}, err
		}
		if operand.Category == ir.PRValue {
			return Result{}, errors.Errorf("cannot take the address of a prvalue")
		}
		return Result{Temp: operand.Temp, Type: operand.Type, Category: ir.PRValue}, nil
	case ast.OpDeref:
		operand, err := l.Lower(n.Operand, Context{})
		if err != nil {
			return Result{}, err
		}
		meta := ir.TempVarMetadata{Category: ir.LValue, LValue: &ir.LValueInfo{Kind: ir.LValueIndirect, BaseTemp: operand.Temp, BaseIsTemp: true}}
		temp := l.builder.AddInstruction(ir.OpLValueAddress, []ir.TempVar{operand.Temp}, nil, n.Span())
		result := l.emit(Result{Temp: temp, Type: operand.Type}, meta)
		if ctx.WantAddress {
			return result, nil
		}
		return l.load(result)
	default:
		operand, err := l.Lower(n.Operand, Context{})
		if err != nil {
			return Result{}, err
		}
		temp := l.builder.AddInstruction(ir.OpUnary, []ir.TempVar{operand.Temp}, string(n.Op), n.Span())
		return l.emit(Result{Temp: temp, Type: operand.Type}, ir.TempVarMetadata{Category: ir.PRValue}), nil
	}
}

// lowerMemberAccess resolves `.`/`->` into an lvalue whose base is the
// object's own base combined with the member's offset, so that a following
// assignment collapses to a single store.
func (l *Lowering) lowerMemberAccess(n *ast.MemberAccessExpr, ctx Context) (Result, error) {
	object, err := l.Lower(n.Object, Context{WantAddress: true})
	if err != nil {
		return Result{}, err
	}
	info := l.types.Get(object.Type)
	if info.Struct == nil {
		return Result{}, errors.Errorf("member access on a non-struct type")
	}
	member, offset, ok := findMember(l.types, info.Struct, n.Member)
	if !ok {
		return Result{}, errors.Errorf("no member named %q", n.Member)
	}
	addr := l.builder.AddInstruction(ir.OpMemberAccess, []ir.TempVar{object.Temp}, n.Member, n.Span())
	meta := ir.TempVarMetadata{
		Category: ir.LValue,
		LValue: &ir.LValueInfo{
			Kind:              ir.LValueMember,
			BaseTemp:          object.Temp,
			BaseIsTemp:        true,
			Offset:            offset,
			MemberName:        n.Member,
			BitfieldWidth:     member.BitfieldWidth,
			BitfieldBitOffset: member.BitfieldBitOffset,
			IsPointerToMember: n.Op == ast.AccessArrow,
		},
	}
	result := l.emit(Result{Temp: addr, Type: member.Type}, meta)
	if ctx.WantAddress {
		return result, nil
	}
	return l.load(result)
}

func findMember(registry *types.Registry, si *types.StructInfo, name string) (types.StructMember, int, bool) {
	for _, m := range si.Members {
		if registry.Interner().MustLookup(m.Name) == name {
			return m, m.Offset, true
		}
	}
	return types.StructMember{}, 0, false
}

// lowerSubscript flattens a chain of SubscriptExprs `a[i][j]...[k]` into a
// single ArrayAccess using the declared dimensions, per the multidimensional
// flattening rule `flat = Σ i_k · Π_{j>k} D_j`. The chain is collected by
// walking `.Array` down to the first non-subscript base expression; the
// base's type supplies the declared dimensions via its nested ArrayInfo
// chain, one level per subscript.
func (l *Lowering) lowerSubscript(n *ast.SubscriptExpr, ctx Context) (Result, error) {
	chain := []*ast.SubscriptExpr{n}
	for {
		inner, ok := chain[len(chain)-1].Array.(*ast.SubscriptExpr)
		if !ok {
			break
		}
		chain = append(chain, inner)
	}
	depth := len(chain)

	base, err := l.Lower(chain[depth-1].Array, Context{WantAddress: true})
	if err != nil {
		return Result{}, err
	}

	dims := make([]int, depth)
	elemType := base.Type
	for i := 0; i < depth; i++ {
		info := l.types.Get(elemType)
		if info.Array == nil {
			return Result{}, errors.Errorf("subscript chain of depth %d exceeds declared array dimensions", depth)
		}
		dims[i] = info.Array.Length
		elemType = info.Array.ElementType
	}

	// chain[0] holds the last-written (innermost) index; chain[depth-1]
	// holds the first. indices ends up ordered outer-to-inner, matching dims.
	indices := make([]Result, depth)
	for i, sub := range chain {
		idx, err := l.Lower(sub.Index, Context{})
		if err != nil {
			return Result{}, err
		}
		indices[depth-1-i] = idx
	}

	var flat ir.TempVar
	for k := 0; k < depth; k++ {
		product := 1
		for j := k + 1; j < depth; j++ {
			product *= dims[j]
		}
		term := indices[k].Temp
		if product != 1 {
			factor := l.constantResult(int64(product), n.Span())
			term = l.builder.AddInstruction(ir.OpBinary, []ir.TempVar{term, factor.Temp}, string(ast.OpMul), n.Span())
		}
		if k == 0 {
			flat = term
			continue
		}
		flat = l.builder.AddInstruction(ir.OpBinary, []ir.TempVar{flat, term}, string(ast.OpAdd), n.Span())
	}

	addr := l.builder.AddInstruction(ir.OpArrayAccess, []ir.TempVar{base.Temp, flat}, nil, n.Span())
	meta := ir.TempVarMetadata{
		Category: ir.LValue,
		LValue:   &ir.LValueInfo{Kind: ir.LValueArrayElement, BaseTemp: base.Temp, BaseIsTemp: true, ArrayIndex: flat},
	}
	result := l.emit(Result{Temp: addr, Type: elemType}, meta)
	if ctx.WantAddress {
		return result, nil
	}
	return l.load(result)
}

// lowerCast handles static_cast numeric conversions, reference casts, and
// passes const_cast/reinterpret_cast through as metadata-only retypes.
func (l *Lowering) lowerCast(n *ast.CastExpr) (Result, error) {
	operandCtx := Context{}
	if _, ok := n.Target.(*ast.ReferenceTypeExpr); ok {
		// Casting to a reference type never materializes a new object;
		// lower in address context so the result keeps the operand's own
		// LValueInfo instead of collapsing it to a bare loaded value.
		operandCtx = Context{WantAddress: true}
	}
	operand, err := l.Lower(n.Operand, operandCtx)
	if err != nil {
		return Result{}, err
	}
	target, err := l.resolveTypeIndex(n.Target)
	if err != nil {
		return Result{}, err
	}
	targetInfo := l.types.Get(target)
	operandInfo := l.types.Get(operand.Type)

	switch n.Kind {
	case ast.CastStatic:
		return l.lowerStaticCast(n, operand, operandInfo, target, targetInfo)
	case ast.CastConst, ast.CastReinterpret:
		return Result{Temp: operand.Temp, Type: target, Category: operand.Category, LValue: operand.LValue}, nil
	case ast.CastDynamic:
		temp := l.builder.AddInstruction(ir.OpDynamicCast, []ir.TempVar{operand.Temp}, nil, n.Span())
		return l.emit(Result{Temp: temp, Type: target}, ir.TempVarMetadata{Category: ir.PRValue}), nil
	default: // CastCStyle: try static, fall back to reinterpret
		return l.lowerStaticCast(n, operand, operandInfo, target, targetInfo)
	}
}

func (l *Lowering) lowerStaticCast(n *ast.CastExpr, operand Result, operandInfo *types.TypeInfo, target types.TypeIndex, targetInfo *types.TypeInfo) (Result, error) {
	if ref, ok := n.Target.(*ast.ReferenceTypeExpr); ok {
		elemIdx, err := l.resolveTypeIndex(ref.Elem)
		if err != nil {
			return Result{}, err
		}
		if ref.Ref == ast.RefRValue {
			return Result{Temp: operand.Temp, Type: elemIdx, Category: ir.XValue, LValue: operand.LValue}, nil
		}
		return Result{Temp: operand.Temp, Type: elemIdx, Category: ir.LValue, LValue: operand.LValue}, nil
	}

	switch {
	case operandInfo.Kind.IsFloat() && targetInfo.Kind.IsInteger() && targetInfo.Kind != types.KindBool:
		temp := l.builder.AddInstruction(ir.OpFloatToInt, []ir.TempVar{operand.Temp}, nil, n.Span())
		return l.emit(Result{Temp: temp, Type: target}, ir.TempVarMetadata{Category: ir.PRValue}), nil
	case operandInfo.Kind.IsInteger() && targetInfo.Kind.IsFloat():
		temp := l.builder.AddInstruction(ir.OpIntToFloat, []ir.TempVar{operand.Temp}, nil, n.Span())
		return l.emit(Result{Temp: temp, Type: target}, ir.TempVarMetadata{Category: ir.PRValue}), nil
	case operandInfo.Kind.IsFloat() && targetInfo.Kind.IsFloat():
		temp := l.builder.AddInstruction(ir.OpFloatToFloat, []ir.TempVar{operand.Temp}, nil, n.Span())
		return l.emit(Result{Temp: temp, Type: target}, ir.TempVarMetadata{Category: ir.PRValue}), nil
	case targetInfo.Kind == types.KindBool:
		temp := l.builder.AddInstruction(ir.OpBinary, []ir.TempVar{operand.Temp}, "!= 0", n.Span())
		return l.emit(Result{Temp: temp, Type: target}, ir.TempVarMetadata{Category: ir.PRValue}), nil
	default:
		temp := l.builder.AddInstruction(ir.OpBitcast, []ir.TempVar{operand.Temp}, nil, n.Span())
		return l.emit(Result{Temp: temp, Type: target}, ir.TempVarMetadata{Category: ir.PRValue}), nil
	}
}

func (l *Lowering) resolveTypeIndex(t ast.TypeExpr) (types.TypeIndex, error) {
	switch n := t.(type) {
	case *ast.ResolvedTypeExpr:
		return n.Index, nil
	case *ast.ReferenceTypeExpr:
		return l.resolveTypeIndex(n.Elem)
	case *ast.PointerTypeExpr:
		return l.resolveTypeIndex(n.Elem)
	case *ast.NamedTypeExpr:
		idx, ok := l.types.FindByName(l.types.Interner().Intern(n.Name.Leaf()))
		if !ok {
			return types.InvalidTypeIndex, errors.Errorf("unknown type %q", n.Name.Leaf())
		}
		return idx, nil
	default:
		return types.InvalidTypeIndex, errors.Errorf("cannot resolve type expression of kind %T to a concrete type", t)
	}
}

// lowerSizeof folds to a compile-time constant: the operand form lowers the
// expression into a scratch builder only to learn its static type, so none
// of the operand's instructions reach the function's stream.
func (l *Lowering) lowerSizeof(n *ast.SizeofExpr) (Result, error) {
	var target types.TypeIndex
	var err error
	if n.Type != nil {
		target, err = l.resolveTypeIndex(n.Type)
	} else {
		scratch := *l
		scratch.builder = ir.NewBuilder("sizeof")
		var operand Result
		operand, err = scratch.Lower(n.Operand, Context{})
		target = operand.Type
	}
	if err != nil {
		return Result{}, err
	}
	return l.constantResult(int64(l.types.Get(target).SizeBytes()), n.Span()), nil
}

func (l *Lowering) lowerAlignof(n *ast.AlignofExpr) (Result, error) {
	target, err := l.resolveTypeIndex(n.Type)
	if err != nil {
		return Result{}, err
	}
	return l.constantResult(int64(l.types.Get(target).Alignment), n.Span()), nil
}

// lowerOffsetof resolves Type down to its StructInfo and reports Member's
// already-finalized byte offset.
func (l *Lowering) lowerOffsetof(n *ast.OffsetofExpr) (Result, error) {
	target, err := l.resolveTypeIndex(n.Type)
	if err != nil {
		return Result{}, err
	}
	info := l.types.Get(target)
	if info.Struct == nil {
		return Result{}, errors.Errorf("offsetof on a non-struct type")
	}
	_, offset, ok := findMember(l.types, info.Struct, n.Member)
	if !ok {
		return Result{}, errors.Errorf("no member named %q", n.Member)
	}
	return l.constantResult(int64(offset), n.Span()), nil
}

// lowerTypeTrait evaluates the small set of compiler-intrinsic traits that
// produce a bool rather than a type. Any trait not listed below, including
// type-producing ones such as `__underlying_type`, is rejected with an
// error.
func (l *Lowering) lowerTypeTrait(n *ast.TypeTraitExpr) (Result, error) {
	if len(n.Args) == 0 {
		return Result{}, errors.Errorf("type trait %q requires at least one argument", n.Trait)
	}
	target, err := l.resolveTypeIndex(n.Args[0])
	if err != nil {
		return Result{}, err
	}
	info := l.types.Get(target)

	var value bool
	switch n.Trait {
	case "__is_class":
		value = info.Kind == types.KindStruct
	case "__is_union":
		value = info.Kind == types.KindUnion
	case "__is_enum":
		value = info.Kind == types.KindEnum
	case "__is_pointer":
		_, isPtr := n.Args[0].(*ast.PointerTypeExpr)
		value = isPtr
	case "__is_reference":
		_, isRef := n.Args[0].(*ast.ReferenceTypeExpr)
		value = isRef
	case "__is_arithmetic":
		value = info.Kind.IsArithmetic()
	default:
		return Result{}, errors.Errorf("unsupported type trait %q", n.Trait)
	}

	temp := l.builder.AddInstruction(ir.OpLoad, nil, value, n.Span())
	return l.emit(Result{Temp: temp}, ir.TempVarMetadata{Category: ir.PRValue}), nil
}

func (l *Lowering) constantResult(value int64, span token.Span) Result {
	temp := l.builder.AddInstruction(ir.OpLoad, nil, value, span)
	return l.emit(Result{Temp: temp, Type: l.SizeType}, ir.TempVarMetadata{Category: ir.PRValue})
}

// lowerCall resolves the callee's overload set, ranks the lowered
// arguments against it, and emits a direct or virtual call depending on
// whether the chosen candidate is a virtual method.
func (l *Lowering) lowerCall(n *ast.CallExpr) (Result, error) {
	var object *Result
	calleeName := ""
	switch callee := n.Callee.(type) {
	case *ast.Ident:
		calleeName = callee.Name
	case *ast.MemberAccessExpr:
		obj, err := l.Lower(callee.Object, Context{WantAddress: true})
		if err != nil {
			return Result{}, err
		}
		object = &obj
		calleeName = callee.Member
	case *ast.QualifiedName:
		calleeName = callee.Leaf()
	default:
		return Result{}, errors.Errorf("unsupported call target of kind %T", n.Callee)
	}

	args := make([]overload.Argument, 0, len(n.Args))
	argResults := make([]Result, 0, len(n.Args))
	for _, a := range n.Args {
		r, err := l.Lower(a, Context{})
		if err != nil {
			return Result{}, err
		}
		args = append(args, overload.Argument{Type: r.Type, Category: toOverloadCategory(r.Category)})
		argResults = append(argResults, r)
	}

	if l.candidates == nil {
		return Result{}, errors.Errorf("call to %q requires a wired candidate source", calleeName)
	}
	chosen, err := l.overload.Resolve(l.candidates.Candidates(calleeName), args)
	if err != nil {
		return Result{}, errors.Wrapf(err, "resolving call to %q", calleeName)
	}

	returnType, err := l.resolveTypeIndex(chosen.Decl.ReturnType)
	if err != nil {
		return Result{}, err
	}

	sig := mangle.Signature{
		Name:         chosen.Decl.Name,
		OperatorName: chosen.Decl.OperatorName,
		ParentStruct: chosen.Decl.ParentStruct,
		Namespace:    chosen.Decl.Namespace,
		IsVariadic:   chosen.Decl.IsVariadic,
		Linkage:      chosen.Decl.Linkage,
	}
	for _, p := range chosen.Params {
		sig.ParamTypes = append(sig.ParamTypes, p.Type)
	}
	mangled := l.mangler.Mangle(sig)

	callArgs := make([]ir.TempVar, 0, len(argResults)+1)
	if object != nil {
		callArgs = append(callArgs, object.Temp)
	}
	for _, r := range argResults {
		callArgs = append(callArgs, r.Temp)
	}

	info := ir.CallInfo{MangledName: mangled, VTableSlot: -1}
	op := ir.OpFunctionCall
	if object != nil && chosen.Decl.IsVirtual {
		op = ir.OpVirtualCall
		info.VTableSlot = chosen.VTableSlot
		if access, ok := n.Callee.(*ast.MemberAccessExpr); ok {
			info.IsPointerAccess = access.Op == ast.AccessArrow
		}
	} else if chosen.Decl.IsConstructor {
		op = ir.OpConstructorCall
	}
	temp := l.builder.AddInstruction(op, callArgs, info, n.Span())
	return l.emit(Result{Temp: temp, Type: returnType}, ir.TempVarMetadata{Category: ir.PRValue}), nil
}

func toOverloadCategory(c ir.Category) overload.Category {
	switch c {
	case ir.LValue:
		return overload.LValue
	case ir.XValue:
		return overload.XValue
	default:
		return overload.PRValue
	}
}

// lowerNew emits a heap allocation and routes to the placement, array, or
// plain scalar form depending on which NewExpr fields are set.
func (l *Lowering) lowerNew(n *ast.NewExpr) (Result, error) {
	target, err := l.resolveTypeIndex(n.Type)
	if err != nil {
		return Result{}, err
	}

	argTemps := make([]ir.TempVar, 0, len(n.Args))
	for _, a := range n.Args {
		r, err := l.Lower(a, Context{})
		if err != nil {
			return Result{}, err
		}
		argTemps = append(argTemps, r.Temp)
	}

	if n.Placement != nil {
		place, err := l.Lower(n.Placement, Context{})
		if err != nil {
			return Result{}, err
		}
		args := append([]ir.TempVar{place.Temp}, argTemps...)
		temp := l.builder.AddInstruction(ir.OpPlacementNew, args, target, n.Span())
		return l.emit(Result{Temp: temp, Type: target}, ir.TempVarMetadata{Category: ir.PRValue}), nil
	}

	if n.ArrayCount != nil {
		count, err := l.Lower(n.ArrayCount, Context{})
		if err != nil {
			return Result{}, err
		}
		temp := l.builder.AddInstruction(ir.OpHeapAllocArray, []ir.TempVar{count.Temp}, target, n.Span())
		return l.emit(Result{Temp: temp, Type: target}, ir.TempVarMetadata{Category: ir.PRValue}), nil
	}

	temp := l.builder.AddInstruction(ir.OpHeapAlloc, argTemps, target, n.Span())
	return l.emit(Result{Temp: temp, Type: target}, ir.TempVarMetadata{Category: ir.PRValue}), nil
}

func (l *Lowering) lowerDelete(n *ast.DeleteExpr) (Result, error) {
	operand, err := l.Lower(n.Operand, Context{})
	if err != nil {
		return Result{}, err
	}
	op := ir.OpHeapFree
	if n.IsArray {
		op = ir.OpHeapFreeArray
	}
	l.builder.AddVoidInstruction(op, []ir.TempVar{operand.Temp}, nil, n.Span())
	return Result{Temp: ir.InvalidTempVar, Category: ir.PRValue}, nil
}
