// Command corefrontdemo exercises the whole pipeline end to end against a
// handful of literal AST fixtures: template instantiation, expression
// lowering with value-category tracking, overload resolution, and name
// mangling. It is demonstration wiring, not a compiler driver — there is no
// source file, no lexer, and no command-line surface beyond what's printed
// below. Parsing a real translation unit is the ParserDriver boundary's job
// (see internal/driver), not this package's.
package main

import (
	"fmt"
	"os"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/diag"
	"github.com/flashcpp/corefront/internal/instantiate"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/ir"
	"github.com/flashcpp/corefront/internal/logx"
	"github.com/flashcpp/corefront/internal/lower"
	"github.com/flashcpp/corefront/internal/mangle"
	"github.com/flashcpp/corefront/internal/overload"
	"github.com/flashcpp/corefront/internal/template"
	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

// scopeResolver is the minimal NameResolver + CandidateSource this demo
// needs: a flat map from name to variable info and from callee name to its
// overload set, standing in for the scope-walking SymbolTable a real
// front end would wire in instead.
type scopeResolver struct {
	vars       map[string]lower.VariableInfo
	candidates map[string][]*overload.Candidate
}

func newScopeResolver() *scopeResolver {
	return &scopeResolver{
		vars:       map[string]lower.VariableInfo{},
		candidates: map[string][]*overload.Candidate{},
	}
}

func (s *scopeResolver) ResolveVariable(name string) (lower.VariableInfo, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s *scopeResolver) Candidates(name string) []*overload.Candidate {
	return s.candidates[name]
}

func main() {
	log := logx.Default()

	in := intern.New()
	registry := types.NewRegistry(in)
	templates := template.New()
	diags := &diag.Bag{}
	engine := instantiate.New(registry, templates, diags)

	intIdx, _ := registry.AddType("int", types.KindInt32, 32)
	doubleIdx, _ := registry.AddType("double", types.KindFloat64, 64)

	log.Infof(logx.Template, "registering class template Box<T>")
	boxHandle := in.Intern("Box")
	boxPattern := ast.NewStructDecl("Box", token.Span{})
	boxPattern.TemplateParams = []ast.TemplateParamDecl{{Name: "T", Kind: ast.ParamType}}
	boxPattern.Fields = []*ast.FieldDecl{
		ast.NewFieldDecl("value", ast.NewTemplateParamTypeExpr("T", token.Span{}), token.Span{}),
	}
	templates.RegisterPrimary(boxHandle, boxPattern)

	boxInt, err := engine.InstantiateClassTemplate(boxHandle, []types.TemplateArgument{types.TypeArgument{Type: intIdx}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "instantiating Box<int> failed: %v\n", err)
		os.Exit(1)
	}
	boxIntInfo := registry.Get(boxInt.Index)
	log.Infof(logx.Instantiate, "Box<int> laid out at size %d, value offset %d", boxIntInfo.Struct.TotalSize, boxIntInfo.Struct.Members[0].Offset)

	boxDouble, err := engine.InstantiateClassTemplate(boxHandle, []types.TemplateArgument{types.TypeArgument{Type: doubleIdx}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "instantiating Box<double> failed: %v\n", err)
		os.Exit(1)
	}
	boxDoubleInfo := registry.Get(boxDouble.Index)
	log.Infof(logx.Instantiate, "Box<double> laid out at size %d, distinct from Box<int> (%v)", boxDoubleInfo.Struct.TotalSize, boxDouble.Index != boxInt.Index)

	log.Infof(logx.Template, "registering function template identity<T>(T) -> T")
	identityHandle := in.Intern("identity")
	identityPattern := ast.NewFunctionDecl("identity", token.Span{})
	identityPattern.TemplateParams = []ast.TemplateParamDecl{{Name: "T", Kind: ast.ParamType}}
	identityPattern.ReturnType = ast.NewTemplateParamTypeExpr("T", token.Span{})
	identityPattern.Params = []*ast.ParamDecl{ast.NewParamDecl("v", ast.NewTemplateParamTypeExpr("T", token.Span{}), token.Span{})}

	identityInt, err := engine.InstantiateFunctionTemplate(identityHandle, identityPattern, []types.TemplateArgument{types.TypeArgument{Type: intIdx}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "instantiating identity<int> failed: %v\n", err)
		os.Exit(1)
	}

	resolved := identityInt.Decl.ReturnType.(*ast.ResolvedTypeExpr)
	mangler := mangle.New(registry, mangle.X86_64Itanium{})
	identitySig := mangle.Signature{
		Name:       "identity",
		ParamTypes: []types.TypeIndex{resolved.Index},
		Linkage:    identityInt.Decl.Linkage,
	}
	mangledIdentity := mangler.Mangle(identitySig)
	log.Infof(logx.Mangle, "identity<int> mangled as %s", mangledIdentity)

	builder := ir.NewBuilder("demo_main")
	scope := newScopeResolver()
	scope.vars["box"] = lower.VariableInfo{Type: boxInt.Index, IsLocal: true}
	scope.candidates["identity"] = []*overload.Candidate{
		{
			Decl:   identityInt.Decl,
			Params: []overload.Param{{Type: intIdx, Ref: overload.ParamByValue}},
		},
	}

	resolver := overload.New(registry)
	lowering := lower.New(builder, registry, scope, scope, resolver, mangler)
	lowering.SizeType = intIdx

	log.Debugf(logx.Lower, "lowering box.value as an lvalue member access")
	memberExpr := ast.NewMemberAccessExpr(ast.NewIdent("box", token.Span{}), ast.AccessDot, "value", token.Span{})
	memberResult, err := lowering.Lower(memberExpr, lower.Context{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lowering box.value failed: %v\n", err)
		os.Exit(1)
	}
	log.Infof(logx.Lower, "box.value loaded into t%d with category %d", memberResult.Temp, memberResult.Category)

	log.Debugf(logx.Lower, "lowering sizeof(Box<int>)")
	sizeofExpr := ast.NewSizeofExprOfType(ast.NewResolvedTypeExpr(boxInt.Index, types.CVQualNone, types.RefQualNone, token.Span{}), token.Span{})
	sizeofResult, err := lowering.Lower(sizeofExpr, lower.Context{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lowering sizeof(Box<int>) failed: %v\n", err)
		os.Exit(1)
	}
	log.Infof(logx.Lower, "sizeof(Box<int>) folded into t%d", sizeofResult.Temp)

	log.Debugf(logx.Overload, "lowering call identity(42)")
	callExpr := ast.NewCallExpr(ast.NewIdent("identity", token.Span{}), []ast.Expr{ast.NewIntLiteral(42, token.Span{})}, token.Span{})
	callResult, err := lowering.Lower(callExpr, lower.Context{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lowering identity(42) failed: %v\n", err)
		os.Exit(1)
	}
	log.Infof(logx.Overload, "identity(42) resolved and lowered into t%d", callResult.Temp)

	fn := builder.Function()
	fmt.Printf("function %s: %d instructions\n", fn.Name, len(fn.Instructions))
	for _, inst := range fn.Instructions {
		fmt.Printf("  t%d = %v %v %v\n", inst.Dest, inst.Op, inst.Args, inst.Payload)
	}
}
