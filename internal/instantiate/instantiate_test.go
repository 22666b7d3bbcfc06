package instantiate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/diag"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/template"
	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

func newFixture(t *testing.T) (*Engine, *types.Registry, *template.Registry, *intern.Interner) {
	t.Helper()
	in := intern.New()
	reg := types.NewRegistry(in)
	templates := template.New()
	diags := &diag.Bag{}
	return New(reg, templates, diags), reg, templates, in
}

func registerBoxTemplate(templates *template.Registry, in *intern.Interner) intern.Handle {
	handle := in.Intern("Box")
	box := ast.NewStructDecl("Box", token.Span{})
	box.TemplateParams = []ast.TemplateParamDecl{{Name: "T", Kind: ast.ParamType}}
	box.Fields = []*ast.FieldDecl{
		ast.NewFieldDecl("value", ast.NewTemplateParamTypeExpr("T", token.Span{}), token.Span{}),
	}
	templates.RegisterPrimary(handle, box)
	return handle
}

func TestInstantiateClassTemplateSubstitutesFieldType(t *testing.T) {
	e, reg, templates, in := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	handle := registerBoxTemplate(templates, in)

	result, err := e.InstantiateClassTemplate(handle, []types.TemplateArgument{types.TypeArgument{Type: intIdx}})
	require.NoError(t, err)

	info := reg.Get(result.Index)
	require.NotNil(t, info.Struct)
	require.Len(t, info.Struct.Members, 1)
	require.Equal(t, intIdx, info.Struct.Members[0].Type)
	require.Equal(t, 4, info.Struct.TotalSize)
}

func TestInstantiateClassTemplateCachesByArgumentVector(t *testing.T) {
	e, reg, templates, in := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	handle := registerBoxTemplate(templates, in)

	r1, err := e.InstantiateClassTemplate(handle, []types.TemplateArgument{types.TypeArgument{Type: intIdx}})
	require.NoError(t, err)
	r2, err := e.InstantiateClassTemplate(handle, []types.TemplateArgument{types.TypeArgument{Type: intIdx}})
	require.NoError(t, err)
	require.Equal(t, r1.Index, r2.Index)
}

func TestInstantiateClassTemplateDistinctArgsProduceDistinctTypes(t *testing.T) {
	e, reg, templates, in := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)
	doubleIdx, _ := reg.AddType("double", types.KindFloat64, 64)
	handle := registerBoxTemplate(templates, in)

	rInt, err := e.InstantiateClassTemplate(handle, []types.TemplateArgument{types.TypeArgument{Type: intIdx}})
	require.NoError(t, err)
	rDouble, err := e.InstantiateClassTemplate(handle, []types.TemplateArgument{types.TypeArgument{Type: doubleIdx}})
	require.NoError(t, err)
	require.NotEqual(t, rInt.Index, rDouble.Index)
}

func TestInstantiateClassTemplateDependentArgsReturnPlaceholder(t *testing.T) {
	e, reg, templates, in := newFixture(t)
	handle := registerBoxTemplate(templates, in)

	result, err := e.InstantiateClassTemplate(handle, []types.TemplateArgument{types.TypeArgument{Type: types.InvalidTypeIndex}})
	require.NoError(t, err)
	info := reg.Get(result.Index)
	require.Nil(t, info.Struct)
}

func TestInstantiateClassTemplateMissingRequiredArgumentFails(t *testing.T) {
	e, _, templates, in := newFixture(t)
	handle := registerBoxTemplate(templates, in)

	_, err := e.InstantiateClassTemplate(handle, nil)
	require.Error(t, err)
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestInstantiateFunctionTemplateRequiresClauseRejectsConstraintFailure(t *testing.T) {
	e, reg, _, in := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)

	fn := ast.NewFunctionDecl("only_if_false", token.Span{})
	fn.TemplateParams = []ast.TemplateParamDecl{{Name: "T", Kind: ast.ParamType}}
	fn.ReturnType = ast.NewTemplateParamTypeExpr("T", token.Span{})
	fn.RequiresClause = ast.NewBoolLiteral(false, token.Span{})

	_, err := e.InstantiateFunctionTemplate(in.Intern("only_if_false"), fn, []types.TemplateArgument{types.TypeArgument{Type: intIdx}})
	require.Error(t, err)
	var constraintErr *ConstraintFailedError
	require.ErrorAs(t, err, &constraintErr)
}

func TestInstantiateFunctionTemplateSubstitutesReturnType(t *testing.T) {
	e, reg, _, in := newFixture(t)
	intIdx, _ := reg.AddType("int", types.KindInt32, 32)

	fn := ast.NewFunctionDecl("identity", token.Span{})
	fn.TemplateParams = []ast.TemplateParamDecl{{Name: "T", Kind: ast.ParamType}}
	fn.ReturnType = ast.NewTemplateParamTypeExpr("T", token.Span{})
	fn.Params = []*ast.ParamDecl{ast.NewParamDecl("v", ast.NewTemplateParamTypeExpr("T", token.Span{}), token.Span{})}

	result, err := e.InstantiateFunctionTemplate(in.Intern("identity"), fn, []types.TemplateArgument{types.TypeArgument{Type: intIdx}})
	require.NoError(t, err)

	resolved, ok := result.Decl.ReturnType.(*ast.ResolvedTypeExpr)
	require.True(t, ok)
	require.Equal(t, intIdx, resolved.Index)
}
