package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/token"
)

// fakeDriver is a deterministic ParserDriver stand-in: delayed bodies are
// pre-registered by function name rather than actually re-lexed, letting
// instantiation-engine tests exercise the re-parse call without a real
// lexer/parser.
type fakeDriver struct {
	pos    token.Position
	bodies map[string][]ast.Stmt
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{bodies: map[string][]ast.Stmt{}}
}

func (f *fakeDriver) ParseStructDeclaration() (*ast.StructDecl, error) {
	return ast.NewStructDecl("fake", token.Span{}), nil
}

func (f *fakeDriver) ParseBlock() ([]ast.Stmt, error) {
	return nil, nil
}

func (f *fakeDriver) ParseDelayedFunctionBody(info *ast.FunctionDecl) ([]ast.Stmt, error) {
	if info.BodyPosition == nil {
		return nil, &ErrNoBodyPosition{FunctionName: info.Name}
	}
	body, ok := f.bodies[info.Name]
	if !ok {
		return nil, &ErrNoBodyPosition{FunctionName: info.Name}
	}
	return body, nil
}

func (f *fakeDriver) SavePosition() token.Position {
	return f.pos
}

func (f *fakeDriver) RestorePosition(p token.Position) {
	f.pos = p
}

func TestParseDelayedFunctionBodyReturnsRegisteredBody(t *testing.T) {
	d := newFakeDriver()
	fn := ast.NewFunctionDecl("do_work", token.Span{})
	pos := token.Position{File: 1, Offset: 42}
	fn.BodyPosition = &pos
	d.bodies["do_work"] = []ast.Stmt{&ast.ReturnStmt{}}

	body, err := d.ParseDelayedFunctionBody(fn)
	require.NoError(t, err)
	require.Len(t, body, 1)
}

func TestParseDelayedFunctionBodyWithoutSavedPositionFails(t *testing.T) {
	d := newFakeDriver()
	fn := ast.NewFunctionDecl("never_deferred", token.Span{})

	_, err := d.ParseDelayedFunctionBody(fn)
	require.Error(t, err)
	var notDeferred *ErrNoBodyPosition
	require.ErrorAs(t, err, &notDeferred)
}

func TestSaveAndRestorePositionRoundTrips(t *testing.T) {
	d := newFakeDriver()
	d.RestorePosition(token.Position{File: 2, Offset: 10})
	got := d.SavePosition()
	require.Equal(t, token.Position{File: 2, Offset: 10}, got)
}

var _ ParserDriver = (*fakeDriver)(nil)
