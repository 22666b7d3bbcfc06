// Package driver defines the ParserDriver boundary: the external
// collaborator that owns the token stream and re-parses an out-of-line
// member-function body once the engine is ready for it. The core never
// parses source itself; it only calls back into this interface at the
// point a deferred body is actually needed.
package driver

import (
	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/token"
)

// ParserDriver is the top-level entry point that drives the core: it owns
// the lexer/parser proper and exposes the handful of re-entrant parse
// operations the instantiation engine needs for members it deferred.
type ParserDriver interface {
	// ParseStructDeclaration parses one struct/class/union declaration
	// starting at the driver's current position and returns its AST.
	ParseStructDeclaration() (*ast.StructDecl, error)

	// ParseBlock parses one `{ ... }` statement sequence starting at the
	// driver's current position.
	ParseBlock() ([]ast.Stmt, error)

	// ParseDelayedFunctionBody re-parses the body of an out-of-line member
	// function whose declaration was seen but whose body was skipped,
	// using the saved position recorded on info.BodyPosition.
	ParseDelayedFunctionBody(info *ast.FunctionDecl) ([]ast.Stmt, error)

	// SavePosition and RestorePosition bracket a re-parse so the driver's
	// main token cursor is left exactly where it was once a delayed body
	// has been pulled in.
	SavePosition() token.Position
	RestorePosition(token.Position)
}

// ErrNoBodyPosition is returned by ParseDelayedFunctionBody when called on
// a FunctionDecl that was never deferred (BodyPosition is nil).
type ErrNoBodyPosition struct {
	FunctionName string
}

func (e *ErrNoBodyPosition) Error() string {
	return "no deferred body position recorded for " + e.FunctionName
}
