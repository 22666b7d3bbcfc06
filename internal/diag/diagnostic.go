// Package diag implements the core's error taxonomy: a closed set
// of diagnostic kinds, their severities, and the recovery policy that lets
// most of them be recorded without aborting the surrounding translation
// unit.
package diag

import "fmt"

// Stage identifies which compiler phase produced the diagnostic. The lexer
// and parser stages are produced by external collaborators; the core only
// originates the remaining stages.
type Stage string

const (
	StageLexer       Stage = "lexer"
	StageParser      Stage = "parser"
	StageTemplate    Stage = "template"
	StageInstantiate Stage = "instantiate"
	StageOverload    Stage = "overload"
	StageLower       Stage = "lower"
	StageLayout      Stage = "layout"
	StageMangle      Stage = "mangle"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic kind.
type Code string

const (
	CodeLexicalError            Code = "LEXICAL_ERROR"
	CodeSyntaxError              Code = "SYNTAX_ERROR"
	CodeUnresolvedName           Code = "UNRESOLVED_NAME"
	CodeAmbiguousOverload        Code = "AMBIGUOUS_OVERLOAD"
	CodeNoMatchingOverload       Code = "NO_MATCHING_OVERLOAD"
	CodeAccessViolation          Code = "ACCESS_VIOLATION"
	CodeTypeMismatch             Code = "TYPE_MISMATCH"
	CodeTemplateArgMismatch      Code = "TEMPLATE_ARG_MISMATCH"
	CodeConstraintFailed         Code = "CONSTRAINT_FAILED"
	CodeStaticAssertFailed       Code = "STATIC_ASSERT_FAILED"
	CodeLayoutError              Code = "LAYOUT_ERROR"
	CodeInstantiationDepthExceeded Code = "INSTANTIATION_DEPTH_EXCEEDED"
	CodeInternalInvariant        Code = "INTERNAL_INVARIANT"
)

// Recoverable reports whether this code is local (record and continue
// processing siblings) rather than fatal. Only InstantiationDepthExceeded
// and InternalInvariant abort the translation unit.
func (c Code) Recoverable() bool {
	return c != CodeInstantiationDepthExceeded && c != CodeInternalInvariant
}

// Silent reports whether the code is SFINAE-silent: it never surfaces as a
// diagnostic on its own, only contributes to an empty-candidate-set report
// at the use-site.
func (c Code) Silent() bool {
	return c == CodeConstraintFailed
}

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// IsValid reports whether the span carries real position information.
func (s Span) IsValid() bool {
	return s.Line > 0
}

func (s Span) String() string {
	if s.Filename == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
}

// Diagnostic is a compiler diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	// Cause, when present, is the underlying wrapped error (for example a
	// layout or instantiation error wrapped with github.com/pkg/errors) that
	// produced this diagnostic; printed at Trace log level but not by Format.
	Cause error
}

func (d Diagnostic) Error() string {
	if d.Span.IsValid() {
		return fmt.Sprintf("%s[%s]: %s (%s)", d.Severity, d.Code, d.Message, d.Span)
	}
	return fmt.Sprintf("%s[%s]: %s", d.Severity, d.Code, d.Message)
}

// New constructs a diagnostic with SeverityError.
func New(stage Stage, code Code, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
}

// Warningf constructs a diagnostic with SeverityWarning.
func Warningf(stage Stage, code Code, span Span, format string, args ...any) Diagnostic {
	d := New(stage, code, span, format, args...)
	d.Severity = SeverityWarning
	return d
}
