package diag_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/diag"
)

func TestDiagnosticError(t *testing.T) {
	d := diag.New(diag.StageLayout, diag.CodeLayoutError, diag.Span{Line: 3, Column: 5, Filename: "a.cpp"}, "base %q is final", "B")
	require.Equal(t, diag.SeverityError, d.Severity)
	require.Contains(t, d.Error(), "LAYOUT_ERROR")
	require.Contains(t, d.Error(), "a.cpp:3:5")
}

func TestCodeRecoverable(t *testing.T) {
	require.True(t, diag.CodeStaticAssertFailed.Recoverable())
	require.False(t, diag.CodeInstantiationDepthExceeded.Recoverable())
	require.False(t, diag.CodeInternalInvariant.Recoverable())
}

func TestCodeSilent(t *testing.T) {
	require.True(t, diag.CodeConstraintFailed.Silent())
	require.False(t, diag.CodeTypeMismatch.Silent())
}
