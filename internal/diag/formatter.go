package diag

import (
	"fmt"
	"io"
)

// Formatter renders diagnostics to a writer. Locale and rich source-snippet
// formatting are a declared Non-goal; this formatter only
// guarantees a stable, single-line-per-diagnostic rendering that downstream
// tooling (outside the core) can re-format as it sees fit.
type Formatter struct {
	W io.Writer
}

// NewFormatter constructs a formatter writing to w.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{W: w}
}

// Format writes a single diagnostic line.
func (f *Formatter) Format(d Diagnostic) {
	fmt.Fprintln(f.W, d.Error())
}

// FormatAll writes each diagnostic in order.
func (f *Formatter) FormatAll(ds []Diagnostic) {
	for _, d := range ds {
		f.Format(d)
	}
}
