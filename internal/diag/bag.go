package diag

import "go.uber.org/multierr"

// Bag accumulates diagnostics that should not abort the surrounding work:
// deferred static_assert failures (each logged independently, instantiation
// still considered complete) and ambiguous-overload candidate lists. It is
// backed by go.uber.org/multierr so the accumulated diagnostics can also be
// surfaced as a single error via Err() without losing any individual
// diagnostic.
type Bag struct {
	items []Diagnostic
	err   error
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
	b.err = multierr.Append(b.err, d)
}

// Items returns the diagnostics added so far, in order.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Empty reports whether nothing has been added.
func (b *Bag) Empty() bool {
	return len(b.items) == 0
}

// Err returns the accumulated multierr, or nil if the bag is empty.
func (b *Bag) Err() error {
	return b.err
}
