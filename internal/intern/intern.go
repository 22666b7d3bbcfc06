// Package intern implements process-wide interning of identifiers and
// mangled names into stable, dense handles.
package intern

// Handle is a stable, dense identifier for an interned string. Handles are
// assigned in registration order and are never reused.
type Handle int32

// Invalid is the sentinel "no handle" value.
const Invalid Handle = -1

// Interner interns strings into Handles. It is append-only; the core runs
// single-threaded within a translation unit, so no locking is required here
// (a future per-TU-parallel design would give each unit its own Interner
// and merge afterward, rather than add locks to this one).
type Interner struct {
	strings []string
	byValue map[string]Handle
}

// New constructs an empty Interner.
func New() *Interner {
	return &Interner{byValue: make(map[string]Handle)}
}

// Intern returns the Handle for s, assigning a new one if s has not been
// seen before.
func (in *Interner) Intern(s string) Handle {
	if h, ok := in.byValue[s]; ok {
		return h
	}
	h := Handle(len(in.strings))
	in.strings = append(in.strings, s)
	in.byValue[s] = h
	return h
}

// Lookup returns the string for h, or "" and false if h is not valid.
func (in *Interner) Lookup(h Handle) (string, bool) {
	if h < 0 || int(h) >= len(in.strings) {
		return "", false
	}
	return in.strings[h], true
}

// MustLookup panics if h is not a valid handle; it exists for call sites
// where an invalid handle would indicate a broken invariant rather than a
// user-facing error.
func (in *Interner) MustLookup(h Handle) string {
	s, ok := in.Lookup(h)
	if !ok {
		panic("intern: invalid handle")
	}
	return s
}

// Find returns the Handle already assigned to s without interning it.
func (in *Interner) Find(s string) (Handle, bool) {
	h, ok := in.byValue[s]
	return h, ok
}

// Len returns the number of distinct interned strings.
func (in *Interner) Len() int {
	return len(in.strings)
}
