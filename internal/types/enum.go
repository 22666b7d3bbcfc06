package types

import "github.com/flashcpp/corefront/internal/intern"

// EnumValue is one enumerator.
type EnumValue struct {
	Name  intern.Handle
	Value int64
}

// EnumInfo describes an enum or enum class: its underlying integral type
// and its enumerators in declaration order.
type EnumInfo struct {
	Name          intern.Handle
	Underlying    TypeIndex
	Values        []EnumValue
	IsScoped      bool // enum class vs plain enum
}

// ValueOf returns the integer value bound to name, if name is one of this
// enum's enumerators.
func (e *EnumInfo) ValueOf(name intern.Handle) (int64, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// NameOf returns the enumerator name bound to value, if any (the reverse
// lookup used when lowering shows an enum value in a diagnostic).
func (e *EnumInfo) NameOf(value int64) (intern.Handle, bool) {
	for _, v := range e.Values {
		if v.Value == value {
			return v.Name, true
		}
	}
	return intern.Invalid, false
}
