// Package mangle implements the NameMangler component: a total function of
// (unqualified name, parameter types, variadic flag, parent struct,
// namespace stack, linkage) to a stable byte sequence. The return type is
// not an input: two signatures that differ only in return type mangle to
// the same name.
package mangle

import (
	"strconv"
	"strings"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/intern"
	"github.com/flashcpp/corefront/internal/types"
)

// AbiDescriptor describes the target ABI a Mangler is constructed for. None
// of the current encodings depend on it, so every AbiDescriptor yields the
// same mangled names.
type AbiDescriptor interface {
	PointerSize() int
	ReferenceIsPointer() bool
}

// X86_64Itanium is the one concrete AbiDescriptor this package ships: an
// Itanium-like x86-64 target where references lower to pointers.
type X86_64Itanium struct{}

func (X86_64Itanium) PointerSize() int        { return 8 }
func (X86_64Itanium) ReferenceIsPointer() bool { return true }

// Signature is the full set of facts NameMangler needs to mangle a
// function — everything name resolution and overload resolution have
// already settled by the time mangling runs.
type Signature struct {
	Name         string
	OperatorName string // non-empty for an operator overload, takes precedence over Name
	ParentStruct string // empty for a free function
	Namespace    []string
	ParamTypes   []types.TypeIndex
	IsVariadic   bool
	Linkage      ast.Linkage
}

// Mangler is the NameMangler component.
type Mangler struct {
	abi      AbiDescriptor
	registry *types.Registry
	interner *intern.Interner
}

// New constructs a Mangler backed by registry (used to render parameter
// type names). abi is stored on the Mangler; Mangle does not consult it.
func New(registry *types.Registry, abi AbiDescriptor) *Mangler {
	return &Mangler{abi: abi, registry: registry, interner: registry.Interner()}
}

// Mangle computes the mangled name for sig. For C linkage the unqualified
// name is returned verbatim, matching how a `extern "C"` declaration is
// actually emitted. For C++ linkage, a deterministic
// length-prefixed-segment encoding is applied, Itanium-style:
// `_ZN<len><seg>...<len><seg>E<params>` when a namespace or parent struct
// contributes a segment, `_Z<len><name><params>` otherwise, with `v` for an
// empty parameter list and a trailing `z` when variadic. The exact byte sequence is this
// package's own choice rather than true Itanium ABI compatibility.
func (m *Mangler) Mangle(sig Signature) string {
	if sig.Linkage == ast.LinkageC {
		return sig.Name
	}

	leafName := sig.Name
	if sig.OperatorName != "" {
		leafName = "op" + operatorToken(sig.OperatorName)
	}

	var segments []string
	segments = append(segments, sig.Namespace...)
	if sig.ParentStruct != "" {
		segments = append(segments, sig.ParentStruct)
	}
	segments = append(segments, leafName)

	var sb strings.Builder
	sb.WriteString("_Z")
	if len(segments) > 1 {
		sb.WriteString("N")
		for _, s := range segments {
			sb.WriteString(strconv.Itoa(len(s)))
			sb.WriteString(s)
		}
		sb.WriteString("E")
	} else {
		sb.WriteString(strconv.Itoa(len(segments[0])))
		sb.WriteString(segments[0])
	}

	if len(sig.ParamTypes) == 0 {
		sb.WriteString("v")
	}
	for _, pt := range sig.ParamTypes {
		sb.WriteString(m.mangleType(pt))
	}
	if sig.IsVariadic {
		sb.WriteString("z")
	}
	return sb.String()
}

func (m *Mangler) mangleType(idx types.TypeIndex) string {
	info := m.registry.Get(idx)
	switch info.Kind {
	case types.KindBool:
		return "b"
	case types.KindChar:
		return "c"
	case types.KindInt8:
		return "a"
	case types.KindUInt8:
		return "h"
	case types.KindInt16:
		return "s"
	case types.KindUInt16:
		return "t"
	case types.KindInt32:
		return "i"
	case types.KindUInt32:
		return "j"
	case types.KindInt64:
		return "x"
	case types.KindUInt64:
		return "y"
	case types.KindFloat32:
		return "f"
	case types.KindFloat64:
		return "d"
	case types.KindVoid:
		return "v"
	default:
		name, _ := m.interner.Lookup(info.Name)
		if name == "" {
			name = "anon"
		}
		return strconv.Itoa(len(name)) + name
	}
}

// operatorToken maps a surface operator spelling to a stable mangled token,
// so `operator+` and `operator==` never collide with an ordinary
// identifier named "plus" or "eq".
func operatorToken(op string) string {
	switch op {
	case "+":
		return "pl"
	case "-":
		return "mi"
	case "*":
		return "ml"
	case "/":
		return "dv"
	case "==":
		return "eq"
	case "!=":
		return "ne"
	case "<":
		return "lt"
	case ">":
		return "gt"
	case "[]":
		return "ix"
	case "()":
		return "cl"
	case "->":
		return "pt"
	case "=":
		return "aS"
	default:
		return "unk" + strconv.Itoa(len(op))
	}
}
