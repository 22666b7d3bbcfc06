package types

import (
	"github.com/cespare/xxhash/v2"

	"github.com/flashcpp/corefront/internal/intern"
)

// argKind distinguishes the three forms a template argument can take. The
// marker method follows the same closed-interface idiom used for ast.Expr /
// ast.Decl: a private method that only this package's types can implement.
type argKind interface {
	isTemplateArgument()
}

// TemplateArgument is one entry in a resolved argument vector: a
// TypeArgument, a ValueArgument, or a PackArgument.
type TemplateArgument interface {
	argKind
	hashInto(h *xxhash.Digest)
	equalTo(other TemplateArgument) bool
	IsDependent() bool
}

// TypeArgument is a type used as a template argument, with its own
// cv/reference qualification (`const T&` as an argument is not the same
// instantiation key as `T`).
type TypeArgument struct {
	Type TypeIndex
	CV   CVQual
	Ref  RefQual
}

func (TypeArgument) isTemplateArgument() {}

func (a TypeArgument) IsDependent() bool { return a.Type == InvalidTypeIndex }

func (a TypeArgument) hashInto(h *xxhash.Digest) {
	h.Write([]byte{'T'})
	writeInt32(h, int32(a.Type))
	h.Write([]byte{byte(a.CV), byte(a.Ref)})
}

func (a TypeArgument) equalTo(other TemplateArgument) bool {
	o, ok := other.(TypeArgument)
	return ok && o.Type == a.Type && o.CV == a.CV && o.Ref == a.Ref
}

// ValueArgument is a non-type template argument: a constant evaluated at
// instantiation time, e.g. the `N` in `Array<int, N>`.
type ValueArgument struct {
	Type  TypeIndex
	Value int64 // integral, bool, or enum value bit pattern
}

func (ValueArgument) isTemplateArgument() {}

func (a ValueArgument) IsDependent() bool { return false }

func (a ValueArgument) hashInto(h *xxhash.Digest) {
	h.Write([]byte{'V'})
	writeInt32(h, int32(a.Type))
	writeInt64(h, a.Value)
}

func (a ValueArgument) equalTo(other TemplateArgument) bool {
	o, ok := other.(ValueArgument)
	return ok && o.Type == a.Type && o.Value == a.Value
}

// PackArgument is a variadic template argument pack, itself a sequence of
// arguments substituted together for a single `Args...` parameter.
type PackArgument struct {
	Elems []TemplateArgument
}

func (PackArgument) isTemplateArgument() {}

func (a PackArgument) IsDependent() bool {
	for _, e := range a.Elems {
		if e.IsDependent() {
			return true
		}
	}
	return false
}

func (a PackArgument) hashInto(h *xxhash.Digest) {
	h.Write([]byte{'P'})
	writeInt32(h, int32(len(a.Elems)))
	for _, e := range a.Elems {
		e.hashInto(h)
	}
}

func (a PackArgument) equalTo(other TemplateArgument) bool {
	o, ok := other.(PackArgument)
	if !ok || len(o.Elems) != len(a.Elems) {
		return false
	}
	for i := range a.Elems {
		if !a.Elems[i].equalTo(o.Elems[i]) {
			return false
		}
	}
	return true
}

// CVQual and RefQual duplicate ast.CVQualifier/RefQualifier at the
// TypeIndex level, since the types package cannot import ast (the
// dependency runs the other way: ast has no notion of a resolved
// TypeIndex).
type CVQual uint8

const (
	CVQualNone CVQual = iota
	CVQualConst
	CVQualVolatile
	CVQualConstVolatile
)

type RefQual uint8

const (
	RefQualNone RefQual = iota
	RefQualLValue
	RefQualRValue
)

// TemplateParameter is one formal parameter of a template declaration.
type TemplateParameter struct {
	Name       intern.Handle
	Kind       ParamKind
	IsVariadic bool
}

// ParamKind mirrors ast.ParamKind at the resolved-argument level.
type ParamKind uint8

const (
	ParamKindType ParamKind = iota
	ParamKindNonType
	ParamKindTemplate
)

// InstantiationKey identifies one point in a template's instantiation
// cache: the template's interned name plus its fully resolved argument
// vector. Two keys with equal Hash are compared with Equal before being
// treated as the same instantiation, since xxhash collisions are possible
// though vanishingly rare.
type InstantiationKey struct {
	TemplateName intern.Handle
	Args         []TemplateArgument
	Hash         uint64
}

// NewInstantiationKey computes the stable hash for (templateName, args) and
// returns the assembled key. For a real instantiation, call this once the
// argument vector is fully resolved (no dependent TypeArgument placeholders
// remain); a key built from a still-dependent argument list is used only to
// cache the placeholder type registered for that dependent use.
func NewInstantiationKey(templateName intern.Handle, args []TemplateArgument) InstantiationKey {
	d := xxhash.New()
	writeInt32(d, int32(templateName))
	writeInt32(d, int32(len(args)))
	for _, a := range args {
		a.hashInto(d)
	}
	return InstantiationKey{TemplateName: templateName, Args: args, Hash: d.Sum64()}
}

// Equal performs the deep structural comparison used to break ties after a
// Hash collision (or simply to confirm a cache hit).
func (k InstantiationKey) Equal(other InstantiationKey) bool {
	if k.TemplateName != other.TemplateName || len(k.Args) != len(other.Args) {
		return false
	}
	for i := range k.Args {
		if !k.Args[i].equalTo(other.Args[i]) {
			return false
		}
	}
	return true
}

func writeInt32(h *xxhash.Digest, v int32) {
	h.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func writeInt64(h *xxhash.Digest, v int64) {
	h.Write([]byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	})
}
