// Package types implements process-wide interning of TypeInfo entries, and
// the offset/alignment computation for struct/union layout including
// inheritance, packing, bitfields, and the vtable slot.
package types

import (
	"github.com/pkg/errors"

	"github.com/flashcpp/corefront/internal/intern"
)

// Kind is the fixed type-kind enumeration.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindChar
	KindInt8
	KindUInt8
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat32
	KindFloat64
	KindEnum
	KindStruct
	KindUnion
	KindFunction
	KindNullptr
	KindAuto
	KindUserDefined
	KindArray
)

// IsArithmetic reports whether values of this kind participate in the
// standard arithmetic-conversion rules.
func (k Kind) IsArithmetic() bool {
	switch k {
	case KindBool, KindChar,
		KindInt8, KindUInt8, KindInt16, KindUInt16, KindInt32, KindUInt32, KindInt64, KindUInt64,
		KindFloat32, KindFloat64, KindEnum:
		return true
	}
	return false
}

// IsFloat reports whether this kind is a floating-point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsInteger reports whether this kind is an integer kind (including bool
// and char, which participate in integer promotions).
func (k Kind) IsInteger() bool {
	return k.IsArithmetic() && !k.IsFloat()
}

// TypeIndex is a dense, stable, append-only index into the TypeRegistry.
// Every TypeIndex stored in any structure refers to a live entry in the
// registry for the lifetime of the translation unit.
type TypeIndex int32

// InvalidTypeIndex is returned by lookups that find nothing.
const InvalidTypeIndex TypeIndex = -1

// TemplateInstantiationInfo records, for a type produced by the
// InstantiationEngine, which base template and argument vector it came from.
type TemplateInstantiationInfo struct {
	BaseTemplateName intern.Handle
	Args             []TemplateArgument
}

// TypeInfo is one entry in the TypeRegistry.
type TypeInfo struct {
	Kind        Kind
	SizeBits    int
	Alignment   int // bytes
	Name        intern.Handle
	Index       TypeIndex
	Struct      *StructInfo // non-nil iff Kind is KindStruct or KindUnion
	Enum        *EnumInfo   // non-nil iff Kind is KindEnum
	Array       *ArrayInfo  // non-nil iff Kind is KindArray
	Instantiation *TemplateInstantiationInfo
}

// SizeBytes is SizeBits rounded up to a whole byte; most call sites want
// bytes (sizeof) rather than bits.
func (t *TypeInfo) SizeBytes() int {
	return (t.SizeBits + 7) / 8
}

// DuplicateTypeError is returned by AddType when name has already been
// registered for a non-template, non-alias type.
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return "duplicate type: " + e.Name
}

// Registry is the TypeRegistry component. Entries are
// create-once and append-only; indices are stable for the translation
// unit's lifetime.
type Registry struct {
	interner   *intern.Interner
	entries    []*TypeInfo
	byName     map[intern.Handle]TypeIndex
	arrayTypes map[arrayKey]TypeIndex
}

// arrayKey is the dedup key AddArrayType caches array types under: two
// requests for the same element type and length return the same TypeIndex.
type arrayKey struct {
	elem   TypeIndex
	length int
}

// NewRegistry constructs a Registry backed by the given StringInterner.
func NewRegistry(interner *intern.Interner) *Registry {
	return &Registry{
		interner:   interner,
		byName:     make(map[intern.Handle]TypeIndex),
		arrayTypes: make(map[arrayKey]TypeIndex),
	}
}

// Interner exposes the backing StringInterner so callers that only hold a
// Registry can still intern names.
func (r *Registry) Interner() *intern.Interner { return r.interner }

// AddType registers a new type and returns its stable index. name may be
// empty for an anonymous type (e.g. a lambda closure); anonymous types are
// never subject to the DuplicateType check.
func (r *Registry) AddType(name string, kind Kind, sizeBits int) (TypeIndex, error) {
	var handle intern.Handle = intern.Invalid
	if name != "" {
		handle = r.interner.Intern(name)
		if existing, ok := r.byName[handle]; ok {
			if !r.get(existing).Instantiation.isAliasLike() {
				return InvalidTypeIndex, errors.WithStack(&DuplicateTypeError{Name: name})
			}
		}
	}

	idx := TypeIndex(len(r.entries))
	info := &TypeInfo{
		Kind:      kind,
		SizeBits:  sizeBits,
		Alignment: defaultAlignmentForSize(sizeBits),
		Name:      handle,
		Index:     idx,
	}
	r.entries = append(r.entries, info)
	if handle != intern.Invalid {
		r.byName[handle] = idx
	}
	return idx, nil
}

// isAliasLike reports whether re-adding a type of this name is tolerated:
// only when the existing entry carries TemplateInstantiationInfo. A
// placeholder registered for a dependent use carries none, so re-adding its
// name is rejected as a duplicate.
func (ti *TemplateInstantiationInfo) isAliasLike() bool {
	return ti != nil
}

func defaultAlignmentForSize(sizeBits int) int {
	bytes := (sizeBits + 7) / 8
	switch {
	case bytes <= 1:
		return 1
	case bytes <= 2:
		return 2
	case bytes <= 4:
		return 4
	default:
		return 8
	}
}

// Get returns the TypeInfo for index. It panics if index is out of range,
// since every live TypeIndex must refer to a registered entry — a violation
// here is an internal invariant failure, not a recoverable diagnostic.
func (r *Registry) Get(index TypeIndex) *TypeInfo {
	return r.get(index)
}

func (r *Registry) get(index TypeIndex) *TypeInfo {
	if index < 0 || int(index) >= len(r.entries) {
		panic("types: invalid TypeIndex")
	}
	return r.entries[index]
}

// FindByName returns the TypeIndex registered under handle, if any.
func (r *Registry) FindByName(handle intern.Handle) (TypeIndex, bool) {
	idx, ok := r.byName[handle]
	return idx, ok
}

// SetStructInfo attaches struct/union layout metadata to an already
// registered type.
func (r *Registry) SetStructInfo(index TypeIndex, info *StructInfo) {
	ti := r.get(index)
	ti.Struct = info
}

// SetTemplateInstantiationInfo records which template and argument vector
// produced this type.
func (r *Registry) SetTemplateInstantiationInfo(index TypeIndex, baseName intern.Handle, args []TemplateArgument) {
	ti := r.get(index)
	ti.Instantiation = &TemplateInstantiationInfo{BaseTemplateName: baseName, Args: args}
}

// RefreshSize updates the size/alignment of a type once layout completes,
// copying the attached StructInfo's TotalSize and Alignment; callers invoke
// it after SetStructInfo and Finalize.
func (r *Registry) RefreshSize(index TypeIndex) {
	ti := r.get(index)
	if ti.Struct != nil {
		ti.SizeBits = ti.Struct.TotalSize * 8
		ti.Alignment = ti.Struct.Alignment
	}
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.entries) }

// Builtin registers (or returns, if already registered) the primitive type
// for kind, using canonical spec sizes. Builtins are registered once per
// Registry and reused by index thereafter.
func (r *Registry) Builtin(name string, kind Kind, sizeBits int) TypeIndex {
	if handle, ok := r.interner.Find(name); ok {
		if idx, ok := r.byName[handle]; ok {
			return idx
		}
	}
	idx, err := r.AddType(name, kind, sizeBits)
	if err != nil {
		panic(err) // builtins are only ever registered once per Registry
	}
	return idx
}
