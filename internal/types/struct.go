package types

import (
	"github.com/pkg/errors"

	"github.com/flashcpp/corefront/internal/intern"
)

// StructMember is one non-static data member's layout-relevant shape.
type StructMember struct {
	Name              intern.Handle
	Type              TypeIndex
	Access            Access
	IsReference       bool
	PointerDepth      int
	IsBitfield        bool // true for `: N` members, including the zero-width `: 0` marker
	BitfieldWidth     int  // meaningful only when IsBitfield; 0 for the `: 0` unit-breaking marker
	Offset            int  // byte offset of the member's storage unit, set by finalize
	BitfieldBitOffset int  // bit offset within the storage unit at Offset, set by finalize
	Alignment         int  // byte alignment, set by finalize
}

// Access mirrors ast.Access at the resolved-type level.
type Access uint8

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

// StaticMember is a static data member; it does not participate in layout.
type StaticMember struct {
	Name      intern.Handle
	Type      TypeIndex
	Access    Access
	Alignment int
}

// MemberFunction is one method entry in a struct's method table, used by
// the OverloadResolver to build a candidate set for a call through `.`,
// `->`, or an unqualified name found via the enclosing struct's scope.
type MemberFunction struct {
	Name          intern.Handle
	OperatorName  string // e.g. "+"; empty unless this entry is an operator overload
	ParamTypes    []TypeIndex
	ReturnType    TypeIndex
	IsVariadic    bool
	IsVirtual     bool
	IsPureVirtual bool
	IsConst       bool
	IsStatic      bool
	Access        Access
	VTableSlot    int // -1 if not virtual
}

// BaseClass is one entry in a struct's base-class list, already resolved to
// a TypeIndex.
type BaseClass struct {
	Type      TypeIndex
	Access    Access
	IsVirtual bool
	Offset    int // byte offset of the base subobject within the derived object
}

// StructInfo is the StructLayout component's subject and result: the set of
// members as declared, and (once finalize/finalizeWithBases runs) their
// computed offsets, the struct's total size, its alignment, and its vtable
// shape.
type StructInfo struct {
	Name          intern.Handle
	Members       []StructMember
	StaticMembers []StaticMember
	Methods       []MemberFunction
	Bases         []BaseClass
	IsUnion       bool
	PackAlignment int // 0 = natural alignment; otherwise a `#pragma pack`-style cap
	TotalSize     int // bytes, set by finalize
	Alignment     int // bytes, set by finalize
	HasVTable     bool
	VTablePointerOffset int // set when HasVTable and no base has one: placed after all base subobjects
}

// LayoutError reports a failure to lay out a struct, e.g. a base class that
// has no layout of its own yet.
type LayoutError struct {
	StructName string
	Reason     string
}

func (e *LayoutError) Error() string {
	return "layout error in " + e.StructName + ": " + e.Reason
}

// bitfieldUnit tracks the storage unit consecutive bitfield members are
// currently packed into; it resets whenever a non-bitfield member, an
// underlying-type change, or an explicit `: 0` bitfield is encountered.
type bitfieldUnit struct {
	active     bool
	offset     int
	underlying TypeIndex
	bitsUsed   int
}

func alignUp(offset, alignment int) int {
	if alignment <= 1 {
		return offset
	}
	return (offset + alignment - 1) &^ (alignment - 1)
}

func (si *StructInfo) effectiveAlignment(memberAlign int) int {
	if si.PackAlignment > 0 && si.PackAlignment < memberAlign {
		return si.PackAlignment
	}
	return memberAlign
}

// Finalize computes layout for a struct given its already-resolved base
// list (nil for a base-less struct), exposing finalizeWithBases to callers
// outside this package (the instantiation engine and the plain
// non-template declaration path).
func (si *StructInfo) Finalize(registry *Registry, resolvedBases []BaseClass) error {
	return si.finalizeWithBases(registry, resolvedBases)
}

// finalize computes offsets, total size, and struct alignment for a
// base-less struct (or union). Members and StaticMembers must already carry
// resolved Type/Alignment values; the caller (the instantiation engine or
// the plain, non-template declaration path) is responsible for resolving
// each member's TypeIndex and Alignment before calling this.
func (si *StructInfo) finalize(registry *Registry) error {
	return si.finalizeWithBases(registry, nil)
}

// finalizeWithBases computes layout for a struct with a (possibly empty)
// resolved base-class list. Each base in resolvedBases must already have
// its Offset left as 0; finalizeWithBases fills it in. Bases are laid out
// first, in declaration order, each at its own natural alignment; virtual
// bases are placed the same way as non-virtual ones. The derived struct's
// own members follow. A union ignores base
// offsets entirely (all members share offset 0), matching the model where
// unions never carry a base class.
func (si *StructInfo) finalizeWithBases(registry *Registry, resolvedBases []BaseClass) error {
	total := 0
	structAlign := 1
	hasVTableFromBase := false

	if !si.IsUnion {
		for i := range resolvedBases {
			base := &resolvedBases[i]
			baseInfo := registry.Get(base.Type)
			if baseInfo.Struct == nil {
				return errors.WithStack(&LayoutError{StructName: baseInfo.nameString(registry), Reason: "base class has no layout"})
			}
			align := si.effectiveAlignment(baseInfo.Alignment)
			base.Offset = alignUp(total, align)
			total = base.Offset + baseInfo.Struct.TotalSize
			if align > structAlign {
				structAlign = align
			}
			if baseInfo.Struct.HasVTable {
				hasVTableFromBase = true
			}
		}
		si.Bases = resolvedBases
	}

	if si.HasVTable && !hasVTableFromBase {
		vtableAlign := si.effectiveAlignment(8)
		si.VTablePointerOffset = alignUp(total, vtableAlign)
		total = si.VTablePointerOffset + 8
		if vtableAlign > structAlign {
			structAlign = vtableAlign
		}
	}

	var unit bitfieldUnit
	for i := range si.Members {
		m := &si.Members[i]
		memberAlign := m.Alignment
		if memberAlign == 0 {
			memberAlign = 1
		}
		align := si.effectiveAlignment(memberAlign)

		if m.IsBitfield {
			if m.BitfieldWidth == 0 {
				// `: 0` carries no storage of its own; it only forces the
				// next bitfield (if any) into a fresh storage unit.
				m.Offset = total
				m.BitfieldBitOffset = 0
				unit.active = false
				continue
			}
			unitSizeBits := registry.Get(m.Type).SizeBits
			if !unit.active || unit.underlying != m.Type || unit.bitsUsed+m.BitfieldWidth > unitSizeBits {
				start := alignUp(total, align)
				if si.IsUnion {
					start = 0
				}
				unitSizeBytes := registry.Get(m.Type).SizeBytes()
				unit = bitfieldUnit{active: true, offset: start, underlying: m.Type, bitsUsed: 0}
				if si.IsUnion {
					if unitSizeBytes > total {
						total = unitSizeBytes
					}
				} else {
					total = start + unitSizeBytes
				}
			}
			m.Offset = unit.offset
			m.BitfieldBitOffset = unit.bitsUsed
			unit.bitsUsed += m.BitfieldWidth
		} else {
			unit.active = false
			if si.IsUnion {
				m.Offset = 0
				if memberSize := registry.Get(m.Type).SizeBytes(); memberSize > total {
					total = memberSize
				}
			} else {
				m.Offset = alignUp(total, align)
				total = m.Offset + memberByteSize(registry, m)
			}
		}
		if align > structAlign {
			structAlign = align
		}
	}

	si.TotalSize = alignUp(total, structAlign)
	if si.TotalSize == 0 {
		si.TotalSize = 1 // an empty struct still occupies one byte, as in C++
	}
	si.Alignment = structAlign
	return nil
}

// memberByteSize is only consulted for non-bitfield members; bitfields lay
// out their whole storage unit directly in finalizeWithBases.
func memberByteSize(registry *Registry, m *StructMember) int {
	if m.IsReference || m.PointerDepth > 0 {
		return 8
	}
	return registry.Get(m.Type).SizeBytes()
}

func (ti *TypeInfo) nameString(r *Registry) string {
	if ti.Name == intern.Invalid {
		return "<anonymous>"
	}
	return r.interner.MustLookup(ti.Name)
}
