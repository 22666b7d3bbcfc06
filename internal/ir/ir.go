// Package ir implements the IrBuilder component: a flat, append-only
// instruction stream per function plus the TempVar/value-category
// metadata ExpressionLowering attaches to each temporary it introduces.
package ir

import (
	"github.com/flashcpp/corefront/internal/token"
	"github.com/flashcpp/corefront/internal/types"
)

// Opcode is the fixed instruction-kind enumeration ExpressionLowering
// emits into.
type Opcode uint16

const (
	OpLoad Opcode = iota
	OpStore
	OpLValueAddress
	OpGlobalLoad
	OpGlobalStore
	OpMemberAccess
	OpArrayAccess
	OpFunctionCall
	OpVirtualCall
	OpConstructorCall
	OpFloatToInt
	OpIntToFloat
	OpFloatToFloat
	OpBitcast
	OpDynamicCast
	OpBinary
	OpUnary
	OpHeapAlloc
	OpHeapAllocArray
	OpPlacementNew
	OpHeapFree
	OpHeapFreeArray
	OpPhiLike // unused by a non-SSA core; reserved for a future CFG-aware backend
	OpReturn
	OpBranch
	OpLabel
)

// TempVar is a dense per-function identifier for one lowering-introduced
// temporary.
type TempVar int32

// Category is a value's value-category per the standard taxonomy this core
// tracks: prvalue, lvalue, or xvalue.
type Category uint8

const (
	PRValue Category = iota
	LValue
	XValue
)

// LValueKind distinguishes the shapes an lvalue's base can take, driving
// which store path assignment lowering selects.
type LValueKind uint8

const (
	LValueDirect LValueKind = iota
	LValueMember
	LValueArrayElement
	LValueIndirect
)

// LValueInfo is the addressing information carried by an lvalue/xvalue
// TempVar: enough to resolve a subsequent store without re-walking the
// expression that produced it.
type LValueInfo struct {
	Kind              LValueKind
	BaseName          string  // the named base: the variable for LValueDirect, "this" for an implicit member access
	BaseTemp          TempVar // set when the base is itself a temporary rather than a named variable
	BaseIsTemp        bool
	Offset            int
	MemberName        string
	BitfieldWidth     int
	BitfieldBitOffset int
	ArrayIndex        TempVar
	IsPointerToMember bool
}

// TempVarMetadata is the full value-category record ExpressionLowering
// attaches to every temporary it introduces.
type TempVarMetadata struct {
	Category     Category
	LValue       *LValueInfo // non-nil iff Category != PRValue
	PointeeKind  types.Kind
	PointeeBits  int
}

// CallInfo is the OpFunctionCall/OpVirtualCall/OpConstructorCall payload:
// the callee's mangled name plus, for a virtual dispatch, the vtable slot to
// indirect through and whether the call went through a pointer (`->`) or a
// reference/value (`.`) access, which the codegen stage needs to tell a
// null-checked indirect call from a direct member access.
type CallInfo struct {
	MangledName     string
	VTableSlot      int // -1 unless Op == OpVirtualCall
	IsPointerAccess bool
}

// Instruction is one entry in a function's flat instruction stream.
type Instruction struct {
	Op      Opcode
	Dest    TempVar
	Args    []TempVar
	Payload interface{}
	Span    token.Span
}

// Function is the per-function instruction stream and temp-var metadata
// table ExpressionLowering builds up, freed on function exit per the
// resource model (each Builder is scoped to one function lowering pass).
type Function struct {
	Name         string
	Params       []TempVar
	Instructions []Instruction
	Metadata     map[TempVar]TempVarMetadata
}

// Builder is the IrBuilder component.
type Builder struct {
	fn      *Function
	counter TempVar
}

// NewBuilder starts building the instruction stream for a function named
// name.
func NewBuilder(name string) *Builder {
	return &Builder{fn: &Function{Name: name, Metadata: make(map[TempVar]TempVarMetadata)}}
}

// Next returns the next unused TempVar, matching var_counter.next().
func (b *Builder) Next() TempVar {
	v := b.counter
	b.counter++
	return v
}

// AddInstruction appends an instruction to the stream and returns its
// destination TempVar, always freshly allocated via Next. Instructions with
// no result (a store or a branch) go through AddVoidInstruction instead.
func (b *Builder) AddInstruction(op Opcode, args []TempVar, payload interface{}, span token.Span) TempVar {
	dest := b.Next()
	b.fn.Instructions = append(b.fn.Instructions, Instruction{Op: op, Dest: dest, Args: args, Payload: payload, Span: span})
	return dest
}

// AddVoidInstruction appends an instruction with no result temp (a store,
// branch, or label).
func (b *Builder) AddVoidInstruction(op Opcode, args []TempVar, payload interface{}, span token.Span) {
	b.fn.Instructions = append(b.fn.Instructions, Instruction{Op: op, Dest: InvalidTempVar, Args: args, Payload: payload, Span: span})
}

// SetMetadata records the value-category metadata for temp.
func (b *Builder) SetMetadata(temp TempVar, meta TempVarMetadata) {
	b.fn.Metadata[temp] = meta
}

// Metadata returns the recorded value-category metadata for temp.
func (b *Builder) Metadata(temp TempVar) (TempVarMetadata, bool) {
	m, ok := b.fn.Metadata[temp]
	return m, ok
}

// Function returns the built function. Call once lowering of the whole
// function body is complete.
func (b *Builder) Function() *Function { return b.fn }

// InvalidTempVar marks "no result" for a void instruction.
const InvalidTempVar TempVar = -1
