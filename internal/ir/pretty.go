package ir

import (
	"fmt"
	"strings"
)

var opcodeNames = map[Opcode]string{
	OpLoad:           "load",
	OpStore:          "store",
	OpLValueAddress:  "lvalue_addr",
	OpGlobalLoad:     "global_load",
	OpGlobalStore:    "global_store",
	OpMemberAccess:   "member",
	OpArrayAccess:    "index",
	OpFunctionCall:   "call",
	OpVirtualCall:    "vcall",
	OpConstructorCall: "ctor_call",
	OpFloatToInt:     "f2i",
	OpIntToFloat:     "i2f",
	OpFloatToFloat:   "f2f",
	OpBitcast:        "bitcast",
	OpDynamicCast:    "dyn_cast",
	OpBinary:         "binop",
	OpUnary:          "unop",
	OpHeapAlloc:      "heap_alloc",
	OpHeapAllocArray: "heap_alloc_array",
	OpPlacementNew:   "placement_new",
	OpHeapFree:       "heap_free",
	OpHeapFreeArray:  "heap_free_array",
	OpPhiLike:        "phi",
	OpReturn:         "ret",
	OpBranch:         "br",
	OpLabel:          "label",
}

// PrettyPrint renders fn as a flat instruction listing: a function header,
// a "// Temps:" block giving each recorded temp's value category, then one
// line per instruction, "%N = op %a %b  ; payload". Instructions with no
// result temp (InvalidTempVar) omit the "%N = " prefix.
func PrettyPrint(fn *Function) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fn %s {\n", fn.Name)
	if len(fn.Metadata) > 0 {
		sb.WriteString("  // Temps:\n")
		for temp := TempVar(0); int(temp) < len(fn.Metadata)+len(fn.Instructions); temp++ {
			meta, ok := fn.Metadata[temp]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "  //   %%%d: %s\n", temp, categoryName(meta.Category))
		}
	}
	for _, instr := range fn.Instructions {
		sb.WriteString("  ")
		if instr.Dest != InvalidTempVar {
			fmt.Fprintf(&sb, "%%%d = ", instr.Dest)
		}
		sb.WriteString(opcodeNames[instr.Op])
		for _, arg := range instr.Args {
			fmt.Fprintf(&sb, " %%%d", arg)
		}
		if instr.Payload != nil {
			fmt.Fprintf(&sb, "  ; %v", instr.Payload)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

func categoryName(c Category) string {
	switch c {
	case LValue:
		return "lvalue"
	case XValue:
		return "xvalue"
	default:
		return "prvalue"
	}
}
