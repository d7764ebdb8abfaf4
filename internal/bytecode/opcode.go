package bytecode

import "fmt"

// Op is a single instruction opcode. Operands follow the opcode byte in
// little-endian encoding; see operandKind for each opcode's layout.
type Op uint8

const (
	OpNil Op = iota
	OpTrue
	OpFalse
	OpNumber // u16 number constant
	OpString // u16 string constant
	OpPop
	OpPrint

	OpNot
	OpNegate
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpEqual
	OpGreater
	OpLess

	OpJump        // i16 relative offset
	OpJumpIfFalse // i16 relative offset

	OpDefineGlobal // u32 identifier
	OpGetGlobal    // u32 identifier
	OpSetGlobal    // u32 identifier
	OpGetLocal     // u32 stack slot
	OpSetLocal     // u32 stack slot
	OpGetUpvalue   // u32 upvalue index
	OpSetUpvalue   // u32 upvalue index
	OpCloseUpvalue

	OpClosure // u32 closure prototype
	OpCall    // u8 arity
	OpInvoke  // u8 arity, u32 identifier
	OpReturn
	OpReturnTop

	OpClass  // u8 class prototype
	OpMethod // u32 identifier
	OpInherit
	OpGetSuper    // u32 identifier
	OpGetProperty // u32 identifier
	OpSetProperty // u32 identifier

	OpList // u16 element count
	OpGetIndex
	OpSetIndex

	OpImport       // u32 string constant
	OpImportGlobal // u32 identifier
)

var opNames = map[Op]string{
	OpNil:          "Nil",
	OpTrue:         "True",
	OpFalse:        "False",
	OpNumber:       "Number",
	OpString:       "String",
	OpPop:          "Pop",
	OpPrint:        "Print",
	OpNot:          "Not",
	OpNegate:       "Negate",
	OpAdd:          "Add",
	OpSubtract:     "Subtract",
	OpMultiply:     "Multiply",
	OpDivide:       "Divide",
	OpEqual:        "Equal",
	OpGreater:      "Greater",
	OpLess:         "Less",
	OpJump:         "Jump",
	OpJumpIfFalse:  "JumpIfFalse",
	OpDefineGlobal: "DefineGlobal",
	OpGetGlobal:    "GetGlobal",
	OpSetGlobal:    "SetGlobal",
	OpGetLocal:     "GetLocal",
	OpSetLocal:     "SetLocal",
	OpGetUpvalue:   "GetUpvalue",
	OpSetUpvalue:   "SetUpvalue",
	OpCloseUpvalue: "CloseUpvalue",
	OpClosure:      "Closure",
	OpCall:         "Call",
	OpInvoke:       "Invoke",
	OpReturn:       "Return",
	OpReturnTop:    "ReturnTop",
	OpClass:        "Class",
	OpMethod:       "Method",
	OpInherit:      "Inherit",
	OpGetSuper:     "GetSuper",
	OpGetProperty:  "GetProperty",
	OpSetProperty:  "SetProperty",
	OpList:         "List",
	OpGetIndex:     "GetIndex",
	OpSetIndex:     "SetIndex",
	OpImport:       "Import",
	OpImportGlobal: "ImportGlobal",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

type operandKind uint8

const (
	operandNone operandKind = iota
	operandU8
	operandU16
	operandI16
	operandU32
	operandInvoke // u8 arity followed by u32 identifier
)

func operandKindOf(op Op) operandKind {
	switch op {
	case OpNumber, OpString, OpList:
		return operandU16
	case OpJump, OpJumpIfFalse:
		return operandI16
	case OpCall, OpClass:
		return operandU8
	case OpDefineGlobal, OpGetGlobal, OpSetGlobal,
		OpGetLocal, OpSetLocal,
		OpGetUpvalue, OpSetUpvalue,
		OpClosure, OpMethod, OpGetSuper,
		OpGetProperty, OpSetProperty,
		OpImport, OpImportGlobal:
		return operandU32
	case OpInvoke:
		return operandInvoke
	default:
		return operandNone
	}
}

// Instruction is a decoded opcode with its operands.
type Instruction struct {
	Op      Op
	Operand int // constant index, stack slot, jump offset or element count
	Arity   int // argument count for Call and Invoke
}

func (i Instruction) String() string {
	switch operandKindOf(i.Op) {
	case operandNone:
		return i.Op.String()
	case operandInvoke:
		return fmt.Sprintf("%s(%d, %d)", i.Op, i.Arity, i.Operand)
	case operandU8:
		if i.Op == OpCall {
			return fmt.Sprintf("%s(%d)", i.Op, i.Arity)
		}
		return fmt.Sprintf("%s(%d)", i.Op, i.Operand)
	default:
		return fmt.Sprintf("%s(%d)", i.Op, i.Operand)
	}
}

// Decode reads the instruction at pc and returns it together with the pc of
// the next instruction.
func Decode(c *Chunk, pc int) (Instruction, int) {
	op := Op(c.GetU8(pc))
	pc++

	instruction := Instruction{Op: op}
	switch operandKindOf(op) {
	case operandU8:
		if op == OpCall {
			instruction.Arity = int(c.GetU8(pc))
		} else {
			instruction.Operand = int(c.GetU8(pc))
		}
		pc++
	case operandU16:
		instruction.Operand = int(c.GetU16(pc))
		pc += 2
	case operandI16:
		instruction.Operand = int(c.GetI16(pc))
		pc += 2
	case operandU32:
		instruction.Operand = int(c.GetU32(pc))
		pc += 4
	case operandInvoke:
		instruction.Arity = int(c.GetU8(pc))
		pc++
		instruction.Operand = int(c.GetU32(pc))
		pc += 4
	}

	return instruction, pc
}
