package bytecode

import (
	"fmt"
	"io"
	"strconv"
)

// Disassemble writes a human-readable dump of the whole module: every chunk
// followed by the constant pools.
func Disassemble(w io.Writer, module *Module) {
	fmt.Fprintln(w, "=== Start of Dump ===")
	fmt.Fprintln(w)

	for index, chunk := range module.Chunks() {
		fmt.Fprintf(w, "=== Chunk %d ===\n", index)
		DisassembleChunk(w, chunk, module)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "=== Classes ===")
	for index, class := range module.Classes() {
		fmt.Fprintf(w, "%d %s\n", index, class.Name)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Closures ===")
	for index, closure := range module.Closures() {
		fmt.Fprintf(w, "%d %s chunk=%d arity=%d upvalues=%d\n",
			index, closure.Function.Name, closure.Function.ChunkIndex,
			closure.Function.Arity, len(closure.Upvalues))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Identifiers ===")
	for index, identifier := range module.Identifiers() {
		fmt.Fprintf(w, "%d %s\n", index, identifier)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Numbers ===")
	for index, constant := range module.Numbers() {
		fmt.Fprintf(w, "%d %s\n", index, strconv.FormatFloat(constant, 'g', -1, 64))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Strings ===")
	for index, constant := range module.Strings() {
		fmt.Fprintf(w, "%d %q\n", index, constant)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== End of Dump ===")
	fmt.Fprintln(w)
}

// DisassembleChunk writes one line per instruction: the byte offset, the
// decoded instruction, and where useful the resolved constant.
func DisassembleChunk(w io.Writer, chunk *Chunk, module *Module) {
	for pc := 0; pc < chunk.Len(); {
		offset := pc

		var instruction Instruction
		instruction, pc = Decode(chunk, pc)

		switch instruction.Op {
		case OpJump, OpJumpIfFalse:
			fmt.Fprintf(w, "%04X %-18s %04X\n", offset, instruction, jumpTarget(offset, instruction.Operand))
		case OpDefineGlobal, OpGetGlobal, OpSetGlobal,
			OpGetProperty, OpSetProperty, OpGetSuper,
			OpMethod, OpInvoke, OpImportGlobal:
			fmt.Fprintf(w, "%04X %-18s %s\n", offset, instruction, module.Identifier(instruction.Operand))
		case OpNumber:
			fmt.Fprintf(w, "%04X %-18s %s\n", offset, instruction, strconv.FormatFloat(module.Number(instruction.Operand), 'g', -1, 64))
		case OpString, OpImport:
			fmt.Fprintf(w, "%04X %-18s %s\n", offset, instruction, module.String(instruction.Operand))
		default:
			fmt.Fprintf(w, "%04X %s\n", offset, instruction)
		}
	}
}

// jumpTarget converts a relative jump offset into the absolute byte offset
// of its destination. The offset is relative to the byte after the two
// operand bytes, which themselves follow the opcode byte.
func jumpTarget(offset, relative int) int {
	return offset + relative + 3
}
