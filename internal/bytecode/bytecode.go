// Package bytecode defines the compiled representation of a Lox module:
// flat byte-encoded chunks plus constant pools for numbers, strings,
// identifiers, closure prototypes and class prototypes.
package bytecode

import "encoding/binary"

// Index types, kept distinct for readability at call sites.
type (
	InstructionIndex = int
	ConstantIndex    = int
	StackIndex       = int
	ChunkIndex       = int
	ClosureIndex     = int
	ClassIndex       = int
	IdentifierIndex  = int
)

// Class is a compile-time class prototype.
type Class struct {
	Name string
}

// Function is a compile-time function prototype.
type Function struct {
	Name       string
	ChunkIndex ChunkIndex
	Arity      int
}

// UpvalueKind says where a captured variable lives relative to the
// enclosing function.
type UpvalueKind uint8

const (
	// UpvalueLocal captures a local slot of the direct parent.
	UpvalueLocal UpvalueKind = iota
	// UpvalueOuter chains through the parent's own upvalue list.
	UpvalueOuter
)

// Upvalue describes one captured variable of a closure prototype.
type Upvalue struct {
	Kind  UpvalueKind
	Index int
}

// Closure is a compile-time closure prototype: a function plus the
// descriptions of the variables it captures.
type Closure struct {
	Function Function
	Upvalues []Upvalue
}

// Chunk is a sequence of byte-encoded instructions. Multi-byte operands
// are little-endian.
type Chunk struct {
	instructions []byte
}

// AddU8 appends a byte and returns its index.
func (c *Chunk) AddU8(value uint8) InstructionIndex {
	c.instructions = append(c.instructions, value)
	return len(c.instructions) - 1
}

// AddU16 appends a little-endian u16 and returns the index of its first byte.
func (c *Chunk) AddU16(value uint16) InstructionIndex {
	c.instructions = binary.LittleEndian.AppendUint16(c.instructions, value)
	return len(c.instructions) - 2
}

// AddU32 appends a little-endian u32 and returns the index of its first byte.
func (c *Chunk) AddU32(value uint32) InstructionIndex {
	c.instructions = binary.LittleEndian.AppendUint32(c.instructions, value)
	return len(c.instructions) - 4
}

// AddI16 appends a little-endian i16 and returns the index of its first byte.
func (c *Chunk) AddI16(value int16) InstructionIndex {
	return c.AddU16(uint16(value))
}

// SetI16 overwrites the i16 at index.
func (c *Chunk) SetI16(index InstructionIndex, value int16) {
	binary.LittleEndian.PutUint16(c.instructions[index:], uint16(value))
}

// InstructionIndex returns the index one past the last written byte.
func (c *Chunk) InstructionIndex() InstructionIndex {
	return len(c.instructions)
}

// PatchInstruction points the jump operand at index to the current end of
// the chunk.
func (c *Chunk) PatchInstruction(index InstructionIndex) {
	c.PatchInstructionTo(index, c.InstructionIndex())
}

// PatchInstructionTo encodes a relative jump at the operand position index
// targeting the absolute position to. The offset is computed from the byte
// after the two operand bytes.
func (c *Chunk) PatchInstructionTo(index, to InstructionIndex) {
	c.SetI16(index, int16(to-index-2))
}

// GetU8 reads the byte at pc.
func (c *Chunk) GetU8(pc int) uint8 {
	return c.instructions[pc]
}

// GetU16 reads the little-endian u16 at pc.
func (c *Chunk) GetU16(pc int) uint16 {
	return binary.LittleEndian.Uint16(c.instructions[pc:])
}

// GetI16 reads the little-endian i16 at pc.
func (c *Chunk) GetI16(pc int) int16 {
	return int16(c.GetU16(pc))
}

// GetU32 reads the little-endian u32 at pc.
func (c *Chunk) GetU32(pc int) uint32 {
	return binary.LittleEndian.Uint32(c.instructions[pc:])
}

// Instructions exposes the raw byte stream.
func (c *Chunk) Instructions() []byte {
	return c.instructions
}

// Len returns the number of encoded bytes.
func (c *Chunk) Len() int {
	return len(c.instructions)
}

// Module is a compiled compilation unit.
type Module struct {
	chunks      []*Chunk
	closures    []Closure
	classes     []Class
	identifiers []string
	numbers     []float64
	strings     []string
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{}
}

// Chunk returns the chunk at index.
func (m *Module) Chunk(index ChunkIndex) *Chunk {
	return m.chunks[index]
}

// AddChunk appends an empty chunk and returns its index.
func (m *Module) AddChunk() ChunkIndex {
	m.chunks = append(m.chunks, &Chunk{})
	return len(m.chunks) - 1
}

// AddClosure appends a closure prototype and returns its index.
func (m *Module) AddClosure(closure Closure) ClosureIndex {
	m.closures = append(m.closures, closure)
	return len(m.closures) - 1
}

// AddClass appends a class prototype and returns its index.
func (m *Module) AddClass(class Class) ClassIndex {
	m.classes = append(m.classes, class)
	return len(m.classes) - 1
}

// AddIdentifier appends an identifier constant and returns its index.
func (m *Module) AddIdentifier(identifier string) IdentifierIndex {
	m.identifiers = append(m.identifiers, identifier)
	return len(m.identifiers) - 1
}

// AddNumber appends a number constant and returns its index.
func (m *Module) AddNumber(value float64) ConstantIndex {
	m.numbers = append(m.numbers, value)
	return len(m.numbers) - 1
}

// AddString appends a string constant and returns its index.
func (m *Module) AddString(value string) ConstantIndex {
	m.strings = append(m.strings, value)
	return len(m.strings) - 1
}

// Chunks returns all chunks.
func (m *Module) Chunks() []*Chunk { return m.chunks }

// Closures returns the closure prototype pool.
func (m *Module) Closures() []Closure { return m.closures }

// Classes returns the class prototype pool.
func (m *Module) Classes() []Class { return m.classes }

// Identifiers returns the identifier pool.
func (m *Module) Identifiers() []string { return m.identifiers }

// Numbers returns the number pool.
func (m *Module) Numbers() []float64 { return m.numbers }

// Strings returns the string pool.
func (m *Module) Strings() []string { return m.strings }

// Number returns the number constant at index.
func (m *Module) Number(index ConstantIndex) float64 { return m.numbers[index] }

// String returns the string constant at index.
func (m *Module) String(index ConstantIndex) string { return m.strings[index] }

// Identifier returns the identifier at index.
func (m *Module) Identifier(index IdentifierIndex) string { return m.identifiers[index] }

// Closure returns the closure prototype at index.
func (m *Module) Closure(index ClosureIndex) Closure { return m.closures[index] }

// Class returns the class prototype at index.
func (m *Module) Class(index ClassIndex) Class { return m.classes[index] }
