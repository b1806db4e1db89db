// Package bytecode holds the compiled instruction stream (Chunk) the VM
// executes, its opcode set, and a disassembler for debugging.
package bytecode

import "github.com/xirelogy/go-loxvm/internal/value"

// MaxConstants is the ceiling imposed by the single-byte constant operand:
// a chunk may hold at most 256 constants.
const MaxConstants = 256

// Chunk is an append-only bytecode buffer: Code and Lines stay fully
// parallel (one line number per byte, not per instruction), and Consts is
// indexed by the single-byte operand OP_CONSTANT and friends read.
type Chunk struct {
	Code   []byte
	Lines  []int
	Consts []value.Value
}

// New returns an empty chunk.
func New() *Chunk {
	return &Chunk{}
}

// Write appends one byte to the chunk, tagging it with the source line it
// came from.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index, or -1
// if the pool is already full. Callers must check for -1: the caller is
// responsible for reporting "Too many constants in one chunk." and
// recovering by emitting index 0.
func (c *Chunk) AddConstant(v value.Value) int {
	if len(c.Consts) >= MaxConstants {
		return -1
	}
	c.Consts = append(c.Consts, v)
	return len(c.Consts) - 1
}
