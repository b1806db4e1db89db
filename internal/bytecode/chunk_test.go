package bytecode

import (
	"strings"
	"testing"

	"github.com/xirelogy/go-loxvm/internal/value"
)

func TestWriteKeepsCodeAndLinesParallel(t *testing.T) {
	c := New()
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpTrue, 1)
	c.WriteOp(OpReturn, 2)

	if len(c.Code) != len(c.Lines) {
		t.Fatalf("Code and Lines diverged: %d vs %d", len(c.Code), len(c.Lines))
	}
	if c.Lines[0] != 1 || c.Lines[1] != 1 || c.Lines[2] != 2 {
		t.Fatalf("unexpected line table: %v", c.Lines)
	}
}

func TestAddConstant(t *testing.T) {
	c := New()
	idx := c.AddConstant(value.NumberVal(42))
	if idx != 0 {
		t.Fatalf("first constant index = %d, want 0", idx)
	}
	if c.Consts[idx].Num != 42 {
		t.Fatalf("stored constant = %v, want 42", c.Consts[idx])
	}
}

func TestAddConstantOverflow(t *testing.T) {
	c := New()
	for i := 0; i < MaxConstants; i++ {
		if idx := c.AddConstant(value.NumberVal(float64(i))); idx == -1 {
			t.Fatalf("constant %d unexpectedly rejected", i)
		}
	}
	if idx := c.AddConstant(value.NumberVal(999)); idx != -1 {
		t.Fatalf("257th constant should be rejected, got index %d", idx)
	}
	if len(c.Consts) != MaxConstants {
		t.Fatalf("pool grew past MaxConstants: %d", len(c.Consts))
	}
}

func TestDisassembleFormatsInstructions(t *testing.T) {
	c := New()
	idx := c.AddConstant(value.NumberVal(1))
	c.WriteOp(OpConstant, 1)
	c.Write(byte(idx), 1)
	c.WriteOp(OpReturn, 1)

	var buf strings.Builder
	Disassemble(&buf, c, "test")

	out := buf.String()
	if !strings.Contains(out, "== test ==") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "OP_CONSTANT") || !strings.Contains(out, "OP_RETURN") {
		t.Fatalf("missing opcode names: %q", out)
	}
}
