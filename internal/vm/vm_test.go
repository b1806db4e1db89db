package vm

import (
	"strings"
	"testing"

	"github.com/xirelogy/go-loxvm/internal/compiler"
	"github.com/xirelogy/go-loxvm/internal/value"
)

func run(t *testing.T, src string) (string, InterpretResult, error) {
	t.Helper()
	interner := value.NewInterner()
	chunk, err := compiler.Compile(src, interner)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	machine := New(interner)
	var out strings.Builder
	machine.Stdout = &out

	result, runErr := machine.Run(chunk)
	return out.String(), result, runErr
}

func TestArithmeticPrecedence(t *testing.T) {
	out, result, err := run(t, "print 1 + 2 * 3;")
	if err != nil || result != InterpretOK {
		t.Fatalf("unexpected result %v err %v", result, err)
	}
	if out != "7\n" {
		t.Fatalf("got %q, want %q", out, "7\n")
	}
}

func TestStringConcatenation(t *testing.T) {
	out, result, err := run(t, `print "foo" + "bar";`)
	if err != nil || result != InterpretOK {
		t.Fatalf("unexpected result %v err %v", result, err)
	}
	if out != "foobar\n" {
		t.Fatalf("got %q, want %q", out, "foobar\n")
	}
}

func TestGlobalVariableReadWrite(t *testing.T) {
	out, result, err := run(t, "var x = 1; x = x + 1; print x;")
	if err != nil || result != InterpretOK {
		t.Fatalf("unexpected result %v err %v", result, err)
	}
	if out != "2\n" {
		t.Fatalf("got %q, want %q", out, "2\n")
	}
}

func TestLocalVariableReadWrite(t *testing.T) {
	out, result, err := run(t, "{ var x = 1; x = x + 1; print x; }")
	if err != nil || result != InterpretOK {
		t.Fatalf("unexpected result %v err %v", result, err)
	}
	if out != "2\n" {
		t.Fatalf("got %q, want %q", out, "2\n")
	}
}

func TestTypeMismatchIsRuntimeError(t *testing.T) {
	_, result, err := run(t, `print 1 + "a";`)
	if result != InterpretRuntimeError {
		t.Fatalf("got result %v, want InterpretRuntimeError", result)
	}
	if err == nil || !strings.Contains(err.Error(), "Operands must be two numbers or two strings.") {
		t.Fatalf("err = %v, want operand type message", err)
	}
	if !strings.Contains(err.Error(), "[line 1] in script") {
		t.Fatalf("err = %v, want single-frame line annotation", err)
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, result, err := run(t, "print nope;")
	if result != InterpretRuntimeError {
		t.Fatalf("got result %v, want InterpretRuntimeError", result)
	}
	if err == nil || !strings.Contains(err.Error(), "Undefined variable 'nope'.") {
		t.Fatalf("err = %v, want undefined-variable message", err)
	}
}

func TestBlockScopingPopsLocalsOnExit(t *testing.T) {
	out, result, err := run(t, "{ var x = 1; } var x = 2; print x;")
	if err != nil || result != InterpretOK {
		t.Fatalf("unexpected result %v err %v", result, err)
	}
	if out != "2\n" {
		t.Fatalf("got %q, want %q", out, "2\n")
	}
}

func TestEqualityAndComparison(t *testing.T) {
	out, result, err := run(t, `print 1 < 2; print "a" == "a"; print nil == false;`)
	if err != nil || result != InterpretOK {
		t.Fatalf("unexpected result %v err %v", result, err)
	}
	if out != "true\ntrue\nfalse\n" {
		t.Fatalf("got %q", out)
	}
}

func TestLogicalNegationAndTruthiness(t *testing.T) {
	out, result, err := run(t, "print !nil; print !0; print !\"\";")
	if err != nil || result != InterpretOK {
		t.Fatalf("unexpected result %v err %v", result, err)
	}
	if out != "true\nfalse\nfalse\n" {
		t.Fatalf("got %q", out)
	}
}
