package golox

import (
	"strings"
	"testing"
)

func TestInterpretPersistsGlobalsAcrossCalls(t *testing.T) {
	in := New()
	in.VM().Stdout = &strings.Builder{}

	if _, err := in.Interpret("var x = 1;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := &strings.Builder{}
	in.VM().Stdout = out
	if _, err := in.Interpret("print x;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("got %q, want %q", out.String(), "1\n")
	}
}

func TestInterpretReportsCompileError(t *testing.T) {
	in := New()
	result, err := in.Interpret("var;")
	if result != InterpretCompileError {
		t.Fatalf("got %v, want InterpretCompileError", result)
	}
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
}

func TestInterpretReportsRuntimeError(t *testing.T) {
	in := New()
	in.VM().Stdout = &strings.Builder{}
	result, err := in.Interpret("print 1 + nil;")
	if result != InterpretRuntimeError {
		t.Fatalf("got %v, want InterpretRuntimeError", result)
	}
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
}
