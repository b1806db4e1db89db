// Package golox glues the compiler and VM together into the single
// Interpret entry point embedders and the CLI both call.
package golox

import (
	"github.com/xirelogy/go-loxvm/internal/bytecode"
	"github.com/xirelogy/go-loxvm/internal/compiler"
	"github.com/xirelogy/go-loxvm/internal/value"
	"github.com/xirelogy/go-loxvm/internal/vm"
)

// InterpretResult mirrors vm.InterpretResult so callers don't need to
// import internal/vm directly.
type InterpretResult = vm.InterpretResult

const (
	InterpretOK           = vm.InterpretOK
	InterpretCompileError = vm.InterpretCompileError
	InterpretRuntimeError = vm.InterpretRuntimeError
)

// Interp is a reusable interpreter: its string interner and global
// variables persist across successive Interpret calls, the way a REPL
// needs one line's `var` declaration visible to the next.
type Interp struct {
	interner *value.Interner
	vm       *vm.VM
}

// New returns a fresh interpreter with empty globals.
func New() *Interp {
	interner := value.NewInterner()
	return &Interp{
		interner: interner,
		vm:       vm.New(interner),
	}
}

// SetTraceHook installs a per-instruction trace callback on the
// underlying VM (see internal/vm.TraceHook).
func (in *Interp) SetTraceHook(hook vm.TraceHook) {
	in.vm.SetTraceHook(hook)
}

// VM exposes the underlying VM, mainly so tests can point its Stdout
// somewhere other than os.Stdout.
func (in *Interp) VM() *vm.VM {
	return in.vm
}

// Compile compiles source against this interpreter's shared string
// interner without running it, mainly so callers can disassemble the
// result before executing.
func (in *Interp) Compile(source string) (*bytecode.Chunk, error) {
	return compiler.Compile(source, in.interner)
}

// Run executes an already-compiled chunk.
func (in *Interp) Run(chunk *bytecode.Chunk) (InterpretResult, error) {
	return in.vm.Run(chunk)
}

// Interpret compiles source and, if compilation succeeded, runs it.
// Compile errors are reported to stderr by the compiler itself as they're
// found; the returned error is a structured summary for callers that want
// one, not the primary reporting channel.
func (in *Interp) Interpret(source string) (InterpretResult, error) {
	chunk, err := in.Compile(source)
	if err != nil {
		return InterpretCompileError, err
	}
	return in.Run(chunk)
}
