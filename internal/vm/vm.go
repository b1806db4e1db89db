// Package vm implements the stack-based bytecode interpreter: a fetch-
// decode-execute loop over a single Chunk, with no call frames since the
// language has no functions to call.
package vm

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xirelogy/go-loxvm/internal/bytecode"
	"github.com/xirelogy/go-loxvm/internal/value"
)

// InterpretResult classifies how a run ended.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// maxStack bounds the value stack; overflow is a diagnosable runtime
// error rather than a Go-level panic. It must stay well above the
// compiler's 256-local cap, since a scope's locals live on this same
// stack alongside whatever temporaries an expression pushes.
const maxStack = 1024

// RuntimeError is returned when Run aborts mid-chunk. It carries the
// source line of the failing instruction so callers can format it the
// way the language's single-frame error model requires.
type RuntimeError struct {
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
}

// TraceHook is invoked before each instruction is executed, when set,
// carrying the stack contents and the offset about to run. Wired to
// logrus by cmd/golox's --trace flag; nil by default so tracing costs
// nothing when unused.
type TraceHook func(stack []value.Value, chunk *bytecode.Chunk, offset int)

// VM executes one chunk at a time against persistent globals and a shared
// string interner, so that successive REPL lines see each other's global
// declarations.
type VM struct {
	chunk *bytecode.Chunk
	ip    int

	stack []value.Value

	globals  map[*value.Obj]value.Value
	interner *value.Interner

	trace  TraceHook
	Stdout io.Writer
}

// New returns a VM sharing interner for string interning; interner must be
// the same one passed to compiler.Compile for object identity to line up.
func New(interner *value.Interner) *VM {
	return &VM{
		globals:  make(map[*value.Obj]value.Value),
		interner: interner,
		Stdout:   os.Stdout,
	}
}

// SetTraceHook installs or clears the per-instruction trace callback.
func (vm *VM) SetTraceHook(hook TraceHook) {
	vm.trace = hook
}

// TraceToLogrus is a ready-made TraceHook that logs the stack and next
// instruction via logrus at debug level, for --trace.
func TraceToLogrus(log *logrus.Logger) TraceHook {
	return func(stack []value.Value, chunk *bytecode.Chunk, offset int) {
		var slots []string
		for _, v := range stack {
			slots = append(slots, "["+v.String()+"]")
		}

		var buf strings.Builder
		bytecode.DisassembleInstruction(&buf, chunk, offset)

		log.WithField("stack", strings.Join(slots, "")).
			Debug(strings.TrimRight(buf.String(), "\n"))
	}
}

func (vm *VM) resetStack() {
	vm.stack = vm.stack[:0]
}

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) currentLine() int {
	if vm.ip-1 >= 0 && vm.ip-1 < len(vm.chunk.Lines) {
		return vm.chunk.Lines[vm.ip-1]
	}
	return 0
}

func (vm *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Line: vm.currentLine()}
}

// fail clears the value stack and packages err as a failed Run result. A
// runtime error always leaves the VM's stack empty, not mid-expression.
func (vm *VM) fail(err error) (InterpretResult, error) {
	vm.resetStack()
	return InterpretRuntimeError, err
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readConstant() value.Value {
	return vm.chunk.Consts[vm.readByte()]
}

// Run executes chunk from offset 0 to completion or the first runtime
// error. The VM's globals and interner persist across calls, but the
// value stack and instruction pointer are reset each time.
func (vm *VM) Run(chunk *bytecode.Chunk) (InterpretResult, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.resetStack()

	for {
		if vm.trace != nil {
			vm.trace(vm.stack, vm.chunk, vm.ip)
		}

		op := bytecode.OpCode(vm.readByte())
		switch op {
		case bytecode.OpConstant:
			vm.push(vm.readConstant())

		case bytecode.OpNil:
			vm.push(value.Nil)

		case bytecode.OpTrue:
			vm.push(value.BoolVal(true))

		case bytecode.OpFalse:
			vm.push(value.BoolVal(false))

		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := vm.readByte()
			vm.push(vm.stack[slot])

		case bytecode.OpSetLocal:
			slot := vm.readByte()
			vm.stack[slot] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := vm.readConstant().Obj
			v, ok := vm.globals[name]
			if !ok {
				return vm.fail(vm.runtimeError("Undefined variable '%s'.", name.Str))
			}
			vm.push(v)

		case bytecode.OpDefineGlobal:
			name := vm.readConstant().Obj
			vm.globals[name] = vm.peek(0)
			vm.pop()

		case bytecode.OpSetGlobal:
			name := vm.readConstant().Obj
			if _, ok := vm.globals[name]; !ok {
				return vm.fail(vm.runtimeError("Undefined variable '%s'.", name.Str))
			}
			vm.globals[name] = vm.peek(0)

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.BoolVal(value.Equal(a, b)))

		case bytecode.OpGreater:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.BoolVal(a > b) }); err != nil {
				return vm.fail(err)
			}

		case bytecode.OpLess:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.BoolVal(a < b) }); err != nil {
				return vm.fail(err)
			}

		case bytecode.OpAdd:
			if err := vm.add(); err != nil {
				return vm.fail(err)
			}

		case bytecode.OpSubtract:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.NumberVal(a - b) }); err != nil {
				return vm.fail(err)
			}

		case bytecode.OpMultiply:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.NumberVal(a * b) }); err != nil {
				return vm.fail(err)
			}

		case bytecode.OpDivide:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.NumberVal(a / b) }); err != nil {
				return vm.fail(err)
			}

		case bytecode.OpNot:
			vm.push(value.BoolVal(vm.pop().Falsey()))

		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.fail(vm.runtimeError("Operand must be a number."))
			}
			v := vm.pop()
			vm.push(value.NumberVal(-v.Num))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case bytecode.OpReturn:
			return InterpretOK, nil

		default:
			return vm.fail(vm.runtimeError("Unknown opcode %d.", op))
		}

		if len(vm.stack) > maxStack {
			return vm.fail(vm.runtimeError("Stack overflow."))
		}
	}
}

func (vm *VM) binaryNumberOp(op func(a, b float64) value.Value) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop()
	a := vm.pop()
	vm.push(op(a.Num, b.Num))
	return nil
}

// add overloads OP_ADD for numbers and strings, matching the language's
// single polymorphic '+' operator.
func (vm *VM) add() error {
	if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
		b := vm.pop()
		a := vm.pop()
		vm.push(value.NumberVal(a.Num + b.Num))
		return nil
	}
	if vm.peek(0).IsString() && vm.peek(1).IsString() {
		b := vm.pop()
		a := vm.pop()
		obj := vm.interner.Intern(a.AsString() + b.AsString())
		vm.push(value.ObjVal(obj))
		return nil
	}
	return vm.runtimeError("Operands must be two numbers or two strings.")
}
