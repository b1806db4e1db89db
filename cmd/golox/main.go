// Command golox runs Lox source files or an interactive REPL.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/xirelogy/go-loxvm/internal/bytecode"
	"github.com/xirelogy/go-loxvm/internal/vm"

	golox "github.com/xirelogy/go-loxvm"
)

func main() {
	trace := flag.Bool("trace", false, "log each executed instruction and the value stack")
	disasm := flag.Bool("disasm", false, "print the disassembled chunk before running it")
	flag.Parse()

	interp := golox.New()

	if *trace {
		log := logrus.New()
		log.SetLevel(logrus.DebugLevel)
		interp.SetTraceHook(vm.TraceToLogrus(log))
	}

	switch flag.NArg() {
	case 0:
		repl(interp, *disasm)
	case 1:
		runFile(interp, flag.Arg(0), *disasm)
	default:
		fmt.Fprintln(os.Stderr, "Usage: golox [path]")
		os.Exit(64)
	}
}

func repl(interp *golox.Interp, disasm bool) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		run(interp, scanner.Text(), disasm)
	}
}

func runFile(interp *golox.Interp, path string, disasm bool) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open file \"%s\".\n", path)
		os.Exit(74)
	}

	result := run(interp, string(src), disasm)
	switch result {
	case golox.InterpretCompileError:
		os.Exit(65)
	case golox.InterpretRuntimeError:
		os.Exit(70)
	}
}

// run compiles source once, optionally disassembling it, then executes
// the result. Compile errors are reported by the compiler itself; runtime
// errors are reported here since the VM only returns them.
func run(interp *golox.Interp, source string, disasm bool) golox.InterpretResult {
	chunk, err := interp.Compile(source)
	if err != nil {
		return golox.InterpretCompileError
	}

	if disasm {
		bytecode.Disassemble(os.Stdout, chunk, "chunk")
	}

	result, err := interp.Run(chunk)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return result
}
