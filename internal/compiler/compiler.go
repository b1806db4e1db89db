// Package compiler implements the single-pass Pratt parser that turns
// source text directly into a bytecode chunk, with no intermediate AST.
package compiler

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slices"

	"github.com/xirelogy/go-loxvm/internal/bytecode"
	"github.com/xirelogy/go-loxvm/internal/scanner"
	"github.com/xirelogy/go-loxvm/internal/token"
	"github.com/xirelogy/go-loxvm/internal/value"
)

// maxLocals is the fixed capacity of the locals stack: a byte-sized
// operand addresses a local, so no chunk can track more than this many at
// once.
const maxLocals = 256

// local records one in-scope local variable: its name (for shadowing and
// duplicate-declaration checks) and the block depth it was declared at.
// depth of -1 means "declared but not yet defined" — the interval during
// which the variable's own initializer is compiling and referring to the
// name is an error.
type local struct {
	name  token.Token
	depth int
}

// Compiler holds all state for one compilation pass: the token stream, the
// chunk being emitted into, and the locals/scope-depth bookkeeping needed
// to resolve names without a runtime environment.
type Compiler struct {
	scanner  *scanner.Scanner
	chunk    *bytecode.Chunk
	interner *value.Interner

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errs      *multierror.Error

	locals     [maxLocals]local
	localCount int
	scopeDepth int
}

// Compile compiles source into a bytecode chunk. interner is shared with
// the VM that will run the result, so that string literals and any
// runtime-concatenated strings compare equal by pointer. It always returns
// a non-nil chunk; on error the chunk may be partial and err is a
// *multierror.Error describing every diagnostic reported.
func Compile(source string, interner *value.Interner) (*bytecode.Chunk, error) {
	c := &Compiler{
		scanner:  scanner.New(source),
		chunk:    bytecode.New(),
		interner: interner,
	}
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.emitReturn()

	if c.hadError {
		return c.chunk, c.errs.ErrorOrNil()
	}
	return c.chunk, nil
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.ScanToken()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// --- error reporting ----------------------------------------------------

func (c *Compiler) errorAtCurrent(msg string) {
	c.errorAt(c.current, msg)
}

func (c *Compiler) error(msg string) {
	c.errorAt(c.previous, msg)
}

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := ""
	switch tok.Type {
	case token.EOF:
		where = " at end"
	case token.Error:
		// lexical errors carry no lexeme worth quoting
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	full := fmt.Sprintf("[line %d] Error%s: %s", tok.Line, where, msg)
	fmt.Fprintln(os.Stderr, full)
	c.errs = multierror.Append(c.errs, fmt.Errorf("%s", full))
}

// synchronize discards tokens until it reaches a likely statement
// boundary, so one bad statement produces one diagnostic instead of a
// cascade of spurious follow-on errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		if slices.Contains(token.StatementStarters, c.current.Type) {
			return
		}
		c.advance()
	}
}

// --- emission -----------------------------------------------------------

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op bytecode.OpCode) {
	c.chunk.WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitOps(op1, op2 bytecode.OpCode) {
	c.emitOp(op1)
	c.emitOp(op2)
}

func (c *Compiler) emitReturn() {
	c.emitOp(bytecode.OpReturn)
}

// makeConstant adds v to the chunk's constant pool, reporting and
// recovering (index 0) if the pool is already full.
func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.chunk.AddConstant(v)
	if idx == -1 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOp(bytecode.OpConstant)
	c.emitByte(c.makeConstant(v))
}

// --- declarations and statements ----------------------------------------

func (c *Compiler) declaration() {
	if c.match(token.Var) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(bytecode.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope pops every local declared at the scope being closed, emitting
// one OP_POP per slot so the stack matches compile-time bookkeeping.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for c.localCount > 0 && c.locals[c.localCount-1].depth > c.scopeDepth {
		c.emitOp(bytecode.OpPop)
		c.localCount--
	}
}

// --- expressions ----------------------------------------------------------

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) number(_ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.NumberVal(n))
}

func (c *Compiler) string(_ bool) {
	lexeme := c.previous.Lexeme
	s := lexeme[1 : len(lexeme)-1] // strip surrounding quotes
	obj := c.interner.Intern(s)
	c.emitConstant(value.ObjVal(obj))
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Type {
	case token.False:
		c.emitOp(bytecode.OpFalse)
	case token.True:
		c.emitOp(bytecode.OpTrue)
	case token.Nil:
		c.emitOp(bytecode.OpNil)
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	opType := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch opType {
	case token.Bang:
		c.emitOp(bytecode.OpNot)
	case token.Minus:
		c.emitOp(bytecode.OpNegate)
	}
}

func (c *Compiler) binary(_ bool) {
	opType := c.previous.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.BangEqual:
		c.emitOps(bytecode.OpEqual, bytecode.OpNot)
	case token.EqualEqual:
		c.emitOp(bytecode.OpEqual)
	case token.Greater:
		c.emitOp(bytecode.OpGreater)
	case token.GreaterEqual:
		c.emitOps(bytecode.OpLess, bytecode.OpNot)
	case token.Less:
		c.emitOp(bytecode.OpLess)
	case token.LessEqual:
		c.emitOps(bytecode.OpGreater, bytecode.OpNot)
	case token.Plus:
		c.emitOp(bytecode.OpAdd)
	case token.Minus:
		c.emitOp(bytecode.OpSubtract)
	case token.Star:
		c.emitOp(bytecode.OpMultiply)
	case token.Slash:
		c.emitOp(bytecode.OpDivide)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	getOp, setOp := bytecode.OpGetLocal, bytecode.OpSetLocal
	arg := c.resolveLocal(name)
	if arg == -1 {
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
		arg = int(c.identifierConstant(name))
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOp(setOp)
		c.emitByte(byte(arg))
	} else {
		c.emitOp(getOp)
		c.emitByte(byte(arg))
	}
}

// --- variable declaration/resolution -------------------------------------

// identifierConstant adds name's lexeme to the constant pool as an interned
// string, for use as a global variable's runtime key.
func (c *Compiler) identifierConstant(name token.Token) byte {
	obj := c.interner.Intern(name.Lexeme)
	return c.makeConstant(value.ObjVal(obj))
}

func identifiersEqual(a, b token.Token) bool {
	return a.Lexeme == b.Lexeme
}

// resolveLocal walks the locals stack top-down (innermost scope first) so
// that shadowing resolves to the most recent declaration. Returns -1 if
// name is not a local, meaning it must be a global.
func (c *Compiler) resolveLocal(name token.Token) int {
	for i := c.localCount - 1; i >= 0; i-- {
		l := &c.locals[i]
		if identifiersEqual(name, l.name) {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addLocal(name token.Token) {
	if c.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.locals[c.localCount] = local{name: name, depth: -1}
	c.localCount++
}

// declareVariable registers a local declaration and checks for a duplicate
// name already declared at the same scope depth. Globals are resolved at
// runtime by name, so this is a no-op at the top level.
func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := c.localCount - 1; i >= 0; i-- {
		l := &c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if identifiersEqual(name, l.name) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.Identifier, errMsg)

	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

// markInitialized promotes the most recently declared local from "being
// initialized" to fully in scope, so its own initializer can't see it but
// subsequent code can.
func (c *Compiler) markInitialized() {
	c.locals[c.localCount-1].depth = c.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOp(bytecode.OpDefineGlobal)
	c.emitByte(global)
}
