package compiler

import "github.com/xirelogy/go-loxvm/internal/token"

// Precedence orders binding strength from loosest to tightest, mirroring
// the language's grammar from assignment down to a primary expression.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is the static Pratt table: one row per token type, giving its
// prefix handler (if it can start an expression), its infix handler (if it
// can continue one), and the precedence at which the infix handler binds.
var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LeftParen:    {(*Compiler).grouping, nil, PrecNone},
		token.RightParen:   {nil, nil, PrecNone},
		token.LeftBrace:    {nil, nil, PrecNone},
		token.RightBrace:   {nil, nil, PrecNone},
		token.Comma:        {nil, nil, PrecNone},
		token.Dot:          {nil, nil, PrecNone},
		token.Minus:        {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		token.Plus:         {nil, (*Compiler).binary, PrecTerm},
		token.Semicolon:    {nil, nil, PrecNone},
		token.Slash:        {nil, (*Compiler).binary, PrecFactor},
		token.Star:         {nil, (*Compiler).binary, PrecFactor},
		token.Bang:         {(*Compiler).unary, nil, PrecNone},
		token.BangEqual:    {nil, (*Compiler).binary, PrecEquality},
		token.Equal:        {nil, nil, PrecNone},
		token.EqualEqual:   {nil, (*Compiler).binary, PrecEquality},
		token.Greater:      {nil, (*Compiler).binary, PrecComparison},
		token.GreaterEqual: {nil, (*Compiler).binary, PrecComparison},
		token.Less:         {nil, (*Compiler).binary, PrecComparison},
		token.LessEqual:    {nil, (*Compiler).binary, PrecComparison},
		token.Identifier:   {(*Compiler).variable, nil, PrecNone},
		token.String:       {(*Compiler).string, nil, PrecNone},
		token.Number:       {(*Compiler).number, nil, PrecNone},
		token.And:          {nil, nil, PrecNone},
		token.Class:        {nil, nil, PrecNone},
		token.Else:         {nil, nil, PrecNone},
		token.False:        {(*Compiler).literal, nil, PrecNone},
		token.For:          {nil, nil, PrecNone},
		token.Fun:          {nil, nil, PrecNone},
		token.If:           {nil, nil, PrecNone},
		token.Nil:          {(*Compiler).literal, nil, PrecNone},
		token.Or:           {nil, nil, PrecNone},
		token.Print:        {nil, nil, PrecNone},
		token.Return:       {nil, nil, PrecNone},
		token.Super:        {nil, nil, PrecNone},
		token.This:         {nil, nil, PrecNone},
		token.True:         {(*Compiler).literal, nil, PrecNone},
		token.Var:          {nil, nil, PrecNone},
		token.While:        {nil, nil, PrecNone},
		token.Error:        {nil, nil, PrecNone},
		token.EOF:          {nil, nil, PrecNone},
	}
}

func getRule(t token.Type) parseRule {
	if r, ok := rules[t]; ok {
		return r
	}
	return parseRule{nil, nil, PrecNone}
}
