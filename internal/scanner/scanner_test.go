package scanner

import (
	"testing"

	"github.com/xirelogy/go-loxvm/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	s := New(src)
	var toks []token.Token
	for {
		tok := s.ScanToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){};,.-+/*!!====<=<>=>")
	want := []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Semicolon, token.Comma, token.Dot, token.Minus, token.Plus,
		token.Slash, token.Star, token.Bang, token.BangEqual, token.EqualEqual,
		token.Equal, token.LessEqual, token.Less, token.GreaterEqual, token.Greater, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "and class else false for fun if nil or print return super this true var while foo")
	want := []token.Type{
		token.And, token.Class, token.Else, token.False, token.For, token.Fun,
		token.If, token.Nil, token.Or, token.Print, token.Return, token.Super,
		token.This, token.True, token.Var, token.While, token.Identifier, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d (%q): got %s, want %s", i, toks[i].Lexeme, toks[i].Type, tt)
		}
	}
}

func TestScanNumberDoesNotConsumeTrailingDot(t *testing.T) {
	toks := scanAll(t, "123.")
	if toks[0].Type != token.Number || toks[0].Lexeme != "123" {
		t.Fatalf("got %+v, want NUMBER '123'", toks[0])
	}
	if toks[1].Type != token.Dot {
		t.Fatalf("got %+v, want DOT", toks[1])
	}
}

func TestScanFloat(t *testing.T) {
	toks := scanAll(t, "3.14")
	if toks[0].Type != token.Number || toks[0].Lexeme != "3.14" {
		t.Fatalf("got %+v, want NUMBER '3.14'", toks[0])
	}
}

func TestScanStringLiteral(t *testing.T) {
	toks := scanAll(t, `"hello world"`)
	if toks[0].Type != token.String || toks[0].Lexeme != `"hello world"` {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"hello`)
	if toks[0].Type != token.Error || toks[0].Lexeme != "Unterminated string." {
		t.Fatalf("got %+v, want ERROR 'Unterminated string.'", toks[0])
	}
}

func TestScanUnexpectedCharacter(t *testing.T) {
	toks := scanAll(t, "@")
	if toks[0].Type != token.Error || toks[0].Lexeme != "Unexpected character." {
		t.Fatalf("got %+v, want ERROR 'Unexpected character.'", toks[0])
	}
}

func TestScanSkipsCommentsAndTracksLines(t *testing.T) {
	toks := scanAll(t, "// a comment\n1\n2")
	if toks[0].Type != token.Number || toks[0].Line != 2 {
		t.Fatalf("got %+v, want NUMBER on line 2", toks[0])
	}
	if toks[1].Type != token.Number || toks[1].Line != 3 {
		t.Fatalf("got %+v, want NUMBER on line 3", toks[1])
	}
}
