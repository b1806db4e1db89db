// Package scanner turns a NUL-terminated source buffer into a lazy stream
// of tokens. It is stateless except for its scan position, and is driven
// one token at a time by the compiler's single-token lookahead.
package scanner

import "github.com/xirelogy/go-loxvm/internal/token"

// Scanner scans source text into tokens on demand.
type Scanner struct {
	src     string
	start   int // start of the token being scanned
	current int // next unread byte
	line    int
}

// New constructs a Scanner over src. src need not be physically
// NUL-terminated in Go (len(src) is the sentinel); the NUL-terminated
// buffer described in the design is what peek() and peekNext() simulate
// by returning 0 past the end.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// ScanToken returns the next token. Scanning past EOF continues to
// return EOF tokens.
func (s *Scanner) ScanToken() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.isAtEnd() {
		return s.makeToken(token.EOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.makeToken(token.LeftParen)
	case ')':
		return s.makeToken(token.RightParen)
	case '{':
		return s.makeToken(token.LeftBrace)
	case '}':
		return s.makeToken(token.RightBrace)
	case ';':
		return s.makeToken(token.Semicolon)
	case ',':
		return s.makeToken(token.Comma)
	case '.':
		return s.makeToken(token.Dot)
	case '-':
		return s.makeToken(token.Minus)
	case '+':
		return s.makeToken(token.Plus)
	case '/':
		return s.makeToken(token.Slash)
	case '*':
		return s.makeToken(token.Star)
	case '!':
		return s.makeToken(s.choose('=', token.BangEqual, token.Bang))
	case '=':
		return s.makeToken(s.choose('=', token.EqualEqual, token.Equal))
	case '<':
		return s.makeToken(s.choose('=', token.LessEqual, token.Less))
	case '>':
		return s.makeToken(s.choose('=', token.GreaterEqual, token.Greater))
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.src)
}

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

// choose implements the one/two-character operator pattern: consume the
// expected byte if present and return the two-character type, else the
// one-character type.
func (s *Scanner) choose(expected byte, ifMatch, otherwise token.Type) token.Type {
	if s.isAtEnd() || s.src[s.current] != expected {
		return otherwise
	}
	s.current++
	return ifMatch
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.current++
		case '\n':
			s.line++
			s.current++
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.isAtEnd() {
					s.current++
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.current++
	}
	if s.isAtEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.current++ // consume closing quote
	return s.makeToken(token.String)
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.current++
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++ // consume the '.'
		for isDigit(s.peek()) {
			s.current++
		}
	}
	return s.makeToken(token.Number)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.current++
	}
	return s.makeToken(s.identifierType())
}

// identifierType classifies the just-scanned lexeme as a keyword or a
// plain identifier using a first/second-character trie, mirroring clox's
// dispatch rather than a hash table lookup.
func (s *Scanner) identifierType() token.Type {
	lexeme := s.src[s.start:s.current]
	switch lexeme[0] {
	case 'a':
		return s.checkKeyword(lexeme, "and", token.And)
	case 'c':
		return s.checkKeyword(lexeme, "class", token.Class)
	case 'e':
		return s.checkKeyword(lexeme, "else", token.Else)
	case 'f':
		if len(lexeme) > 1 {
			switch lexeme[1] {
			case 'a':
				return s.checkKeyword(lexeme, "false", token.False)
			case 'o':
				return s.checkKeyword(lexeme, "for", token.For)
			case 'u':
				return s.checkKeyword(lexeme, "fun", token.Fun)
			}
		}
	case 'i':
		return s.checkKeyword(lexeme, "if", token.If)
	case 'n':
		return s.checkKeyword(lexeme, "nil", token.Nil)
	case 'o':
		return s.checkKeyword(lexeme, "or", token.Or)
	case 'p':
		return s.checkKeyword(lexeme, "print", token.Print)
	case 'r':
		return s.checkKeyword(lexeme, "return", token.Return)
	case 's':
		return s.checkKeyword(lexeme, "super", token.Super)
	case 't':
		if len(lexeme) > 1 {
			switch lexeme[1] {
			case 'h':
				return s.checkKeyword(lexeme, "this", token.This)
			case 'r':
				return s.checkKeyword(lexeme, "true", token.True)
			}
		}
	case 'v':
		return s.checkKeyword(lexeme, "var", token.Var)
	case 'w':
		return s.checkKeyword(lexeme, "while", token.While)
	}
	return token.Identifier
}

func (s *Scanner) checkKeyword(lexeme, keyword string, t token.Type) token.Type {
	if lexeme == keyword {
		return t
	}
	return token.Identifier
}

func (s *Scanner) makeToken(t token.Type) token.Token {
	return token.Token{Type: t, Lexeme: s.src[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{Type: token.Error, Lexeme: msg, Line: s.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
