// Package parse turns expression strings into expression trees. The grammar is
// restricted: names, literals, arithmetic, comparisons, boolean logic and calls
// to whitelisted functions. Everything else is rejected with a SyntaxError.
package parse

import (
	"strings"
)

// TokenType represents the type of an expression token.
type TokenType int

const (
	// EOF represents end of input.
	EOF TokenType = iota
	ILLEGAL

	// IDENT represents names of columns, symbolic literals and functions.
	IDENT
	INT    // integers
	FLOAT  // floating point numbers
	STRING // quoted string literals

	// AND represents the "and" keyword.
	AND
	OR
	NOT
	TRUE
	FALSE

	// EQ represents the equality operator (==).
	EQ
	NE    // !=
	LT    // <
	LE    // <=
	GT    // >
	GE    // >=
	PLUS  // +
	MINUS // -
	MULT  // *
	DIV   // /
	PIPE  // |

	// COMMA represents the comma delimiter (,).
	COMMA
	LPAREN // (
	RPAREN // )

	// MOD and the tokens below are recognized only to be rejected.
	MOD      // %
	POW      // **
	AMP      // &
	CARET    // ^
	TILDE    // ~
	SHL      // <<
	SHR      // >>
	FLOORDIV // //
	DOT      // .
	ASSIGN   // =
	LBRACKET // [
	RBRACKET // ]
)

// Token represents a single expression token.
type Token struct {
	Type     TokenType
	Literal  string
	Position int
}

// Lexer tokenizes expression input.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

// NewLexer creates a new lexer instance.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL represents "EOF"
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the next character without advancing position.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	switch l.ch {
	case '=', '!', '<', '>':
		tok = l.tokenizeComparisonOperator()
	case '+', '-', '*', '/', '%', '|', '&', '^', '~':
		tok = l.tokenizeArithmeticOperator()
	case ',', '(', ')', '[', ']':
		tok = l.tokenizeDelimiter()
	case '.':
		if isDigit(l.peekChar()) {
			return l.tokenizeNumber()
		}
		tok = l.single(DOT)
	case '\'', '"':
		tok = l.tokenizeString()
	case 0:
		if l.position < len(l.input) {
			tok = l.single(ILLEGAL)
		} else {
			return Token{Type: EOF, Position: l.position}
		}
	default:
		if isLetter(l.ch) {
			return l.tokenizeIdentifier()
		} else if isDigit(l.ch) {
			return l.tokenizeNumber()
		}
		tok = l.single(ILLEGAL)
	}

	l.readChar()
	return tok
}

func (l *Lexer) single(t TokenType) Token {
	return Token{Type: t, Literal: string(l.ch), Position: l.position}
}

// pair consumes the next character and returns a two-character token.
func (l *Lexer) pair(t TokenType) Token {
	pos := l.position
	ch := l.ch
	l.readChar()
	return Token{Type: t, Literal: string(ch) + string(l.ch), Position: pos}
}

// tokenizeComparisonOperator handles =, ==, !=, <, <=, <<, >, >=, >>.
func (l *Lexer) tokenizeComparisonOperator() Token {
	next := l.peekChar()
	switch l.ch {
	case '=':
		if next == '=' {
			return l.pair(EQ)
		}
		return l.single(ASSIGN)
	case '!':
		if next == '=' {
			return l.pair(NE)
		}
		return l.single(ILLEGAL)
	case '<':
		switch next {
		case '=':
			return l.pair(LE)
		case '<':
			return l.pair(SHL)
		}
		return l.single(LT)
	default:
		switch next {
		case '=':
			return l.pair(GE)
		case '>':
			return l.pair(SHR)
		}
		return l.single(GT)
	}
}

// tokenizeArithmeticOperator handles + - * ** / // % | & ^ ~.
func (l *Lexer) tokenizeArithmeticOperator() Token {
	switch l.ch {
	case '+':
		return l.single(PLUS)
	case '-':
		return l.single(MINUS)
	case '*':
		if l.peekChar() == '*' {
			return l.pair(POW)
		}
		return l.single(MULT)
	case '/':
		if l.peekChar() == '/' {
			return l.pair(FLOORDIV)
		}
		return l.single(DIV)
	case '%':
		return l.single(MOD)
	case '|':
		return l.single(PIPE)
	case '&':
		return l.single(AMP)
	case '^':
		return l.single(CARET)
	default:
		return l.single(TILDE)
	}
}

// tokenizeDelimiter handles , ( ) [ ].
func (l *Lexer) tokenizeDelimiter() Token {
	switch l.ch {
	case ',':
		return l.single(COMMA)
	case '(':
		return l.single(LPAREN)
	case ')':
		return l.single(RPAREN)
	case '[':
		return l.single(LBRACKET)
	default:
		return l.single(RBRACKET)
	}
}

// tokenizeString handles ' and " quoted strings with backslash escapes.
// An unterminated string is ILLEGAL.
func (l *Lexer) tokenizeString() Token {
	position := l.position
	quote := l.ch
	var b strings.Builder

	l.readChar() // consume opening quote
	for l.ch != quote {
		if l.ch == 0 && l.position >= len(l.input) {
			return Token{Type: ILLEGAL, Literal: l.input[position:], Position: position}
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 0:
				continue
			default:
				b.WriteByte(l.ch)
			}
			l.readChar()
			continue
		}
		b.WriteByte(l.ch)
		l.readChar()
	}
	// NextToken consumes the closing quote
	return Token{Type: STRING, Literal: b.String(), Position: position}
}

// tokenizeIdentifier handles names and keywords.
func (l *Lexer) tokenizeIdentifier() Token {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	literal := l.input[position:l.position]
	return Token{Type: lookupIdent(literal), Literal: literal, Position: position}
}

// tokenizeNumber handles integers, decimals and exponents.
func (l *Lexer) tokenizeNumber() Token {
	position := l.position
	tokenType := INT

	for isDigit(l.ch) {
		l.readChar()
	}

	// Check for decimal point
	if l.ch == '.' {
		tokenType = FLOAT
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			tokenType = FLOAT
			l.readChar() // consume 'e'
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	if isLetter(l.ch) {
		// "1abc" is not a number followed by a name
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: ILLEGAL, Literal: l.input[position:l.position], Position: position}
	}

	return Token{Type: tokenType, Literal: l.input[position:l.position], Position: position}
}

// skipWhitespace skips whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// isLetter checks if character can start a name.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// keywords are case sensitive; both Python and lowercase booleans are accepted.
var keywords = map[string]TokenType{
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"True":  TRUE,
	"true":  TRUE,
	"False": FALSE,
	"false": FALSE,
}

// lookupIdent checks if identifier is a keyword.
func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsIdentifier reports whether s lexes as a single plain name, the condition
// for binding it as a symbolic literal.
func IsIdentifier(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return lookupIdent(s) == IDENT
}
