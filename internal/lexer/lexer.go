package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/ctorex/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	// once at end of input the position must not drift, however many
	// times the caller keeps reading
	if l.ch == 0 && l.column > 0 && l.readPosition >= len(l.input) {
		return
	}

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	switch l.ch {
	case '(':
		return l.singleCharToken(token.LPAREN)
	case ')':
		return l.singleCharToken(token.RPAREN)
	case '[':
		return l.singleCharToken(token.LBRACKET)
	case ']':
		return l.singleCharToken(token.RBRACKET)
	case ',':
		return l.singleCharToken(token.COMMA)
	case 0:
		return token.Token{Type: token.EOF, Lexeme: "", Offset: l.position, Line: l.line, Column: l.column}
	default:
		if isDigit(l.ch) {
			return l.readNumber()
		}
		if unicode.IsLetter(l.ch) {
			return l.readIdentifier()
		}
		tok := token.Token{Type: token.ILLEGAL, Lexeme: string(l.ch), Offset: l.position, Line: l.line, Column: l.column}
		l.readChar()
		return tok
	}
}

func (l *Lexer) singleCharToken(t token.TokenType) token.Token {
	tok := token.Token{Type: t, Lexeme: string(l.ch), Offset: l.position, Line: l.line, Column: l.column}
	l.readChar()
	return tok
}

// readNumber reads an integer or float literal. A literal is a float only
// when it contains a decimal point. The fractional part may be empty ("3."
// is a valid float) and an unsigned exponent may follow the fraction, so
// "1e5" is lexed as the integer 1 followed by the identifier e5.
func (l *Lexer) readNumber() token.Token {
	start := l.position
	startLine, startCol := l.line, l.column

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch != '.' {
		return token.Token{Type: token.INT, Lexeme: l.input[start:l.position], Offset: start, Line: startLine, Column: startCol}
	}

	l.readChar() // consume '.'
	for isDigit(l.ch) {
		l.readChar()
	}

	// exponent requires at least one digit; otherwise leave the 'e' for the
	// next token and let the parser report the trailing input
	if (l.ch == 'e' || l.ch == 'E') && isDigit(l.peekChar()) {
		l.readChar() // consume 'e'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return token.Token{Type: token.FLOAT, Lexeme: l.input[start:l.position], Offset: start, Line: startLine, Column: startCol}
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.position
	startLine, startCol := l.line, l.column
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return token.Token{Type: token.IDENT, Lexeme: l.input[start:l.position], Offset: start, Line: startLine, Column: startCol}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

// isLetter reports whether ch may continue an identifier. An identifier
// must start with a letter but may contain underscores after that.
func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}
