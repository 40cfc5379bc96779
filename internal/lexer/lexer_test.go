package lexer_test

import (
	"testing"

	"github.com/funvibe/ctorex/internal/lexer"
	"github.com/funvibe/ctorex/internal/token"
)

type expected struct {
	typ    token.TokenType
	lexeme string
}

func TestNextToken(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		tokens []expected
	}{
		{"integer", "42", []expected{{token.INT, "42"}}},
		{"float", "3.14", []expected{{token.FLOAT, "3.14"}}},
		{"float_no_fraction", "3.", []expected{{token.FLOAT, "3."}}},
		{"float_exponent", "0.2e3", []expected{{token.FLOAT, "0.2e3"}}},
		{"float_upper_exponent", "1.5E2", []expected{{token.FLOAT, "1.5E2"}}},
		{"identifier", "SMA", []expected{{token.IDENT, "SMA"}}},
		{"identifier_underscore", "fast_ema2", []expected{{token.IDENT, "fast_ema2"}}},
		// the exponent is only reachable after a decimal point
		{"integer_then_ident", "1e5", []expected{{token.INT, "1"}, {token.IDENT, "e5"}}},
		// an exponent without digits is left for the next token
		{"float_dangling_e", "3.e", []expected{{token.FLOAT, "3."}, {token.IDENT, "e"}}},
		{"delimiters", "([,])", []expected{
			{token.LPAREN, "("},
			{token.LBRACKET, "["},
			{token.COMMA, ","},
			{token.RBRACKET, "]"},
			{token.RPAREN, ")"},
		}},
		{"whitespace", " \t1 ,\n 2 ", []expected{
			{token.INT, "1"},
			{token.COMMA, ","},
			{token.INT, "2"},
		}},
		{"ctor_call", "Momentum(SMA,[100,50])", []expected{
			{token.IDENT, "Momentum"},
			{token.LPAREN, "("},
			{token.IDENT, "SMA"},
			{token.COMMA, ","},
			{token.LBRACKET, "["},
			{token.INT, "100"},
			{token.COMMA, ","},
			{token.INT, "50"},
			{token.RBRACKET, "]"},
			{token.RPAREN, ")"},
		}},
		{"illegal", "@", []expected{{token.ILLEGAL, "@"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := lexer.New(tc.input)
			for i, want := range tc.tokens {
				tok := l.NextToken()
				if tok.Type != want.typ {
					t.Fatalf("token %d: type = %q, want %q", i, tok.Type, want.typ)
				}
				if tok.Lexeme != want.lexeme {
					t.Fatalf("token %d: lexeme = %q, want %q", i, tok.Lexeme, want.lexeme)
				}
			}
			if tok := l.NextToken(); tok.Type != token.EOF {
				t.Fatalf("expected EOF, got %q (%q)", tok.Type, tok.Lexeme)
			}
		})
	}
}

func TestTokenPositions(t *testing.T) {
	l := lexer.New("Foo(1, 2)")

	wants := []struct {
		lexeme string
		offset int
		column int
	}{
		{"Foo", 0, 1},
		{"(", 3, 4},
		{"1", 4, 5},
		{",", 5, 6},
		{"2", 7, 8},
		{")", 8, 9},
	}
	for _, want := range wants {
		tok := l.NextToken()
		if tok.Lexeme != want.lexeme {
			t.Fatalf("lexeme = %q, want %q", tok.Lexeme, want.lexeme)
		}
		if tok.Offset != want.offset {
			t.Errorf("%q: offset = %d, want %d", tok.Lexeme, tok.Offset, want.offset)
		}
		if tok.Column != want.column {
			t.Errorf("%q: column = %d, want %d", tok.Lexeme, tok.Column, want.column)
		}
		if tok.Line != 1 {
			t.Errorf("%q: line = %d, want 1", tok.Lexeme, tok.Line)
		}
	}

	eof := l.NextToken()
	if eof.Type != token.EOF {
		t.Fatalf("expected EOF, got %q", eof.Type)
	}
	if eof.Offset != len("Foo(1, 2)") {
		t.Errorf("EOF offset = %d, want %d", eof.Offset, len("Foo(1, 2)"))
	}
}

func TestEOFPositionStable(t *testing.T) {
	for _, input := range []string{"", "42", "1,\n2"} {
		l := lexer.New(input)
		first := l.NextToken()
		for first.Type != token.EOF {
			first = l.NextToken()
		}
		for i := 0; i < 3; i++ {
			tok := l.NextToken()
			if tok != first {
				t.Errorf("input %q: EOF token drifted from %+v to %+v", input, first, tok)
			}
		}
	}
}
