// Package parser turns constructor-expression text into an ast tree.
//
// The grammar is matched with ordered alternation: a numeric literal is a
// float only when it contains a decimal point, otherwise an integer, and an
// identifier only when it is not a number. The whole input must be consumed;
// anything left over after a complete expression is a diagnostic, which is
// how "1e5" fails (integer 1, then trailing "e5").
package parser

import (
	"strconv"

	"github.com/funvibe/ctorex/internal/diagnostics"
	"github.com/funvibe/ctorex/internal/lexer"
	"github.com/funvibe/ctorex/internal/token"
	"github.com/funvibe/ctorex/pkg/ast"
)

type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
	err       *diagnostics.Diagnostic
}

// Parse parses a complete expression: a constructor application or a single
// primitive literal, followed by end of input. The first failure aborts the
// parse; the tree is never partially returned.
func Parse(input string) (ast.Node, error) {
	p := newParser(input)

	if p.curTokenIs(token.EOF) {
		return nil, diagnostics.NewError(diagnostics.ErrP004, p.curToken, "empty input: expected an expression")
	}

	node := p.parseExpression()
	if p.err != nil {
		return nil, p.err
	}

	if !p.curTokenIs(token.EOF) {
		return nil, diagnostics.NewError(diagnostics.ErrP003, p.curToken,
			"trailing input after expression: unexpected "+describe(p.curToken))
	}
	return node, nil
}

func newParser(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) fail(code diagnostics.ErrorCode, tok token.Token, msg string) {
	if p.err == nil {
		p.err = diagnostics.NewError(code, tok, msg)
	}
}

// parseExpression parses ctor_expr | primitive and leaves curToken on the
// first token after the expression.
func (p *Parser) parseExpression() ast.Node {
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.LPAREN) {
		return p.parseCtorExpression()
	}
	return p.parsePrimitive()
}

func (p *Parser) parseCtorExpression() ast.Node {
	ctor := &ast.CtorExpression{
		Position: pos(p.curToken),
		Name:     p.curToken.Lexeme,
	}
	p.nextToken() // onto '('
	p.nextToken() // onto first argument or ')'

	// The grammar shows one-or-more arguments, but a zero-argument
	// application like Bogus() must reach the registry so the caller gets
	// an unknown-type error instead of a parse error.
	if p.curTokenIs(token.RPAREN) {
		p.nextToken()
		return ctor
	}

	for {
		arg := p.parseArgument()
		if p.err != nil {
			return nil
		}
		ctor.Args = append(ctor.Args, arg)

		switch p.curToken.Type {
		case token.COMMA:
			p.nextToken()
		case token.RPAREN:
			p.nextToken()
			return ctor
		case token.EOF:
			p.fail(diagnostics.ErrP002, p.curToken, "unexpected end of input: expected ',' or ')'")
			return nil
		default:
			p.fail(diagnostics.ErrP001, p.curToken, "expected ',' or ')', got "+describe(p.curToken))
			return nil
		}
	}
}

// argument = ctor_expr | list | primitive
func (p *Parser) parseArgument() ast.Node {
	switch {
	case p.curTokenIs(token.IDENT) && p.peekTokenIs(token.LPAREN):
		return p.parseCtorExpression()
	case p.curTokenIs(token.LBRACKET):
		return p.parseList()
	default:
		return p.parsePrimitive()
	}
}

func (p *Parser) parseList() ast.Node {
	list := &ast.ListLiteral{Position: pos(p.curToken)}
	p.nextToken() // past '['

	for {
		el := p.parsePrimitive()
		if p.err != nil {
			return nil
		}
		list.Elements = append(list.Elements, el)

		switch p.curToken.Type {
		case token.COMMA:
			p.nextToken()
		case token.RBRACKET:
			p.nextToken()
			return list
		case token.EOF:
			p.fail(diagnostics.ErrP002, p.curToken, "unexpected end of input: expected ',' or ']'")
			return nil
		default:
			p.fail(diagnostics.ErrP001, p.curToken, "expected ',' or ']', got "+describe(p.curToken))
			return nil
		}
	}
}

// primitive = float | integer | identifier, tried in that order. The lexer
// already classifies numbers, so here each token type maps to one node.
func (p *Parser) parsePrimitive() ast.Node {
	tok := p.curToken
	switch tok.Type {
	case token.FLOAT:
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.fail(diagnostics.ErrP001, tok, "invalid float literal "+strconv.Quote(tok.Lexeme))
			return nil
		}
		p.nextToken()
		return &ast.FloatLiteral{Position: pos(tok), Value: value, Lexeme: tok.Lexeme}
	case token.INT:
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.fail(diagnostics.ErrP001, tok, "invalid integer literal "+strconv.Quote(tok.Lexeme))
			return nil
		}
		p.nextToken()
		return &ast.IntegerLiteral{Position: pos(tok), Value: value}
	case token.IDENT:
		p.nextToken()
		return &ast.SymbolLiteral{Position: pos(tok), Name: tok.Lexeme}
	case token.EOF:
		p.fail(diagnostics.ErrP002, tok, "unexpected end of input: expected a literal")
		return nil
	case token.ILLEGAL:
		p.fail(diagnostics.ErrP005, tok, "illegal character "+strconv.Quote(tok.Lexeme))
		return nil
	default:
		p.fail(diagnostics.ErrP001, tok, "expected a literal, got "+describe(tok))
		return nil
	}
}

func pos(tok token.Token) ast.Pos {
	return ast.Pos{Offset: tok.Offset, Line: tok.Line, Column: tok.Column}
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return strconv.Quote(tok.Lexeme)
}
