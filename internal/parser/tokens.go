package parser

import (
	"strings"

	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

func (p *Parser) cur() lexer.Token {
	return p.ts.Current()
}

func (p *Parser) is(tt lexer.TokenType) bool {
	return p.ts.Current().Type == tt
}

func (p *Parser) done() bool {
	return p.is(lexer.EOF)
}

// advance moves to the next raw token: comments and line breaks are
// returned as they are.
func (p *Parser) advance() lexer.Token {
	tok := p.ts.NextToken()
	p.checkIllegal(tok)
	return tok
}

// next moves to the next significant token. Comments are collected into the
// pending list and a line break is skipped when the following line is a
// continuation, i.e. starts right of the indentation baseline.
func (p *Parser) next() lexer.Token {
	p.advance()
	p.takeComments()
	p.continueLine()
	p.takeComments()
	return p.cur()
}

func (p *Parser) continueLine() {
	if !p.is(lexer.NEWLINE) {
		return
	}
	after := p.ts.Peek()
	if after.Type == lexer.NEWLINE || after.Type == lexer.EOF {
		return
	}
	if after.Span.Column > p.indentColumn {
		p.advance()
	}
}

func (p *Parser) consumeBlankLines() {
	for p.is(lexer.NEWLINE) {
		p.advance()
	}
}

// atTerminator reports whether the current token may end a statement.
func (p *Parser) atTerminator() bool {
	switch p.cur().Type {
	case lexer.NEWLINE, lexer.COMMENT, lexer.EOF, lexer.RBRACE:
		return true
	}
	return false
}

// expect fails unless the current token has type tt. It does not advance.
func (p *Parser) expect(tt lexer.TokenType) {
	if p.is(tt) {
		return
	}
	found := p.cur().String()
	p.fail(diag.CodeExpectedToken, map[string]string{
		"expected": describe(tt),
		"found":    found,
	}, "expected "+describe(tt)+", found "+found)
}

// awaiting reports whether a list opened by start continues, i.e. the
// closing token tt has not been reached. Running out of input fails at start.
func (p *Parser) awaiting(tt lexer.TokenType, start lexer.Token) bool {
	if p.is(tt) {
		return false
	}
	if p.done() {
		p.failAt(start, diag.CodeUnexpectedEnd, map[string]string{"token": start.String()}, "unexpected end of input")
	}
	return true
}

func describe(tt lexer.TokenType) string {
	switch tt {
	case lexer.IDENT:
		return "identifier"
	case lexer.NUMBER:
		return "number"
	case lexer.STRING:
		return "string"
	case lexer.OPERATOR:
		return "operator"
	case lexer.NEWLINE:
		return "newline"
	case lexer.EOF:
		return "end of input"
	}
	if lexer.IsKeyword(tt) {
		return "'" + strings.ToLower(string(tt)) + "'"
	}
	return "'" + string(tt) + "'"
}
