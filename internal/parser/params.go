package parser

import (
	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

// parseParameterList parses comma-separated parameters up to, but not
// including, the terminator token. Parameters are plain terms, typed terms
// `x : T`, or variadic `*x`. open is the token that started the list.
func (p *Parser) parseParameterList(terminator lexer.TokenType, open lexer.Token, params *[]ast.Node) {
	for p.awaiting(terminator, open) {
		var param ast.Node
		switch tok := p.cur(); tok.Type {
		case lexer.IDENT, lexer.NUMBER, lexer.STRING:
			switch p.ts.Peek().Type {
			case lexer.COLON:
				term := p.parseTerm()
				param = ast.NewTypedParameter(term, p.parseTypeAnnotation())
			case lexer.COMMA, terminator:
				param = ast.NewPlainParameter(p.parseTerm())
			}

		case lexer.OPERATOR:
			if tok.Value != "*" {
				p.fail(diag.CodeOperatorInParameterList, map[string]string{"operator": tok.Value},
					"unexpected operator "+tok.Value+" in parameter list")
			}
			p.next()
			p.expect(lexer.IDENT)
			id := p.parseIdentifier()
			var inner ast.Node = ast.NewPlainParameter(id)
			if p.is(lexer.COLON) {
				inner = ast.NewTypedParameter(id, p.parseTypeAnnotation())
			}
			param = ast.NewVarArgsParameter(inner, tok.Span)
		}

		if param == nil {
			p.fail(diag.CodeInvalidParameter, tokenVars(p.cur()),
				"expected a parameter, found "+p.cur().String())
		}
		*params = append(*params, param)

		if p.is(lexer.COMMA) {
			p.next()
		} else if !p.is(terminator) {
			p.fail(diag.CodeParameterListSeparator, tokenVars(p.cur()),
				"parameters must be separated by commas, found "+p.cur().String())
		}
	}
}

// parseArguments parses the argument of one request part: a parenthesised
// list, or a single delimited term.
func (p *Parser) parseArguments(args *[]ast.Node) {
	if !p.is(lexer.LPAREN) {
		if p.hasDelimitedTerm() {
			*args = append(*args, p.parseTerm())
		}
		return
	}

	open := p.cur()
	restore := p.withBlocks(true)
	p.next()
	for p.awaiting(lexer.RPAREN, open) {
		arg := p.parseExpression()
		if p.is(lexer.COLON) {
			arg = ast.NewTypedParameter(arg, p.parseTypeAnnotation())
		}
		*args = append(*args, arg)
		p.consumeBlankLines()

		if p.is(lexer.COMMA) {
			p.next()
		} else if !p.is(lexer.RPAREN) {
			p.fail(diag.CodeArgumentListSeparator, tokenVars(p.cur()),
				"arguments must be separated by commas, found "+p.cur().String())
		}
	}
	restore()
	p.next()
}

// parseGenericArguments parses `<A, B>` after a request part name.
func (p *Parser) parseGenericArguments(generics *[]ast.Node) {
	if !p.is(lexer.LGENERIC) {
		return
	}
	open := p.cur()
	p.next()
	for p.awaiting(lexer.RGENERIC, open) {
		*generics = append(*generics, p.parseExpression())
		if p.is(lexer.COMMA) {
			p.next()
		} else if !p.is(lexer.RGENERIC) {
			p.fail(diag.CodeGenericArgumentSeparator, tokenVars(p.cur()),
				"generic arguments must be separated by commas, found "+p.cur().String())
		}
	}
	p.next()
}

// hasDelimitedTerm reports whether the current token starts a term that can
// be a request argument without parentheses.
func (p *Parser) hasDelimitedTerm() bool {
	switch p.cur().Type {
	case lexer.NUMBER, lexer.STRING:
		return true
	case lexer.LBRACE:
		return !p.noBlocks
	}
	return false
}
