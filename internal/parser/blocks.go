package parser

import (
	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

// parseBraceBody parses the statements between `{` and `}` of a method,
// class or object. The first statement fixes the column every later one
// must share, and it must lie right of the enclosing baseline.
func (p *Parser) parseBraceBody() []ast.Node {
	indentBefore := p.indentColumn
	restore := p.withBlocks(true)
	defer restore()

	open := p.cur()
	p.advance()
	if p.is(lexer.COMMENT) {
		p.comments = append(p.comments, p.parseComment())
	}
	p.consumeBlankLines()
	if p.is(lexer.RBRACE) {
		p.next()
		return nil
	}
	p.takeLineComments()
	p.consumeBlankLines()
	if p.is(lexer.RBRACE) {
		p.next()
		return nil
	}

	p.indentColumn = p.cur().Span.Column
	if p.indentColumn <= indentBefore && !p.done() {
		p.failIndentation(diag.CodeBodyIndentation, indentBefore, p.indentColumn)
	}

	var body []ast.Node
	for p.awaiting(lexer.RBRACE, open) {
		p.checkIndentation()
		last := p.cur()
		if n := p.parseStatement(); n != nil {
			body = append(body, n)
		}
		if lexer.Same(p.cur(), last) {
			p.fail(diag.CodeUnknownConstruct, tokenVars(p.cur()), "nothing consumed in {} body")
		}
	}

	p.indentColumn = indentBefore
	p.next()
	return body
}

// parseObject parses `object { body }`.
func (p *Parser) parseObject() ast.Node {
	start := p.cur()
	ret := ast.NewObjectLit(start.Span)
	p.advance()
	if !p.is(lexer.LBRACE) {
		p.fail(diag.CodeObjectWithoutBrace, tokenVars(p.cur()),
			"object must be followed by {, found "+p.cur().String())
	}
	outer := p.pushComments()
	ret.Body = p.parseBraceBody()
	p.popComments(ret, outer)
	return ret
}

// parseBlock parses a block literal `{ params -> body }`.
//
// Whether the leading terms are parameters is only known once the token
// after them is seen: an expression is parsed first and then reclassified
// by what follows it. `{ x -> ... }` and `{ x, y -> ... }` have parameters,
// `{ x : T -> ... }` has a typed one, and anything else makes the expression
// the first body statement.
func (p *Parser) parseBlock() ast.Node {
	indentBefore := p.indentColumn
	restore := p.withBlocks(true)
	defer restore()

	open := p.cur()
	ret := ast.NewBlock(open.Span)
	outer := p.pushComments()

	p.advance()
	p.consumeBlankLines()
	p.takeLineComments()
	p.consumeBlankLines()

	bodyStart := p.cur()
	p.indentColumn = bodyStart.Span.Column

	switch p.cur().Type {
	case lexer.IDENT, lexer.NUMBER, lexer.STRING:
		p.parseBlockHead(ret)
	}

	if p.is(lexer.ARROW) {
		p.advance()
		p.consumeBlankLines()
		p.takeLineComments()
		p.consumeBlankLines()
		bodyStart = p.cur()
	} else {
		if len(ret.Params) > 0 {
			p.expect(lexer.ARROW)
		}
		p.consumeBlankLines()
	}

	if !p.is(lexer.RBRACE) && !p.done() && bodyStart.Span.Column <= indentBefore {
		p.failIndentation(diag.CodeBodyIndentation, indentBefore, bodyStart.Span.Column)
	}
	p.indentColumn = bodyStart.Span.Column

	for p.awaiting(lexer.RBRACE, open) {
		p.checkIndentation()
		last := p.cur()
		if n := p.parseStatement(); n != nil {
			ret.Body = append(ret.Body, n)
		}
		if lexer.Same(p.cur(), last) {
			p.fail(diag.CodeUnknownConstruct, tokenVars(p.cur()), "nothing consumed in block body")
		}
	}

	p.indentColumn = indentBefore
	p.popComments(ret, outer)
	p.next()
	return ret
}

// parseBlockHead parses the expression opening a block and files it as a
// parameter or a body statement depending on the token after it.
func (p *Parser) parseBlockHead(ret *ast.Block) {
	first := p.parseExpression()
	switch p.cur().Type {
	case lexer.BIND:
		p.next()
		value := p.parseExpression()
		ret.Body = append(ret.Body, ast.NewBind(first, value, first.Span()))
		if p.is(lexer.COMMA) || p.is(lexer.ARROW) {
			p.fail(diag.CodeInvalidBlockParameter, tokenVars(p.cur()),
				"a bind cannot be a block parameter")
		}
	case lexer.SEMICOLON:
		p.advance()
		if !p.atTerminator() {
			p.fail(diag.CodeSemicolonFollowedByCode, tokenVars(p.cur()),
				"semicolon must end the line")
		}
		ret.Body = append(ret.Body, first)
	case lexer.COLON:
		ret.Params = append(ret.Params, ast.NewTypedParameter(first, p.parseTypeAnnotation()))
	case lexer.COMMA, lexer.ARROW:
		ret.Params = append(ret.Params, ast.NewPlainParameter(first))
	default:
		ret.Body = append(ret.Body, first)
	}

	if p.is(lexer.COMMA) {
		open := p.cur()
		p.next()
		p.parseParameterList(lexer.ARROW, open, &ret.Params)
	}
}
