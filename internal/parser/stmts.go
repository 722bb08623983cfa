package parser

import (
	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

// parseStatement parses one statement together with the comments leading
// it. It returns nil for a line holding nothing at all.
func (p *Parser) parseStatement() ast.Node {
	outer := p.pushComments()
	p.takeLineComments()

	start := p.cur()
	var ret ast.Node
	switch start.Type {
	case lexer.NEWLINE, lexer.EOF, lexer.RBRACE:
		ret = p.collapseComments()
	case lexer.COMMENT:
		ret = p.parseComment()
	case lexer.VAR:
		ret = p.parseVarDecl()
	case lexer.DEF:
		ret = p.parseDefDecl()
	case lexer.METHOD:
		ret = p.parseMethodDecl()
	case lexer.CLASS:
		ret = p.parseClassDecl()
	case lexer.INHERITS:
		ret = p.parseInherits()
	case lexer.IMPORT:
		ret = p.parseImport()
	case lexer.DIALECT:
		ret = p.parseDialect()
	case lexer.RETURN:
		ret = p.parseReturn()
	case lexer.TYPE:
		ret = p.parseTypeStatement()
	default:
		ret = p.parseExpression()
		if p.is(lexer.BIND) {
			p.next()
			value := p.parseExpression()
			ret = ast.NewBind(ret, value, start.Span)
		}
	}

	p.endStatement()
	for p.is(lexer.NEWLINE) {
		p.advance()
	}
	if ret != nil {
		ret.AttachComments(p.comments...)
	}
	p.comments = outer
	return ret
}

// endStatement checks that the statement just parsed is properly closed: an
// optional semicolon, then the end of the line, a comment or a closing brace.
func (p *Parser) endStatement() {
	if p.is(lexer.SEMICOLON) {
		p.advance()
		if !p.atTerminator() {
			p.fail(diag.CodeSemicolonFollowedByCode, tokenVars(p.cur()),
				"semicolon must end the line")
		}
	}
	if !p.atTerminator() {
		p.fail(diag.CodeUnexpectedAfterStatement, tokenVars(p.cur()),
			"unexpected "+p.cur().String()+" after statement")
	}
}

func (p *Parser) parseInherits() ast.Node {
	start := p.cur()
	p.next()
	from := p.parseExpression()
	return ast.NewInherits(from, start.Span)
}

func (p *Parser) parseImport() ast.Node {
	start := p.cur()
	p.next()
	p.expect(lexer.STRING)
	if p.cur().BeginsInterpolation {
		p.fail(diag.CodeImportInterpolation, nil, "import path cannot be interpolated")
	}
	path := p.parsePlainString()

	p.expect(lexer.AS)
	p.next()
	p.expect(lexer.IDENT)
	name := p.parseIdentifier()

	var typ ast.Node
	if p.is(lexer.COLON) {
		typ = p.parseTypeAnnotation()
	}
	return ast.NewImport(path, name, typ, start.Span)
}

func (p *Parser) parseDialect() ast.Node {
	start := p.cur()
	p.next()
	p.expect(lexer.STRING)
	if p.cur().BeginsInterpolation {
		p.fail(diag.CodeDialectInterpolation, nil, "dialect path cannot be interpolated")
	}
	return ast.NewDialect(p.parsePlainString(), start.Span)
}

func (p *Parser) parseReturn() ast.Node {
	start := p.cur()
	p.next()
	switch p.cur().Type {
	case lexer.NEWLINE, lexer.COMMENT, lexer.EOF, lexer.RBRACE, lexer.SEMICOLON:
		return ast.NewReturn(nil, start.Span)
	}
	return ast.NewReturn(p.parseExpression(), start.Span)
}
