package parser

import (
	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

// parseVarDecl parses `var name [: T] [is a, b] [:= value]`.
func (p *Parser) parseVarDecl() ast.Node {
	start := p.cur()
	p.next()
	p.expect(lexer.IDENT)
	name := p.parseIdentifier()

	var typ ast.Node
	if p.is(lexer.COLON) {
		typ = p.parseTypeAnnotation()
	}
	annotations := p.parseAnnotations()

	var value ast.Node
	switch {
	case p.is(lexer.BIND):
		p.next()
		value = p.parseExpression()
	case p.is(lexer.ASSIGN):
		p.fail(diag.CodeVarUsesBind, nil, "var must use := for its value")
	}
	return ast.NewVarDecl(name, typ, annotations, value, start.Span)
}

// parseDefDecl parses `def name [: T] [is a, b] = value`.
func (p *Parser) parseDefDecl() ast.Node {
	start := p.cur()
	p.next()
	p.expect(lexer.IDENT)
	name := p.parseIdentifier()

	var typ ast.Node
	if p.is(lexer.COLON) {
		typ = p.parseTypeAnnotation()
	}
	annotations := p.parseAnnotations()

	if p.is(lexer.BIND) {
		p.fail(diag.CodeDefUsesEquals, nil, "def must use = for its value")
	}
	p.expect(lexer.ASSIGN)
	p.next()
	value := p.parseExpression()
	return ast.NewDefDecl(name, typ, annotations, value, start.Span)
}

func (p *Parser) parseTypeAnnotation() ast.Node {
	p.expect(lexer.COLON)
	p.next()
	return p.parseExpression()
}

// parseAnnotations parses an optional `is a, b` clause. A brace after an
// annotation always opens the enclosing body.
func (p *Parser) parseAnnotations() *ast.Annotations {
	if !p.is(lexer.IS) {
		return nil
	}
	ret := ast.NewAnnotations(p.cur().Span)
	p.next()
	for p.is(lexer.IDENT) {
		restore := p.withBlocks(false)
		ret.List = append(ret.List, p.parseExpression())
		restore()
		if !p.is(lexer.COMMA) {
			break
		}
		p.next()
	}
	return ret
}

func (p *Parser) parseMethodDecl() ast.Node {
	start := p.cur()
	p.next()
	header := p.parseMethodHeader()

	p.expect(lexer.LBRACE)
	ret := ast.NewMethodDecl(header, start.Span)
	outer := p.pushComments()
	ret.Body = p.parseBraceBody()
	p.popComments(ret, outer)
	return ret
}

// parseClassDecl parses `class base.header { body }`.
func (p *Parser) parseClassDecl() ast.Node {
	start := p.cur()
	p.next()
	p.expect(lexer.IDENT)
	base := p.parseIdentifier()
	p.expect(lexer.DOT)
	p.next()
	header := p.parseMethodHeader()

	p.expect(lexer.LBRACE)
	ret := ast.NewClassDecl(base, header, start.Span)
	outer := p.pushComments()
	ret.Body = p.parseBraceBody()
	p.popComments(ret, outer)
	return ret
}

// parseMethodHeader parses a method signature: either a single operator
// part, or identifier parts each with optional generic and ordinary
// parameter lists; then an optional return type and annotations.
func (p *Parser) parseMethodHeader() *ast.MethodHeader {
	header := ast.NewMethodHeader(p.cur().Span)

	if p.is(lexer.OPERATOR) {
		op := p.cur()
		p.next()
		part := header.AddPart(op.Value, op.Span)
		p.parseHeaderParams(part)
	} else {
		p.expect(lexer.IDENT)
		for first := true; p.is(lexer.IDENT); first = false {
			id := p.cur()
			name := id.Value
			p.next()
			switch {
			case p.is(lexer.BIND):
				name += ":="
				p.next()
			case first && name == "prefix" && p.is(lexer.OPERATOR):
				name += p.cur().Value
				p.next()
			}
			part := header.AddPart(name, id.Span)
			if p.is(lexer.LGENERIC) {
				open := p.cur()
				p.next()
				p.parseParameterList(lexer.RGENERIC, open, &part.Generics)
				p.next()
			}
			p.parseHeaderParams(part)
		}
	}

	if p.is(lexer.ARROW) {
		p.next()
		restore := p.withBlocks(false)
		header.ReturnType = p.parseExpression()
		restore()
	}
	header.Annotations = p.parseAnnotations()
	return header
}

func (p *Parser) parseHeaderParams(part *ast.Part) {
	if !p.is(lexer.LPAREN) {
		return
	}
	open := p.cur()
	p.next()
	p.parseParameterList(lexer.RPAREN, open, &part.Params)
	p.next()
}

// parseTypeStatement parses `type Name<A, B> = T`. A `type` keyword not
// followed by a name is a type literal expression.
func (p *Parser) parseTypeStatement() ast.Node {
	if p.ts.Peek().Type != lexer.IDENT {
		return p.parseExpression()
	}
	start := p.cur()
	p.next()
	name := p.parseIdentifier()

	var generics []*ast.Identifier
	switch {
	case p.is(lexer.LGENERIC):
		p.next()
		for p.is(lexer.IDENT) {
			generics = append(generics, p.parseIdentifier())
			if p.is(lexer.COMMA) {
				p.next()
			}
		}
		if !p.is(lexer.RGENERIC) {
			p.fail(diag.CodeUnterminatedGenericParams, tokenVars(p.cur()),
				"generic parameters must end with >")
		}
		p.next()
	case p.is(lexer.OPERATOR) && p.cur().Value == "<":
		p.fail(diag.CodeSpacedGenericBracket, nil,
			"generic parameters must follow the type name without a space")
	case p.is(lexer.OPERATOR):
		p.fail(diag.CodeOperatorInTypeName, map[string]string{"operator": p.cur().Value},
			"unexpected operator "+p.cur().Value+" in type name")
	}

	p.expect(lexer.ASSIGN)
	p.next()

	litStart := p.cur()
	var typ ast.Node
	switch {
	case p.is(lexer.TYPE):
		p.next()
	case p.is(lexer.IDENT):
		id := p.parseIdentifier()
		typ = id
		if p.is(lexer.LGENERIC) {
			typ = p.parseImplicitRequest(id)
		}
	}
	if typ == nil {
		typ = p.parseTypeBodyLiteral(litStart)
	}
	typ = p.expressionRest(typ)
	return ast.NewTypeStatement(name, generics, typ, start.Span)
}

// parseTypeLiteral parses `type { methods }` in expression position.
func (p *Parser) parseTypeLiteral() ast.Node {
	start := p.cur()
	p.next()
	return p.parseTypeBodyLiteral(start)
}

func (p *Parser) parseTypeBodyLiteral(start lexer.Token) *ast.TypeLit {
	p.expect(lexer.LBRACE)
	outer := p.pushComments()
	methods := p.parseTypeBody()
	ret := ast.NewTypeLit(methods, start.Span)
	p.popComments(ret, outer)
	return ret
}

// parseTypeBody parses the method signatures between the braces of a type
// literal, one per line at a common indentation.
func (p *Parser) parseTypeBody() []*ast.TypeMethod {
	indentBefore := p.indentColumn
	open := p.cur()
	p.next()
	p.takeLineComments()
	p.consumeBlankLines()
	if p.is(lexer.RBRACE) {
		p.next()
		return nil
	}

	p.indentColumn = p.cur().Span.Column
	if p.indentColumn <= indentBefore && !p.done() {
		p.failIndentation(diag.CodeTypeBodyIndentation, indentBefore, p.indentColumn)
	}

	var methods []*ast.TypeMethod
	for p.awaiting(lexer.RBRACE, open) {
		p.checkIndentation()
		outer := p.pushComments()
		p.takeLineComments()
		header := p.parseMethodHeader()
		tm := ast.NewTypeMethod(header, header.Span())
		methods = append(methods, tm)
		p.popComments(tm, outer)
		p.consumeBlankLines()
	}

	p.indentColumn = indentBefore
	p.next()
	return methods
}
