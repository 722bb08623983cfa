package parser

import (
	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

// parseExpression parses an operand followed by any infix operator chain.
func (p *Parser) parseExpression() ast.Node {
	lhs := p.parseExpressionNoOp()
	if p.is(lexer.OPERATOR) {
		lhs = p.parseOperatorStream(lhs)
	}
	return lhs
}

// expressionRest continues an already parsed operand with dot requests and
// operators.
func (p *Parser) expressionRest(lhs ast.Node) ast.Node {
	lhs = p.expressionRestNoOp(lhs)
	if p.is(lexer.OPERATOR) {
		lhs = p.parseOperatorStream(lhs)
	}
	return lhs
}

func (p *Parser) expressionRestNoOp(lhs ast.Node) ast.Node {
	for p.is(lexer.DOT) {
		lhs = p.parseDotRequest(lhs)
	}
	return lhs
}

// parseExpressionNoOp parses a single operand: a parenthesised expression or
// a term, followed by dot requests.
func (p *Parser) parseExpressionNoOp() ast.Node {
	var lhs ast.Node
	if p.is(lexer.LPAREN) {
		lhs = p.parseParenthesised()
		// A parenthesised identifier is never promoted to a request.
	} else {
		lhs = p.promoteRequest(p.parseTerm())
	}
	return p.expressionRestNoOp(lhs)
}

func (p *Parser) parseParenthesised() ast.Node {
	p.next()
	inner := p.parseExpression()
	p.consumeBlankLines()
	if !p.is(lexer.RPAREN) {
		p.fail(diag.CodeUnclosedParenthesis, tokenVars(p.cur()),
			"expected ), found "+p.cur().String())
	}
	p.next()
	return inner
}

// promoteRequest turns an identifier into an implicit request when
// arguments or generic arguments follow it.
func (p *Parser) promoteRequest(n ast.Node) ast.Node {
	id, ok := n.(*ast.Identifier)
	if !ok {
		return n
	}
	if p.is(lexer.LPAREN) || p.is(lexer.LGENERIC) || p.hasDelimitedTerm() {
		return p.parseImplicitRequest(id)
	}
	return n
}

// parseTerm parses the smallest self-contained expression.
func (p *Parser) parseTerm() ast.Node {
	switch p.cur().Type {
	case lexer.IDENT:
		return p.parseIdentifier()
	case lexer.NUMBER:
		return p.parseNumber()
	case lexer.STRING:
		return p.parseString()
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.OBJECT:
		return p.parseObject()
	case lexer.TYPE:
		return p.parseTypeLiteral()
	case lexer.OPERATOR:
		return p.parsePrefixOperator()
	}
	p.fail(diag.CodeExpectedTerm, tokenVars(p.cur()), "expected a term, found "+p.cur().String())
	return nil
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	tok := p.cur()
	p.next()
	return ast.NewIdentifier(tok.Value, tok.Span)
}

func (p *Parser) parseNumber() ast.Node {
	tok := p.cur()
	p.next()
	value, _ := lexer.NumberValue(tok.Raw)
	return ast.NewNumber(tok.Raw, value, tok.Span)
}

// parsePrefixOperator parses `op operand`. The operand binds tighter than
// any infix operator: `-a + b` is `(-a) + b`.
func (p *Parser) parsePrefixOperator() ast.Node {
	op := p.cur()
	p.next()
	var operand ast.Node
	if p.is(lexer.LPAREN) {
		operand = p.parseParenthesised()
	} else {
		operand = p.expressionRestNoOp(p.promoteRequest(p.parseTerm()))
	}
	return ast.NewPrefixOperator(op.Value, operand, op.Span)
}

// parseImplicitRequest parses a receiverless request whose first name has
// already been read, e.g. `at 1 put 2` or `print("x")`.
func (p *Parser) parseImplicitRequest(id *ast.Identifier) ast.Node {
	ret := ast.NewImplicitRequest(id)
	part := ret.Parts[0]
	p.parseGenericArguments(&part.Generics)
	p.parseArguments(&part.Args)
	for p.is(lexer.IDENT) {
		part = ret.AddPart(p.parseIdentifier())
		p.parseGenericArguments(&part.Generics)
		p.parseArguments(&part.Args)
	}
	return ret
}

// parseDotRequest parses `.name args name args` against receiver.
func (p *Parser) parseDotRequest(receiver ast.Node) ast.Node {
	ret := ast.NewExplicitRequest(receiver, receiver.Span())
	p.next()
	if !p.is(lexer.IDENT) {
		p.fail(diag.CodeIdentifierAfterDot, tokenVars(p.cur()),
			"expected an identifier after ., found "+p.cur().String())
	}
	for p.is(lexer.IDENT) {
		part := ret.AddPart(p.parseIdentifier())
		p.parseGenericArguments(&part.Generics)
		p.parseArguments(&part.Args)
	}
	return ret
}
