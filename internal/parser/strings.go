package parser

import (
	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

// parseString parses a string literal. A literal containing `{expr}`
// segments becomes an InterpolatedString whose parts alternate between
// literal text and expressions, starting and ending with text.
func (p *Parser) parseString() ast.Node {
	tok := p.cur()
	if !tok.BeginsInterpolation {
		p.next()
		return ast.NewStringLit(tok.Value, tok.Span)
	}

	ret := ast.NewInterpolatedString(tok.Span)
	for tok.BeginsInterpolation {
		ret.Parts = append(ret.Parts, ast.NewStringLit(tok.Value, tok.Span))
		p.advance()
		ret.Parts = append(ret.Parts, p.parseExpression())
		if !p.is(lexer.RBRACE) {
			p.fail(diag.CodeUnterminatedInterpolation, tokenVars(p.cur()),
				"interpolation must be closed by }, found "+p.cur().String())
		}
		tok = p.ts.TreatAsString()
		p.checkIllegal(tok)
	}
	ret.Parts = append(ret.Parts, ast.NewStringLit(tok.Value, tok.Span))
	p.next()
	return ret
}

// parsePlainString parses a string literal known not to interpolate.
func (p *Parser) parsePlainString() *ast.StringLit {
	tok := p.cur()
	p.next()
	return ast.NewStringLit(tok.Value, tok.Span)
}
