package parser

import (
	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/lexer"
)

// pushComments starts a fresh pending list for a header or body and returns
// the outer list for popComments.
func (p *Parser) pushComments() []*ast.Comment {
	outer := p.comments
	p.comments = nil
	return outer
}

// popComments attaches the pending list to n and reinstates outer.
func (p *Parser) popComments(n ast.Node, outer []*ast.Comment) {
	n.AttachComments(p.comments...)
	p.comments = outer
}

func (p *Parser) commentNode() *ast.Comment {
	tok := p.cur()
	return ast.NewComment(tok.Value, tok.Span)
}

// parseComment consumes one comment token.
func (p *Parser) parseComment() *ast.Comment {
	c := p.commentNode()
	p.next()
	return c
}

// takeComments collects trailing comments met while reading a construct,
// honouring continuation lines after each one.
func (p *Parser) takeComments() {
	for p.is(lexer.COMMENT) {
		p.comments = append(p.comments, p.commentNode())
		p.advance()
		p.continueLine()
	}
}

// takeLineComments collects a run of whole-line comments. A blank line ends
// the run.
func (p *Parser) takeLineComments() {
	for p.is(lexer.COMMENT) {
		p.comments = append(p.comments, p.commentNode())
		p.advance()
		if !p.is(lexer.NEWLINE) {
			return
		}
		p.advance()
	}
}

// collapseComments turns the pending list into a comment-only statement:
// the first comment carries the rest as its chain.
func (p *Parser) collapseComments() ast.Node {
	if len(p.comments) == 0 {
		return nil
	}
	head := p.comments[0]
	head.AttachComments(p.comments[1:]...)
	p.comments = nil
	return head
}
