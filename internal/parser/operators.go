package parser

import (
	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

const (
	precedenceDefault        = 0
	precedenceMultiplicative = 10
)

func precedence(op string) int {
	switch op {
	case "*", "/":
		return precedenceMultiplicative
	}
	return precedenceDefault
}

func isArithmetic(op string) bool {
	switch op {
	case "+", "-", "*", "/":
		return true
	}
	return false
}

// opEntry is a pending operator on the reduction stack.
type opEntry struct {
	tok  lexer.Token
	prec int
}

// parseOperatorStream parses `lhs op rhs op rhs ...` by precedence climbing
// over two levels. Operators of equal precedence associate to the left.
//
// One expression may only mix operators when all of them are arithmetic;
// any other mixture needs explicit parentheses.
func (p *Parser) parseOperatorStream(lhs ast.Node) ast.Node {
	operands := []ast.Node{lhs}
	var ops []opEntry

	firstOp := ""
	allArithmetic := true

	reduce := func() {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		operands = append(operands, ast.NewOperator(top.tok.Value, left, right, left.Span()))
	}

	for p.is(lexer.OPERATOR) {
		tok := p.cur()
		if tok.SpaceBefore != tok.SpaceAfter && tok.Value != ".." {
			p.fail(diag.CodeOperatorSpacing, map[string]string{"operator": tok.Value},
				"infix operator "+tok.Value+" must have whitespace on both sides or neither")
		}

		allArithmetic = allArithmetic && isArithmetic(tok.Value)
		if firstOp == "" {
			firstOp = tok.Value
		} else if !allArithmetic && tok.Value != firstOp {
			p.fail(diag.CodeMixedOperators, map[string]string{"operator": tok.Value},
				"mixed operators "+firstOp+" and "+tok.Value+" need parentheses")
		}
		p.next()

		prec := precedence(tok.Value)
		for len(ops) > 0 && prec <= ops[len(ops)-1].prec {
			reduce()
		}
		ops = append(ops, opEntry{tok: tok, prec: prec})
		operands = append(operands, p.parseExpressionNoOp())
	}

	for len(ops) > 0 {
		reduce()
	}
	return operands[0]
}
