package ast

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch.
// Comment chains are documentation, not children, and are never visited.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Module:
		walkList(n.Body, fn)

	case *ObjectLit:
		walkList(n.Body, fn)

	case *Block:
		walkList(n.Params, fn)
		walkList(n.Body, fn)

	case *TypeLit:
		for _, m := range n.Methods {
			Walk(m, fn)
		}

	case *VarDecl:
		walkDecl(n.Name, n.Type, n.Annotations, n.Value, fn)

	case *DefDecl:
		walkDecl(n.Name, n.Type, n.Annotations, n.Value, fn)

	case *MethodHeader:
		for _, p := range n.Parts {
			Walk(p, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}
		if n.Annotations != nil {
			Walk(n.Annotations, fn)
		}

	case *Part:
		walkList(n.Generics, fn)
		walkList(n.Params, fn)

	case *MethodDecl:
		if n.Header != nil {
			Walk(n.Header, fn)
		}
		walkList(n.Body, fn)

	case *ClassDecl:
		if n.BaseName != nil {
			Walk(n.BaseName, fn)
		}
		if n.Header != nil {
			Walk(n.Header, fn)
		}
		walkList(n.Body, fn)

	case *TypeMethod:
		if n.Header != nil {
			Walk(n.Header, fn)
		}

	case *TypeStatement:
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		for _, g := range n.GenericParams {
			Walk(g, fn)
		}
		Walk(n.Type, fn)

	case *PlainParameter:
		Walk(n.Term, fn)

	case *TypedParameter:
		Walk(n.Term, fn)
		Walk(n.Type, fn)

	case *VarArgsParameter:
		Walk(n.Param, fn)

	case *ImplicitRequest:
		for _, p := range n.Parts {
			Walk(p, fn)
		}

	case *ExplicitRequest:
		Walk(n.Receiver, fn)
		for _, p := range n.Parts {
			Walk(p, fn)
		}

	case *RequestPart:
		walkList(n.Generics, fn)
		walkList(n.Args, fn)

	case *InterpolatedString:
		walkList(n.Parts, fn)

	case *Operator:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *PrefixOperator:
		Walk(n.Operand, fn)

	case *Bind:
		Walk(n.Target, fn)
		Walk(n.Value, fn)

	case *Return:
		Walk(n.Value, fn)

	case *Inherits:
		Walk(n.From, fn)

	case *Import:
		if n.Path != nil {
			Walk(n.Path, fn)
		}
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		Walk(n.Type, fn)

	case *Dialect:
		if n.Path != nil {
			Walk(n.Path, fn)
		}

	case *Annotations:
		walkList(n.List, fn)

	case *Identifier, *Number, *StringLit, *Comment:
		// Leaf nodes
	}
}

func walkList(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		Walk(n, fn)
	}
}

func walkDecl(name *Identifier, typ Node, annotations *Annotations, value Node, fn func(Node) bool) {
	if name != nil {
		Walk(name, fn)
	}
	Walk(typ, fn)
	if annotations != nil {
		Walk(annotations, fn)
	}
	Walk(value, fn)
}
