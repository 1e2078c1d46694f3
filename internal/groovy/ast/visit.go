package ast

// Visit invokes visitor for every direct child of node. Children are
// grouped by kind, each group in source order: a Module yields its imports,
// then its classes, then its top-level statements; a ClassNode yields its
// fields, then its properties, then its methods. Declarations of different
// kinds that interleave in the source are not visited in source order.
// This is the single place that knows how to destructure each node kind;
// callers that need a full-tree walk (the tracker) drive this recursively.
func Visit(node Node, visitor func(Node)) {
	switch n := node.(type) {
	case nil:

	case *Module:
		for _, i := range n.Imports {
			visitor(i)
		}
		for _, c := range n.Classes {
			visitor(c)
		}
		for _, s := range n.Statements {
			visitor(s)
		}

	case *ImportNode:

	case *ClassNode:
		for _, f := range n.Fields {
			visitor(f)
		}
		for _, p := range n.Properties {
			visitor(p)
		}
		for _, m := range n.Methods {
			visitor(m)
		}

	case *MethodNode:
		for _, p := range n.Parameters {
			visitor(p)
		}
		if n.Body != nil {
			visitor(n.Body)
		}

	case *ParameterNode:
		if n.Default != nil {
			visitor(n.Default)
		}

	case *FieldNode:
		if n.Initial != nil {
			visitor(n.Initial)
		}

	case *PropertyNode:
		if n.Initial != nil {
			visitor(n.Initial)
		}

	case *Block:
		for _, s := range n.Statements {
			visitor(s)
		}

	case *ClosureExpression:
		for _, p := range n.Parameters {
			visitor(p)
		}
		if n.Body != nil {
			visitor(n.Body)
		}

	case *DeclarationExpression:
		if n.Variable != nil {
			visitor(n.Variable)
		}
		if n.RHS != nil {
			visitor(n.RHS)
		}

	case *BinaryExpression:
		if n.LHS != nil {
			visitor(n.LHS)
		}
		if n.RHS != nil {
			visitor(n.RHS)
		}

	case *VariableExpression:

	case *PropertyExpression:
		if n.Object != nil {
			visitor(n.Object)
		}

	case *MethodCallExpression:
		if n.Receiver != nil {
			visitor(n.Receiver)
		}
		for _, a := range n.Arguments {
			visitor(a)
		}

	case *ConstructorCallExpression:
		if n.TypeRef != nil {
			visitor(n.TypeRef)
		}
		for _, a := range n.Arguments {
			visitor(a)
		}

	case *ClassExpression:

	case *ConstantExpression:

	case *GStringExpression:
		for _, v := range n.Values {
			visitor(v)
		}

	case *ReturnStatement:
		if n.Value != nil {
			visitor(n.Value)
		}

	case *IfStatement:
		if n.Condition != nil {
			visitor(n.Condition)
		}
		if n.Then != nil {
			visitor(n.Then)
		}
		if n.Else != nil {
			visitor(n.Else)
		}

	case *ForStatement:
		if n.Variable != nil {
			visitor(n.Variable)
		}
		if n.Iterable != nil {
			visitor(n.Iterable)
		}
		if n.Body != nil {
			visitor(n.Body)
		}

	case *WhileStatement:
		if n.Condition != nil {
			visitor(n.Condition)
		}
		if n.Body != nil {
			visitor(n.Body)
		}

	case *TryStatement:
		if n.Body != nil {
			visitor(n.Body)
		}
		for _, c := range n.Catches {
			visitor(c)
		}
		if n.Finally != nil {
			visitor(n.Finally)
		}

	case *CatchClause:
		if n.Parameter != nil {
			visitor(n.Parameter)
		}
		if n.Body != nil {
			visitor(n.Body)
		}

	case *ExpressionStatement:
		if n.Expression != nil {
			visitor(n.Expression)
		}

	case *Invalid:

	default:
		panic("ast.Visit: unsupported node type")
	}
}
