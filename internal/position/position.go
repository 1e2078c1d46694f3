// Package position implements the Position Finder: given a 0-based
// (line, character) coordinate, it returns the node that most tightly and
// most appropriately covers it, using a range-size metric and a priority
// lattice to break ties. Input coordinates are 0-based (matching the wire
// protocol); they are converted to the AST's 1-based coordinates at this
// package's boundary, mirroring the front-end's own convention split.
package position

import (
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
)

const (
	lineWeight = 1000
	midWeight  = 100
)

// Priority ranks a node kind for tie-breaking equally-sized covering
// candidates; higher wins.
type Priority int

const (
	PriorityLiteral Priority = iota
	PriorityReference
	PriorityCall
	PriorityDeclaration
	PriorityDefinition
)

// Find returns the smallest node of idx's Module that covers (line, col)
// in 0-based coordinates, or nil if no node covers it.
func Find(idx *tracker.Index, line, col int) ast.Node {
	target := ast.Coordinate{Line: line + 1, Column: col + 1}

	var best ast.Node
	var bestSize int
	var bestPriority Priority
	found := false

	for _, n := range idx.Nodes {
		r := n.Range()
		if !r.Valid() || !contains(r, target) {
			continue
		}
		size := rangeSize(r)
		pri := priorityOf(n)
		if !found || size < bestSize || (size == bestSize && pri > bestPriority) {
			best, bestSize, bestPriority, found = n, size, pri, true
		}
	}
	return best
}

func contains(r ast.Range, c ast.Coordinate) bool {
	if c.Line < r.Start.Line || c.Line > r.End.Line {
		return false
	}
	if c.Line == r.Start.Line && c.Column < r.Start.Column {
		return false
	}
	if c.Line == r.End.Line && c.Column > r.End.Column {
		return false
	}
	return true
}

// rangeSize implements the documented metric: for a single-line node it is
// the column span; for a multi-line node it folds the line span through
// both weights before adding the end column, so line-span dominates
// column-span in the ordering.
func rangeSize(r ast.Range) int {
	lineSpan := r.End.Line - r.Start.Line
	if lineSpan == 0 {
		return r.End.Column - r.Start.Column
	}
	return lineSpan*lineWeight + lineSpan*midWeight + r.End.Column
}

func priorityOf(n ast.Node) Priority {
	switch n.(type) {
	case *ast.ClassNode, *ast.MethodNode, *ast.FieldNode, *ast.PropertyNode, *ast.ParameterNode,
		*ast.ConstantExpression, *ast.GStringExpression:
		return PriorityDefinition
	case *ast.DeclarationExpression:
		return PriorityDeclaration
	case *ast.BinaryExpression:
		if n.(*ast.BinaryExpression).Operator == "=" {
			return PriorityDeclaration
		}
		return PriorityLiteral
	case *ast.MethodCallExpression:
		return PriorityCall
	case *ast.VariableExpression:
		return PriorityReference
	default:
		return PriorityLiteral
	}
}
