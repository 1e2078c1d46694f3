// Package tracker builds a single deterministic pre-order index over a
// parsed Module: a parent map usable for scope lookups, a flat per-URI node
// list, and the class declarations reachable from that URI. It performs
// exactly one walk regardless of how many consumers later query it.
package tracker

import "github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"

// Index is the result of tracking one Module.
type Index struct {
	URI     string
	Module  *ast.Module
	Nodes   []ast.Node // pre-order, including the Module itself
	Classes []*ast.ClassNode
	parent  map[ast.Node]ast.Node
}

// Parent returns the immediate enclosing Node of n, or nil if n is the
// Module root or not present in this Index.
func (idx *Index) Parent(n ast.Node) ast.Node {
	return idx.parent[n]
}

// Ancestors returns n's ancestor chain, innermost first, not including n.
func (idx *Index) Ancestors(n ast.Node) []ast.Node {
	var out []ast.Node
	for cur := idx.Parent(n); cur != nil; cur = idx.Parent(cur) {
		out = append(out, cur)
	}
	return out
}

// EnclosingClass returns the nearest ClassNode ancestor of n, if any.
func (idx *Index) EnclosingClass(n ast.Node) *ast.ClassNode {
	for cur := n; cur != nil; cur = idx.Parent(cur) {
		if c, ok := cur.(*ast.ClassNode); ok {
			return c
		}
	}
	return nil
}

// EnclosingMethod returns the nearest MethodNode ancestor of n, if any.
func (idx *Index) EnclosingMethod(n ast.Node) *ast.MethodNode {
	for cur := n; cur != nil; cur = idx.Parent(cur) {
		if m, ok := cur.(*ast.MethodNode); ok {
			return m
		}
	}
	return nil
}

// Track performs one pre-order walk of mod, recording parent relationships
// and the flat node list. Nodes with invalid coordinates are still walked
// and recorded (so the parent map and ancestor chains stay complete); only
// position queries exclude them, and that filtering is the Position
// Finder's responsibility, not this package's.
func Track(mod *ast.Module) *Index {
	idx := &Index{
		URI:    mod.URI,
		Module: mod,
		parent: make(map[ast.Node]ast.Node),
	}
	idx.Nodes = append(idx.Nodes, mod)
	idx.walk(mod, nil)
	return idx
}

func (idx *Index) walk(n ast.Node, parent ast.Node) {
	if n == nil {
		return
	}
	if parent != nil {
		idx.parent[n] = parent
	}
	if n != idx.Module {
		idx.Nodes = append(idx.Nodes, n)
	}
	if cls, ok := n.(*ast.ClassNode); ok {
		idx.Classes = append(idx.Classes, cls)
	}
	ast.Visit(n, func(child ast.Node) {
		idx.walk(child, n)
	})
}
