// Package references implements the References query provider: given a
// declaration, find every reference to it by reverse-scanning the combined
// AST for VariableExpressions and MethodCallExpressions whose resolved
// name matches.
package references

import (
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
)

// Location identifies one reference occurrence.
type Location struct {
	URI   string
	Range ast.Range
}

// Find returns every reference to decl (a declaration Node, typically the
// output of the Definition Resolver) across every indexed URI's tracker.
func Find(trackers map[string]*tracker.Index, declURI string, decl ast.Node) []Location {
	declName, declKind := identityOf(decl)
	if declName == "" {
		return nil
	}

	var out []Location
	for uri, idx := range trackers {
		for _, n := range idx.Nodes {
			if matches(n, declKind, declName, idx, declURI, decl) {
				out = append(out, Location{URI: uri, Range: n.Range()})
			}
		}
	}
	return out
}

type nodeKind int

const (
	kindVariable nodeKind = iota
	kindMethod
	kindClass
	kindField
	kindOther
)

func identityOf(n ast.Node) (name string, kind nodeKind) {
	switch v := n.(type) {
	case *ast.VariableExpression:
		return v.Name, kindVariable
	case *ast.ParameterNode:
		return v.Name, kindVariable
	case *ast.MethodNode:
		return v.Name, kindMethod
	case *ast.ClassNode:
		return v.Name, kindClass
	case *ast.FieldNode:
		return v.Name, kindField
	case *ast.PropertyNode:
		return v.Name, kindField
	default:
		return "", kindOther
	}
}

func matches(n ast.Node, declKind nodeKind, declName string, idx *tracker.Index, declURI string, decl ast.Node) bool {
	switch v := n.(type) {
	case *ast.VariableExpression:
		if declKind != kindVariable || v.Name != declName {
			return false
		}
		if v.Declaration != nil {
			return v.Declaration == decl
		}
		return true
	case *ast.MethodCallExpression:
		return declKind == kindMethod && v.Name == declName
	case *ast.ClassExpression:
		return declKind == kindClass && v.Name == declName
	case *ast.PropertyExpression:
		return declKind == kindField && v.Name == declName
	default:
		return false
	}
}
