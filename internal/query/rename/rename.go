// Package rename implements the Rename query provider: resolve the
// definition under the cursor, find every reference to it, and produce one
// text edit per occurrence (including the declaration itself).
package rename

import (
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/references"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/resolve"
)

// Edit is one occurrence to replace with newName.
type Edit struct {
	URI   string
	Range ast.Range
}

// Plan is the full set of edits a rename applies, keyed by URI.
type Plan struct {
	NewName string
	Edits   []Edit
}

// Compute resolves the definition at (uri, line, col) via the Definition
// Resolver, then finds every reference to it, producing one Edit per
// occurrence plus the declaration's own name range.
func Compute(ws resolve.Workspace, classpath resolve.ClasspathLookup, trackers map[string]*tracker.Index, uri string, line, col int, newName string) (Plan, error) {
	res, err := resolve.Resolve(ws, classpath, uri, line, col)
	if err != nil {
		return Plan{}, err
	}
	if res.Kind != resolve.Source {
		return Plan{}, nil
	}

	plan := Plan{NewName: newName}
	plan.Edits = append(plan.Edits, Edit{URI: res.URI, Range: declRange(res.Node)})

	for _, loc := range references.Find(trackers, res.URI, res.Node) {
		plan.Edits = append(plan.Edits, Edit{URI: loc.URI, Range: loc.Range})
	}
	return plan, nil
}

// declRange prefers a declaration's name-only range (so renaming a method
// does not rewrite its whole signature) and falls back to the node's full
// range when no narrower one is tracked.
func declRange(n ast.Node) ast.Range {
	switch v := n.(type) {
	case *ast.ClassNode:
		return v.NameRange
	case *ast.MethodNode:
		return v.NameRange
	case *ast.FieldNode:
		return v.NameRange
	case *ast.PropertyNode:
		return v.NameRange
	default:
		return n.Range()
	}
}
