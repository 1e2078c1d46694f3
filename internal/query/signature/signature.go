// Package signature implements Signature Help: locate the enclosing
// method call, list candidate overloads, and highlight the active
// parameter by counting commas already typed.
package signature

import (
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/position"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/symbol"
)

// Signature is one candidate overload.
type Signature struct {
	Label      string
	Parameters []string
}

// Help is the Signature Help result.
type Help struct {
	Signatures      []Signature
	ActiveParameter int
}

// At returns signature help for the method call enclosing (line, col), or
// (Help{}, false) if the cursor isn't inside a call's argument list.
func At(idx *tracker.Index, symbols *symbol.Index, line, col int) (Help, bool) {
	n := position.Find(idx, line, col)
	call := enclosingCall(idx, n)
	if call == nil {
		return Help{}, false
	}

	var sigs []Signature
	for _, sym := range symbols.Named(idx.URI, call.Name) {
		m, ok := sym.Node.(*ast.MethodNode)
		if !ok {
			continue
		}
		sigs = append(sigs, toSignature(m))
	}
	if len(sigs) == 0 {
		return Help{}, false
	}

	active := activeParameterIndex(call, line, col)
	return Help{Signatures: sigs, ActiveParameter: active}, true
}

func enclosingCall(idx *tracker.Index, n ast.Node) *ast.MethodCallExpression {
	for cur := n; cur != nil; cur = idx.Parent(cur) {
		if call, ok := cur.(*ast.MethodCallExpression); ok {
			return call
		}
	}
	return nil
}

func toSignature(m *ast.MethodNode) Signature {
	var params []string
	for _, p := range m.Parameters {
		params = append(params, p.Name)
	}
	return Signature{Label: m.Name, Parameters: params}
}

// activeParameterIndex counts how many argument boundaries of call end
// before the 0-based (line, col) cursor position.
func activeParameterIndex(call *ast.MethodCallExpression, line, col int) int {
	cursor := ast.Coordinate{Line: line + 1, Column: col + 1}
	active := 0
	for i, arg := range call.Arguments {
		end := arg.Range().End
		if before(end, cursor) {
			active = i + 1
		}
	}
	return active
}

func before(a, b ast.Coordinate) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column <= b.Column
}
