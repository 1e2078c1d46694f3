// Package hover implements the Hover query provider: Position Finder to a
// hoverable node, then render its declaration text, doc comment, and
// resolved type.
package hover

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/position"
)

// Info is the rendered hover result.
type Info struct {
	Declaration string
	DocComment  string
	ResolvedType string
}

// At returns hover Info for (uri, line, col), or (Info{}, false) if no
// hoverable node covers that position.
func At(idx *tracker.Index, line, col int) (Info, bool) {
	n := position.Find(idx, line, col)
	if n == nil {
		return Info{}, false
	}
	return render(n), true
}

func render(n ast.Node) Info {
	switch v := n.(type) {
	case *ast.ClassNode:
		return Info{Declaration: "class " + v.Name, ResolvedType: v.Name}
	case *ast.MethodNode:
		return Info{
			Declaration: methodSignature(v),
			DocComment:  strings.Join(v.DocComment, "\n"),
			ResolvedType: v.ReturnType,
		}
	case *ast.FieldNode:
		return Info{
			Declaration: fmt.Sprintf("%s %s", orDef(v.Type), v.Name),
			DocComment:  strings.Join(v.DocComment, "\n"),
			ResolvedType: v.Type,
		}
	case *ast.PropertyNode:
		return Info{
			Declaration: fmt.Sprintf("%s %s", orDef(v.Type), v.Name),
			DocComment:  strings.Join(v.DocComment, "\n"),
			ResolvedType: v.Type,
		}
	case *ast.ParameterNode:
		return Info{Declaration: fmt.Sprintf("%s %s", orDef(v.Type), v.Name), ResolvedType: v.Type}
	case *ast.VariableExpression:
		return Info{Declaration: v.Name}
	case *ast.ConstantExpression:
		return Info{Declaration: fmt.Sprintf("%v", v.Value), ResolvedType: v.Type}
	case *ast.GStringExpression:
		return Info{Declaration: "GString", ResolvedType: "String"}
	default:
		return Info{}
	}
}

func orDef(t string) string {
	if t == "" {
		return "def"
	}
	return t
}

func methodSignature(m *ast.MethodNode) string {
	var params []string
	for _, p := range m.Parameters {
		params = append(params, fmt.Sprintf("%s %s", orDef(p.Type), p.Name))
	}
	return fmt.Sprintf("%s %s(%s)", orDef(m.ReturnType), m.Name, strings.Join(params, ", "))
}
