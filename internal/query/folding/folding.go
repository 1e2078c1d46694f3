// Package folding implements the Folding query provider: ranges for runs
// of ≥3 consecutive imports, class/method/closure bodies, and control-flow
// blocks that span at least one additional line.
package folding

import (
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
)

// Range is one foldable span, by 1-based start/end line (inclusive).
type Range struct {
	StartLine, EndLine int
	Kind               string // "imports", "class", "method", "closure", "block"
}

// Compute returns every foldable range in mod.
func Compute(mod *ast.Module) []Range {
	var out []Range
	out = append(out, importRuns(mod.Imports)...)
	for _, cls := range mod.Classes {
		out = append(out, foldIfMultiline(cls.Range(), "class")...)
		for _, m := range cls.Methods {
			if m.Body != nil {
				out = append(out, foldIfMultiline(m.Body.Range(), "method")...)
				walkBlocks(m.Body, &out)
			}
		}
	}
	for _, stmt := range mod.Statements {
		walkStatement(stmt, &out)
	}
	return out
}

func importRuns(imports []*ast.ImportNode) []Range {
	var out []Range
	i := 0
	for i < len(imports) {
		j := i
		for j+1 < len(imports) && imports[j+1].Range().Start.Line == imports[j].Range().Start.Line+1 {
			j++
		}
		if j-i+1 >= 3 {
			out = append(out, Range{
				StartLine: imports[i].Range().Start.Line,
				EndLine:   imports[j].Range().Start.Line,
				Kind:      "imports",
			})
		}
		i = j + 1
	}
	return out
}

func foldIfMultiline(r ast.Range, kind string) []Range {
	if r.End.Line-r.Start.Line < 1 {
		return nil
	}
	return []Range{{StartLine: r.Start.Line, EndLine: r.End.Line, Kind: kind}}
}

func walkStatement(n ast.Node, out *[]Range) {
	switch v := n.(type) {
	case *ast.Block:
		*out = append(*out, foldIfMultiline(v.Range(), "block")...)
		walkBlocks(v, out)
	case *ast.IfStatement:
		if v.Then != nil {
			*out = append(*out, foldIfMultiline(v.Then.Range(), "block")...)
			walkBlocks(v.Then, out)
		}
		if v.Else != nil {
			walkStatement(v.Else, out)
		}
	case *ast.ForStatement:
		if v.Body != nil {
			*out = append(*out, foldIfMultiline(v.Body.Range(), "block")...)
			walkBlocks(v.Body, out)
		}
	case *ast.WhileStatement:
		if v.Body != nil {
			*out = append(*out, foldIfMultiline(v.Body.Range(), "block")...)
			walkBlocks(v.Body, out)
		}
	case *ast.TryStatement:
		if v.Body != nil {
			*out = append(*out, foldIfMultiline(v.Body.Range(), "block")...)
			walkBlocks(v.Body, out)
		}
		for _, c := range v.Catches {
			if c.Body != nil {
				*out = append(*out, foldIfMultiline(c.Body.Range(), "block")...)
				walkBlocks(c.Body, out)
			}
		}
		if v.Finally != nil {
			*out = append(*out, foldIfMultiline(v.Finally.Range(), "block")...)
			walkBlocks(v.Finally, out)
		}
	case *ast.ExpressionStatement:
		walkExpression(v.Expression, out)
	}
}

func walkBlocks(b *ast.Block, out *[]Range) {
	for _, stmt := range b.Statements {
		walkStatement(stmt, out)
	}
}

func walkExpression(n ast.Node, out *[]Range) {
	if c, ok := n.(*ast.ClosureExpression); ok && c.Body != nil {
		*out = append(*out, foldIfMultiline(c.Range(), "closure")...)
		walkBlocks(c.Body, out)
	}
}
