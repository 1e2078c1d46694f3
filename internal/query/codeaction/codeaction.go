// Package codeaction implements the Code Actions query provider: quick
// fixes for unresolved-class and unused-import diagnostics. It produces no
// formatting actions.
package codeaction

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/diag"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/symbol"
)

// Action is one proposed fix.
type Action struct {
	Title string
	Edits []Edit
}

// Edit is a single-range text replacement within one URI.
type Edit struct {
	URI         string
	Range       ast.Range
	NewText     string
	DeleteWhole bool
}

const unresolvedClassPrefix = "unable to resolve class "
const unusedImportPrefix = "unused import"

// For returns the quick fixes applicable to d within uri's Module,
// consulting the combined Symbol Index and a classpath class-name source
// for import proposals.
func For(uri string, mod *ast.Module, d diag.Diagnostic, allClasses []symbol.Symbol, classpathClasses []string) []Action {
	switch {
	case strings.HasPrefix(d.Message, unresolvedClassPrefix):
		name := strings.TrimPrefix(d.Message, unresolvedClassPrefix)
		name = strings.Trim(name, "\"' ")
		return proposeImports(uri, name, allClasses, classpathClasses)
	case strings.Contains(d.Message, unusedImportPrefix):
		return proposeRemoveImport(uri, mod, d)
	default:
		return nil
	}
}

func proposeImports(uri, className string, allClasses []symbol.Symbol, classpathClasses []string) []Action {
	var actions []Action
	seen := make(map[string]bool)
	for _, sym := range allClasses {
		if sym.Category != symbol.Class || sym.Name != className {
			continue
		}
		qualified := qualify(sym)
		if seen[qualified] {
			continue
		}
		seen[qualified] = true
		actions = append(actions, importAction(uri, qualified))
	}
	for _, fqcn := range classpathClasses {
		if lastSegment(fqcn) != className || seen[fqcn] {
			continue
		}
		seen[fqcn] = true
		actions = append(actions, importAction(uri, fqcn))
	}
	return actions
}

func importAction(uri, fqcn string) Action {
	return Action{
		Title: fmt.Sprintf("Import %s", fqcn),
		Edits: []Edit{{
			URI:     uri,
			Range:   ast.NewRange(1, 1, 1, 1),
			NewText: "import " + fqcn + "\n",
		}},
	}
}

func proposeRemoveImport(uri string, mod *ast.Module, d diag.Diagnostic) []Action {
	for _, imp := range mod.Imports {
		// Diagnostic ranges are 0-based; ast.Range is 1-based.
		if imp.Range().Start.Line-1 == d.Range.Start.Line {
			return []Action{{
				Title: "Remove unused import",
				Edits: []Edit{{URI: uri, Range: imp.Range(), DeleteWhole: true}},
			}}
		}
	}
	return nil
}

func qualify(sym symbol.Symbol) string {
	if cls, ok := sym.Node.(*ast.ClassNode); ok && cls.Package != "" {
		return cls.Package + "." + cls.Name
	}
	return sym.Name
}

func lastSegment(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
