// Package completion implements the Completion query provider: the
// keyword set, symbols in scope (filtered by enclosing class/method),
// and an external GDK/Jenkins catalog, merged and filtered by trigger
// context.
package completion

import (
	"strings"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/lexer"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/position"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/symbol"
)

// TriggerCharacters is the set of characters the session registers to
// trigger completion requests.
var TriggerCharacters = []string{".", ":", "=", "*"}

// Item is one completion candidate.
type Item struct {
	Label string
	Kind  string // "keyword", "variable", "parameter", "method", "field", "property", "class", "import", "catalog"
}

// Catalog is the external GDK/Jenkins DSL catalog collaborator; out of
// scope per spec, consulted only through this narrow interface.
type Catalog interface {
	EntriesFor(receiverType string) []Item
}

// At returns completion items in scope at (uri, line, col). existingKeys,
// when non-nil, removes map-key completions already present at the call
// site (spec §4.12's map-key subtraction rule).
func At(idx *tracker.Index, symbols *symbol.Index, catalog Catalog, line, col int, existingKeys map[string]bool) []Item {
	items := keywordItems()

	n := position.Find(idx, line, col)
	enclosingClass := idx.EnclosingClass(n)
	enclosingMethod := idx.EnclosingMethod(n)

	for _, sym := range symbols.ForURI(idx.URI) {
		if !inScope(sym, enclosingClass, enclosingMethod) {
			continue
		}
		if existingKeys != nil && existingKeys[sym.Name] {
			continue
		}
		items = append(items, Item{Label: sym.Name, Kind: sym.Category.String()})
	}

	if catalog != nil {
		receiverType := ""
		if enclosingClass != nil {
			receiverType = enclosingClass.Name
		}
		items = append(items, catalog.EntriesFor(receiverType)...)
	}

	return items
}

func inScope(sym symbol.Symbol, cls *ast.ClassNode, method *ast.MethodNode) bool {
	switch sym.Category {
	case symbol.Field, symbol.Property, symbol.Method:
		return sym.Owner == nil || sym.Owner == cls
	case symbol.Parameter, symbol.Variable:
		return true // a coarse scoping; precise block-scoping is left to the resolver's tie-break rules
	default:
		return true
	}
}

func keywordItems() []Item {
	var items []Item
	for kw := range keywordSet {
		items = append(items, Item{Label: kw, Kind: "keyword"})
	}
	return items
}

var keywordSet = buildKeywordSet()

func buildKeywordSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, kw := range []string{
		"package", "import", "class", "interface", "trait", "enum", "extends",
		"implements", "def", "static", "final", "as", "public", "protected",
		"private", "new", "return", "if", "else", "for", "while", "try",
		"catch", "finally", "throw", "true", "false", "null", "in",
		"instanceof", "void", "this", "super", "break", "continue", "switch",
		"case", "default",
	} {
		if lexer.IsKeyword(kw) {
			set[kw] = struct{}{}
		}
	}
	return set
}

// IsMapKeyPosition reports whether col in line's text sits inside a map
// literal key position, a helper the session uses to decide whether to
// pass existingKeys to At.
func IsMapKeyPosition(lineText string, col int) bool {
	if col > len(lineText) {
		return false
	}
	prefix := lineText[:col]
	return strings.Contains(prefix, "[") && !strings.Contains(prefix, "]")
}
