// Package symbols implements the Document/Workspace Symbols query
// providers: a full walk of one URI's Symbol Index for document symbols,
// and case-folded substring matching with a fuzzy-subsequence fallback for
// workspace-wide search.
package symbols

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/symbol"
)

const (
	workspaceUnfilteredCap = 100
	workspaceFilteredCap   = 50
)

// Document returns every Symbol declared in uri, in index order (document
// symbols are unlimited).
func Document(idx *symbol.Index, uri string) []symbol.Symbol {
	return idx.ForURI(uri)
}

// Workspace searches every symbol across all URIs idx was built from,
// using case-folded substring matching first, then falling back to a
// fuzzy-subsequence match if the substring search finds nothing.
func Workspace(allSymbols []symbol.Symbol, query string) []symbol.Symbol {
	if query == "" {
		return cap2(allSymbols, workspaceUnfilteredCap)
	}

	lowerQuery := strings.ToLower(query)
	var substringMatches []symbol.Symbol
	for _, s := range allSymbols {
		if strings.Contains(strings.ToLower(s.Name), lowerQuery) {
			substringMatches = append(substringMatches, s)
		}
	}
	if len(substringMatches) > 0 {
		return cap2(substringMatches, workspaceFilteredCap)
	}

	names := make([]string, len(allSymbols))
	for i, s := range allSymbols {
		names[i] = s.Name
	}
	matches := fuzzy.Find(query, names)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	var out []symbol.Symbol
	for _, m := range matches {
		out = append(out, allSymbols[m.Index])
	}
	return cap2(out, workspaceFilteredCap)
}

func cap2(syms []symbol.Symbol, limit int) []symbol.Symbol {
	if len(syms) <= limit {
		return syms
	}
	return syms[:limit]
}
