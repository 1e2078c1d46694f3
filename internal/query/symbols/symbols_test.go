package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/parser"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/symbol"
)

func buildIndex(t *testing.T, uri, src string) *symbol.Index {
	t.Helper()
	res := parser.Parse(uri, src)
	require.Empty(t, res.Diagnostics)
	idx := tracker.Track(res.Module)
	return symbol.Build(idx)
}

func TestDocument_ReturnsSymbolsDeclaredInURI(t *testing.T) {
	uri := "file:///A.groovy"
	idx := buildIndex(t, uri, "class A {\n\tString name\n\tvoid greet() {}\n}")

	syms := Document(idx, uri)
	require.NotEmpty(t, syms)
	var names []string
	for _, s := range syms {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "A")
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "greet")
}

func TestWorkspace_EmptyQueryReturnsCappedAll(t *testing.T) {
	idx := buildIndex(t, "file:///A.groovy", "class A {}")
	all := idx.All()

	got := Workspace(all, "")
	assert.Equal(t, all, got)
}

func TestWorkspace_SubstringMatchIsCaseFolded(t *testing.T) {
	idx := buildIndex(t, "file:///A.groovy", "class ApplicationContext {}")
	all := idx.All()

	got := Workspace(all, "application")
	require.Len(t, got, 1)
	assert.Equal(t, "ApplicationContext", got[0].Name)
}

func TestWorkspace_FallsBackToFuzzyWhenNoSubstringMatch(t *testing.T) {
	idx := buildIndex(t, "file:///A.groovy", "class ApplicationContext {}")
	all := idx.All()

	got := Workspace(all, "AppCtx")
	require.NotEmpty(t, got)
	assert.Equal(t, "ApplicationContext", got[0].Name)
}

func TestWorkspace_NoMatchReturnsEmpty(t *testing.T) {
	idx := buildIndex(t, "file:///A.groovy", "class ApplicationContext {}")
	all := idx.All()

	got := Workspace(all, "zzzzz")
	assert.Empty(t, got)
}
