package references

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/parser"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
)

func buildIndex(t *testing.T, uri, src string) *tracker.Index {
	t.Helper()
	res := parser.Parse(uri, src)
	require.Empty(t, res.Diagnostics)
	return tracker.Track(res.Module)
}

func TestFind_VariableReferencesMatchDeclaration(t *testing.T) {
	uri := "file:///A.groovy"
	idx := buildIndex(t, uri, "class A {\n\tvoid m() {\n\t\tdef x = 1\n\t\tdef y = x\n\t}\n}")

	var decl *ast.VariableExpression
	ast.Visit(idx.Classes[0].Methods[0].Body, func(n ast.Node) {
		findDeclared(n, &decl)
	})
	require.NotNil(t, decl, "expected to find the declaring occurrence of x")

	locs := Find(map[string]*tracker.Index{uri: idx}, uri, decl)
	require.Len(t, locs, 1)
	assert.Equal(t, uri, locs[0].URI)
}

func findDeclared(n ast.Node, out **ast.VariableExpression) {
	if v, ok := n.(*ast.VariableExpression); ok && v.Name == "x" && v.Declaration != nil {
		*out = v
	}
	ast.Visit(n, func(child ast.Node) { findDeclared(child, out) })
}

func TestFind_MethodReferencesAcrossFiles(t *testing.T) {
	uriA := "file:///A.groovy"
	uriB := "file:///B.groovy"
	idxA := buildIndex(t, uriA, "class A {\n\tvoid greet() {}\n}")
	idxB := buildIndex(t, uriB, "class B {\n\tvoid run() {\n\t\tgreet()\n\t}\n}")

	decl := idxA.Classes[0].Methods[0]
	locs := Find(map[string]*tracker.Index{uriA: idxA, uriB: idxB}, uriA, decl)

	var sawB bool
	for _, loc := range locs {
		if loc.URI == uriB {
			sawB = true
		}
	}
	assert.True(t, sawB)
}

func TestFind_UnknownNodeKindReturnsNil(t *testing.T) {
	uri := "file:///A.groovy"
	idx := buildIndex(t, uri, "class A {}")

	locs := Find(map[string]*tracker.Index{uri: idx}, uri, idx.Module)
	assert.Nil(t, locs)
}
