package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/diag"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/glog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func uriFor(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return "file://" + filepath.ToSlash(abs)
}

func newInitializedSession(t *testing.T, root string) *Session {
	t.Helper()
	s := New(glog.Nop(), root, nil)
	_, err := s.Initialize(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func TestInitialize_CompilesWorkspaceAndReturnsDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.groovy"), "class App {\n\tvoid run() {}\n}")

	s := newInitializedSession(t, root)
	assert.NotNil(t, s)
}

func TestHover_ReturnsInfoForClassDeclaration(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "App.groovy")
	writeFile(t, path, "class App {}")
	s := newInitializedSession(t, root)

	uri := uriFor(t, path)
	info, ok := s.Hover(uri, Position{Line: 0, Character: 6})
	require.True(t, ok)
	assert.Equal(t, "class App", info.Declaration)
}

func TestDidChange_RecompilesAndReturnsNewDiagnostics(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "App.groovy")
	writeFile(t, path, "class App {}")
	s := newInitializedSession(t, root)

	uri := uriFor(t, path)
	diags := s.DidChange(uri, "class App {\n\tvoid run() {\n")

	found := false
	for _, fu := range diags {
		for _, d := range fu.Diagnostics {
			if d.Severity == diag.Error {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestDocumentSymbols_ListsClassAndMethod(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "App.groovy")
	writeFile(t, path, "class App {\n\tvoid run() {}\n}")
	s := newInitializedSession(t, root)

	uri := uriFor(t, path)
	syms := s.DocumentSymbols(uri)
	var names []string
	for _, sym := range syms {
		names = append(names, sym.Name)
	}
	assert.Contains(t, names, "App")
	assert.Contains(t, names, "run")
}

func TestWorkspaceSymbols_FindsAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.groovy"), "class App {}")
	writeFile(t, filepath.Join(root, "Helper.groovy"), "class Helper {}")
	s := newInitializedSession(t, root)

	syms := s.WorkspaceSymbols("Help")
	require.NotEmpty(t, syms)
	assert.Equal(t, "Helper", syms[0].Name)
}

func TestFolding_ReturnsRangesForMultilineClass(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "App.groovy")
	writeFile(t, path, "class App {\n\tvoid run() {\n\t\tprintln 1\n\t}\n}")
	s := newInitializedSession(t, root)

	ranges := s.Folding(uriFor(t, path))
	assert.NotEmpty(t, ranges)
}

func TestDidClose_RemovesInMemoryOverrideAndFallsBackToDisk(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "App.groovy")
	writeFile(t, path, "class App {\n\tvoid run() {}\n}")
	s := newInitializedSession(t, root)

	uri := uriFor(t, path)
	s.DidOpen(uri, "class App {\n\tvoid run() {}\n}")
	s.DidClose(uri)

	syms := s.DocumentSymbols(uri)
	var names []string
	for _, sym := range syms {
		names = append(names, sym.Name)
	}
	assert.Contains(t, names, "run", "recompiling from disk should still see the persisted content")
}

func TestUpdateDependencies_FlattensDiagnosticsInURIOrder(t *testing.T) {
	root := t.TempDir()
	s := newInitializedSession(t, root)

	result := s.UpdateDependencies([]string{"some.jar"})
	assert.NotNil(t, result)
}

func TestOnConfigChange_UpdatesOptionsWithoutError(t *testing.T) {
	root := t.TempDir()
	s := newInitializedSession(t, root)

	assert.NotPanics(t, func() {
		s.OnConfigChange(context.Background(), map[string]interface{}{"replEnabled": true})
	})
}

func TestClasspathLookup_FindsFileUnderKnownSourceDirectory(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "extracted")
	classFile := filepath.Join(srcDir, "com", "example", "Foo.groovy")
	writeFile(t, classFile, "class Foo {}")

	s := New(glog.Nop(), root, nil)
	s.addSourceDirectories([]string{srcDir})

	uri, ok := s.classpathLookup()("com.example.Foo")
	require.True(t, ok)
	assert.Equal(t, uriFor(t, classFile), uri)
}

func TestClasspathLookup_UnknownClassReturnsFalse(t *testing.T) {
	root := t.TempDir()
	s := New(glog.Nop(), root, nil)
	s.addSourceDirectories([]string{t.TempDir()})

	_, ok := s.classpathLookup()("com.example.Missing")
	assert.False(t, ok)
}

func TestInitialize_SeedsClasspathLookupFromGradleSourceSets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build.gradle"), "")
	srcDir := filepath.Join(root, "src", "main", "groovy")
	javaFile := filepath.Join(srcDir, "Helper.java")
	writeFile(t, javaFile, "class Helper {}")

	s := newInitializedSession(t, root)

	uri, ok := s.classpathLookup()("Helper")
	require.True(t, ok)
	assert.Equal(t, uriFor(t, javaFile), uri)
}
