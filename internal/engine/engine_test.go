package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/glog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInitializeWorkspace_CompilesDiscoveredFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.groovy"), "class App {\n\tvoid run() {}\n}")

	e := New(glog.Nop(), root)
	_, err := e.InitializeWorkspace(nil)
	require.NoError(t, err)

	snap := e.Snapshot()
	require.NotNil(t, snap)
	require.NotNil(t, snap.Combined)
	assert.Len(t, snap.Combined.Modules, 1)
}

func TestInitializeWorkspace_SyntaxErrorProducesDiagnosticNotCrash(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Broken.groovy"), "class Broken {\n\tvoid m() {\n")

	e := New(glog.Nop(), root)
	result, err := e.InitializeWorkspace(nil)
	require.NoError(t, err)

	var found bool
	for _, ds := range result.Diagnostics {
		if len(ds) > 0 {
			found = true
		}
	}
	assert.True(t, found, "expected a diagnostic for the broken file")
}

func TestUpdateFile_RecompilesOnlyTheOwningContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.groovy"), "class App {}")

	e := New(glog.Nop(), root)
	_, err := e.InitializeWorkspace(nil)
	require.NoError(t, err)

	uri := "file://" + filepath.ToSlash(mustAbs(t, filepath.Join(root, "App.groovy")))
	e.UpdateFile(uri, "class App {\n\tvoid m() {}\n}")

	snap := e.Snapshot()
	mod, ok := snap.Combined.Modules[uri]
	require.True(t, ok)
	require.Len(t, mod.Classes, 1)
	assert.Len(t, mod.Classes[0].Methods, 1)
}

func TestUpdateDependencies_NoOpWhenClasspathUnchanged(t *testing.T) {
	root := t.TempDir()
	e := New(glog.Nop(), root)
	_, err := e.InitializeWorkspace(nil)
	require.NoError(t, err)

	before := e.Snapshot()
	result := e.UpdateDependencies(nil)
	after := e.Snapshot()

	assert.Empty(t, result.Diagnostics)
	assert.Same(t, before, after, "an unchanged classpath should not trigger a recompile")
}

func TestUpdateDependencies_RecompilesOnChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.groovy"), "class App {}")

	e := New(glog.Nop(), root)
	_, err := e.InitializeWorkspace(nil)
	require.NoError(t, err)

	before := e.Snapshot()
	e.UpdateDependencies([]string{"some.jar"})
	after := e.Snapshot()

	assert.NotSame(t, before, after)
}

func TestRemoveFile_DeletedFileDropsOutOfTheCombinedModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.groovy"), "class App {}")

	e := New(glog.Nop(), root)
	_, err := e.InitializeWorkspace(nil)
	require.NoError(t, err)

	uri := "file://" + filepath.ToSlash(mustAbs(t, filepath.Join(root, "App.groovy")))
	require.NoError(t, os.Remove(filepath.Join(root, "App.groovy")))
	e.RemoveFile(uri)

	snap := e.Snapshot()
	_, stillPresent := snap.Combined.Modules[uri]
	assert.False(t, stillPresent)
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
