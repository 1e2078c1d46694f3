package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsWorkspaceMode(t *testing.T) {
	assert.Equal(t, ModeWorkspace, Default().CompilationMode)
}

func TestFromMap_RecognizedKeys(t *testing.T) {
	raw := map[string]interface{}{
		"compilationMode": "single-file",
		"replEnabled":     true,
		"jenkinsPipeline": true,
		"dslCatalogPaths": []interface{}{"a.groovy", "b.groovy"},
	}
	opts := FromMap(nil, raw)
	assert.Equal(t, ModeSingleFile, opts.CompilationMode)
	assert.True(t, opts.REPLEnabled)
	assert.True(t, opts.JenkinsPipeline)
	assert.Equal(t, []string{"a.groovy", "b.groovy"}, opts.DSLCatalogPaths)
}

func TestFromMap_WrongTypedValueIgnored(t *testing.T) {
	raw := map[string]interface{}{
		"replEnabled": "not-a-bool",
	}
	opts := FromMap(nil, raw)
	assert.False(t, opts.REPLEnabled)
}

func TestFromMap_UnknownKeyIgnored(t *testing.T) {
	raw := map[string]interface{}{"somethingElse": 42}
	opts := FromMap(nil, raw)
	assert.Equal(t, Default(), opts)
}

func TestLoadProjectFile_MissingFileReturnsInputUnchanged(t *testing.T) {
	dir := t.TempDir()
	opts := Options{CompilationMode: ModeSingleFile}
	result := LoadProjectFile(nil, dir, opts)
	assert.Equal(t, opts, result)
}

func TestLoadProjectFile_LayersUnderExplicitOptions(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".groovyls.yml"), []byte("replEnabled: true\ncompilationMode: single-file\n"), 0o644)
	require.NoError(t, err)

	explicit := Options{CompilationMode: ModeWorkspace}
	result := LoadProjectFile(nil, dir, explicit)

	// compilationMode was already set on the explicit options, so the file's
	// value does not override it.
	assert.Equal(t, ModeWorkspace, result.CompilationMode)
	// replEnabled was unset, so the file's value fills it in.
	assert.True(t, result.REPLEnabled)
}

func TestLoadProjectFile_MalformedFileReturnsInputUnchanged(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".groovyls.yml"), []byte("not: valid: yaml: ["), 0o644)
	require.NoError(t, err)

	opts := Options{CompilationMode: ModeSingleFile}
	result := LoadProjectFile(nil, dir, opts)
	assert.Equal(t, opts, result)
}
