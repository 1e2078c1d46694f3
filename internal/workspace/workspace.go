// Package workspace implements the Compilation Context Manager: it
// partitions a workspace root into compilation contexts (Gradle/Maven
// source sets, build scripts, standalone files, or a single fallback
// context), and answers which context owns a given file.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ContextType discriminates how a CompilationContext was discovered.
type ContextType int

const (
	SourceSet ContextType = iota
	Standalone
	BuildScript
)

// Context mirrors spec §3's CompilationContext entity.
type Context struct {
	Name         string
	Files        map[string]struct{} // URIs
	Classpath    []string
	Dependencies map[string]struct{} // names of contexts this one depends on
	Type         ContextType
}

func newContext(name string, typ ContextType) *Context {
	return &Context{
		Name:         name,
		Files:        make(map[string]struct{}),
		Dependencies: make(map[string]struct{}),
		Type:         typ,
	}
}

var excludedDirNames = map[string]struct{}{
	".git": {}, ".hg": {}, ".svn": {}, ".gradle": {}, ".idea": {},
	"build": {}, "out": {}, "target": {}, "node_modules": {},
}

var buildScriptNames = map[string]struct{}{
	"build.gradle": {}, "build.gradle.kts": {},
	"settings.gradle": {}, "settings.gradle.kts": {},
}

// Manager holds the discovered contexts for one workspace root.
type Manager struct {
	root     string
	contexts map[string]*Context
	fileToCtx map[string]string // uri -> context name (SourceSet/Standalone)
	order    []string           // topological order of Dependencies DAG
}

// Discover walks root and builds the contexts per spec §4.2's algorithm:
// build-tool source sets first (via sourceSets, already resolved by the
// caller's depresolve.Resolution), then standalone files, then build
// scripts, falling back to a single "workspace" context if nothing else
// was discovered.
func Discover(root string, sourceSetDirs map[string][]string) (*Manager, error) {
	m := &Manager{
		root:      root,
		contexts:  make(map[string]*Context),
		fileToCtx: make(map[string]string),
	}

	for name, dirs := range sourceSetDirs {
		ctx := newContext(name, SourceSet)
		m.contexts[name] = ctx
		for _, dir := range dirs {
			files, err := groovyFilesUnder(dir)
			if err != nil {
				continue
			}
			for _, f := range files {
				if _, claimed := m.fileToCtx[f]; claimed {
					continue // first discovery order wins
				}
				ctx.Files[f] = struct{}{}
				m.fileToCtx[f] = name
			}
		}
	}

	allGroovy, err := groovyFilesUnder(root)
	if err != nil {
		return nil, err
	}

	standalone := newContext("standalone", Standalone)
	buildScripts := newContext("build-scripts", BuildScript)
	for _, f := range allGroovy {
		if _, claimed := m.fileToCtx[f]; claimed {
			continue
		}
		standalone.Files[f] = struct{}{}
		m.fileToCtx[f] = standalone.Name
	}
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if _, ok := buildScriptNames[d.Name()]; ok {
			buildScripts.Files[toURI(path)] = struct{}{}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if len(standalone.Files) > 0 {
		m.contexts[standalone.Name] = standalone
	}
	if len(buildScripts.Files) > 0 {
		m.contexts[buildScripts.Name] = buildScripts
	}

	wireSourceSetDependencies(m.contexts)

	if len(m.contexts) == 0 {
		fallback := newContext("workspace", SourceSet)
		dirSet := make(map[string]struct{})
		for _, f := range allGroovy {
			fallback.Files[f] = struct{}{}
			dirSet[filepath.Dir(fromURI(f))] = struct{}{}
		}
		for d := range dirSet {
			fallback.Classpath = append(fallback.Classpath, d)
		}
		m.contexts[fallback.Name] = fallback
		for f := range fallback.Files {
			m.fileToCtx[f] = fallback.Name
		}
	}

	m.order = topoOrder(m.contexts)
	return m, nil
}

// GetContextForFile returns the name of the context owning uri, if any.
func (m *Manager) GetContextForFile(uri string) (string, bool) {
	name, ok := m.fileToCtx[uri]
	return name, ok
}

// Context returns the named context, if present.
func (m *Manager) Context(name string) (*Context, bool) {
	c, ok := m.contexts[name]
	return c, ok
}

// Contexts returns every context in the manager.
func (m *Manager) Contexts() map[string]*Context { return m.contexts }

// Order returns the context names in topological dependency order: a
// context never precedes one it depends on.
func (m *Manager) Order() []string { return m.order }

// wireSourceSetDependencies encodes the one dependency rule every Gradle/
// Maven Groovy layout shares: a non-"main" source set (test,
// integrationTest, ...) depends on "main", so Order places it after
// "main". Contexts that aren't source sets (standalone files, build
// scripts) never depend on anything.
func wireSourceSetDependencies(contexts map[string]*Context) {
	main, ok := contexts["main"]
	if !ok {
		return
	}
	for name, ctx := range contexts {
		if name == "main" || ctx.Type != SourceSet {
			continue
		}
		ctx.Dependencies[main.Name] = struct{}{}
	}
}

func topoOrder(contexts map[string]*Context) []string {
	visited := make(map[string]bool)
	var order []string
	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		if c, ok := contexts[name]; ok {
			for dep := range c.Dependencies {
				visit(dep)
			}
		}
		order = append(order, name)
	}
	for name := range contexts {
		visit(name)
	}
	return order
}

func groovyFilesUnder(dir string) ([]string, error) {
	var out []string
	visited := make(map[string]struct{})
	if _, err := os.Stat(dir); err != nil {
		return nil, nil
	}
	err := walkBreakingCycles(dir, visited, func(path string) {
		if strings.HasSuffix(path, ".groovy") || strings.HasSuffix(path, ".gradle") {
			out = append(out, toURI(path))
		}
	})
	return out, err
}

// walkBreakingCycles walks dir, tracking visited directory identities
// (device+inode where available) to break symlink cycles, per spec §4.2.
func walkBreakingCycles(dir string, visited map[string]struct{}, onFile func(path string)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if _, excluded := excludedDirNames[e.Name()]; excluded {
				continue
			}
			key, err := dirIdentity(full)
			if err != nil {
				continue
			}
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}
			if err := walkBreakingCycles(full, visited, onFile); err != nil {
				return err
			}
			continue
		}
		onFile(full)
	}
	return nil
}

// dirIdentity returns a key that is stable across distinct paths reaching
// the same underlying directory (the case a symlink cycle produces), using
// the device+inode pair when the platform exposes one.
func dirIdentity(path string) (string, error) {
	info, err := os.Stat(path) // follows symlinks, catching cycles by target identity
	if err != nil {
		return "", err
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return fmt.Sprintf("%d:%d", st.Dev, st.Ino), nil
	}
	return path, nil
}

func toURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

func fromURI(uri string) string {
	return filepath.FromSlash(strings.TrimPrefix(uri, "file://"))
}
