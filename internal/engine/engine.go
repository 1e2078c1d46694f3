// Package engine implements the Workspace Compilation Engine: it builds
// contexts, compiles each in dependency order, maintains per-context and
// combined AST/Symbol snapshots, and serializes every mutation through a
// single compilation mutex. Readers load the published snapshot under a
// separate read lock that is held by writers only to swap the pointer, so
// a running compilation never blocks them.
package engine

import (
	"os"
	"sort"
	"sync"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/cache"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/diag"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/glog"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/parser"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/symbol"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/workspace"
)

// ContextSnapshot is the compiled state of one CompilationContext.
type ContextSnapshot struct {
	Name        string
	Modules     map[string]*ast.Module // uri -> Module
	Trackers    map[string]*tracker.Index
	Symbols     *symbol.Index
	Diagnostics map[string][]diag.Diagnostic // uri -> diagnostics
	Failed      bool
}

// WorkspaceSnapshot is the full published state the engine maintains:
// every context's snapshot plus the combined view across all of them.
type WorkspaceSnapshot struct {
	Contexts map[string]*ContextSnapshot
	Combined *ContextSnapshot
}

// Result mirrors spec §4.6's WorkspaceCompilationResult.
type Result struct {
	Diagnostics map[string][]diag.Diagnostic
}

// Engine owns the single compilation mutex and the current published
// snapshot.
type Engine struct {
	log  glog.Logger
	root string
	mu   sync.Mutex // the compilation mutex; writers only

	snapshot  atomicSnapshot
	manager   *workspace.Manager
	classpath []string
	contents  map[string]string // uri -> in-memory editor content
	cache     *cache.Cache
}

type atomicSnapshot struct {
	mu sync.RWMutex
	v  *WorkspaceSnapshot
}

func (a *atomicSnapshot) load() *WorkspaceSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.v
}

func (a *atomicSnapshot) store(v *WorkspaceSnapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.v = v
}

// New constructs an Engine for workspace root.
func New(log glog.Logger, root string) *Engine {
	return &Engine{
		log:      log,
		root:     root,
		contents: make(map[string]string),
		cache:    cache.New(),
	}
}

// Snapshot returns the most recently published WorkspaceSnapshot. Safe to
// call without holding the compilation mutex.
func (e *Engine) Snapshot() *WorkspaceSnapshot {
	return e.snapshot.load()
}

// InitializeWorkspace discovers contexts and compiles each once in
// dependency order.
func (e *Engine) InitializeWorkspace(sourceSetDirs map[string][]string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mgr, err := workspace.Discover(e.root, sourceSetDirs)
	if err != nil {
		return Result{}, err
	}
	e.manager = mgr
	return e.recompileAll(), nil
}

// UpdateFile identifies uri's context and recompiles it, falling back to a
// full workspace recompile if uri belongs to no known context yet.
func (e *Engine) UpdateFile(uri, content string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.contents[uri] = content
	e.cache.Invalidate(uri)

	if e.manager == nil {
		return e.recompileAll()
	}
	name, ok := e.manager.GetContextForFile(uri)
	if !ok {
		mgr, err := workspace.Discover(e.root, nil)
		if err == nil {
			e.manager = mgr
		}
		return e.recompileAll()
	}
	return e.recompileContext(name)
}

// RemoveFile drops uri from the in-memory content map and recompiles its
// context.
func (e *Engine) RemoveFile(uri string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.contents, uri)
	e.cache.Invalidate(uri)
	if e.manager == nil {
		return e.recompileAll()
	}
	name, ok := e.manager.GetContextForFile(uri)
	if !ok {
		return Result{Diagnostics: map[string][]diag.Diagnostic{}}
	}
	return e.recompileContext(name)
}

// UpdateDependencies replaces the workspace classpath. If the new
// classpath is set-equal to the current one, this is a no-op; otherwise
// every context is invalidated and recompiled.
func (e *Engine) UpdateDependencies(newClasspath []string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if setEqual(e.classpath, newClasspath) {
		return Result{Diagnostics: map[string][]diag.Diagnostic{}}
	}
	e.classpath = newClasspath
	return e.recompileAll()
}

func setEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := append([]string(nil), a...), append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func (e *Engine) recompileAll() Result {
	contexts := map[string]*ContextSnapshot{}
	var order []string
	if e.manager != nil {
		order = e.manager.Order()
	}
	for _, name := range order {
		ctx, ok := e.manager.Context(name)
		if !ok {
			continue
		}
		contexts[name] = e.compileContext(ctx)
	}
	combined := e.combine(contexts)
	snap := &WorkspaceSnapshot{Contexts: contexts, Combined: combined}
	e.snapshot.store(snap)
	return resultFrom(snap)
}

func (e *Engine) recompileContext(name string) Result {
	prev := e.snapshot.load()
	contexts := map[string]*ContextSnapshot{}
	if prev != nil {
		for k, v := range prev.Contexts {
			contexts[k] = v
		}
	}
	if e.manager != nil {
		if ctx, ok := e.manager.Context(name); ok {
			contexts[name] = e.compileContext(ctx)
		}
	}
	combined := e.combine(contexts)
	snap := &WorkspaceSnapshot{Contexts: contexts, Combined: combined}
	e.snapshot.store(snap)
	return resultFrom(snap)
}

// compileContext runs the 8-step algorithm of spec §4.6 for one context. A
// per-context failure never aborts the others: it is localized into a
// snapshot carrying only the failure diagnostic.
func (e *Engine) compileContext(ctx *workspace.Context) (snap *ContextSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("compiler crash, localizing failure", "context", ctx.Name, "panic", r)
			// Per spec, diagnostics with no identifiable source unit are
			// dropped rather than misattributed; the failure is surfaced
			// only via Failed.
			snap = &ContextSnapshot{
				Name:        ctx.Name,
				Modules:     map[string]*ast.Module{},
				Trackers:    map[string]*tracker.Index{},
				Symbols:     symbol.Merge(),
				Diagnostics: map[string][]diag.Diagnostic{},
				Failed:      true,
			}
		}
	}()

	modules := make(map[string]*ast.Module)
	trackers := make(map[string]*tracker.Index)
	diagnostics := make(map[string][]diag.Diagnostic)
	var indices []*symbol.Index

	for uri := range ctx.Files {
		content, err := e.readFile(uri)
		if err != nil {
			diagnostics[uri] = []diag.Diagnostic{{Severity: diag.Error, Message: err.Error(), Source: "groovyls", Code: "io"}}
			continue
		}

		key := cache.Key{URI: uri, Hash: cache.Hash(content)}
		var mod *ast.Module
		var ds []diag.Diagnostic
		if entry, ok := e.cache.Get(key); ok {
			mod, ds = entry.Module, entry.Diagnostics
		} else {
			res := parser.Parse(uri, content)
			mod, ds = res.Module, res.Diagnostics
			e.cache.Put(key, cache.Entry{Module: mod, Diagnostics: ds})
		}

		if mod != nil {
			modules[uri] = mod
			idx := tracker.Track(mod)
			trackers[uri] = idx
			indices = append(indices, symbol.Build(idx))
		}
		diagnostics[uri] = ds
	}

	return &ContextSnapshot{
		Name:        ctx.Name,
		Modules:     modules,
		Trackers:    trackers,
		Symbols:     symbol.Merge(indices...),
		Diagnostics: diagnostics,
	}
}

// combine rebuilds the combined-view snapshot by revisiting every
// (Module, uri) pair already produced by the per-context compiles, in a
// shared symbol index.
func (e *Engine) combine(contexts map[string]*ContextSnapshot) *ContextSnapshot {
	modules := make(map[string]*ast.Module)
	trackers := make(map[string]*tracker.Index)
	diagnostics := make(map[string][]diag.Diagnostic)
	var indices []*symbol.Index

	names := make([]string, 0, len(contexts))
	for name := range contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := contexts[name]
		for uri, mod := range c.Modules {
			modules[uri] = mod
		}
		for uri, idx := range c.Trackers {
			trackers[uri] = idx
		}
		for uri, ds := range c.Diagnostics {
			diagnostics[uri] = ds
		}
		if c.Symbols != nil {
			indices = append(indices, c.Symbols)
		}
	}

	return &ContextSnapshot{
		Name:        "combined",
		Modules:     modules,
		Trackers:    trackers,
		Symbols:     symbol.Merge(indices...),
		Diagnostics: diagnostics,
	}
}

func (e *Engine) readFile(uri string) (string, error) {
	if c, ok := e.contents[uri]; ok {
		return c, nil
	}
	path := fromFileURI(uri)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := string(b)
	e.contents[uri] = content
	return content, nil
}

func fromFileURI(uri string) string {
	const prefix = "file://"
	if len(uri) >= len(prefix) && uri[:len(prefix)] == prefix {
		return uri[len(prefix):]
	}
	return uri
}

func resultFrom(snap *WorkspaceSnapshot) Result {
	out := make(map[string][]diag.Diagnostic)
	if snap.Combined != nil {
		for uri, ds := range snap.Combined.Diagnostics {
			out[uri] = ds
		}
	}
	return Result{Diagnostics: out}
}
