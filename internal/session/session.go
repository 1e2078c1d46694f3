// Package session implements the Session/Lifecycle layer: it owns one
// Engine per workspace, wires it to the Dependency Resolver Registry and
// the Query Providers, and serializes per-URI lifecycle events (open,
// change, save, close) in FIFO order as spec §5 requires. It exposes no
// wire-protocol types; lsp and cmd/groovyls are its only callers.
package session

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/config"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/depresolve"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/diag"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/engine"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/fault"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/glog"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/codeaction"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/completion"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/folding"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/hover"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/references"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/rename"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/signature"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/symbols"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/resolve"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/symbol"
)

// Position is a 0-based (line, character) coordinate, matching the wire
// protocol's own convention; every public method on Session accepts these
// rather than ast.Coordinate so callers in lsp never import internal/groovy.
type Position struct {
	Line, Character int
}

// Session owns the Engine for one workspace root plus the collaborators
// (dependency resolution, completion catalog) the core engine does not
// itself implement.
type Session struct {
	log    glog.Logger
	root   string
	engine *engine.Engine
	config config.Options

	depRegistry *depresolve.Registry
	catalog     completion.Catalog // out-of-scope GDK/Jenkins catalog, nil unless supplied

	// fileLocks serializes lifecycle events per URI (spec §5); a single
	// global mutex would over-serialize unrelated files, so each URI gets
	// its own mutex on first use. Entries are never removed.
	mu        sync.Mutex
	fileLocks map[string]*sync.Mutex

	depCancel func() // cancels an in-flight background dependency resolution, if any

	sourceDirsMu sync.RWMutex
	sourceDirs   []string // known source roots a dotted class name might resolve under
}

// New constructs a Session for workspaceRoot. catalog may be nil: the
// Completion provider then returns only keywords and in-scope symbols.
func New(log glog.Logger, workspaceRoot string, catalog completion.Catalog) *Session {
	registry := depresolve.NewRegistry(log,
		&depresolve.GradleResolver{},
		&depresolve.MavenResolver{},
	)
	return &Session{
		log:         log,
		root:        workspaceRoot,
		engine:      engine.New(log, workspaceRoot),
		config:      config.Default(),
		depRegistry: registry,
		catalog:     catalog,
		fileLocks:   make(map[string]*sync.Mutex),
	}
}

// Initialize decodes initializationOptions, layers the on-disk project
// settings file under them, compiles the workspace once, and kicks off
// background dependency resolution.
func (s *Session) Initialize(ctx context.Context, initOptions map[string]interface{}) (diag.Diagnostics, error) {
	opts := config.FromMap(s.log, initOptions)
	s.config = config.LoadProjectFile(s.log, s.root, opts)

	sourceSetDirs := s.depRegistry.SourceSets(s.root)
	s.addSourceDirectories(flattenSourceSetDirs(sourceSetDirs))

	result, err := s.engine.InitializeWorkspace(sourceSetDirs)
	if err != nil {
		return nil, fault.Wrap(fault.ErrIO, err, "initializing workspace")
	}

	s.depCancel = s.depRegistry.Resolve(s.root,
		func(pct int) { s.log.Debug("dependency resolution progress", "percent", pct) },
		func(res depresolve.Resolution) {
			s.addSourceDirectories(res.SourceDirectories)
			s.UpdateDependencies(res.Dependencies)
		},
		func(err error) {
			s.log.Warn("dependency resolution failed, continuing without external dependencies", "error", err)
		},
	)

	return flatten(result.Diagnostics), nil
}

// Shutdown cancels any in-flight background dependency resolution, per
// spec §5's cooperative-cancellation and bounded-shutdown requirements,
// and flushes the logger.
func (s *Session) Shutdown(context.Context) error {
	if s.depCancel != nil {
		s.depCancel()
	}
	return s.log.Sync()
}

// OnConfigChange re-derives Options from an updated initializationOptions
// map, e.g. when an editor's settings UI pushes workspace/didChangeConfiguration.
func (s *Session) OnConfigChange(_ context.Context, raw map[string]interface{}) {
	s.config = config.FromMap(s.log, raw)
}

// UpdateDependencies pushes a new classpath (e.g. the Dependency Resolver
// Registry's resolution, or a client-issued notification) through the
// Engine, which recompiles only if the classpath actually changed.
func (s *Session) UpdateDependencies(classpath []string) diag.Diagnostics {
	return flatten(s.engine.UpdateDependencies(classpath).Diagnostics)
}

// DidOpen and DidChange share one code path: both replace a URI's
// in-memory content and recompile its context. withFileLock guarantees two
// events for the same URI are applied in the order they arrived.
func (s *Session) DidOpen(uri, content string) diag.Diagnostics {
	return s.withFileLock(uri, func() diag.Diagnostics {
		return flatten(s.engine.UpdateFile(uri, content).Diagnostics)
	})
}

func (s *Session) DidChange(uri, content string) diag.Diagnostics {
	return s.withFileLock(uri, func() diag.Diagnostics {
		return flatten(s.engine.UpdateFile(uri, content).Diagnostics)
	})
}

// DidSave is a no-op for compilation: the in-memory content already
// reflects the saved text (edits are applied incrementally on DidChange),
// so there is nothing further to recompile.
func (s *Session) DidSave(uri string) {}

// DidClose drops uri's in-memory override, falling back to disk content on
// the next recompile.
func (s *Session) DidClose(uri string) diag.Diagnostics {
	return s.withFileLock(uri, func() diag.Diagnostics {
		return flatten(s.engine.RemoveFile(uri).Diagnostics)
	})
}

func (s *Session) withFileLock(uri string, fn func() diag.Diagnostics) diag.Diagnostics {
	s.mu.Lock()
	lock, ok := s.fileLocks[uri]
	if !ok {
		lock = &sync.Mutex{}
		s.fileLocks[uri] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// Hover answers a textDocument/hover request.
func (s *Session) Hover(uri string, pos Position) (hover.Info, bool) {
	idx, ok := s.trackerFor(uri)
	if !ok {
		return hover.Info{}, false
	}
	return hover.At(idx, pos.Line, pos.Character)
}

// Completion answers a textDocument/completion request. existingKeys is
// non-nil only when the position is inside a map literal's key set.
func (s *Session) Completion(uri string, pos Position, lineText string) []completion.Item {
	idx, ok := s.trackerFor(uri)
	if !ok {
		return nil
	}
	snap := s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return nil
	}
	var existingKeys map[string]bool
	if completion.IsMapKeyPosition(lineText, pos.Character) {
		existingKeys = map[string]bool{}
	}
	return completion.At(idx, snap.Combined.Symbols, s.catalog, pos.Line, pos.Character, existingKeys)
}

// Definitions answers a textDocument/definition request.
func (s *Session) Definitions(uri string, pos Position) (resolve.Result, error) {
	return resolve.Resolve(s.workspaceView(), s.classpathLookup(), uri, pos.Line, pos.Character)
}

// References answers a textDocument/references request. includeDeclaration
// mirrors the LSP request parameter of the same name.
func (s *Session) References(uri string, pos Position, includeDeclaration bool) ([]references.Location, error) {
	res, err := resolve.Resolve(s.workspaceView(), s.classpathLookup(), uri, pos.Line, pos.Character)
	if err != nil {
		return nil, err
	}
	if res.Kind != resolve.Source {
		return nil, nil
	}
	locs := references.Find(s.allTrackers(), res.URI, res.Node)
	if includeDeclaration {
		locs = append([]references.Location{{URI: res.URI, Range: res.Node.Range()}}, locs...)
	}
	return locs, nil
}

// Rename answers a textDocument/rename request.
func (s *Session) Rename(uri string, pos Position, newName string) (rename.Plan, error) {
	return rename.Compute(s.workspaceView(), s.classpathLookup(), s.allTrackers(), uri, pos.Line, pos.Character, newName)
}

// DocumentSymbols answers a textDocument/documentSymbol request.
func (s *Session) DocumentSymbols(uri string) []symbol.Symbol {
	snap := s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return nil
	}
	return symbols.Document(snap.Combined.Symbols, uri)
}

// WorkspaceSymbols answers a workspace/symbol request.
func (s *Session) WorkspaceSymbols(query string) []symbol.Symbol {
	snap := s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return nil
	}
	return symbols.Workspace(snap.Combined.Symbols.All(), query)
}

// Folding answers a textDocument/foldingRange request.
func (s *Session) Folding(uri string) []folding.Range {
	mod, ok := s.moduleFor(uri)
	if !ok {
		return nil
	}
	return folding.Compute(mod)
}

// SignatureHelp answers a textDocument/signatureHelp request.
func (s *Session) SignatureHelp(uri string, pos Position) (signature.Help, bool) {
	idx, ok := s.trackerFor(uri)
	if !ok {
		return signature.Help{}, false
	}
	snap := s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return signature.Help{}, false
	}
	return signature.At(idx, snap.Combined.Symbols, pos.Line, pos.Character)
}

// CodeActions answers a textDocument/codeAction request for the
// diagnostics the client reports at uri.
func (s *Session) CodeActions(uri string, diags []diag.Diagnostic) []codeaction.Action {
	mod, ok := s.moduleFor(uri)
	if !ok {
		return nil
	}
	snap := s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return nil
	}
	var actions []codeaction.Action
	for _, d := range diags {
		actions = append(actions, codeaction.For(uri, mod, d, snap.Combined.Symbols.All(), s.classpathClassNames())...)
	}
	return actions
}

func (s *Session) trackerFor(uri string) (*tracker.Index, bool) {
	snap := s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return nil, false
	}
	idx, ok := snap.Combined.Trackers[uri]
	return idx, ok
}

func (s *Session) moduleFor(uri string) (*ast.Module, bool) {
	snap := s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return nil, false
	}
	mod, ok := snap.Combined.Modules[uri]
	return mod, ok
}

func (s *Session) allTrackers() map[string]*tracker.Index {
	snap := s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return nil
	}
	return snap.Combined.Trackers
}

func (s *Session) classpathClassNames() []string {
	// The classpath catalog itself lives outside this engine's scope
	// (spec Non-goals); only the narrow ClasspathLookup contract below is
	// consulted, so there is no full class-name list to offer here yet.
	return nil
}

// addSourceDirectories merges dirs into the known source roots a dotted
// class name is searched under, deduplicating against what's already known.
func (s *Session) addSourceDirectories(dirs []string) {
	if len(dirs) == 0 {
		return
	}
	s.sourceDirsMu.Lock()
	defer s.sourceDirsMu.Unlock()
	seen := make(map[string]struct{}, len(s.sourceDirs))
	for _, d := range s.sourceDirs {
		seen[d] = struct{}{}
	}
	for _, d := range dirs {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		s.sourceDirs = append(s.sourceDirs, d)
	}
}

// classpathLookup implements resolve.ClasspathLookup's classpath-fallback
// step: a dotted class name (e.g. com.example.Foo) is mapped to its
// conventional file path under every known source root (Gradle/Maven
// source-set directories, plus any extra roots a dependency resolution
// reported) and the first existing .groovy or .java file wins.
func (s *Session) classpathLookup() resolve.ClasspathLookup {
	return func(className string) (string, bool) {
		s.sourceDirsMu.RLock()
		dirs := append([]string(nil), s.sourceDirs...)
		s.sourceDirsMu.RUnlock()

		rel := strings.ReplaceAll(className, ".", string(filepath.Separator))
		for _, dir := range dirs {
			for _, ext := range []string{".groovy", ".java"} {
				candidate := filepath.Join(dir, rel+ext)
				info, err := os.Stat(candidate)
				if err == nil && !info.IsDir() {
					return toFileURI(candidate), true
				}
			}
		}
		return "", false
	}
}

// flattenSourceSetDirs collapses a name->dirs source-set map (as returned by
// depresolve.Registry.SourceSets) into a flat list of directories.
func flattenSourceSetDirs(sets map[string][]string) []string {
	var out []string
	for _, dirs := range sets {
		out = append(out, dirs...)
	}
	return out
}

func toFileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// workspaceView adapts the Engine's published combined snapshot to
// resolve.Workspace without exposing engine types outside this package.
func (s *Session) workspaceView() resolve.Workspace {
	return workspaceView{s}
}

type workspaceView struct{ s *Session }

func (w workspaceView) Tracker(uri string) (*tracker.Index, bool) {
	return w.s.trackerFor(uri)
}

func (w workspaceView) Symbols() *symbol.Index {
	snap := w.s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return symbol.Merge()
	}
	return snap.Combined.Symbols
}

func (w workspaceView) AllClassSymbols() []symbol.Symbol {
	snap := w.s.engine.Snapshot()
	if snap == nil || snap.Combined == nil {
		return nil
	}
	var out []symbol.Symbol
	for _, sym := range snap.Combined.Symbols.All() {
		if sym.Category == symbol.Class {
			out = append(out, sym)
		}
	}
	return out
}

// flatten sorts a per-URI diagnostic map into a stable Diagnostics value,
// so transport layers publish textDocument/publishDiagnostics in a
// deterministic order across a session's lifetime.
func flatten(byURI map[string][]diag.Diagnostic) diag.Diagnostics {
	uris := make([]string, 0, len(byURI))
	for u := range byURI {
		uris = append(uris, u)
	}
	sort.Strings(uris)

	out := make(diag.Diagnostics, 0, len(byURI))
	for _, u := range uris {
		out = append(out, diag.ForURI{URI: u, Diagnostics: byURI[u]})
	}
	return out
}
