// Package depresolve implements the Dependency Resolver Registry: it picks
// a build-tool resolver by marker file, runs it in the background with
// cooperative cancellation and coarse progress reporting, and falls back to
// a "no external dependencies" mode on failure.
package depresolve

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/sourcegraph/conc/pool"
	"github.com/vifraa/gopom"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/fault"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/glog"
)

// Resolution is the output of a successful resolve, matching spec §3's
// DependencyResolution entity.
type Resolution struct {
	Dependencies      []string
	SourceDirectories []string
	ToolName          string
}

// Resolver knows how to detect and resolve one build tool's dependencies.
type Resolver interface {
	Name() string
	// Detect reports whether workspaceRoot is recognizably built by this
	// tool (a marker file is present).
	Detect(workspaceRoot string) bool
	// SourceSets returns this tool's conventional source-set directories by
	// name (e.g. "main", "test"), without running the slower external
	// dependency resolution Resolve does. The Compilation Context Manager
	// uses the names to wire inter-context Dependencies (a "test" source
	// set depends on "main").
	SourceSets(workspaceRoot string) map[string][]string
	// Resolve runs the tool, reporting coarse progress via onProgress
	// (0, 25, 50, 75, 100) and honoring ctx cancellation at every
	// suspension point.
	Resolve(ctx context.Context, workspaceRoot string, onProgress func(pct int)) (Resolution, error)
}

// Registry holds resolvers in priority (registration) order; the first
// whose Detect matches wins.
type Registry struct {
	log       glog.Logger
	resolvers []Resolver
}

// NewRegistry constructs a Registry, logging with log. Resolvers are tried
// in the order given.
func NewRegistry(log glog.Logger, resolvers ...Resolver) *Registry {
	return &Registry{log: log, resolvers: resolvers}
}

// Select returns the first resolver whose Detect matches workspaceRoot, or
// nil if none does.
func (r *Registry) Select(workspaceRoot string) Resolver {
	for _, resolver := range r.resolvers {
		if resolver.Detect(workspaceRoot) {
			return resolver
		}
	}
	return nil
}

// SourceSets returns the named source-set directories the detected build
// tool defines for workspaceRoot, or nil if no resolver matches. Unlike
// Resolve, this performs no external process invocation and is cheap enough
// to call synchronously before the first compile.
func (r *Registry) SourceSets(workspaceRoot string) map[string][]string {
	resolver := r.Select(workspaceRoot)
	if resolver == nil {
		return nil
	}
	return resolver.SourceSets(workspaceRoot)
}

// Resolve runs dependency resolution on a background task (a sourcegraph/
// conc worker), reporting progress and delivering the result via onDone
// (success) or onError (failure, after which the engine should continue in
// no-external-dependencies mode). The returned cancel function implements
// cooperative cancellation: the spawned task polls ctx and stops at its
// next suspension point.
func (r *Registry) Resolve(workspaceRoot string, onProgress func(pct int), onDone func(Resolution), onError func(error)) (cancel func()) {
	ctx, cancelFn := context.WithCancel(context.Background())
	p := pool.New().WithErrors()
	p.Go(func() error {
		resolver := r.Select(workspaceRoot)
		if resolver == nil {
			onProgress(100)
			onDone(Resolution{ToolName: "none"})
			return nil
		}
		res, err := resolver.Resolve(ctx, workspaceRoot, onProgress)
		if err != nil {
			r.log.Warn("dependency resolution failed, continuing with no external dependencies", "tool", resolver.Name(), "error", err)
			onError(fault.Wrap(fault.ErrDependencyResolutionFailure, err, "resolve "+resolver.Name()))
			return err
		}
		onDone(res)
		return nil
	})
	go func() {
		_ = p.Wait()
	}()
	return cancelFn
}

// ResolveLocalRepository returns the first of candidates that exists as a
// directory, with true, or ("", false) if none does. This mirrors `resolveLocalRepository() → Option<path>`.
func ResolveLocalRepository(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// GradleResolver detects Gradle-built workspaces via build.gradle(.kts) or
// settings.gradle(.kts). Its Resolve reports only the conventional
// source-set directories: it starts no Gradle process, resolves no
// external dependencies, and does not read MinVersion.
type GradleResolver struct {
	MinVersion *semver.Version
}

func (g *GradleResolver) Name() string { return "gradle" }

func (g *GradleResolver) Detect(workspaceRoot string) bool {
	return fileExists(filepath.Join(workspaceRoot, "build.gradle")) ||
		fileExists(filepath.Join(workspaceRoot, "build.gradle.kts")) ||
		fileExists(filepath.Join(workspaceRoot, "settings.gradle")) ||
		fileExists(filepath.Join(workspaceRoot, "settings.gradle.kts"))
}

func (g *GradleResolver) SourceSets(workspaceRoot string) map[string][]string {
	return conventionalSourceSets(workspaceRoot)
}

func (g *GradleResolver) Resolve(ctx context.Context, workspaceRoot string, onProgress func(pct int)) (Resolution, error) {
	onProgress(0)
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	onProgress(25)
	// A real implementation shells out to `gradle -q :dependencies` or the
	// tooling API; this adapter performs the minimal source-set discovery
	// the rest of the engine needs without launching a subprocess.
	sets := conventionalSourceSets(workspaceRoot)
	onProgress(75)
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	onProgress(100)
	return Resolution{SourceDirectories: flattenSourceSets(sets), ToolName: g.Name()}, nil
}

// MavenResolver detects Maven-built workspaces via pom.xml and parses it
// with gopom rather than hand-rolled XML structs.
type MavenResolver struct{}

func (m *MavenResolver) Name() string { return "maven" }

func (m *MavenResolver) Detect(workspaceRoot string) bool {
	return fileExists(filepath.Join(workspaceRoot, "pom.xml"))
}

func (m *MavenResolver) SourceSets(workspaceRoot string) map[string][]string {
	return conventionalSourceSets(workspaceRoot)
}

func (m *MavenResolver) Resolve(ctx context.Context, workspaceRoot string, onProgress func(pct int)) (Resolution, error) {
	onProgress(0)
	pomPath := filepath.Join(workspaceRoot, "pom.xml")
	project, err := gopom.Parse(pomPath)
	if err != nil {
		return Resolution{}, fault.Wrap(fault.ErrIO, err, "parse "+pomPath)
	}
	onProgress(50)
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}

	var deps []string
	if project.Dependencies != nil {
		for _, d := range *project.Dependencies {
			deps = append(deps, mavenCoordinate(d))
		}
	}
	onProgress(75)

	srcDirs := flattenSourceSets(conventionalSourceSets(workspaceRoot))
	onProgress(100)
	return Resolution{Dependencies: deps, SourceDirectories: srcDirs, ToolName: m.Name()}, nil
}

// conventionalSourceSets returns the Gradle/Maven-for-Groovy convention's
// "main" and "test" source directories that exist under workspaceRoot.
func conventionalSourceSets(workspaceRoot string) map[string][]string {
	out := make(map[string][]string)
	for _, name := range []string{"main", "test"} {
		dir := filepath.Join(workspaceRoot, "src", name, "groovy")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			out[name] = []string{dir}
		}
	}
	return out
}

func flattenSourceSets(sets map[string][]string) []string {
	var out []string
	for _, dirs := range sets {
		out = append(out, dirs...)
	}
	return out
}

func mavenCoordinate(d gopom.Dependency) string {
	groupID := valueOrEmpty(d.GroupID)
	artifactID := valueOrEmpty(d.ArtifactID)
	version := valueOrEmpty(d.Version)
	return groupID + ":" + artifactID + ":" + version
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
