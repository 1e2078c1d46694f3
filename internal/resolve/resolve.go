// Package resolve implements the Definition Resolver: it locates the
// declaration a reference points to, trying the local Symbol Index first,
// then a global scan across indexed contexts, then a classpath lookup,
// with resolution-stack-based circular-reference detection throughout.
package resolve

import (
	"strings"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/fault"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/position"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/symbol"
)

// Kind discriminates the three possible resolution outcomes.
type Kind int

const (
	None Kind = iota
	Source
	Binary
)

// Result is the resolver's output: a Source result carries a resolved
// Node, a Binary result only a URI and symbol name (the client navigates
// there without node-level detail).
type Result struct {
	Kind       Kind
	URI        string
	Node       ast.Node
	SymbolName string
}

// Workspace is the read-only view the resolver needs of the combined
// compilation state: per-URI trackers, a combined Symbol Index, and a way
// to look up another URI's Module/tracker for global lookups (e.g. after
// loading it from the AST cache).
type Workspace interface {
	Tracker(uri string) (*tracker.Index, bool)
	Symbols() *symbol.Index
	// AllClassSymbols returns every Class symbol known across every
	// indexed context, for the global lookup step.
	AllClassSymbols() []symbol.Symbol
}

// ClasspathLookup resolves a class name to a classpath URI, honoring the
// documented jar:/jrt: "no synthetic disassembly" rule: implementations
// return ("", false) when no navigable source is available.
type ClasspathLookup func(className string) (uri string, ok bool)

// Resolve implements spec §4.10's full algorithm.
func Resolve(ws Workspace, classpath ClasspathLookup, uri string, line, col int) (Result, error) {
	idx, ok := ws.Tracker(uri)
	if !ok {
		return Result{}, fault.New(fault.ErrNodeNotFound, "no compiled module for "+uri)
	}
	target := position.Find(idx, line, col)
	if target == nil {
		return Result{}, fault.New(fault.ErrNodeNotFound, "no node at position")
	}

	stack := newStack()
	return resolveNode(ws, classpath, idx, uri, target, stack)
}

// stack records the nodes already entered on the current resolution path,
// so a resolution step that legitimately revisits a node (walking up through
// a ConstantExpression's ancestors, or following a constructor call's type
// reference) can be told apart from a genuine cycle instead of recursing
// forever.
type stack struct {
	seen map[ast.Node]struct{}
}

func newStack() *stack { return &stack{seen: make(map[ast.Node]struct{})} }

func (s *stack) push(n ast.Node) bool {
	if _, ok := s.seen[n]; ok {
		return false
	}
	s.seen[n] = struct{}{}
	return true
}

func resolveNode(ws Workspace, classpath ClasspathLookup, idx *tracker.Index, uri string, target ast.Node, st *stack) (Result, error) {
	if !st.push(target) {
		return Result{}, fault.New(fault.ErrCircularReference, "circular reference during resolution")
	}

	local, needsGlobal, err := localResolve(ws, classpath, idx, uri, target, st)
	if err != nil {
		return Result{}, err
	}

	if !needsGlobal && local.Kind != None {
		return local, nil
	}

	global, ok := globalResolve(ws, classpath, local, target)
	if ok {
		return global, nil
	}

	if local.Kind != None {
		return local, nil
	}

	return Result{}, fault.New(fault.ErrSymbolNotFound, "no definition found")
}

// localResolve implements step 2 of spec §4.10 and decides (per step 3)
// whether a global lookup should also be attempted. ConstantExpression and
// ConstructorCallExpression re-enter resolution on a different node (the
// enclosing declaration, the constructor's type reference); both go back
// through resolveNode rather than calling localResolve directly, so st
// catches a cycle instead of overflowing the Go stack.
func localResolve(ws Workspace, classpath ClasspathLookup, idx *tracker.Index, uri string, target ast.Node, st *stack) (result Result, needsGlobal bool, err error) {
	switch n := target.(type) {
	case *ast.VariableExpression:
		if n.Declaration != nil {
			return Result{Kind: Source, URI: uri, Node: n.Declaration}, false, nil
		}
		for _, sym := range ws.Symbols().Named(uri, n.Name) {
			if sym.Category == symbol.Variable || sym.Category == symbol.Parameter {
				return Result{Kind: Source, URI: uri, Node: sym.Node}, false, nil
			}
		}
		return Result{}, true, nil

	case *ast.MethodCallExpression:
		best := findMethodByArity(ws.Symbols().Named(uri, n.Name), len(n.Arguments))
		if best != nil {
			return Result{Kind: Source, URI: uri, Node: best}, false, nil
		}
		return Result{}, true, nil

	case *ast.ConstructorCallExpression:
		if n.TypeRef == nil {
			return Result{}, false, nil
		}
		return resolveViaNode(ws, classpath, idx, uri, n.TypeRef, st)

	case *ast.ClassExpression:
		if n.Resolved != nil {
			return Result{Kind: Source, URI: uri, Node: n.Resolved}, false, nil
		}
		for _, cls := range idx.Classes {
			if cls.Name == n.Name {
				return Result{Kind: Source, URI: uri, Node: cls}, false, nil
			}
		}
		// A reference to a class not declared in this file: local result
		// is the reference itself, but a global lookup is still required.
		return Result{Kind: Source, URI: uri, Node: n}, true, nil

	case *ast.PropertyExpression:
		owner := idx.EnclosingClass(n)
		if owner != nil {
			for _, f := range owner.Fields {
				if f.Name == n.Name {
					return Result{Kind: Source, URI: uri, Node: f}, false, nil
				}
			}
			getter := "get" + capitalize(n.Name)
			for _, m := range owner.Methods {
				if m.Name == getter {
					return Result{Kind: Source, URI: uri, Node: m}, false, nil
				}
			}
		}
		return Result{}, true, nil

	case *ast.DeclarationExpression:
		return Result{Kind: Source, URI: uri, Node: n.Variable}, false, nil

	case *ast.ParameterNode, *ast.MethodNode, *ast.FieldNode, *ast.PropertyNode:
		return Result{Kind: Source, URI: uri, Node: n}, false, nil

	case *ast.ImportNode:
		return Result{Kind: Source, URI: uri, Node: n}, true, nil

	case *ast.ConstantExpression:
		parent := idx.Parent(n)
		if parent == nil {
			return Result{}, false, nil
		}
		return resolveViaNode(ws, classpath, idx, uri, parent, st)

	default:
		return Result{}, false, nil
	}
}

// resolveViaNode re-enters resolution on a node reached from within
// localResolve itself (rather than from Resolve's initial position lookup),
// pushing it onto st so a cycle is detected instead of recursing forever.
func resolveViaNode(ws Workspace, classpath ClasspathLookup, idx *tracker.Index, uri string, n ast.Node, st *stack) (Result, bool, error) {
	res, err := resolveNode(ws, classpath, idx, uri, n, st)
	if err != nil {
		return Result{}, false, err
	}
	return res, false, nil
}

func findMethodByArity(candidates []symbol.Symbol, arity int) ast.Node {
	var first ast.Node
	for _, c := range candidates {
		if c.Category != symbol.Method {
			continue
		}
		m, ok := c.Node.(*ast.MethodNode)
		if !ok {
			continue
		}
		if first == nil {
			first = m
		}
		if len(m.Parameters) == arity {
			return m
		}
	}
	return first
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// globalResolve implements steps 3-4: scan every indexed context for a
// matching Class symbol, then fall back to the classpath.
func globalResolve(ws Workspace, classpath ClasspathLookup, local Result, target ast.Node) (Result, bool) {
	className := classNameOf(target, local)
	if className == "" {
		return Result{}, false
	}

	for _, sym := range ws.AllClassSymbols() {
		if sym.Name == className || strings.HasSuffix(sym.Name, "."+className) {
			return Result{Kind: Source, URI: sym.URI, Node: sym.Node}, true
		}
	}

	if classpath == nil {
		return Result{}, false
	}
	uri, ok := classpath(className)
	if !ok {
		return Result{}, false
	}
	if strings.HasPrefix(uri, "jar:") || strings.HasPrefix(uri, "jrt:") {
		// No synthetic disassembly: these URIs cannot be opened directly.
		return Result{}, false
	}
	return Result{Kind: Binary, URI: uri, SymbolName: className}, true
}

func classNameOf(target ast.Node, local Result) string {
	switch n := target.(type) {
	case *ast.ImportNode:
		return n.ClassName
	case *ast.ClassExpression:
		return n.Name
	case *ast.ConstructorCallExpression:
		return n.Type
	}
	if cls, ok := local.Node.(*ast.ClassNode); ok {
		return cls.Name
	}
	return ""
}
