// Package symbol derives a SymbolIndex from a tracker.Index. Construction
// is a pure function: the same tracker output always yields an equal
// index, and nothing here mutates the AST it reads from.
package symbol

import (
	"sort"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/tracker"
)

// Category discriminates the kind of declaration a Symbol describes.
type Category int

const (
	Variable Category = iota
	Parameter
	Field
	Property
	Method
	Class
	Import
)

func (c Category) String() string {
	switch c {
	case Variable:
		return "variable"
	case Parameter:
		return "parameter"
	case Field:
		return "field"
	case Property:
		return "property"
	case Method:
		return "method"
	case Class:
		return "class"
	case Import:
		return "import"
	default:
		return "unknown"
	}
}

// Symbol is one named declaration reachable from a URI's Module.
type Symbol struct {
	Name       string
	URI        string
	Node       ast.Node
	Category   Category
	Visibility ast.Visibility
	HasVisibility bool
	Static     bool
	Package    string     // set for Class symbols
	Owner      *ast.ClassNode // set for Field/Property/Method symbols
}

// Index holds the three persistent maps described by the data model: by
// URI, by (URI, name), and by (URI, category). All three are built in one
// pass and never mutated after construction; recompiling a URI rebuilds
// and swaps a fresh Index rather than editing this one in place.
type Index struct {
	byURI      map[string][]Symbol
	byURIName  map[uriName][]Symbol
	byURICat   map[uriCategory][]Symbol
}

type uriName struct {
	uri  string
	name string
}

type uriCategory struct {
	uri string
	cat Category
}

// ForURI returns every Symbol declared in uri, in insertion (pre-order)
// order.
func (idx *Index) ForURI(uri string) []Symbol {
	return idx.byURI[uri]
}

// Named returns every Symbol declared in uri with the given name.
func (idx *Index) Named(uri, name string) []Symbol {
	return idx.byURIName[uriName{uri, name}]
}

// OfCategory returns every Symbol declared in uri of the given category.
func (idx *Index) OfCategory(uri string, cat Category) []Symbol {
	return idx.byURICat[uriCategory{uri, cat}]
}

// All returns every Symbol in idx across every URI, ordered by URI then by
// insertion order within it, for workspace-wide queries (workspace symbol
// search, global definition resolution).
func (idx *Index) All() []Symbol {
	uris := make([]string, 0, len(idx.byURI))
	for uri := range idx.byURI {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	var out []Symbol
	for _, uri := range uris {
		out = append(out, idx.byURI[uri]...)
	}
	return out
}

// Build derives a SymbolIndex from a single tracker.Index. Nodes that do
// not correspond to a Symbol variant are skipped.
func Build(idx *tracker.Index) *Index {
	out := &Index{
		byURI:     make(map[string][]Symbol),
		byURIName: make(map[uriName][]Symbol),
		byURICat:  make(map[uriCategory][]Symbol),
	}
	uri := idx.URI
	for _, n := range idx.Nodes {
		sym, ok := symbolFor(uri, n)
		if !ok {
			continue
		}
		out.byURI[uri] = append(out.byURI[uri], sym)
		out.byURIName[uriName{uri, sym.Name}] = append(out.byURIName[uriName{uri, sym.Name}], sym)
		out.byURICat[uriCategory{uri, sym.Category}] = append(out.byURICat[uriCategory{uri, sym.Category}], sym)
	}
	return out
}

// Merge combines several per-context indices into one combined-view index,
// as used by the workspace engine's combined AST visitor/Symbol Index
// rebuild. Later indices' entries for the same (uri, name) key append
// after earlier ones; callers compiling contexts in dependency order get
// deterministic results.
func Merge(indices ...*Index) *Index {
	out := &Index{
		byURI:     make(map[string][]Symbol),
		byURIName: make(map[uriName][]Symbol),
		byURICat:  make(map[uriCategory][]Symbol),
	}
	for _, idx := range indices {
		if idx == nil {
			continue
		}
		for uri, syms := range idx.byURI {
			out.byURI[uri] = append(out.byURI[uri], syms...)
		}
		for k, syms := range idx.byURIName {
			out.byURIName[k] = append(out.byURIName[k], syms...)
		}
		for k, syms := range idx.byURICat {
			out.byURICat[k] = append(out.byURICat[k], syms...)
		}
	}
	return out
}

func symbolFor(uri string, n ast.Node) (Symbol, bool) {
	switch v := n.(type) {
	case *ast.ClassNode:
		return Symbol{Name: v.Name, URI: uri, Node: v, Category: Class, Package: v.Package}, true
	case *ast.MethodNode:
		return Symbol{
			Name: v.Name, URI: uri, Node: v, Category: Method,
			Visibility: v.Visibility, HasVisibility: true, Static: v.Static, Owner: v.Owner,
		}, true
	case *ast.FieldNode:
		return Symbol{
			Name: v.Name, URI: uri, Node: v, Category: Field,
			Visibility: v.Visibility, HasVisibility: true, Static: v.Static, Owner: v.Owner,
		}, true
	case *ast.PropertyNode:
		return Symbol{Name: v.Name, URI: uri, Node: v, Category: Property, Static: v.Static, Owner: v.Owner}, true
	case *ast.ParameterNode:
		if v.Name == "" {
			return Symbol{}, false
		}
		return Symbol{Name: v.Name, URI: uri, Node: v, Category: Parameter}, true
	case *ast.VariableExpression:
		if v.Declaration == nil {
			// A bare reference, not a declaration; only declaring
			// occurrences (reached via DeclarationExpression.Variable)
			// are indexed as Variable symbols.
			return Symbol{}, false
		}
		return Symbol{Name: v.Name, URI: uri, Node: v, Category: Variable}, true
	case *ast.ImportNode:
		name := v.Alias
		if name == "" {
			name = lastSegment(v.ClassName)
		}
		return Symbol{Name: name, URI: uri, Node: v, Category: Import}, true
	default:
		return Symbol{}, false
	}
}

func lastSegment(qualified string) string {
	last := qualified
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			last = qualified[i+1:]
			break
		}
	}
	return last
}
