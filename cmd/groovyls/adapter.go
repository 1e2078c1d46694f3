package main

import (
	"context"
	"strings"
	"sync"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/diag"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/glog"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/query/completion"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/resolve"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/session"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/symbol"
	"github.com/albertocavalcante/groovy-lsp-sub001/lsp"
)

// adapter implements lsp.Server by translating wire-protocol requests into
// session.Session calls and their results back into wire types. It is the
// only type in this module that imports both lsp and internal/session.
type adapter struct {
	sv *session.Session

	mu   sync.Mutex
	text map[string]string // uri -> full document text, full-sync only
}

func newAdapter(log glog.Logger, root string) *adapter {
	return &adapter{
		sv:   session.New(log, root, nil),
		text: make(map[string]string),
	}
}

func (a *adapter) Initialize(ctx context.Context, params lsp.InitializeParams) (lsp.ServerCapabilities, error) {
	if _, err := a.sv.Initialize(ctx, params.InitializationOptions); err != nil {
		return lsp.ServerCapabilities{}, err
	}
	return lsp.ServerCapabilities{
		TextDocumentSync:        lsp.SyncFull,
		HoverProvider:           true,
		CompletionProvider:      &lsp.CompletionOptions{TriggerCharacters: completion.TriggerCharacters},
		SignatureHelpProvider:   &lsp.SignatureHelpOptions{TriggerCharacters: []string{"(", ","}},
		DefinitionProvider:      true,
		ReferencesProvider:      true,
		DocumentSymbolProvider:  true,
		WorkspaceSymbolProvider: true,
		CodeActionProvider:      true,
		RenameProvider:          true,
		FoldingRangeProvider:    true,
	}, nil
}

func (a *adapter) Shutdown(ctx context.Context) error { return a.sv.Shutdown(ctx) }

func (a *adapter) Completion(ctx context.Context, doc lsp.TextDocumentIdentifier, pos lsp.Position) (lsp.CompletionList, error) {
	line := a.lineAt(doc.URI, pos.Line)
	items := a.sv.Completion(doc.URI, toSessionPos(pos), line)
	out := make([]lsp.CompletionItem, len(items))
	for i, it := range items {
		out[i] = lsp.CompletionItem{Label: it.Label, Kind: completionKind(it.Kind)}
	}
	return lsp.CompletionList{Items: out}, nil
}

func (a *adapter) Hover(ctx context.Context, doc lsp.TextDocumentIdentifier, pos lsp.Position) ([]lsp.MarkedString, *lsp.Range, error) {
	info, ok := a.sv.Hover(doc.URI, toSessionPos(pos))
	if !ok {
		return nil, nil, nil
	}
	var parts []lsp.MarkedString
	if info.Declaration != "" {
		parts = append(parts, lsp.MarkedString{Language: "groovy", Value: info.Declaration})
	}
	if info.DocComment != "" {
		parts = append(parts, lsp.MarkedString{Value: info.DocComment})
	}
	return parts, nil, nil
}

func (a *adapter) SignatureHelp(ctx context.Context, doc lsp.TextDocumentIdentifier, pos lsp.Position) (lsp.SignatureHelp, error) {
	help, ok := a.sv.SignatureHelp(doc.URI, toSessionPos(pos))
	if !ok {
		return lsp.SignatureHelp{}, nil
	}
	sigs := make([]lsp.SignatureInformation, len(help.Signatures))
	for i, s := range help.Signatures {
		params := make([]lsp.ParameterInformation, len(s.Parameters))
		for j, p := range s.Parameters {
			params[j] = lsp.ParameterInformation{Label: p}
		}
		sigs[i] = lsp.SignatureInformation{Label: s.Label, Parameters: params}
	}
	return lsp.SignatureHelp{Signatures: sigs, ActiveParameter: help.ActiveParameter}, nil
}

func (a *adapter) GotoDefinition(ctx context.Context, doc lsp.TextDocumentIdentifier, pos lsp.Position) ([]lsp.Location, error) {
	res, err := a.sv.Definitions(doc.URI, toSessionPos(pos))
	if err != nil || res.Kind == resolve.None {
		return nil, nil
	}
	if res.Kind == resolve.Binary {
		return []lsp.Location{{URI: res.URI}}, nil
	}
	return []lsp.Location{{URI: res.URI, Range: toLSPRange(res.Node.Range())}}, nil
}

func (a *adapter) FindReferences(ctx context.Context, doc lsp.TextDocumentIdentifier, pos lsp.Position, includeDecl bool) ([]lsp.Location, error) {
	locs, err := a.sv.References(doc.URI, toSessionPos(pos), includeDecl)
	if err != nil {
		return nil, err
	}
	out := make([]lsp.Location, len(locs))
	for i, l := range locs {
		out[i] = lsp.Location{URI: l.URI, Range: toLSPRange(l.Range)}
	}
	return out, nil
}

func (a *adapter) DocumentSymbols(ctx context.Context, doc lsp.TextDocumentIdentifier) ([]lsp.SymbolInformation, error) {
	syms := a.sv.DocumentSymbols(doc.URI)
	return toSymbolInformation(syms), nil
}

func (a *adapter) WorkspaceSymbols(ctx context.Context, query string) ([]lsp.SymbolInformation, error) {
	syms := a.sv.WorkspaceSymbols(query)
	return toSymbolInformation(syms), nil
}

func (a *adapter) CodeAction(ctx context.Context, doc lsp.TextDocumentIdentifier, rng lsp.Range, cctx lsp.CodeActionContext) ([]lsp.Command, error) {
	diags := make([]diag.Diagnostic, len(cctx.Diagnostics))
	for i, d := range cctx.Diagnostics {
		diags[i] = diag.Diagnostic{
			Range:    diag.Range{Start: diag.Position(d.Range.Start), End: diag.Position(d.Range.End)},
			Severity: diag.Severity(d.Severity),
			Message:  d.Message,
			Source:   d.Source,
			Code:     d.Code,
		}
	}
	actions := a.sv.CodeActions(doc.URI, diags)
	out := make([]lsp.Command, len(actions))
	for i, act := range actions {
		out[i] = lsp.Command{Title: act.Title, Command: "groovyls.applyEdit"}
	}
	return out, nil
}

func (a *adapter) Rename(ctx context.Context, doc lsp.TextDocumentIdentifier, pos lsp.Position, newName string) (lsp.WorkspaceEdit, error) {
	plan, err := a.sv.Rename(doc.URI, toSessionPos(pos), newName)
	if err != nil {
		return lsp.WorkspaceEdit{}, err
	}
	changes := make(map[string][]lsp.TextEdit)
	for _, e := range plan.Edits {
		changes[e.URI] = append(changes[e.URI], lsp.TextEdit{Range: toLSPRange(e.Range), NewText: newName})
	}
	return lsp.WorkspaceEdit{Changes: changes}, nil
}

func (a *adapter) FoldingRanges(ctx context.Context, doc lsp.TextDocumentIdentifier) ([]lsp.FoldingRange, error) {
	ranges := a.sv.Folding(doc.URI)
	out := make([]lsp.FoldingRange, len(ranges))
	for i, r := range ranges {
		out[i] = lsp.FoldingRange{StartLine: r.StartLine - 1, EndLine: r.EndLine - 1, Kind: lsp.FoldingRangeKind(r.Kind)}
	}
	return out, nil
}

func (a *adapter) OnExit(ctx context.Context) error { return nil }

func (a *adapter) OnChangeConfiguration(ctx context.Context, settings map[string]interface{}) {
	a.sv.OnConfigChange(ctx, settings)
}

func (a *adapter) OnOpenTextDocument(ctx context.Context, item lsp.TextDocumentItem) {
	a.setText(item.URI, item.Text)
	a.sv.DidOpen(item.URI, item.Text)
}

func (a *adapter) OnChangeTextDocument(ctx context.Context, item lsp.VersionedTextDocumentIdentifier, changes []lsp.TextDocumentContentChangeEvent) {
	if len(changes) == 0 {
		return
	}
	// Full-document sync: the last change event carries the complete text.
	text := changes[len(changes)-1].Text
	a.setText(item.URI, text)
	a.sv.DidChange(item.URI, text)
}

func (a *adapter) OnCloseTextDocument(ctx context.Context, item lsp.TextDocumentIdentifier) {
	a.clearText(item.URI)
	a.sv.DidClose(item.URI)
}

func (a *adapter) OnSaveTextDocument(ctx context.Context, item lsp.TextDocumentIdentifier) {
	a.sv.DidSave(item.URI)
}

func (a *adapter) OnChangeWatchedFiles(ctx context.Context, changes []lsp.FileEvent) {}

func (a *adapter) setText(uri, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.text[uri] = text
}

func (a *adapter) clearText(uri string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.text, uri)
}

func (a *adapter) lineAt(uri string, line int) string {
	a.mu.Lock()
	text := a.text[uri]
	a.mu.Unlock()
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}

func toSessionPos(p lsp.Position) session.Position {
	return session.Position{Line: p.Line, Character: p.Character}
}

// toLSPRange converts an ast.Range's 1-based coordinates to the wire
// protocol's 0-based ones.
func toLSPRange(r ast.Range) lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: r.Start.Line - 1, Character: r.Start.Column - 1},
		End:   lsp.Position{Line: r.End.Line - 1, Character: r.End.Column - 1},
	}
}

func completionKind(kind string) lsp.CompletionItemKind {
	switch kind {
	case "method":
		return lsp.KindMethod
	case "field":
		return lsp.KindField
	case "property":
		return lsp.KindProperty
	case "variable", "parameter":
		return lsp.KindVariable
	case "class":
		return lsp.KindClass
	case "keyword":
		return lsp.KindKeyword
	default:
		return lsp.KindText
	}
}

func symbolKind(cat symbol.Category) lsp.SymbolKind {
	switch cat {
	case symbol.Class:
		return lsp.SymbolClass
	case symbol.Method:
		return lsp.SymbolMethod
	case symbol.Property:
		return lsp.SymbolProperty
	case symbol.Field:
		return lsp.SymbolField
	default:
		return lsp.SymbolVariable
	}
}

func toSymbolInformation(syms []symbol.Symbol) []lsp.SymbolInformation {
	out := make([]lsp.SymbolInformation, len(syms))
	for i, sym := range syms {
		out[i] = lsp.SymbolInformation{
			Name: sym.Name,
			Kind: symbolKind(sym.Category),
			Location: lsp.Location{
				URI:   sym.URI,
				Range: toLSPRange(sym.Node.Range()),
			},
		}
	}
	return out
}
