package lsp

import "context"

// Server is the interface a concrete language server implements; a
// Connection dispatches decoded JSON-RPC requests and notifications to
// it. Grounded on the teacher's own Server interface shape, narrowed to
// the request set this server's session.Session actually answers.
type Server interface {
	Initialize(ctx context.Context, params InitializeParams) (ServerCapabilities, error)
	Shutdown(ctx context.Context) error

	Completion(ctx context.Context, doc TextDocumentIdentifier, pos Position) (CompletionList, error)
	Hover(ctx context.Context, doc TextDocumentIdentifier, pos Position) ([]MarkedString, *Range, error)
	SignatureHelp(ctx context.Context, doc TextDocumentIdentifier, pos Position) (SignatureHelp, error)
	GotoDefinition(ctx context.Context, doc TextDocumentIdentifier, pos Position) ([]Location, error)
	FindReferences(ctx context.Context, doc TextDocumentIdentifier, pos Position, includeDecl bool) ([]Location, error)
	DocumentSymbols(ctx context.Context, doc TextDocumentIdentifier) ([]SymbolInformation, error)
	WorkspaceSymbols(ctx context.Context, query string) ([]SymbolInformation, error)
	CodeAction(ctx context.Context, doc TextDocumentIdentifier, rng Range, cctx CodeActionContext) ([]Command, error)
	Rename(ctx context.Context, doc TextDocumentIdentifier, pos Position, newName string) (WorkspaceEdit, error)
	FoldingRanges(ctx context.Context, doc TextDocumentIdentifier) ([]FoldingRange, error)

	OnExit(ctx context.Context) error
	OnChangeConfiguration(ctx context.Context, settings map[string]interface{})
	OnOpenTextDocument(ctx context.Context, item TextDocumentItem)
	OnChangeTextDocument(ctx context.Context, item VersionedTextDocumentIdentifier, changes []TextDocumentContentChangeEvent)
	OnCloseTextDocument(ctx context.Context, item TextDocumentIdentifier)
	OnSaveTextDocument(ctx context.Context, item TextDocumentIdentifier)
	OnChangeWatchedFiles(ctx context.Context, changes []FileEvent)
}
