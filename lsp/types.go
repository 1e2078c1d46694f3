// Package lsp implements the JSON-RPC 2.0 wire framing and the subset of
// Language Server Protocol types this server's capabilities need. It
// performs no semantic reasoning of its own: every Server implementation
// it dispatches to does the real work, grounded on session.Session.
package lsp

// Position is a position in a document, zero-based.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a span between two Positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location identifies a Range within a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// DiagnosticSeverity mirrors the LSP severity levels.
type DiagnosticSeverity int

const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Diagnostic is one compiler- or tool-produced finding.
type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     string             `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

// TextDocumentIdentifier identifies a document by URI.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier additionally carries the client's edit
// version counter.
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

// TextDocumentItem is the full content of a document as sent on open.
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// TextDocumentContentChangeEvent is one incremental or full-text edit.
type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// TextEdit replaces Range's contents with NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// WorkspaceEdit groups TextEdits by the document URI they apply to.
type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

// CompletionItemKind mirrors the LSP completion item kinds this server
// distinguishes.
type CompletionItemKind int

const (
	KindText     CompletionItemKind = 1
	KindMethod   CompletionItemKind = 2
	KindField    CompletionItemKind = 5
	KindVariable CompletionItemKind = 6
	KindClass    CompletionItemKind = 7
	KindKeyword  CompletionItemKind = 14
	KindProperty CompletionItemKind = 10
)

// CompletionItem is one completion candidate.
type CompletionItem struct {
	Label string             `json:"label"`
	Kind  CompletionItemKind `json:"kind,omitempty"`
}

// CompletionList is the response to textDocument/completion.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// MarkedString is a snippet of source or markdown text returned by hover.
type MarkedString struct {
	Language string `json:"language,omitempty"`
	Value    string `json:"value"`
}

// ParameterInformation names one parameter of a SignatureInformation.
type ParameterInformation struct {
	Label string `json:"label"`
}

// SignatureInformation is one candidate callable signature.
type SignatureInformation struct {
	Label      string                 `json:"label"`
	Parameters []ParameterInformation `json:"parameters,omitempty"`
}

// SignatureHelp is the response to textDocument/signatureHelp.
type SignatureHelp struct {
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature int                    `json:"activeSignature"`
	ActiveParameter int                    `json:"activeParameter"`
}

// SymbolKind mirrors the LSP symbol kinds this server produces.
type SymbolKind int

const (
	SymbolClass SymbolKind = iota + 5
	SymbolMethod
	SymbolProperty
	SymbolField
	SymbolVariable = SymbolKind(13)
)

// SymbolInformation describes one document or workspace symbol.
type SymbolInformation struct {
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	Location Location   `json:"location"`
}

// Command is a client-executable action, as returned by code actions.
type Command struct {
	Title     string        `json:"title"`
	Command   string        `json:"command"`
	Arguments []interface{} `json:"arguments,omitempty"`
}

// CodeActionContext carries the diagnostics a code action request is
// scoped to.
type CodeActionContext struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// FoldingRangeKind classifies a FoldingRange, when the client cares.
type FoldingRangeKind string

// FoldingRange is one foldable span of a document, by zero-based line.
type FoldingRange struct {
	StartLine int              `json:"startLine"`
	EndLine   int              `json:"endLine"`
	Kind      FoldingRangeKind `json:"kind,omitempty"`
}

// FileChangeType mirrors the LSP watched-file change kinds.
type FileChangeType int

const (
	FileCreated FileChangeType = iota + 1
	FileChanged
	FileDeleted
)

// FileEvent is one watched-file change notification.
type FileEvent struct {
	URI  string         `json:"uri"`
	Type FileChangeType `json:"type"`
}

// CompletionOptions advertises completion support and its trigger set.
type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// SignatureHelpOptions advertises signature-help support and its trigger
// set.
type SignatureHelpOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// TextDocumentSyncKind selects how document changes are communicated.
type TextDocumentSyncKind int

const (
	SyncNone TextDocumentSyncKind = iota
	SyncFull
	SyncIncremental
)

// ServerCapabilities is returned from initialize, advertising which
// requests this server answers.
type ServerCapabilities struct {
	TextDocumentSync           TextDocumentSyncKind `json:"textDocumentSync"`
	HoverProvider              bool                 `json:"hoverProvider,omitempty"`
	CompletionProvider         *CompletionOptions   `json:"completionProvider,omitempty"`
	SignatureHelpProvider      *SignatureHelpOptions `json:"signatureHelpProvider,omitempty"`
	DefinitionProvider         bool                 `json:"definitionProvider,omitempty"`
	ReferencesProvider         bool                 `json:"referencesProvider,omitempty"`
	DocumentSymbolProvider     bool                 `json:"documentSymbolProvider,omitempty"`
	WorkspaceSymbolProvider    bool                 `json:"workspaceSymbolProvider,omitempty"`
	CodeActionProvider         bool                 `json:"codeActionProvider,omitempty"`
	RenameProvider             bool                 `json:"renameProvider,omitempty"`
	FoldingRangeProvider       bool                 `json:"foldingRangeProvider,omitempty"`
}

// InitializeParams is the request body of the initialize request.
type InitializeParams struct {
	ProcessID             int                    `json:"processId"`
	RootURI               string                 `json:"rootUri"`
	InitializationOptions map[string]interface{} `json:"initializationOptions"`
}
