package lsp

import (
	"context"
	"encoding/json"
	"fmt"
)

type textDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

func dispatchRequestMethod(ctx context.Context, s Server, method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "initialize":
		var p InitializeParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, Error{InvalidParams, err.Error()}
		}
		caps, err := s.Initialize(ctx, p)
		if err != nil {
			return nil, err
		}
		return struct {
			Capabilities ServerCapabilities `json:"capabilities"`
		}{caps}, nil

	case "shutdown":
		return nil, s.Shutdown(ctx)

	case "textDocument/completion":
		var p textDocumentPositionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.Completion(ctx, p.TextDocument, p.Position)

	case "textDocument/hover":
		var p textDocumentPositionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		contents, rng, err := s.Hover(ctx, p.TextDocument, p.Position)
		if err != nil {
			return nil, err
		}
		return struct {
			Contents []MarkedString `json:"contents"`
			Range    *Range         `json:"range,omitempty"`
		}{contents, rng}, nil

	case "textDocument/signatureHelp":
		var p textDocumentPositionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.SignatureHelp(ctx, p.TextDocument, p.Position)

	case "textDocument/definition":
		var p textDocumentPositionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.GotoDefinition(ctx, p.TextDocument, p.Position)

	case "textDocument/references":
		var p struct {
			textDocumentPositionParams
			Context struct {
				IncludeDeclaration bool `json:"includeDeclaration"`
			} `json:"context"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.FindReferences(ctx, p.TextDocument, p.Position, p.Context.IncludeDeclaration)

	case "textDocument/documentSymbol":
		var p struct {
			TextDocument TextDocumentIdentifier `json:"textDocument"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.DocumentSymbols(ctx, p.TextDocument)

	case "workspace/symbol":
		var p struct {
			Query string `json:"query"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.WorkspaceSymbols(ctx, p.Query)

	case "textDocument/codeAction":
		var p struct {
			TextDocument TextDocumentIdentifier `json:"textDocument"`
			Range        Range                  `json:"range"`
			Context      CodeActionContext      `json:"context"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.CodeAction(ctx, p.TextDocument, p.Range, p.Context)

	case "textDocument/rename":
		var p struct {
			textDocumentPositionParams
			NewName string `json:"newName"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.Rename(ctx, p.TextDocument, p.Position, p.NewName)

	case "textDocument/foldingRange":
		var p struct {
			TextDocument TextDocumentIdentifier `json:"textDocument"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.FoldingRanges(ctx, p.TextDocument)

	default:
		return nil, Error{MethodNotFound, fmt.Sprintf("unknown method %q", method)}
	}
}

func dispatchNotificationMethod(ctx context.Context, s Server, method string, params json.RawMessage) {
	switch method {
	case "exit":
		s.OnExit(ctx)

	case "workspace/didChangeConfiguration":
		var p struct {
			Settings map[string]interface{} `json:"settings"`
		}
		if decode(params, &p) == nil {
			s.OnChangeConfiguration(ctx, p.Settings)
		}

	case "textDocument/didOpen":
		var p struct {
			TextDocument TextDocumentItem `json:"textDocument"`
		}
		if decode(params, &p) == nil {
			s.OnOpenTextDocument(ctx, p.TextDocument)
		}

	case "textDocument/didChange":
		var p struct {
			TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
			ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
		}
		if decode(params, &p) == nil {
			s.OnChangeTextDocument(ctx, p.TextDocument, p.ContentChanges)
		}

	case "textDocument/didClose":
		var p struct {
			TextDocument TextDocumentIdentifier `json:"textDocument"`
		}
		if decode(params, &p) == nil {
			s.OnCloseTextDocument(ctx, p.TextDocument)
		}

	case "textDocument/didSave":
		var p struct {
			TextDocument TextDocumentIdentifier `json:"textDocument"`
		}
		if decode(params, &p) == nil {
			s.OnSaveTextDocument(ctx, p.TextDocument)
		}

	case "workspace/didChangeWatchedFiles":
		var p struct {
			Changes []FileEvent `json:"changes"`
		}
		if decode(params, &p) == nil {
			s.OnChangeWatchedFiles(ctx, p.Changes)
		}
	}
}

func decode(params json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(params, v); err != nil {
		return Error{InvalidParams, err.Error()}
	}
	return nil
}
