package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	initialized bool
	opened      []TextDocumentItem
	exited      bool
}

func (f *fakeServer) Initialize(ctx context.Context, params InitializeParams) (ServerCapabilities, error) {
	f.initialized = true
	return ServerCapabilities{TextDocumentSync: SyncFull, HoverProvider: true}, nil
}
func (f *fakeServer) Shutdown(ctx context.Context) error { return nil }
func (f *fakeServer) Completion(ctx context.Context, doc TextDocumentIdentifier, pos Position) (CompletionList, error) {
	return CompletionList{}, nil
}
func (f *fakeServer) Hover(ctx context.Context, doc TextDocumentIdentifier, pos Position) ([]MarkedString, *Range, error) {
	return []MarkedString{{Value: "class App"}}, nil, nil
}
func (f *fakeServer) SignatureHelp(ctx context.Context, doc TextDocumentIdentifier, pos Position) (SignatureHelp, error) {
	return SignatureHelp{}, nil
}
func (f *fakeServer) GotoDefinition(ctx context.Context, doc TextDocumentIdentifier, pos Position) ([]Location, error) {
	return nil, nil
}
func (f *fakeServer) FindReferences(ctx context.Context, doc TextDocumentIdentifier, pos Position, includeDecl bool) ([]Location, error) {
	return nil, nil
}
func (f *fakeServer) DocumentSymbols(ctx context.Context, doc TextDocumentIdentifier) ([]SymbolInformation, error) {
	return nil, nil
}
func (f *fakeServer) WorkspaceSymbols(ctx context.Context, query string) ([]SymbolInformation, error) {
	return nil, nil
}
func (f *fakeServer) CodeAction(ctx context.Context, doc TextDocumentIdentifier, rng Range, cctx CodeActionContext) ([]Command, error) {
	return nil, nil
}
func (f *fakeServer) Rename(ctx context.Context, doc TextDocumentIdentifier, pos Position, newName string) (WorkspaceEdit, error) {
	return WorkspaceEdit{}, nil
}
func (f *fakeServer) FoldingRanges(ctx context.Context, doc TextDocumentIdentifier) ([]FoldingRange, error) {
	return nil, nil
}
func (f *fakeServer) OnExit(ctx context.Context) error { f.exited = true; return nil }
func (f *fakeServer) OnChangeConfiguration(ctx context.Context, settings map[string]interface{}) {}
func (f *fakeServer) OnOpenTextDocument(ctx context.Context, item TextDocumentItem) {
	f.opened = append(f.opened, item)
}
func (f *fakeServer) OnChangeTextDocument(ctx context.Context, item VersionedTextDocumentIdentifier, changes []TextDocumentContentChangeEvent) {
}
func (f *fakeServer) OnCloseTextDocument(ctx context.Context, item TextDocumentIdentifier)      {}
func (f *fakeServer) OnSaveTextDocument(ctx context.Context, item TextDocumentIdentifier)        {}
func (f *fakeServer) OnChangeWatchedFiles(ctx context.Context, changes []FileEvent)              {}

func writeFrame(t *testing.T, w *bytes.Buffer, v interface{}) {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	_, err = fmt.Fprintf(w, "Content-Length: %d\r\n\r\n%s", len(body), body)
	require.NoError(t, err)
}

func TestReadFrame_ParsesContentLengthHeader(t *testing.T) {
	var buf bytes.Buffer
	writeFrame(t, &buf, map[string]string{"hello": "world"})
	c := NewConnection(&buf)

	body, err := c.readFrame()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world"}`, string(body))
}

func TestReadFrame_MissingContentLengthErrors(t *testing.T) {
	buf := bytes.NewBufferString("\r\n")
	c := NewConnection(buf)

	_, err := c.readFrame()
	assert.Error(t, err)
}

func TestReadFrame_MalformedContentLengthErrors(t *testing.T) {
	buf := bytes.NewBufferString("Content-Length: not-a-number\r\n\r\n")
	c := NewConnection(buf)

	_, err := c.readFrame()
	assert.Error(t, err)
}

func TestWrite_EmitsContentLengthHeaderFollowedByBody(t *testing.T) {
	var buf bytes.Buffer
	c := NewConnection(&buf)

	require.NoError(t, c.write(map[string]string{"a": "b"}))

	reader := bufio.NewReader(&buf)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "Content-Length:")
}

func TestWriteError_UsesCustomCodeForLSPError(t *testing.T) {
	var buf bytes.Buffer
	c := NewConnection(&buf)

	c.writeError(json.RawMessage(`1`), Error{Code: InvalidParams, Message: "bad params"})

	var msg rawMessage
	decodeFrame(t, &buf, &msg)
	require.NotNil(t, msg.Error)
	assert.Equal(t, InvalidParams, msg.Error.Code)
	assert.Equal(t, "bad params", msg.Error.Message)
}

func TestWriteError_WrapsGenericErrorAsInternalError(t *testing.T) {
	var buf bytes.Buffer
	c := NewConnection(&buf)

	c.writeError(json.RawMessage(`1`), fmt.Errorf("boom"))

	var msg rawMessage
	decodeFrame(t, &buf, &msg)
	require.NotNil(t, msg.Error)
	assert.Equal(t, InternalError, msg.Error.Code)
}

func decodeFrame(t *testing.T, buf *bytes.Buffer, v interface{}) {
	t.Helper()
	c := NewConnection(buf)
	body, err := c.readFrame()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v))
}

func TestHandleCancel_InvokesRegisteredCancelFunc(t *testing.T) {
	c := NewConnection(&bytes.Buffer{})
	var cancelled bool
	c.cancels["1"] = func() { cancelled = true }

	c.handleCancel(json.RawMessage(`{"id":1}`))
	assert.True(t, cancelled)
}

func TestHandleCancel_UnknownIDIsNoOp(t *testing.T) {
	c := NewConnection(&bytes.Buffer{})
	assert.NotPanics(t, func() {
		c.handleCancel(json.RawMessage(`{"id":"missing"}`))
	})
}

func TestDispatchRequestMethod_RoutesHoverToServer(t *testing.T) {
	server := &fakeServer{}
	params, err := json.Marshal(textDocumentPositionParams{TextDocument: TextDocumentIdentifier{URI: "file:///A.groovy"}})
	require.NoError(t, err)

	result, err := dispatchRequestMethod(context.Background(), server, "textDocument/hover", params)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestDispatchRequestMethod_UnknownMethodReturnsMethodNotFound(t *testing.T) {
	server := &fakeServer{}
	_, err := dispatchRequestMethod(context.Background(), server, "textDocument/bogus", nil)
	require.Error(t, err)
	lspErr, ok := err.(Error)
	require.True(t, ok)
	assert.Equal(t, MethodNotFound, lspErr.Code)
}

func TestDispatchNotificationMethod_RoutesDidOpenToServer(t *testing.T) {
	server := &fakeServer{}
	params, err := json.Marshal(struct {
		TextDocument TextDocumentItem `json:"textDocument"`
	}{TextDocument: TextDocumentItem{URI: "file:///A.groovy", Text: "class A {}"}})
	require.NoError(t, err)

	dispatchNotificationMethod(context.Background(), server, "textDocument/didOpen", params)
	require.Len(t, server.opened, 1)
	assert.Equal(t, "file:///A.groovy", server.opened[0].URI)
}

func TestDispatchNotificationMethod_UnknownMethodIsNoOp(t *testing.T) {
	server := &fakeServer{}
	assert.NotPanics(t, func() {
		dispatchNotificationMethod(context.Background(), server, "textDocument/bogus", nil)
	})
}

func TestServe_RoundTripsInitializeRequestOverAPipe(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	server := &fakeServer{}
	conn := NewConnection(serverConn)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = conn.Serve(ctx, server) }()

	reqBody, err := json.Marshal(rawMessage{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "initialize", Params: json.RawMessage(`{}`)})
	require.NoError(t, err)
	_, err = fmt.Fprintf(clientConn, "Content-Length: %d\r\n\r\n%s", len(reqBody), reqBody)
	require.NoError(t, err)

	respCh := make(chan rawMessage, 1)
	go func() {
		reader := bufio.NewReader(clientConn)
		var length int
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			if line == "\r\n" {
				break
			}
			fmt.Sscanf(line, "Content-Length: %d", &length)
		}
		buf := make([]byte, length)
		if _, err := readFull(reader, buf); err != nil {
			return
		}
		var msg rawMessage
		if json.Unmarshal(buf, &msg) == nil {
			respCh <- msg
		}
	}()

	select {
	case msg := <-respCh:
		assert.Nil(t, msg.Error)
		assert.True(t, server.initialized)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for initialize response")
	}
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
