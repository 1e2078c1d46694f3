package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/glog"
)

func TestNewRootCommand_RegistersExpectedSubcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "execute", "check", "version"}, names)
}

func TestVersionCommand_PrintsBuildVersion(t *testing.T) {
	cmd := newVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.RunE(cmd, nil))
	assert.Equal(t, buildVersion+"\n", out.String())
}

func TestReadWriter_JoinsDistinctReaderAndWriter(t *testing.T) {
	in := bytes.NewBufferString("hello")
	var out bytes.Buffer
	rw := readWriter{in, &out}

	buf := make([]byte, 5)
	n, err := rw.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	_, err = rw.Write([]byte("world"))
	require.NoError(t, err)
	assert.Equal(t, "world", out.String())
}

func TestServe_DrivesAnLSPConnectionOverAStream(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = serve(ctx, glog.Nop(), root, serverConn) }()

	reqBody, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params":  map[string]interface{}{},
	})
	require.NoError(t, err)
	_, err = fmt.Fprintf(clientConn, "Content-Length: %d\r\n\r\n%s", len(reqBody), reqBody)
	require.NoError(t, err)

	respCh := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4096)
		n, err := clientConn.Read(buf)
		if err == nil {
			respCh <- buf[:n]
		}
	}()

	select {
	case resp := <-respCh:
		assert.Contains(t, string(resp), "Content-Length")
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a response over the stream")
	}
}
