// Command groovyls is the Groovy Language Server's CLI entry point. It is
// deliberately thin: it wires lsp's JSON-RPC framing to a session.Session
// and performs no semantic reasoning of its own.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/glog"
	"github.com/albertocavalcante/groovy-lsp-sub001/lsp"
)

var buildVersion = "dev"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "groovyls",
		Short: "Groovy Language Server",
	}
	root.AddCommand(newServeCommand(), newExecuteCommand(), newCheckCommand(), newVersionCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "serve [stdio|socket] [port]",
		Short: "Start the language server",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := "stdio"
			if len(args) > 0 {
				mode = args[0]
			}

			// stdout is reserved for the LSP protocol stream. os.Stdout is
			// pointed at stderr before the logger is constructed, so
			// anything written through os.Stdout lands on stderr; writes
			// made directly to file descriptor 1 are not redirected.
			realStdout := os.Stdout
			os.Stdout = os.Stderr

			log, err := glog.New(false)
			if err != nil {
				return fmt.Errorf("constructing logger: %w", err)
			}
			defer log.Sync()

			switch mode {
			case "stdio":
				return serve(cmd.Context(), log, root, readWriter{os.Stdin, realStdout})
			case "socket":
				port := "2087"
				if len(args) > 1 {
					port = args[1]
				}
				return serveSocket(cmd.Context(), log, root, port)
			default:
				return fmt.Errorf("unknown serve mode %q, want stdio or socket", mode)
			}
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "workspace root directory")
	return cmd
}

// newExecuteCommand is a thin delegating wrapper around
// workspace/executeCommand, for editors or scripts that want to trigger a
// code action's command (e.g. an import quick fix) outside a live LSP
// session. The server keeps no command registry; this subcommand only
// reports the name it was asked to run,
// since executing an edit-producing command against a one-shot CLI
// invocation has no live document session to apply the edit to.
func newExecuteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "execute <command> [args...]",
		Short: "Execute a named server command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("command %q is only executable within a live session\n", args[0])
			return nil
		},
	}
}

func newCheckCommand() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile the workspace once and print diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newAdapter(glog.Nop(), root)
			result, err := a.sv.Initialize(cmd.Context(), nil)
			if err != nil {
				return err
			}
			for _, forURI := range result {
				for _, d := range forURI.Diagnostics {
					fmt.Printf("%s:%d:%d: %s\n", forURI.URI, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Message)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "workspace root directory")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion)
			return nil
		},
	}
}

// readWriter joins separate input/output files into one io.ReadWriter, for
// the stdio transport where the connection's read and write halves are two
// different file descriptors.
type readWriter struct {
	io.Reader
	io.Writer
}

func serve(ctx context.Context, log glog.Logger, root string, stream io.ReadWriter) error {
	a := newAdapter(log, root)
	conn := lsp.NewConnection(stream)
	return conn.Serve(ctx, a)
}

func serveSocket(ctx context.Context, log glog.Logger, root, port string) error {
	ln, err := net.Listen("tcp", "localhost:"+port)
	if err != nil {
		return fmt.Errorf("listening on port %s: %w", port, err)
	}
	defer ln.Close()

	log.Info("listening for a single client connection", "port", port)
	c, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accepting connection: %w", err)
	}
	defer c.Close()

	return serve(ctx, log, root, c)
}
