// Package fault declares the typed error kinds the semantic engine can
// surface to its callers. Engine-internal failures (a parse error in user
// source, a missed lookup) are recoverable: they attach to a Kind sentinel
// so call sites can classify them with errors.Is instead of matching
// strings.
package fault

import "github.com/pkg/errors"

// Kind is a sentinel identifying one of the error categories from the
// engine's error handling design. Kinds are compared with errors.Is.
type Kind struct{ name string }

func (k Kind) Error() string { return k.name }

var (
	// ErrParse signals a syntax or semantic problem in user source. It is
	// never propagated as an error from query methods; it is surfaced as a
	// Diagnostic attributed to a URI instead. The Kind exists so internal
	// plumbing that needs to distinguish "compiler produced diagnostics"
	// from "compiler crashed" can do so uniformly.
	ErrParse = Kind{"parse/compile-error"}

	// ErrInvalidArgument signals a malformed request: a negative coordinate
	// or an unparseable URI.
	ErrInvalidArgument = Kind{"invalid-argument"}

	// ErrNodeNotFound signals that no AST node covers a requested position.
	ErrNodeNotFound = Kind{"node-not-found"}

	// ErrSymbolNotFound signals that a reference could not be resolved
	// locally, globally, or via the classpath.
	ErrSymbolNotFound = Kind{"symbol-not-found"}

	// ErrCircularReference signals that resolution revisited a node already
	// on the resolution stack. Call sites must map this to ErrSymbolNotFound
	// before it reaches a query response, per the propagation policy.
	ErrCircularReference = Kind{"circular-reference"}

	// ErrClasspathMiss signals a class was found on the classpath but no
	// source is available under an openable URI scheme.
	ErrClasspathMiss = Kind{"classpath-miss"}

	// ErrDependencyResolutionFailure signals the build tool errored or
	// timed out during dependency resolution.
	ErrDependencyResolutionFailure = Kind{"dependency-resolution-failure"}

	// ErrWorkerUnavailable signals no worker supports the requested Groovy
	// version and feature set.
	ErrWorkerUnavailable = Kind{"worker-unavailable"}

	// ErrIO signals a disk read failure. When the engine cannot read a
	// file it records an error diagnostic with code "io" for that file and
	// leaves the file out of its context's compiled modules; the file is
	// not parsed as empty content and the failure is not logged. The other
	// files of the context still compile.
	ErrIO = Kind{"i/o error"}

	// ErrCancelled signals a long-running task observed cancellation at a
	// suspension point.
	ErrCancelled = Kind{"cancelled"}
)

// Wrap annotates err with kind so errors.Is(wrapped, kind) succeeds, and
// attaches msg as context via github.com/pkg/errors.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return errors.WithMessage(kind, msg)
	}
	return &wrapped{kind: kind, msg: msg, cause: err}
}

// New creates a new error of the given kind with no further wrapped cause.
func New(kind Kind, msg string) error {
	return errors.WithMessage(kind, msg)
}

type wrapped struct {
	kind  Kind
	msg   string
	cause error
}

func (w *wrapped) Error() string { return w.msg + ": " + w.cause.Error() }
func (w *wrapped) Unwrap() error { return w.cause }
func (w *wrapped) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == w.kind
}
