package tool

import (
	"errors"
	"fmt"
)

// Errors for tool host operations.
var (
	// ErrHostClosed is returned when operating on a closed host.
	ErrHostClosed = errors.New("tool host is closed")

	// ErrNotInstalled is returned when a tool's global symbol is absent.
	ErrNotInstalled = errors.New("tool not installed")

	// ErrSymbolMissing is returned when an installed script did not define
	// the symbol its tool is expected to provide.
	ErrSymbolMissing = errors.New("tool script did not define its symbol")

	// ErrUnsupportedKind is returned when a beautifier has no formatter for
	// the requested kind.
	ErrUnsupportedKind = errors.New("no formatter for kind")
)

// CompileError reports a failed compilation. It is an expected, user-facing
// result and is presented rather than propagated.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string {
	return e.Message
}

// ScriptError wraps a runtime failure inside a tool script.
type ScriptError struct {
	Tool string
	Func string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Tool, e.Func, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
