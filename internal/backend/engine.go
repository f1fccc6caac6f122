// Package backend provides the rich editing backends that panels bind to.
//
// A backend owns the editable text of a panel while it is bound. The
// capability Registry decides which backend, if any, serves a given panel
// kind and language; panels without a backend fall back to raw storage.
package backend

import (
	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/shortcut"
)

// Kind identifies the panel a backend is built for.
type Kind string

// Panel kinds.
const (
	KindMarkup Kind = "markup"
	KindStyle  Kind = "style"
	KindScript Kind = "script"
)

// ReservedFunc reports whether a key must bypass the backend.
type ReservedFunc func(ev shortcut.Event) bool

// RouteFunc receives keys that bypassed the backend.
type RouteFunc func(ev shortcut.Event)

// Engine is the contract every editing backend satisfies.
type Engine interface {
	// Language returns the language the backend was built for.
	Language() language.Language

	// Content returns the full text.
	Content() string

	// SetContent replaces the text. It is recorded in undo history.
	SetContent(text string)

	// Reset discards tokenizer state and undo history.
	Reset()

	// Focus gives the backend keyboard focus.
	Focus()

	// Reindent re-indents every line.
	Reindent()

	// InterceptKeys installs the reserved-key hook. Keys for which
	// isReserved returns true are passed to route and never edit text.
	InterceptKeys(isReserved ReservedFunc, route RouteFunc)

	// HandleKey processes a key press and reports whether it was consumed.
	HandleKey(ev shortcut.Event) bool

	// Close releases the backend. Further calls are no-ops.
	Close() error
}

// Point is a zero-based line/column position, column counted in runes.
type Point struct {
	Line int
	Col  int
}

// Viewer is implemented by backends that can be rendered line by line.
type Viewer interface {
	Lines() []string
	Cursor() Point
	Tokens(line int) []Token
}
