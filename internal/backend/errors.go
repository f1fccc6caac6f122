package backend

import "errors"

// Errors returned by backend operations.
var (
	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNoCapability indicates no backend is registered for a kind and language.
	ErrNoCapability = errors.New("no backend for language")
)
