package asset

import (
	"errors"
	"fmt"
)

// Errors for asset loading.
var (
	// ErrUnknownTool is returned for a tool with no registered path.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrNotFound is returned by fetchers when the asset does not exist.
	ErrNotFound = errors.New("asset not found")

	// ErrNoInstaller is returned when a loader has nothing to install into.
	ErrNoInstaller = errors.New("no installer configured")
)

// LoadError describes a failed tool load.
type LoadError struct {
	Tool ToolID
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading tool %s from %s: %v", e.Tool, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
