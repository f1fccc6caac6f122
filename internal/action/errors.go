package action

import (
	"errors"
	"fmt"
)

// Errors returned by the pipeline.
var (
	// ErrUnknownAction indicates no handler is bound to a name.
	ErrUnknownAction = errors.New("unknown action")

	// ErrNoPanel indicates a required panel is not registered.
	ErrNoPanel = errors.New("panel not registered")

	// ErrMissingArgument indicates an action was triggered without its argument.
	ErrMissingArgument = errors.New("missing argument")
)

// Error is a failed action.
type Error struct {
	Action string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
