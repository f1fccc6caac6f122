package coordinator

import "errors"

// Errors returned by coordinator operations.
var (
	// ErrRegistrySealed indicates a panel was registered after setup.
	ErrRegistrySealed = errors.New("panel registry is sealed")

	// ErrDuplicatePanel indicates a panel name is already registered.
	ErrDuplicatePanel = errors.New("panel already registered")

	// ErrUnknownPanel indicates no panel has the requested name.
	ErrUnknownPanel = errors.New("unknown panel")
)
