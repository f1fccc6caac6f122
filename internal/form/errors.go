package form

import (
	"errors"
	"fmt"
)

// ErrBadReply indicates an endpoint answered with something other than
// the expected JSON document.
var ErrBadReply = errors.New("unexpected reply")

// TransportError is a request that did not produce an application answer:
// the connection failed or the server answered with a non-2xx status.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request failed: %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("request failed: %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
