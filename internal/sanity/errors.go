package sanity

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStore matches every *Error with errors.Is.
var ErrStore = errors.New("content store error")

// Error operations.
const (
	OpRequest = "request" // building or sending the request
	OpStatus  = "status"  // non-2xx response
	OpDecode  = "decode"  // unparseable response
)

// Error describes a failed round trip to the content store.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Op == OpStatus && e.Message != "":
		return fmt.Sprintf("content store: HTTP %d: %s", e.StatusCode, e.Message)
	case e.Op == OpStatus:
		return fmt.Sprintf("content store: HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("content store %s: %v", e.Op, e.Err)
	default:
		return "content store " + e.Op + " failed"
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports true for ErrStore.
func (e *Error) Is(target error) bool {
	return target == ErrStore
}
