package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// default error is internal server error at handler level
// if error should map to a different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// ErrDuplicateEmail marks a subscriber insert that hit the unique email
// index. It is distinguishable with errors.Is but still surfaces to HTTP
// clients as a generic server error.
var ErrDuplicateEmail = errors.New("subscriber with this email already exists")

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation error: %s", e.Message)
}

// IsNotFound reports whether err carries a 404 status code.
func IsNotFound(err error) bool {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
