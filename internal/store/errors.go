package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by store operations. Callers classify with
// errors.Is and map them to API error descriptors at the boundary.
var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate indicates an insert collided with an existing record ID
	// or a unique index.
	ErrDuplicate = errors.New("document already exists")

	// ErrInvalidQuery indicates malformed list-query input (page, limit,
	// filter, sort, select or aggregator).
	ErrInvalidQuery = errors.New("invalid query parameters")
)

// ValidationError reports a rejected document on a create path. Its message
// is returned verbatim in the response details, so repositories phrase it
// for the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
