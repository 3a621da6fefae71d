package timectl

import (
	"errors"
	"fmt"
)

// ValidationError reports input that was rejected before any network or
// persistence I/O. It is never worth retrying; the caller must fix the
// record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNotFound is returned when an operation references an id unknown to
// the backend it was routed to.
var ErrNotFound = errors.New("time control not found")
