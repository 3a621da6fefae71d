package hue

import (
	"errors"
	"fmt"
)

// APIError is a semantic rejection reported by the bridge itself: the
// request reached the device but was refused. It is not worth retrying
// unchanged, unlike a transport error.
type APIError struct {
	Type        int
	Address     string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bridge rejected request: %s (type %d, address %s)", e.Description, e.Type, e.Address)
}

// IsRejection reports whether err is (or wraps) a bridge APIError.
// Anything else returned by the client is a transport-level failure the
// caller may retry.
func IsRejection(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
