// Package apperr holds the error kinds that cross package boundaries of the
// ingestion pipeline and are mapped to client responses by the HTTP layer.
package apperr

import (
	"errors"
)

var (
	// ErrDecode reports bytes that are not a recognizable image container.
	ErrDecode = errors.New("image could not be decoded")

	ErrUnsupportedExtension = errors.New("unsupported extension")
)

// ValidationError is a client error. Reason is safe to show to the caller,
// the wrapped error is not.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func Validation(reason string, err error) error {
	return &ValidationError{Reason: reason, Err: err}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
