package vybiumnumtheory

import (
	"context"
	"errors"
	"fmt"

	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/core"
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/nt"
)

// ErrorCode represents a Vybium number theory error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrInvalidInput represents operands for which no result exists: both
	// even, not coprime, zero modulus, or out-of-range parameters
	ErrInvalidInput

	// ErrResourceExhausted represents an arithmetic capacity or random source failure
	ErrResourceExhausted

	// ErrCanceled represents a search stopped by its context
	ErrCanceled

	// ErrInvalidCertificate represents a primality certificate that does not verify
	ErrInvalidCertificate
)

// Error represents a Vybium number theory error
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-numtheory error [%d]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-numtheory error [%d]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

// wrapError converts an internal error into an *Error
func wrapError(message string, err error) error {
	if err == nil {
		return nil
	}

	code := ErrUnknown
	switch {
	case errors.Is(err, nt.ErrInvalidInput), errors.Is(err, core.ErrDomain):
		code = ErrInvalidInput
	case errors.Is(err, core.ErrOutOfMemory), errors.Is(err, nt.ErrRandomSource):
		code = ErrResourceExhausted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = ErrCanceled
	case errors.Is(err, nt.ErrInvalidCertificate):
		code = ErrInvalidCertificate
	}

	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
