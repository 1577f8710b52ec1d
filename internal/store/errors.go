package store

import "fmt"

// Code is a machine-readable error code.
type Code string

// Error codes used by store implementations.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeInvalidInput  Code = "INVALID_INPUT"
)

// Error is a domain error with a machine-readable code.
type Error struct {
	Code    Code   // Error classification
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match any *Error with the same code, so wrapped store
// errors still compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    CodeNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    CodeAlreadyExists,
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Code:    CodeInvalidInput,
		Message: "invalid input",
	}
)
