// Package domainerrors carries failure categories from stores and services
// to the transport layer without either side knowing about HTTP.
package domainerrors

import "errors"

// Code is a transport-neutral failure category.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeTooLarge     Code = "too_large"
	CodeInternal     Code = "internal_error"

	// CodeInvariantViolation marks input that reached the domain without
	// passing validation first. It is a programming error, reported as 400.
	CodeInvariantViolation Code = "invariant_violation"
)

// Error is a coded failure. Details are rendered to clients next to the
// message, for example the validation messages or a blocking donor count.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, &Error{Code: c})
// works through wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// NewWithDetails builds an error whose details are shown to the client.
func NewWithDetails(code Code, msg string, details map[string]any) error {
	return &Error{Code: code, Message: msg, Details: details}
}

// Wrap attaches a message to err. An inner *Error keeps its code and
// details; any other error gets code.
func Wrap(err error, code Code, msg string) error {
	if inner, ok := As(err); ok {
		return &Error{Code: inner.Code, Message: msg, Details: inner.Details, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// DetailsOf returns the client-visible details of err, or nil.
func DetailsOf(err error) map[string]any {
	if e, ok := As(err); ok {
		return e.Details
	}
	return nil
}
