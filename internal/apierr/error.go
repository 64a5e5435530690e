package apierr

import (
	"errors"
	"fmt"
)

// Error is a classified backend failure carrying the taxonomy code, the
// mapped HTTP status, and optional per-field details.
type Error struct {
	Code       Code
	Message    string
	StatusCode int
	Details    map[string]any
}

// New builds an Error with the status derived from the code table.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, StatusCode: StatusFor(code)}
}

// WithDetails attaches structured detail fields to the error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FromError extracts a classified Error from an error chain.
func FromError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// CodeOf returns the taxonomy code of a classified error, or
// CodeInternalServerError for unclassified failures.
func CodeOf(err error) Code {
	if apiErr, ok := FromError(err); ok {
		return apiErr.Code
	}
	return CodeInternalServerError
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code Code) bool {
	apiErr, ok := FromError(err)
	return ok && apiErr.Code == code
}
