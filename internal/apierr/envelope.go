package apierr

import (
	"encoding/json"
	"time"
)

// Envelope is the standard API response shape: exactly one of Data or Error
// is populated depending on Success.
type Envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     *EnvelopeError  `json:"error,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// EnvelopeError is the wire form of a classified failure.
type EnvelopeError struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Success wraps a payload in the standard envelope.
func Success(data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Success:   true,
		Data:      raw,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Failure wraps a classified error in the standard envelope.
func Failure(err *Error) Envelope {
	return Envelope{
		Success: false,
		Error: &EnvelopeError{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Err converts the envelope's error payload (if any) into an *Error with
// the mapped HTTP status. statusCode overrides the table mapping when the
// transport reported a concrete status.
func (e Envelope) Err(statusCode int) error {
	if e.Success || e.Error == nil {
		return nil
	}
	apiErr := &Error{
		Code:       e.Error.Code,
		Message:    e.Error.Message,
		StatusCode: StatusFor(e.Error.Code),
		Details:    e.Error.Details,
	}
	if statusCode > 0 {
		apiErr.StatusCode = statusCode
	}
	return apiErr
}
