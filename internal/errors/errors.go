// Package errors defines the coded error type used across color-service.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"
)

// Error codes surfaced by the service.
const (
	CodeInternal      = "INTERNAL"
	CodeHostnameUnset = "HOSTNAME_UNSET"
	CodeListenFailed  = "LISTEN_FAILED"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodePreflight     = "PREFLIGHT_FAILED"
)

// ErrHostnameUnset matches any error carrying CodeHostnameUnset via errors.Is.
var ErrHostnameUnset = &Error{Code: CodeHostnameUnset, Message: "HOSTNAME environment variable is not set"}

// Error is the coded error envelope written to logs and error responses.
type Error struct {
	Message   string    `json:"error"`
	Code      string    `json:"code"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	cause error
}

// Option mutates an Error during construction.
type Option func(*Error)

// New constructs a new Error with the provided code and message.
func New(code, message string, opts ...Option) *Error {
	err := &Error{
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(err)
	}
	return err
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail attaches a detail string.
func WithDetail(detail string) Option {
	return func(e *Error) {
		e.Detail = detail
	}
}

// WithRequestID attaches a request ID.
func WithRequestID(id string) Option {
	return func(e *Error) {
		e.RequestID = id
	}
}

// WithTimestamp overrides the default timestamp.
func WithTimestamp(ts time.Time) Option {
	return func(e *Error) {
		e.Timestamp = ts.UTC()
	}
}

// WithCause records the underlying error and copies its message into Detail
// when no detail was set.
func WithCause(cause error) Option {
	return func(e *Error) {
		e.cause = cause
		if cause != nil && e.Detail == "" {
			e.Detail = cause.Error()
		}
	}
}

// From coerces any error into an *Error.
// Errors without a coded error in their chain are wrapped as CodeInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded
	}
	return New(CodeInternal, "unexpected error occurred", WithCause(err))
}

// Marshal converts an error into the JSON envelope.
func Marshal(err error) ([]byte, error) {
	return json.Marshal(From(err))
}
