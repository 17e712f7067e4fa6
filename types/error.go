package types

import (
	"errors"
	"fmt"
)

// ErrorCode is the closed set of failure kinds every provider error is normalized into.
type ErrorCode string

const (
	ErrAuthentication       ErrorCode = "AUTHENTICATION"
	ErrRateLimit            ErrorCode = "RATE_LIMIT"
	ErrTimeout              ErrorCode = "TIMEOUT"
	ErrContentFilter        ErrorCode = "CONTENT_FILTER"
	ErrNetwork              ErrorCode = "NETWORK"
	ErrAPI                  ErrorCode = "API_ERROR"
	ErrInvalidModel         ErrorCode = "INVALID_MODEL"
	ErrUnsupportedOperation ErrorCode = "UNSUPPORTED_OPERATION"
	ErrUnknown              ErrorCode = "UNKNOWN"
)

// AllErrorCodes lists every code in declaration order.
func AllErrorCodes() []ErrorCode {
	return []ErrorCode{
		ErrAuthentication,
		ErrRateLimit,
		ErrTimeout,
		ErrContentFilter,
		ErrNetwork,
		ErrAPI,
		ErrInvalidModel,
		ErrUnsupportedOperation,
		ErrUnknown,
	}
}

// Error is the normalized error carried across the client contract.
// Fields are set once by NewError and must not be modified afterwards.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Cause      error     `json:"-"`
}

// ErrorOption sets optional metadata while an Error is being constructed.
type ErrorOption func(*Error)

// WithHTTPStatus records the HTTP status returned by the vendor.
func WithHTTPStatus(status int) ErrorOption {
	return func(e *Error) { e.HTTPStatus = status }
}

// WithProvider records the provider name.
func WithProvider(provider string) ErrorOption {
	return func(e *Error) { e.Provider = provider }
}

// WithRequestID records the vendor request id, if one was returned.
func WithRequestID(id string) ErrorOption {
	return func(e *Error) { e.RequestID = id }
}

// WithCause keeps the original error for errors.Is / errors.As.
func WithCause(cause error) ErrorOption {
	return func(e *Error) { e.Cause = cause }
}

// NewError creates an Error with the given code and message.
func NewError(code ErrorCode, message string, opts ...ErrorOption) *Error {
	e := &Error{Code: code, Message: message}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code,
// so errors.Is(err, types.NewError(types.ErrRateLimit, "")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the failure is transient. The client never
// retries on its own; the flag is for callers that implement a policy.
func (e *Error) Retryable() bool {
	switch e.Code {
	case ErrRateLimit, ErrNetwork, ErrTimeout:
		return true
	default:
		return false
	}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of err, or "" when err carries no *Error.
func CodeOf(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsErrorCode checks whether err carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable()
	}
	return false
}
