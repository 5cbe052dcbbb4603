package errors

import (
	"fmt"
	"maps"
)

// AppError is an error with a client facing envelope.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	// Cause is logged, never sent.
	Cause error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into e and returns e.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if len(details) == 0 {
		return e
	}
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// New builds an error for code. An empty message uses the default message
// of the code.
func New(code ErrorCode, message string) *AppError {
	if message == "" {
		message = catalog[code].message
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: StatusOf(code),
		Retryable:  IsRetryableCode(code),
	}
}

// WithStatus builds an error for code answered with an explicit status, for
// statuses the catalog does not name.
func WithStatus(code ErrorCode, status int, message string) *AppError {
	e := New(code, message)
	e.HTTPStatus = status
	return e
}

func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable, "").WithDetail("service", service)
}

func RouteNotFound(method, path string) *AppError {
	return New(ErrCodeNotFound, "").WithDetails(map[string]any{"method": method, "path": path})
}

func MethodNotAllowed(method, path string) *AppError {
	return New(ErrCodeMethodNotAllowed, fmt.Sprintf("Method %s is not allowed for this route.", method)).
		WithDetails(map[string]any{"method": method, "path": path})
}

// InvalidInput reports a bad value. field may be empty.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation reports failed validation with a combined message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, "Missing required field: "+field).WithDetail("field", field)
}

func PayloadTooLarge(limit int64) *AppError {
	return New(ErrCodePayloadTooLarge, "").WithDetail("limit_bytes", limit)
}

// Unauthorized and Forbidden use the default message when reason is empty.
func Unauthorized(reason string) *AppError { return New(ErrCodeUnauthorized, reason) }

func Forbidden(reason string) *AppError { return New(ErrCodeForbidden, reason) }

// CSRFForbidden keeps the reason out of the message; it is a detail.
func CSRFForbidden(reason string) *AppError {
	return New(ErrCodeCSRFForbidden, "").WithDetail("reason", reason)
}

func Internal(cause error) *AppError {
	e := New(ErrCodeInternal, "")
	e.Cause = cause
	return e
}

// Configuration reports an invalid setting found at startup.
func Configuration(setting string, cause error) *AppError {
	e := New(ErrCodeConfiguration, fmt.Sprintf("Invalid configuration for %s.", setting)).WithDetail("setting", setting)
	e.Cause = cause
	return e
}
