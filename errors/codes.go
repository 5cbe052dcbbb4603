package errors

import "net/http"

// ErrorCode is the machine-readable code carried in the error envelope.
type ErrorCode string

const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"

	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField    ErrorCode = "MISSING_FIELD"
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"

	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeCSRFForbidden ErrorCode = "CSRF_FORBIDDEN"

	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
)

type class struct {
	status    int
	retryable bool
	message   string
}

var catalog = map[ErrorCode]class{
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, true, "The service is temporarily unavailable. Please try again."},
	ErrCodeNotFound:           {http.StatusNotFound, false, "No route matches the request."},
	ErrCodeMethodNotAllowed:   {http.StatusMethodNotAllowed, false, "The method is not allowed for this route."},
	ErrCodeInvalidInput:       {http.StatusBadRequest, false, "The request is invalid."},
	ErrCodeMissingField:       {http.StatusBadRequest, false, "A required field is missing."},
	ErrCodePayloadTooLarge:    {http.StatusRequestEntityTooLarge, false, "Request body is too large."},
	ErrCodeUnauthorized:       {http.StatusUnauthorized, false, "Authentication required."},
	ErrCodeForbidden:          {http.StatusForbidden, false, "You don't have permission to perform this action."},
	ErrCodeCSRFForbidden:      {http.StatusForbidden, false, "The anti-forgery token is missing or invalid."},
	ErrCodeInternal:           {http.StatusInternalServerError, false, "An unexpected error occurred. Please try again or contact support."},
	ErrCodeConfiguration:      {http.StatusInternalServerError, false, "The service is misconfigured."},
}

// IsRetryableCode reports whether clients may retry a request that failed
// with code.
func IsRetryableCode(code ErrorCode) bool {
	return catalog[code].retryable
}

// StatusOf returns the HTTP status of code. Unknown codes are 500.
func StatusOf(code ErrorCode) int {
	if c, ok := catalog[code]; ok {
		return c.status
	}
	return http.StatusInternalServerError
}
