// Package dto defines API request/response types and error handling.
//
// Request types bind parameters with path/query/json struct tags and
// implement Validatable. Response types use string IDs and RFC3339
// timestamps. The package does not depend on the domain packages; the
// handlers package converts between the two.
//
// Errors follow a structured pattern:
//   - ErrorCode provides machine-readable error classification
//   - APIError wraps errors with HTTP status codes and details
//   - Constructor functions (NotFound, BadRequest, etc.) create common errors
package dto

import (
	"fmt"
	"net/http"
)

// ErrorCode classifies an API error for clients.
type ErrorCode string

// Request errors.
const (
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrorCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	ErrorCodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Lookup errors.
const (
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeProductNotFound ErrorCode = "PRODUCT_NOT_FOUND"
)

// Server side errors.
const (
	// ErrorCodeUnavailable means a data file the endpoint needs is missing.
	ErrorCodeUnavailable       ErrorCode = "UNAVAILABLE"
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// ErrorDetails is the "error" object of an error response.
type ErrorDetails struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   ErrorDetails   `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorWithStatus is implemented by errors that map to an HTTP response.
type ErrorWithStatus interface {
	Error() string
	StatusCode() int
	Code() ErrorCode
	Details() map[string]any
}

// APIError is the ErrorWithStatus returned by handlers.
type APIError struct {
	status  int
	code    ErrorCode
	msg     string
	details map[string]any
	cause   error
}

// NewAPIError returns an error rendered with the given status and code.
func NewAPIError(statusCode int, code ErrorCode, message string) *APIError {
	return &APIError{status: statusCode, code: code, msg: message}
}

// WithDetails merges details into the error.
func (e *APIError) WithDetails(details map[string]any) *APIError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// WithDetail sets one detail.
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.details == nil {
		e.details = map[string]any{}
	}
	e.details[key] = value
	return e
}

// Wrap records the underlying cause.
func (e *APIError) Wrap(err error) *APIError {
	e.cause = err
	return e
}

func (e *APIError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

// StatusCode implements ErrorWithStatus.
func (e *APIError) StatusCode() int { return e.status }

// Code implements ErrorWithStatus.
func (e *APIError) Code() ErrorCode { return e.code }

// Details implements ErrorWithStatus.
func (e *APIError) Details() map[string]any { return e.details }

func (e *APIError) Unwrap() error { return e.cause }

// NotFound is a 404 for a generic resource.
func NotFound(resource string) *APIError {
	return NewAPIError(http.StatusNotFound, ErrorCodeNotFound, resource+" not found")
}

// ProductNotFound is a 404 for a name missing from the corpus.
func ProductNotFound(name string) *APIError {
	return NewAPIError(http.StatusNotFound, ErrorCodeProductNotFound, "product not found").WithDetail("name", name)
}

// BadRequest is a 400 with a free-form message.
func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeValidationFailed, message)
}

// MissingField is a 400 for a required field left empty.
func MissingField(fieldName string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeMissingField, "Missing required field: "+fieldName)
}

// InvalidField is a 400 for a field with an unacceptable value.
func InvalidField(fieldName, reason string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeInvalidFormat, fmt.Sprintf("Invalid field %s: %s", fieldName, reason)).
		WithDetail("field", fieldName)
}

// Unavailable is a 503 for a data source that is not loaded.
func Unavailable(what string) *APIError {
	return NewAPIError(http.StatusServiceUnavailable, ErrorCodeUnavailable, what+" is not available")
}

// RateLimitExceeded is a 429 telling the client when to retry.
func RateLimitExceeded(retryAfterSeconds int) *APIError {
	return NewAPIError(http.StatusTooManyRequests, ErrorCodeRateLimitExceeded,
		fmt.Sprintf("rate limit exceeded, retry after %ds", retryAfterSeconds)).
		WithDetail("retry_after", retryAfterSeconds)
}

// PayloadTooLarge is a 413 for a request body over limit bytes.
func PayloadTooLarge(limit int64) *APIError {
	return NewAPIError(http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "request body too large").
		WithDetail("max_bytes", limit)
}

// Internal is a 500.
func Internal(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, ErrorCodeInternal, message)
}

// InternalWithError is a 500 wrapping err.
func InternalWithError(message string, err error) *APIError {
	return Internal(message).Wrap(err)
}
