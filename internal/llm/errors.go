package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failed completion.
type ErrorCode string

const (
	ErrRateLimited   ErrorCode = "RATE_LIMITED"
	ErrUnavailable   ErrorCode = "UNAVAILABLE"
	ErrBadResponse   ErrorCode = "BAD_RESPONSE"
	ErrEmptyResponse ErrorCode = "EMPTY_RESPONSE"
	ErrNotConfigured ErrorCode = "NOT_CONFIGURED"
)

// APIError is a structured error for completion failures.
type APIError struct {
	Code       ErrorCode
	StatusCode int // HTTP status, 0 when no response was received
	Message    string
	Retryable  bool
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// CodeOf returns the ErrorCode carried by err, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// classifyTransportError wraps a network failure. Transport errors are
// retried since the request may never have reached the provider.
func classifyTransportError(err error) *APIError {
	return &APIError{
		Code:      ErrUnavailable,
		Message:   "completion request failed",
		Retryable: true,
		Cause:     err,
	}
}

// classifyHTTPError converts a non-2xx response into an APIError.
func classifyHTTPError(statusCode int, body string) *APIError {
	switch {
	case statusCode == http.StatusTooManyRequests:
		// The provider quota is per minute; retrying immediately only burns it.
		return &APIError{
			Code:       ErrRateLimited,
			StatusCode: statusCode,
			Message:    "completion provider rate limited",
		}
	case statusCode >= 500:
		return &APIError{
			Code:       ErrUnavailable,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("completion provider error (HTTP %d): %s", statusCode, body),
			Retryable:  true,
		}
	default:
		return &APIError{
			Code:       ErrBadResponse,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("completion request rejected (HTTP %d): %s", statusCode, body),
		}
	}
}
