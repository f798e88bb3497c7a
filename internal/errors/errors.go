// Package errors provides custom error types for the ssechat stream client.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyInput      = errors.New("input cannot be empty")
	ErrTurnInProgress  = errors.New("a turn is already streaming")
	ErrClientClosed    = errors.New("client is closed")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoBody          = errors.New("response has no body")
)

// NetworkError represents a transport failure: connection refused, DNS
// failure, a broken read, or a response that is not a stream.
type NetworkError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Cause: cause}
}

// NewNetworkErrorWithEndpoint creates a new NetworkError tagged with the endpoint
func NewNetworkErrorWithEndpoint(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Cause: cause}
}

// APIError represents a non-2xx answer from the stream endpoint
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError carrying the response body for diagnostics
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// CancelledError represents a turn stopped by the user
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return "stream cancelled"
}

func (e *CancelledError) Unwrap() error {
	return e.Cause
}

// Is matches context.Canceled so callers can test either form
func (e *CancelledError) Is(target error) bool {
	if target == context.Canceled {
		return true
	}
	_, ok := target.(*CancelledError)
	return ok
}

// NewCancelledError creates a new CancelledError
func NewCancelledError(cause error) *CancelledError {
	return &CancelledError{Cause: cause}
}

// MalformedFrameError represents a data frame whose payload could not be parsed.
// It is recovered by dropping the frame; streams never fail with it.
type MalformedFrameError struct {
	Data   string
	Reason string
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed frame: %s", e.Reason)
}

// Is allows comparison with sentinel errors
func (e *MalformedFrameError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*MalformedFrameError)
	return ok
}

// NewMalformedFrameError creates a new MalformedFrameError
func NewMalformedFrameError(data, reason string) *MalformedFrameError {
	return &MalformedFrameError{Data: data, Reason: reason}
}

// FrameTooLargeError represents a partial frame that outgrew the decode buffer cap.
// It is fatal for the stream.
type FrameTooLargeError struct {
	Size  int
	Limit int
}

func (e *FrameTooLargeError) Error() string {
	return fmt.Sprintf("frame exceeds %d bytes (buffered %d)", e.Limit, e.Size)
}

// NewFrameTooLargeError creates a new FrameTooLargeError
func NewFrameTooLargeError(size, limit int) *FrameTooLargeError {
	return &FrameTooLargeError{Size: size, Limit: limit}
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsAPIError reports whether err is a non-2xx answer
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsCancelled reports whether err is a user cancellation
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	var cancelled *CancelledError
	return errors.As(err, &cancelled) || errors.Is(err, context.Canceled)
}

// IsMalformedFrame reports whether err is a dropped data frame
func IsMalformedFrame(err error) bool {
	var malformed *MalformedFrameError
	return errors.As(err, &malformed)
}

// IsFrameTooLarge reports whether err is a decode buffer overflow
func IsFrameTooLarge(err error) bool {
	var tooLarge *FrameTooLargeError
	return errors.As(err, &tooLarge)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the response body carried by err, or ""
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}
