package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkErrorWithEndpoint("open stream", "https://example.test/stream", cause)

	expected := "network error during open stream at https://example.test/stream: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to unwrap to its cause")
	}

	// Without endpoint
	err = NewNetworkError("read stream", cause)
	expected = "network error during read stream: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestAPIError(t *testing.T) {
	err := NewAPIError(502, "test-endpoint", "stream request failed")

	expected := "API error [502] at test-endpoint: stream request failed"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	err = NewAPIError(0, "test-endpoint", "no status")
	expected = "API error at test-endpoint: no status"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestCancelledError(t *testing.T) {
	err := NewCancelledError(context.Canceled)

	if err.Error() != "stream cancelled" {
		t.Errorf("Error() = %s, want stream cancelled", err.Error())
	}

	if !errors.Is(err, context.Canceled) {
		t.Error("Expected CancelledError to match context.Canceled")
	}

	if !err.Is(NewCancelledError(nil)) {
		t.Error("Expected CancelledError to match another CancelledError")
	}

	if err.Is(errors.New("other")) {
		t.Error("Expected CancelledError not to match a standard error")
	}
}

func TestMalformedFrameError(t *testing.T) {
	err := NewMalformedFrameError("{oops", "invalid JSON")

	expected := "malformed frame: invalid JSON"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("MalformedFrameError should match ErrInvalidResponse")
	}
}

func TestFrameTooLargeError(t *testing.T) {
	err := NewFrameTooLargeError(2048, 1024)

	expected := "frame exceeds 1024 bytes (buffered 2048)"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestPredicates(t *testing.T) {
	netErr := NewNetworkError("open stream", errors.New("dns"))
	apiErr := NewAPIErrorWithBody(500, "ep", "failed", "boom")
	cancelled := NewCancelledError(context.Canceled)
	tooLarge := NewFrameTooLargeError(10, 5)
	malformed := NewMalformedFrameError("x", "bad")

	tests := []struct {
		name      string
		err       error
		network   bool
		api       bool
		cancelled bool
		tooLarge  bool
		malformed bool
	}{
		{"network", netErr, true, false, false, false, false},
		{"wrapped network", fmt.Errorf("turn: %w", netErr), true, false, false, false, false},
		{"api", apiErr, false, true, false, false, false},
		{"cancelled", cancelled, false, false, true, false, false},
		{"bare context canceled", context.Canceled, false, false, true, false, false},
		{"too large", tooLarge, false, false, false, true, false},
		{"malformed", malformed, false, false, false, false, true},
		{"nil", nil, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetworkError(tt.err); got != tt.network {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.network)
			}
			if got := IsAPIError(tt.err); got != tt.api {
				t.Errorf("IsAPIError() = %v, want %v", got, tt.api)
			}
			if got := IsCancelled(tt.err); got != tt.cancelled {
				t.Errorf("IsCancelled() = %v, want %v", got, tt.cancelled)
			}
			if got := IsFrameTooLarge(tt.err); got != tt.tooLarge {
				t.Errorf("IsFrameTooLarge() = %v, want %v", got, tt.tooLarge)
			}
			if got := IsMalformedFrame(tt.err); got != tt.malformed {
				t.Errorf("IsMalformedFrame() = %v, want %v", got, tt.malformed)
			}
		})
	}
}

func TestGetters(t *testing.T) {
	apiErr := fmt.Errorf("wrapped: %w", NewAPIErrorWithBody(503, "https://ep", "unavailable", "try later"))

	if got := GetHTTPStatus(apiErr); got != 503 {
		t.Errorf("GetHTTPStatus() = %d, want 503", got)
	}
	if got := GetEndpoint(apiErr); got != "https://ep" {
		t.Errorf("GetEndpoint() = %s, want https://ep", got)
	}
	if got := GetResponseBody(apiErr); got != "try later" {
		t.Errorf("GetResponseBody() = %s, want try later", got)
	}

	netErr := NewNetworkErrorWithEndpoint("open stream", "https://net", errors.New("refused"))
	if got := GetEndpoint(netErr); got != "https://net" {
		t.Errorf("GetEndpoint() = %s, want https://net", got)
	}
	if got := GetHTTPStatus(netErr); got != 0 {
		t.Errorf("GetHTTPStatus() = %d, want 0", got)
	}
	if got := GetResponseBody(errors.New("plain")); got != "" {
		t.Errorf("GetResponseBody() = %s, want empty", got)
	}
}
