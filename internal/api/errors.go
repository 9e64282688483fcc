package api

import (
	"fmt"
	"strings"
)

// APIError represents an HTTP-level error from the Mimecast API.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, msg)
}

// NetworkError represents a connection-level failure that outlived the
// transport retry budget.
type NetworkError struct {
	Err      error
	URL      string
	Attempts int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ResponseError represents failures reported inside a response envelope's
// fail array. Mimecast returns these with HTTP 200 for partial failures, so
// callers cannot rely on the status code alone.
type ResponseError struct {
	StatusCode int
	Failures   []Failure
}

func (e *ResponseError) Error() string {
	var parts []string
	for _, f := range e.Failures {
		for _, fe := range f.Errors {
			if fe.Code != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", fe.Code, fe.Message))
			} else {
				parts = append(parts, fe.Message)
			}
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return "request failed: " + strings.Join(parts, "; ")
}
