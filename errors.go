package mimecast

import (
	"errors"
	"fmt"

	"github.com/gh-tking/mimecast-sdk/internal/api"
	"github.com/gh-tking/mimecast-sdk/internal/ratelimit"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingCredentials is returned when no client ID or secret is provided.
	ErrMissingCredentials = errors.New("client ID and secret are required")

	// ErrUnauthorized is returned when the credentials are invalid or expired.
	ErrUnauthorized = errors.New("invalid or expired credentials")

	// ErrForbidden is returned when the account lacks permission for an endpoint.
	ErrForbidden = errors.New("permission denied")

	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited is returned when the retry budget for throttled
	// requests has been exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// MimecastError is implemented by all SDK errors.
type MimecastError interface {
	error
	MimecastError() // marker method
}

// APIError represents an HTTP error from the Mimecast API.
type APIError struct {
	StatusCode int
	Message    string
	Code       string // Mimecast error code, e.g. "err_developer_key"
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

// MimecastError implements the MimecastError interface.
func (e *APIError) MimecastError() {}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401:
		return target == ErrUnauthorized
	case 403:
		return target == ErrForbidden
	case 404:
		return target == ErrNotFound
	case 429:
		return target == ErrRateLimited
	}
	return false
}

// RateLimitError is returned when a request stayed throttled through the
// entire retry budget.
type RateLimitError struct {
	Endpoint string
	Retries  int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s after %d retries", e.Endpoint, e.Retries)
}

// Is implements errors.Is for sentinel error matching.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// MimecastError implements the MimecastError interface.
func (e *RateLimitError) MimecastError() {}

// NetworkError represents a connection-level failure.
type NetworkError struct {
	Err      error
	URL      string
	Attempts int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MimecastError implements the MimecastError interface.
func (e *NetworkError) MimecastError() {}

// ResponseError represents failures reported inside a response envelope.
// The API returns these with HTTP 200 for partial failures.
type ResponseError struct {
	StatusCode int
	Entries    []ResponseFailure
	msg        string
}

// ResponseFailure is one failed item from a response's fail array.
type ResponseFailure struct {
	Code    string
	Message string
}

func (e *ResponseError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// MimecastError implements the MimecastError interface.
func (e *ResponseError) MimecastError() {}

// ValidationError contains request validation failures detected before any
// request is sent.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Errors)
}

// MimecastError implements the MimecastError interface.
func (e *ValidationError) MimecastError() {}

// wrapError converts internal errors to public errors so that errors.Is()
// checks work with the package's sentinel errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var rle *ratelimit.RateLimitExceededError
	if errors.As(err, &rle) {
		return &RateLimitError{Endpoint: rle.Endpoint, Retries: rle.Retries}
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			Code:       apiErr.Code,
		}
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return &NetworkError{
			Err:      netErr.Err,
			URL:      netErr.URL,
			Attempts: netErr.Attempts,
		}
	}

	var respErr *api.ResponseError
	if errors.As(err, &respErr) {
		public := &ResponseError{StatusCode: respErr.StatusCode, msg: respErr.Error()}
		for _, f := range respErr.Failures {
			for _, fe := range f.Errors {
				public.Entries = append(public.Entries, ResponseFailure{
					Code:    fe.Code,
					Message: fe.Message,
				})
			}
		}
		return public
	}

	return err
}
