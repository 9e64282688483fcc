package ratelimit

import (
	"errors"
	"fmt"
)

// ErrRateLimitExceeded is matched by errors.Is when every throttling
// retry for an endpoint has been consumed.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// RateLimitExceededError reports that a call gave up after the server
// kept answering 429 through the whole retry budget.
type RateLimitExceededError struct {
	// Endpoint is the quota bucket key the call was tracked under.
	Endpoint string
	// Retries is the number of retries consumed before giving up.
	Retries int
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s after %d retries", e.Endpoint, e.Retries)
}

// Is implements errors.Is for sentinel error matching.
func (e *RateLimitExceededError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}
