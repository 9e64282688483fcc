package ratelimit

import (
	"math/rand"
	"time"
)

// Policy computes exponential backoff delays for retry attempts. With
// Jitter enabled each delay is scaled by a uniform random factor in
// [0.5, 1.5) so concurrent callers spread out synchronized retries; with
// it disabled the schedule is fully deterministic.
type Policy struct {
	// Min is the delay before the first retry.
	Min time.Duration
	// Max caps the delay regardless of attempt number.
	Max time.Duration
	// Jitter randomizes each delay within half to one-and-a-half times
	// its deterministic value.
	Jitter bool
}

// DefaultPolicy matches the documented API defaults: one second doubling
// up to a sixty second ceiling, jitter enabled.
func DefaultPolicy() Policy {
	return Policy{
		Min:    time.Second,
		Max:    60 * time.Second,
		Jitter: true,
	}
}

// Delay returns the wait before retry number attempt (0 = first retry).
// Negative attempts are treated as 0.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	d := p.Min
	for i := 0; i < attempt && d < p.Max; i++ {
		d *= 2
	}
	if d > p.Max {
		d = p.Max
	}

	if p.Jitter {
		d = time.Duration(float64(d) * (0.5 + rand.Float64()))
	}
	return d
}
