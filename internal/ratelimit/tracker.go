package ratelimit

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// resetBuffer pads quota-reset waits to absorb clock skew between the
// client and the API.
const resetBuffer = time.Second

// Snapshot is the most recently observed rate-limit state for one
// endpoint key. A snapshot is only ever replaced wholesale from a single
// response's headers; fields are never merged across responses.
type Snapshot struct {
	// Limit is the total number of requests permitted in the current window.
	Limit int
	// Remaining is the number of requests left in the window.
	Remaining int
	// ResetAt is the absolute time the window resets.
	ResetAt time.Time
	// LastUpdated is when the snapshot was observed.
	LastUpdated time.Time
}

// Tracker holds quota snapshots keyed by endpoint. A single mutex covers
// both updates and the read used for wait decisions, so check-then-act
// stays atomic across concurrent callers hitting the same endpoint.
type Tracker struct {
	mu        sync.Mutex
	snapshots map[string]Snapshot
	logger    *zap.Logger

	now func() time.Time // test hook
}

// NewTracker creates an empty tracker. A nil logger disables logging.
func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		snapshots: make(map[string]Snapshot),
		logger:    logger,
		now:       time.Now,
	}
}

// Update records the quota snapshot for endpoint from raw header values.
// If any value is absent or unparseable the whole update is dropped and
// logged; a malformed header must never fail the request that carried it.
func (t *Tracker) Update(endpoint, limit, remaining, reset string) {
	if limit == "" || remaining == "" || reset == "" {
		return
	}

	lim, err := strconv.Atoi(limit)
	if err != nil {
		t.logger.Warn("unparseable rate limit header",
			zap.String("endpoint", endpoint), zap.String("limit", limit))
		return
	}
	rem, err := strconv.Atoi(remaining)
	if err != nil {
		t.logger.Warn("unparseable rate limit remaining header",
			zap.String("endpoint", endpoint), zap.String("remaining", remaining))
		return
	}
	resetUnix, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		t.logger.Warn("unparseable rate limit reset header",
			zap.String("endpoint", endpoint), zap.String("reset", reset))
		return
	}

	snap := Snapshot{
		Limit:       lim,
		Remaining:   rem,
		ResetAt:     time.Unix(resetUnix, 0),
		LastUpdated: t.now(),
	}

	t.mu.Lock()
	t.snapshots[endpoint] = snap
	t.mu.Unlock()

	t.logger.Debug("rate limit updated",
		zap.String("endpoint", endpoint),
		zap.Int("remaining", rem),
		zap.Int("limit", lim),
		zap.Time("reset_at", snap.ResetAt))
}

// Decision reports how long a caller should wait before hitting endpoint.
// Zero means proceed immediately: no snapshot is recorded, quota remains,
// or the recorded reset time has already passed (stale snapshot, proceed
// optimistically). An exhausted window yields the time until reset plus a
// one second buffer.
func (t *Tracker) Decision(endpoint string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, ok := t.snapshots[endpoint]
	if !ok || snap.Remaining > 0 {
		return 0
	}

	now := t.now()
	if snap.ResetAt.After(now) {
		return snap.ResetAt.Sub(now) + resetBuffer
	}
	return 0
}

// Snapshot returns the recorded snapshot for endpoint, if any.
func (t *Tracker) Snapshot(endpoint string) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap, ok := t.snapshots[endpoint]
	return snap, ok
}

// Snapshots returns a copy of every recorded snapshot keyed by endpoint.
func (t *Tracker) Snapshots() map[string]Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Snapshot, len(t.snapshots))
	for k, v := range t.snapshots {
		out[k] = v
	}
	return out
}
