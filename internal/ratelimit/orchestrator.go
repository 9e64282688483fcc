package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Rate limit headers returned by the Mimecast API. Header lookup through
// http.Header is case-insensitive.
const (
	HeaderLimit     = "X-MC-Rate-Limit"
	HeaderRemaining = "X-MC-Rate-Limit-Remaining"
	HeaderReset     = "X-MC-Rate-Limit-Reset"
)

// Request describes one logical API call. The body is held as bytes so
// every retry attempt can resend it.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Transport performs a single HTTP exchange for the orchestrator.
// Implementations may run their own bounded low-level retry loop for
// connection failures and selected status codes; the orchestrator's
// budget is independent of it.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*http.Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*http.Response, error)

// RoundTrip implements Transport.
func (f TransportFunc) RoundTrip(ctx context.Context, req *Request) (*http.Response, error) {
	return f(ctx, req)
}

// Config configures an Orchestrator.
type Config struct {
	// Transport performs the actual HTTP exchanges. Required.
	Transport Transport
	// MaxRetries bounds retries per failure kind: throttling responses and
	// transient failures are budgeted independently, not combined.
	MaxRetries int
	// Backoff computes the wait between retries. The zero value is
	// replaced by DefaultPolicy.
	Backoff Policy
	// Tracker records quota snapshots. A fresh tracker is created when nil.
	Tracker *Tracker
	// Logger receives wait and retry events. A nil logger disables logging.
	Logger *zap.Logger
	// Metrics receives orchestrator counters. Optional.
	Metrics *Metrics
}

// Orchestrator executes API calls while honoring server-advertised quota.
// Before each send it waits out any exhausted quota window recorded for
// the endpoint; after each response it refreshes the quota snapshot from
// the rate-limit headers. 429 responses and transport failures are
// retried with exponential backoff until their respective budgets run
// out. All waits are cancellable through the request context.
//
// Responses with statuses in the 5xx range are retried like transport
// failures; once the budget is exhausted the last response is returned
// unchanged so the caller can classify it. The orchestrator never reads a
// returned response's body.
type Orchestrator struct {
	transport  Transport
	maxRetries int
	policy     Policy
	tracker    *Tracker
	logger     *zap.Logger
	metrics    *Metrics

	sleep func(ctx context.Context, d time.Duration) error // test hook
}

// NewOrchestrator validates cfg and creates an orchestrator.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Transport == nil {
		return nil, errors.New("ratelimit: transport is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("ratelimit: negative max retries %d", cfg.MaxRetries)
	}
	if cfg.Backoff == (Policy{}) {
		cfg.Backoff = DefaultPolicy()
	}
	if cfg.Backoff.Min <= 0 {
		return nil, fmt.Errorf("ratelimit: min backoff %v must be positive", cfg.Backoff.Min)
	}
	if cfg.Backoff.Max < cfg.Backoff.Min {
		return nil, fmt.Errorf("ratelimit: max backoff %v below min backoff %v",
			cfg.Backoff.Max, cfg.Backoff.Min)
	}
	if cfg.Tracker == nil {
		cfg.Tracker = NewTracker(cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Orchestrator{
		transport:  cfg.Transport,
		maxRetries: cfg.MaxRetries,
		policy:     cfg.Backoff,
		tracker:    cfg.Tracker,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		sleep:      sleepCtx,
	}, nil
}

// Tracker returns the quota tracker backing this orchestrator.
func (o *Orchestrator) Tracker() *Tracker {
	return o.tracker
}

// Execute runs the request through the quota/retry state machine and
// returns the first response that is neither a throttle nor a transient
// failure, unchanged. Exhausting the throttle budget yields a
// *RateLimitExceededError; exhausting the transient budget yields the
// underlying transport error, or the last 5xx response.
func (o *Orchestrator) Execute(ctx context.Context, req *Request) (*http.Response, error) {
	endpoint := EndpointKey(req.URL)
	logger := o.logger.With(zap.String("endpoint", endpoint))

	var throttled, transient int
	for {
		if wait := o.tracker.Decision(endpoint); wait > 0 {
			logger.Warn("quota exhausted, waiting for reset window",
				zap.Duration("wait", wait))
			o.metrics.quotaWait(endpoint, wait)
			if err := o.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		o.metrics.attempt(endpoint)
		resp, err := o.transport.RoundTrip(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			o.metrics.transientFailure(endpoint)
			transient++
			if transient > o.maxRetries {
				return nil, err
			}
			delay := o.policy.Delay(transient - 1)
			logger.Warn("request failed, backing off",
				zap.Int("attempt", transient),
				zap.Int("max_retries", o.maxRetries),
				zap.Duration("backoff", delay),
				zap.Error(err))
			if serr := o.sleep(ctx, delay); serr != nil {
				return nil, serr
			}
			continue
		}

		// Best effort: a response without parseable quota headers still
		// goes through the status branches below.
		o.tracker.Update(endpoint,
			resp.Header.Get(HeaderLimit),
			resp.Header.Get(HeaderRemaining),
			resp.Header.Get(HeaderReset))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			o.metrics.throttled(endpoint)
			throttled++
			if throttled > o.maxRetries {
				drain(resp)
				return nil, &RateLimitExceededError{Endpoint: endpoint, Retries: o.maxRetries}
			}
			drain(resp)
			delay := o.policy.Delay(throttled - 1)
			logger.Warn("throttled by server, backing off",
				zap.Int("attempt", throttled),
				zap.Int("max_retries", o.maxRetries),
				zap.Duration("backoff", delay))
			if err := o.sleep(ctx, delay); err != nil {
				return nil, err
			}

		case resp.StatusCode >= http.StatusInternalServerError:
			o.metrics.transientFailure(endpoint)
			transient++
			if transient > o.maxRetries {
				return resp, nil
			}
			drain(resp)
			delay := o.policy.Delay(transient - 1)
			logger.Warn("server error, backing off",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", transient),
				zap.Duration("backoff", delay))
			if err := o.sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			return resp, nil
		}
	}
}

// drain discards the remainder of a response body so the underlying
// connection can be reused, then closes it.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
