package mimecast

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultMinBackoff = time.Second
	defaultMaxBackoff = 60 * time.Second
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	timeout    time.Duration

	// Orchestrator retry budget and backoff shape.
	maxRetries int
	minBackoff time.Duration
	maxBackoff time.Duration
	jitter     bool

	// Low-level transport retry loop.
	transportRetries int
	transportRetryOn []int

	metricsRegistry prometheus.Registerer
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		baseURL:          DefaultBaseURL,
		timeout:          defaultTimeout,
		maxRetries:       defaultMaxRetries,
		minBackoff:       defaultMinBackoff,
		maxBackoff:       defaultMaxBackoff,
		jitter:           true,
		transportRetries: 3,
	}
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL directly, overriding any region.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithRegion selects the regional API base URL, e.g. RegionEU.
func WithRegion(region Region) Option {
	return func(c *clientConfig) {
		c.baseURL = region.BaseURL()
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-attempt HTTP timeout. Ignored when a custom
// HTTP client is supplied.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithMaxRetries sets the retry budget per failure kind. Throttled
// responses and transient failures are budgeted independently.
// Default: 3
func WithMaxRetries(count int) Option {
	return func(c *clientConfig) {
		c.maxRetries = count
	}
}

// WithMinBackoff sets the first retry delay. Subsequent delays double up
// to the maximum. Default: 1 second.
func WithMinBackoff(d time.Duration) Option {
	return func(c *clientConfig) {
		c.minBackoff = d
	}
}

// WithMaxBackoff caps the retry delay. Default: 60 seconds.
func WithMaxBackoff(d time.Duration) Option {
	return func(c *clientConfig) {
		c.maxBackoff = d
	}
}

// WithJitter enables or disables backoff randomization. When enabled each
// delay is scaled by a uniform factor in [0.5, 1.5). Default: enabled.
func WithJitter(enabled bool) Option {
	return func(c *clientConfig) {
		c.jitter = enabled
	}
}

// WithTransportRetries sets the retry budget of the low-level transport
// loop that runs underneath the rate-limit orchestrator. Default: 3.
func WithTransportRetries(count int) Option {
	return func(c *clientConfig) {
		c.transportRetries = count
	}
}

// WithTransportRetryOn sets the HTTP status codes the low-level transport
// loop retries. Default: [429, 500, 502, 503, 504]
func WithTransportRetryOn(statusCodes []int) Option {
	return func(c *clientConfig) {
		c.transportRetryOn = statusCodes
	}
}

// WithLogger sets a structured logger for request and retry events.
// Default: no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMetrics registers request, throttle, and quota-wait metrics with the
// given Prometheus registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.metricsRegistry = reg
	}
}
