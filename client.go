package mimecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/gh-tking/mimecast-sdk/internal/api"
	"github.com/gh-tking/mimecast-sdk/internal/auth"
	"github.com/gh-tking/mimecast-sdk/internal/ratelimit"
	"github.com/gh-tking/mimecast-sdk/secrets"
)

// RateLimitSnapshot describes the most recent quota state recorded for an
// endpoint.
type RateLimitSnapshot = ratelimit.Snapshot

// Client is the main Mimecast API client.
type Client struct {
	apiClient  *api.Client
	tokens     *auth.TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client using the given OAuth client credentials. The token
// is fetched lazily on the first request.
func New(ctx context.Context, clientID, clientSecret string, opts ...Option) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	tokens, err := auth.NewTokenSource(auth.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		BaseURL:      cfg.baseURL,
		HTTPClient:   httpClient,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	retry := api.DefaultRetryConfig()
	retry.MaxRetries = cfg.transportRetries
	if len(cfg.transportRetryOn) > 0 {
		allowed := make(map[int]bool, len(cfg.transportRetryOn))
		for _, code := range cfg.transportRetryOn {
			allowed[code] = true
		}
		retry.RetryableOn = func(status int) bool { return allowed[status] }
	}

	var metrics *ratelimit.Metrics
	if cfg.metricsRegistry != nil {
		metrics = ratelimit.NewMetrics()
		if err := metrics.Register(cfg.metricsRegistry); err != nil {
			return nil, err
		}
	}

	apiClient, err := api.NewClient(api.Config{
		BaseURL:    cfg.baseURL,
		Auth:       tokens,
		HTTPClient: httpClient,
		Logger:     logger,
		MaxRetries: cfg.maxRetries,
		Backoff: ratelimit.Policy{
			Min:    cfg.minBackoff,
			Max:    cfg.maxBackoff,
			Jitter: cfg.jitter,
		},
		Retry:   retry,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		apiClient:  apiClient,
		tokens:     tokens,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// NewFromStore creates a client reading the client ID and secret from a
// secrets store under the names secrets.KeyClientID and
// secrets.KeyClientSecret.
func NewFromStore(ctx context.Context, store secrets.Store, opts ...Option) (*Client, error) {
	clientID, err := store.GetSecret(secrets.KeyClientID)
	if err != nil {
		return nil, err
	}
	clientSecret, err := store.GetSecret(secrets.KeyClientSecret)
	if err != nil {
		return nil, err
	}
	return New(ctx, clientID, clientSecret, opts...)
}

// Do executes an arbitrary API call, decoding the response envelope's data
// payload into result when result is non-nil. Most callers use the typed
// endpoint methods instead.
func (c *Client) Do(ctx context.Context, method, path string, body, result interface{}) error {
	return wrapError(c.apiClient.Do(ctx, method, path, body, result))
}

// Get issues a GET request to path.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post issues a POST request to path.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Put issues a PUT request to path.
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, result)
}

// Delete issues a DELETE request to path.
func (c *Client) Delete(ctx context.Context, path string, result interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, result)
}

// RateLimits returns the most recent quota snapshot recorded for each
// endpoint this client has called.
func (c *Client) RateLimits() map[string]RateLimitSnapshot {
	return c.apiClient.Tracker().Snapshots()
}

// InvalidateToken drops the cached access token so the next request
// authenticates from scratch.
func (c *Client) InvalidateToken() {
	c.tokens.Invalidate()
}

// postEnvelope issues a POST and returns the raw envelope plus HTTP
// status, surfacing pagination metadata to endpoint methods.
func (c *Client) postEnvelope(ctx context.Context, path string, body interface{}) (*api.Envelope, error) {
	return c.doEnvelope(ctx, http.MethodPost, path, body)
}

// getEnvelope is the GET counterpart for endpoints that paginate.
func (c *Client) getEnvelope(ctx context.Context, path string) (*api.Envelope, error) {
	return c.doEnvelope(ctx, http.MethodGet, path, nil)
}

func (c *Client) doEnvelope(ctx context.Context, method, path string, body interface{}) (*api.Envelope, error) {
	env, status, err := c.apiClient.DoEnvelope(ctx, method, path, body)
	if err != nil {
		return nil, wrapError(err)
	}
	if err := env.Err(status); err != nil {
		return nil, wrapError(err)
	}
	return env, nil
}

// decodeData unmarshals a raw envelope data payload into v.
func decodeData(data json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}
