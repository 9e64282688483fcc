package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gh-tking/mimecast-sdk/internal/ratelimit"
)

// Default client settings.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// AuthProvider supplies authentication headers for each request. The client
// asks for fresh headers on every attempt so token refresh stays transparent.
type AuthProvider interface {
	AuthHeaders(ctx context.Context) (http.Header, error)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the regional API root, e.g. https://api.services.mimecast.com.
	BaseURL string
	// Auth supplies authentication headers. Required.
	Auth AuthProvider
	// HTTPClient is the underlying HTTP client. Defaults to one with
	// DefaultTimeout.
	HTTPClient *http.Client
	// Logger receives request and retry events. A nil logger disables logging.
	Logger *zap.Logger
	// MaxRetries is the orchestrator retry budget per failure kind.
	// Defaults to DefaultMaxRetries; set to a negative value for zero retries.
	MaxRetries int
	// Backoff is the orchestrator backoff policy. The zero value selects
	// the default policy.
	Backoff ratelimit.Policy
	// Retry configures the low-level transport retry loop. Defaults to
	// DefaultRetryConfig.
	Retry *RetryConfig
	// Metrics receives orchestrator counters. Optional.
	Metrics *ratelimit.Metrics
}

// Client executes Mimecast API calls through the rate-limit orchestrator.
type Client struct {
	baseURL string
	auth    AuthProvider
	logger  *zap.Logger
	orch    *ratelimit.Orchestrator
}

// NewClient creates a client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api: base URL is required")
	}
	if cfg.Auth == nil {
		return nil, errors.New("api: auth provider is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Retry == nil {
		cfg.Retry = DefaultRetryConfig()
	}

	maxRetries := cfg.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = DefaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}

	orch, err := ratelimit.NewOrchestrator(ratelimit.Config{
		Transport: &transport{
			httpClient: cfg.HTTPClient,
			retry:      cfg.Retry,
			logger:     cfg.Logger,
		},
		MaxRetries: maxRetries,
		Backoff:    cfg.Backoff,
		Logger:     cfg.Logger,
		Metrics:    cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		auth:    cfg.Auth,
		logger:  cfg.Logger,
		orch:    orch,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tracker returns the quota tracker so callers can inspect recorded
// rate-limit snapshots.
func (c *Client) Tracker() *ratelimit.Tracker {
	return c.orch.Tracker()
}

// Do executes a JSON API call and decodes the envelope's data payload into
// result when result is non-nil. Envelope-level failures are returned as
// *ResponseError even on HTTP 200.
func (c *Client) Do(ctx context.Context, method, path string, body, result interface{}) error {
	env, status, err := c.DoEnvelope(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := env.Err(status); err != nil {
		return err
	}
	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("api: decoding response data: %w", err)
		}
	}
	return nil
}

// DoEnvelope executes a JSON API call and returns the full response envelope
// along with the HTTP status code. Callers that need pagination metadata use
// this instead of Do. Envelope-level failures are not checked here.
func (c *Client) DoEnvelope(ctx context.Context, method, path string, body interface{}) (*Envelope, int, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("api: encoding request body: %w", err)
		}
		payload = data
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	header.Set("X-Request-Id", uuid.NewString())

	authHeaders, err := c.auth.AuthHeaders(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("api: obtaining auth headers: %w", err)
	}
	for k, vs := range authHeaders {
		for _, v := range vs {
			header.Set(k, v)
		}
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	c.logger.Debug("sending request",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("request_id", header.Get("X-Request-Id")))

	resp, err := c.orch.Execute(ctx, &ratelimit.Request{
		Method: method,
		URL:    url,
		Header: header,
		Body:   payload,
	})
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("api: reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, parseErrorResponse(resp.StatusCode, raw)
	}

	env := &Envelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("api: decoding response envelope: %w", err)
		}
	}
	return env, resp.StatusCode, nil
}

// parseErrorResponse maps an error status and body to an *APIError,
// harvesting code and message from the envelope when present.
func parseErrorResponse(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil {
		entries := env.Meta.Errors
		for _, f := range env.Fail {
			entries = append(entries, f.Errors...)
		}
		if len(entries) > 0 {
			apiErr.Code = entries[0].Code
			var msgs []string
			for _, e := range entries {
				if e.Message != "" {
					msgs = append(msgs, e.Message)
				}
			}
			apiErr.Message = strings.Join(msgs, "; ")
			return apiErr
		}
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// transport adapts http.Client to the orchestrator's Transport interface,
// running the low-level retry loop for connection failures and the status
// allow-list in RetryConfig.
type transport struct {
	httpClient *http.Client
	retry      *RetryConfig
	logger     *zap.Logger
}

func (t *transport) RoundTrip(ctx context.Context, req *ratelimit.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		var body io.Reader
		if len(req.Body) > 0 {
			body = bytes.NewReader(req.Body)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
		if err != nil {
			return nil, err
		}
		if req.Header != nil {
			httpReq.Header = req.Header.Clone()
		}

		resp, err := t.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt >= t.retry.MaxRetries {
				return nil, &NetworkError{Err: err, URL: req.URL, Attempts: attempt + 1}
			}
			t.logger.Debug("connection failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			if werr := t.retry.Wait(ctx, attempt); werr != nil {
				return nil, werr
			}
			continue
		}

		if t.retry.ShouldRetry(attempt, resp.StatusCode) {
			t.logger.Debug("retryable status, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1))
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
			if werr := t.retry.Wait(ctx, attempt); werr != nil {
				return nil, werr
			}
			continue
		}

		return resp, nil
	}
}
