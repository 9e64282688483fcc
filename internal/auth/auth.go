// Package auth implements the OAuth 2.0 client-credentials flow used by the
// Mimecast API 2.0. Tokens are cached and refreshed ahead of expiry.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// expiryBuffer is subtracted from the advertised token lifetime so a token
// is refreshed before the server actually rejects it.
const expiryBuffer = 5 * time.Minute

// TokenSource obtains and caches bearer tokens via the client-credentials
// grant. It is safe for concurrent use.
type TokenSource struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger

	mu     sync.Mutex
	token  string
	expiry time.Time

	now func() time.Time // test hook
}

// Config configures a TokenSource.
type Config struct {
	ClientID     string
	ClientSecret string
	// BaseURL is the regional API root hosting /oauth/token.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewTokenSource validates cfg and creates a token source.
func NewTokenSource(cfg Config) (*TokenSource, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("auth: client ID and secret are required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("auth: base URL is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &TokenSource{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
		now:          time.Now,
	}, nil
}

// AuthHeaders returns the headers required to authenticate a request,
// fetching or refreshing the token as needed.
func (ts *TokenSource) AuthHeaders(ctx context.Context) (http.Header, error) {
	token, err := ts.Token(ctx)
	if err != nil {
		return nil, err
	}

	h := make(http.Header)
	h.Set("Authorization", "Bearer "+token)
	return h, nil
}

// Token returns a valid access token, reusing the cached one until it is
// within expiryBuffer of its advertised lifetime.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Before(ts.expiry) {
		return ts.token, nil
	}
	return ts.fetchLocked(ctx)
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = ""
	ts.expiry = time.Time{}
}

// fetchLocked performs the client-credentials exchange. Callers hold ts.mu.
func (ts *TokenSource) fetchLocked(ctx context.Context) (string, error) {
	form := url.Values{
		"client_id":     {ts.clientID},
		"client_secret": {ts.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		ts.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("auth: reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth: token request returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("auth: decoding token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("auth: token response missing access_token")
	}

	ts.token = tokenResp.AccessToken
	ts.expiry = ts.now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - expiryBuffer)
	ts.logger.Debug("obtained access token",
		zap.Time("expires_at", ts.expiry))
	return ts.token, nil
}
