package mimecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gh-tking/mimecast-sdk/secrets"
)

// newTestServer wires up an API stub that answers /oauth/token and hands
// all other paths to handler.
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

// newTestClientFor builds a client against server with sub-millisecond
// backoffs so retry paths run fast.
func newTestClientFor(t *testing.T, server *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseURL(server.URL),
		WithMinBackoff(time.Millisecond),
		WithMaxBackoff(4 * time.Millisecond),
		WithJitter(false),
		WithTransportRetries(0),
	}, opts...)

	client, err := New(context.Background(), "id-1", "secret-1", opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNew_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{"missing both", "", ""},
		{"missing secret", "id", ""},
		{"missing id", "", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.id, tt.secret)
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("New() error = %v, want ErrMissingCredentials", err)
			}
		})
	}
}

func TestNewFromStore(t *testing.T) {
	t.Setenv("MIMECAST_CLIENT_ID", "id-from-store")
	t.Setenv("MIMECAST_CLIENT_SECRET", "secret-from-store")

	client, err := NewFromStore(context.Background(), secrets.NewEnvStore())
	if err != nil {
		t.Fatalf("NewFromStore() error = %v", err)
	}
	if client == nil {
		t.Fatal("client is nil")
	}
}

func TestNewFromStore_MissingSecret(t *testing.T) {
	store := secrets.NewEnvStoreWithPrefix("MIMECAST_TEST_ABSENT_")

	_, err := NewFromStore(context.Background(), store)
	if !errors.Is(err, secrets.ErrNotFound) {
		t.Errorf("NewFromStore() error = %v, want ErrNotFound", err)
	}
}

func TestClient_Post_AuthenticatesAndDecodes(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want Bearer test-token", got)
		}
		fmt.Fprint(w, `{"meta":{"status":200},"data":[{"id":"x1"}]}`)
	})
	defer server.Close()

	client := newTestClientFor(t, server)

	var result []struct {
		ID string `json:"id"`
	}
	if err := client.Post(context.Background(), "/api/test/op", nil, &result); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if len(result) != 1 || result[0].ID != "x1" {
		t.Errorf("result = %+v, want one entry with id x1", result)
	}
}

func TestClient_ThrottleRetryEndToEnd(t *testing.T) {
	var calls atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n < 3 {
			w.Header().Set("X-MC-Rate-Limit", "50")
			w.Header().Set("X-MC-Rate-Limit-Remaining", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("X-MC-Rate-Limit", "50")
		w.Header().Set("X-MC-Rate-Limit-Remaining", "49")
		w.Header().Set("X-MC-Rate-Limit-Reset", fmt.Sprint(time.Now().Add(time.Minute).Unix()))
		fmt.Fprint(w, `{"meta":{"status":200}}`)
	})
	defer server.Close()

	client := newTestClientFor(t, server)

	if err := client.Post(context.Background(), "/api/email/send-email", nil, nil); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("API saw %d calls, want 3", got)
	}

	limits := client.RateLimits()
	snap, ok := limits["email/send-email"]
	if !ok {
		t.Fatalf("RateLimits() = %v, want entry for email/send-email", limits)
	}
	if snap.Remaining != 49 {
		t.Errorf("Remaining = %d, want 49", snap.Remaining)
	}
}

func TestClient_ThrottleBudgetExhausted(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	client := newTestClientFor(t, server, WithMaxRetries(1))

	err := client.Post(context.Background(), "/api/x/y", nil, nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}

	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("error type = %T, want *RateLimitError", err)
	}
	if rle.Endpoint != "x/y" {
		t.Errorf("Endpoint = %q, want x/y", rle.Endpoint)
	}
	if rle.Retries != 1 {
		t.Errorf("Retries = %d, want 1", rle.Retries)
	}
}

func TestClient_UnauthorizedMapsToSentinel(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"fail":[{"errors":[{"code":"err_token","message":"token expired"}]}]}`)
	})
	defer server.Close()

	client := newTestClientFor(t, server)

	err := client.Get(context.Background(), "/api/x/y", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Code != "err_token" {
		t.Errorf("Code = %q, want err_token", apiErr.Code)
	}
}

func TestClient_EnvelopeFailureSurfaced(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta":{"status":200},"fail":[{"errors":[{"code":"err_validation","message":"bad recipient"}]}]}`)
	})
	defer server.Close()

	client := newTestClientFor(t, server)

	err := client.Post(context.Background(), "/api/x/y", nil, nil)
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("error type = %T, want *ResponseError", err)
	}
	if len(respErr.Entries) != 1 || respErr.Entries[0].Code != "err_validation" {
		t.Errorf("Entries = %+v, want one err_validation entry", respErr.Entries)
	}
}

func TestClient_RequestBodyShape(t *testing.T) {
	var captured json.RawMessage
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"meta":{"status":200}}`)
	})
	defer server.Close()

	client := newTestClientFor(t, server)

	body := map[string]interface{}{"data": []map[string]string{{"query": "test"}}}
	if err := client.Post(context.Background(), "/api/x/y", body, nil); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	var decoded struct {
		Data []map[string]string `json:"data"`
	}
	if err := json.Unmarshal(captured, &decoded); err != nil {
		t.Fatalf("captured body is not valid JSON: %v", err)
	}
	if len(decoded.Data) != 1 || decoded.Data[0]["query"] != "test" {
		t.Errorf("request body = %s, want data array with query", captured)
	}
}

func TestClient_InvalidateToken(t *testing.T) {
	var tokenCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenCalls.Add(1)
			fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer","expires_in":3600}`)
			return
		}
		fmt.Fprint(w, `{"meta":{"status":200}}`)
	}))
	defer server.Close()

	client := newTestClientFor(t, server)

	if err := client.Get(context.Background(), "/api/x/y", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	client.InvalidateToken()
	if err := client.Get(context.Background(), "/api/x/y", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := tokenCalls.Load(); got != 2 {
		t.Errorf("token endpoint called %d times, want 2", got)
	}
}
