package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/telemetry/logger"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(url string, tok TokenSource, g *Guard) *HTTPClient {
	return NewHTTPClient(url, tok, Options{Guard: g, Logger: logger.Nop()})
}

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name       string
		server     string
		wantPrefix string
	}{
		{"with http prefix", "http://localhost:8080/api", "http://localhost:8080/api"},
		{"with https prefix", "https://gym.example.com/api/", "https://gym.example.com/api"},
		{"without prefix", "localhost:8080", "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewHTTPClient(tt.server, nil, Options{})
			if client.BaseURL() != tt.wantPrefix {
				t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), tt.wantPrefix)
			}
		})
	}
}

func TestHTTPClient_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "gymadmin/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if len(r.Header.Get("X-Request-ID")) != 26 {
			t.Errorf("X-Request-ID = %q, want a ULID", r.Header.Get("X-Request-ID"))
		}
		if r.Header.Get("Idempotency-Key") != "k1" {
			t.Errorf("Idempotency-Key = %q", r.Header.Get("Idempotency-Key"))
		}
		if r.URL.Path != "/api/products/5/sale" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL+"/api", staticToken("tok-123"), nil)
	if err := c.Post(context.Background(), "/products/5/sale", map[string]int{"quantity": 1}, nil, WithIdempotencyKey("k1")); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
}

func TestHTTPClient_NoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("Authorization should be absent without a token")
		}
		if r.Header.Get("Content-Type") != "" {
			t.Error("Content-Type should be absent without a body")
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, staticToken(""), nil)
	if err := c.Get(context.Background(), "/users", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

func TestHTTPClient_DecodeEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"envelope", `{"success":true,"data":{"id":7,"name":"Water"}}`},
		{"bare", `{"id":"7","name":"Water"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var p domain.Product
			if err := newTestClient(server.URL, nil, nil).Get(context.Background(), "/products/7", &p); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if p.ID != "7" || p.Name != "Water" {
				t.Errorf("decoded = %+v", p)
			}
		})
	}
}

type rawPage struct {
	Data  []json.RawMessage `json:"data"`
	Total int               `json:"total"`
}

func (rawPage) DecodesEnvelope() {}

func TestHTTPClient_EnvelopeDecoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{},{}],"total":42}`))
	}))
	defer server.Close()

	var page rawPage
	if err := newTestClient(server.URL, nil, nil).Get(context.Background(), "/users", &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 2 || page.Total != 42 {
		t.Errorf("page = %+v", page)
	}
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
		wantIs      error
	}{
		{"code and message", 422, `{"code":"OUT_OF_STOCK","message":"not enough stock"}`, "OUT_OF_STOCK", "not enough stock", domain.ErrServerRejected},
		{"error string", 400, `{"error":"email already used"}`, "", "email already used", domain.ErrServerRejected},
		{"nested error", 409, `{"error":{"code":"DUP","message":"duplicate"}}`, "DUP", "duplicate", domain.ErrServerRejected},
		{"status text fallback", 404, `not json`, "", "Not Found", domain.ErrNotFound},
		{"soft failure", 200, `{"success":false,"message":"member inactive"}`, "", "member inactive", domain.ErrServerRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := newTestClient(server.URL, nil, nil).Get(context.Background(), "/x", nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Code != tt.wantCode || apiErr.Message != tt.wantMessage {
				t.Errorf("APIError = %+v", apiErr)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v) = false", tt.wantIs)
			}
		})
	}
}

func TestIsInvalidToken(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"known code", &APIError{Status: 401, Code: "TOKEN_EXPIRED", Message: "x"}, true},
		{"lowercase code", &APIError{Status: 400, Code: "invalid_token", Message: "x"}, true},
		{"status 403", &APIError{Status: 403, Message: "nope"}, true},
		{"message token is invalid", &APIError{Status: 400, Message: "Token is invalid or expired"}, true},
		{"message unauthorized", &APIError{Status: 401, Message: "Unauthorized"}, true},
		{"message forbidden", &APIError{Status: 400, Message: "FORBIDDEN action"}, true},
		{"business error", &APIError{Status: 422, Message: "not enough stock"}, false},
		{"plain network error", errors.New("connection refused"), false},
		{"network error matching", errors.New("proxy said: unauthorized"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalidToken(tt.err); got != tt.want {
				t.Errorf("IsInvalidToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHTTPClient_InvalidTokenTriggersGuard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Token is invalid"}`))
	}))
	defer server.Close()

	var cleared, redirected atomic.Int32
	g := NewGuard(func(context.Context) error { cleared.Add(1); return nil }, logger.Nop(), nil)
	g.SetRedirector(func(string) { redirected.Add(1) })

	c := newTestClient(server.URL, staticToken("stale"), g)
	err := c.Get(context.Background(), "/users", nil)
	if !IsSessionExpired(err) {
		t.Fatalf("error = %v, want ErrSessionExpired", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 403 {
		t.Errorf("session error should wrap the APIError, got %v", err)
	}

	// A second failing call must not log out again.
	_ = c.Get(context.Background(), "/users", nil)
	if cleared.Load() != 1 || redirected.Load() != 1 {
		t.Errorf("cleared=%d redirected=%d, want 1 each", cleared.Load(), redirected.Load())
	}
}

func TestHTTPClient_WithoutGuard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized"}`))
	}))
	defer server.Close()

	g := NewGuard(nil, logger.Nop(), nil)
	err := newTestClient(server.URL, nil, g).Post(context.Background(), PathLogin, nil, nil, WithoutGuard())
	if IsSessionExpired(err) {
		t.Error("unguarded request should not be classified as session expired")
	}
	if g.Fired() {
		t.Error("guard fired for an unguarded request")
	}
}

func TestHTTPClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	g := NewGuard(nil, logger.Nop(), nil)
	err := newTestClient(url, nil, g).Get(context.Background(), "/users", nil)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if g.Fired() {
		t.Error("network error should not trigger the guard")
	}
}

func TestRouteOf(t *testing.T) {
	tests := map[string]string{
		"/users?page=2&search=jo":  "/users",
		"/users/42":                "/users/:id",
		"/qr/generate/abc123":      "/qr/generate/:id",
		"/products/stats/monthly":  "/products/stats/monthly",
		"/memberships/9/pricing":   "/memberships/:id/pricing",
		"/qr/lookup?unique_id=AB1": "/qr/lookup",
	}
	for in, want := range tests {
		if got := routeOf(in); got != want {
			t.Errorf("routeOf(%q) = %q, want %q", in, got, want)
		}
	}
}
