package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/infra/buildinfo"
	"github.com/gymone/gymadmin/internal/telemetry/logger"
	"github.com/gymone/gymadmin/internal/telemetry/metric"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

// TokenSource supplies the bearer credential for each request.
type TokenSource interface {
	Token() string
}

// EnvelopeDecoder is implemented by response targets that decode the full
// body themselves, e.g. list pages carrying pagination next to "data".
type EnvelopeDecoder interface {
	DecodesEnvelope()
}

// Options configures an HTTPClient.
type Options struct {
	Timeout   time.Duration
	TLSConfig *tls.Config
	Guard     *Guard
	Logger    logger.Logger
	Metrics   *metric.Registry
	// Transport overrides the HTTP transport; TLSConfig is ignored when set.
	Transport http.RoundTripper
}

// HTTPClient is the guarded call path to the backend.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	tokens    TokenSource
	guard     *Guard
	userAgent string
	logger    logger.Logger
	metrics   *metric.Registry
}

// NewHTTPClient creates a client for server, the base URL including the API
// base path. tokens may be nil for unauthenticated use.
func NewHTTPClient(server string, tokens TokenSource, opts Options) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if opts.TLSConfig != nil {
			t.TLSClientConfig = opts.TLSConfig
		}
		transport = t
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	return &HTTPClient{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout, Transport: transport},
		tokens:    tokens,
		guard:     opts.Guard,
		userAgent: buildinfo.UserAgent(),
		logger:    log,
		metrics:   opts.Metrics,
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// RequestOption customizes a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers   http.Header
	skipGuard bool
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.headers.Set(key, value)
	}
}

// WithIdempotencyKey marks a write as safe to replay server-side.
func WithIdempotencyKey(key string) RequestOption {
	return WithHeader("Idempotency-Key", key)
}

// WithoutGuard sends the request without the invalid-token reaction.
// Login uses it: wrong credentials are not an expired session.
func WithoutGuard() RequestOption {
	return func(rc *requestConfig) {
		rc.skipGuard = true
	}
}

// Get performs a GET request and decodes the response into target.
func (c *HTTPClient) Get(ctx context.Context, path string, target any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, target, opts...)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body, target any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, target, opts...)
}

// Put performs a PUT request with a JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body, target any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, target, opts...)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string, target any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, target, opts...)
}

// Do issues one request. A non-success response becomes an *APIError; one
// classified as an invalid credential triggers the guard and is returned
// wrapped in domain.ErrSessionExpired. Nothing is retried.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, target any, opts ...RequestOption) error {
	rc := requestConfig{headers: make(http.Header)}
	for _, opt := range opts {
		opt(&rc)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	reqID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	for k, v := range rc.headers {
		req.Header[k] = v
	}

	log := c.logger.WithContext(logger.WithRequestID(ctx, reqID))
	route := routeOf(path)
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, route, 0, time.Since(start))
		log.Debug("request failed", "method", method, "path", path, "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		netErr := domain.ErrNetwork.WithDetails(err.Error()).WithCause(err)
		return c.react(netErr, rc)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	elapsed := time.Since(start)
	c.metrics.ObserveRequest(method, route, resp.StatusCode, elapsed)
	log.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", elapsed)
	if err != nil {
		return domain.ErrNetwork.WithDetails("read response").WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.react(parseAPIError(resp.StatusCode, data), rc)
	}
	if apiErr := softFailure(resp.StatusCode, data); apiErr != nil {
		return c.react(apiErr, rc)
	}

	return decodeBody(data, target)
}

// react runs the guard for invalid-credential failures.
func (c *HTTPClient) react(err error, rc requestConfig) error {
	if rc.skipGuard || !IsInvalidToken(err) {
		return err
	}
	if c.guard != nil {
		c.guard.ForceLogout(err.Error())
	}
	return domain.ErrSessionExpired.WithCause(err)
}

// softFailure detects a 2xx body of the form {"success": false, ...}.
func softFailure(status int, data []byte) *APIError {
	var probe struct {
		Success *bool `json:"success"`
	}
	if json.Unmarshal(data, &probe) != nil || probe.Success == nil || *probe.Success {
		return nil
	}
	e := parseAPIError(status, data)
	if e.Message == http.StatusText(status) {
		e.Message = "request was not successful"
	}
	return e
}

// decodeBody unwraps a {"data": ...} envelope unless target wants the
// whole body.
func decodeBody(data []byte, target any) error {
	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if _, whole := target.(EnvelopeDecoder); !whole {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if json.Unmarshal(data, &env) == nil && len(env.Data) > 0 {
			data = env.Data
		}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// routeOf turns a request path into a metric label: query dropped and
// id-like segments collapsed.
func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.ContainsAny(p, "0123456789") {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// IsSessionExpired reports whether err came from a forced logout.
func IsSessionExpired(err error) bool {
	return errors.Is(err, domain.ErrSessionExpired)
}
