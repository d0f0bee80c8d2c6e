// Package api is the storefront's HTTP boundary with the backend.
//
// Every operation resolves to a response envelope and never returns a
// Go error: transport failures, non-JSON bodies, and server-reported
// failures all collapse into {success:false, error:...}. Callers branch
// on Success only.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prianik/storefront/pkg/config"
	"github.com/prianik/storefront/pkg/logger"
	"github.com/prianik/storefront/pkg/metrics"
	"github.com/prianik/storefront/pkg/types"
)

// genericErrorMessage stands in when the server supplies no failure
// summary of its own.
const genericErrorMessage = "request failed"

// Client issues typed operations against the configured backend.
type Client struct {
	baseURL     string
	defaultLang string
	httpClient  *http.Client
	headers     http.Header
	logger      *logger.Logger
	metrics     *metrics.APIMetrics

	// Shared observability pair. One flag and one message for the whole
	// client: overlapping calls race on them by contract, the flags carry
	// no call identity. See IsLoading and LastError.
	loading   atomic.Bool
	errMu     sync.Mutex
	lastError string
}

// Option tweaks the client at construction.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport, typically to impose a
// custom timeout or a recording round-tripper in tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithMetrics attaches a request metrics recorder.
func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHeaders sets default headers merged into every request AFTER the
// JSON content-type, so a caller-supplied Content-Type wins. That
// looseness is deliberate and matched by the web storefront.
func WithHeaders(headers http.Header) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// New resolves the base URL once and builds the client around it.
func New(cfg config.APIConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", cfg.BaseURL, err)
	}

	defaultLang := cfg.Language
	if !config.LanguageSupported(defaultLang) {
		defaultLang = "ru"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:     base,
		defaultLang: defaultLang,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IsLoading reports whether a request is in flight. The flag is shared
// across all operations: with overlapping calls the observed transition
// cannot be attributed to either one.
func (c *Client) IsLoading() bool {
	return c.loading.Load()
}

// LastError returns the failure summary of the most recently completed
// call, or "" after a success. Shared across operations like IsLoading.
func (c *Client) LastError() string {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastError
}

// language constrains the requested locale to the supported set,
// falling back to the configured default.
func (c *Client) language(lang string) string {
	if config.LanguageSupported(lang) {
		return lang
	}
	return c.defaultLang
}

// get runs a catalog read. Reads are language-sensitive: exactly one
// language parameter is appended to the query string.
func get[T any](ctx context.Context, c *Client, op, path string, query url.Values, lang string) types.Envelope[T] {
	if query == nil {
		query = url.Values{}
	}
	query.Set("language", c.language(lang))
	return do[T](ctx, c, op, http.MethodGet, path, query, nil)
}

// post runs a write. Writes carry language inside the body and must not
// receive the query parameter.
func post[T any](ctx context.Context, c *Client, op, path string, body any) types.Envelope[T] {
	return do[T](ctx, c, op, http.MethodPost, path, nil, body)
}

func do[T any](ctx context.Context, c *Client, op, method, path string, query url.Values, body any) types.Envelope[T] {
	c.loading.Store(true)
	c.setLastError("")
	defer c.loading.Store(false)

	start := time.Now()
	defer func() {
		c.metrics.ObserveDuration(op, time.Since(start))
	}()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail[T](ctx, c, op, fmt.Sprintf("encoding request body: %v", err), nil)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fail[T](ctx, c, op, err.Error(), nil)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range c.headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	c.log(ctx, "request", op, map[string]any{"method": method, "path": path})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail[T](ctx, c, op, err.Error(), nil)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail[T](ctx, c, op, err.Error(), nil)
	}

	var envelope types.Envelope[T]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fail[T](ctx, c, op, genericErrorMessage, nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = genericErrorMessage
		}
		return fail[T](ctx, c, op, msg, envelope.ValidationErrors)
	}

	c.metrics.IncSuccess(op)
	c.log(ctx, "response", op, map[string]any{"status": resp.StatusCode})
	return envelope
}

// fail resolves the call to a well-formed failure envelope, recording
// the shared lastError and the failure metric on the way out.
func fail[T any](ctx context.Context, c *Client, op, msg string, fields []types.FieldError) types.Envelope[T] {
	c.setLastError(msg)
	c.metrics.IncFailure(op)
	c.log(ctx, "error", op, map[string]any{"error": msg})
	return types.Invalid[T](msg, fields)
}

func (c *Client) setLastError(msg string) {
	c.errMu.Lock()
	c.lastError = msg
	c.errMu.Unlock()
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Warn(ctx, fmt.Sprintf("api %s failed", op))
	default:
		c.logger.Debug(ctx, fmt.Sprintf("api %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"email", "phone", "name", "message", "recaptcha"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
