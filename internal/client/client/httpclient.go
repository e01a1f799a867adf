package client

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
	"time"

	"github.com/dmitrijs2005/evento/internal/common"
	"github.com/dmitrijs2005/evento/internal/logging"
)

// MaxResponseBytes caps how much of a response body is read.
const MaxResponseBytes = 10 << 20

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Logger    logging.Logger
	Transport http.RoundTripper
}

// Request describes one logical API call. The retried flag belongs to the
// call: reusing the same *Request carries it over.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Public marks endpoints whose 401/403 means bad credentials rather
	// than an expired session.
	Public bool

	retried bool
}

func (r *Request) Retried() bool { return r.retried }

// RequestTransform derives the outgoing request from r. It must not modify
// r; return r.Clone(ctx) with the changes instead.
type RequestTransform func(ctx context.Context, r *http.Request) (*http.Request, error)

// ErrorInterceptor observes every failed call after normalization.
type ErrorInterceptor func(ctx context.Context, req *Request, err *APIError)

// Envelope is the response body shared by the backend endpoints.
type Envelope struct {
	Success  *bool           `json:"success,omitempty"`
	Message  string          `json:"message,omitempty"`
	Token    string          `json:"token,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Code     string          `json:"code,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
}

// Decode unmarshals the data payload into v. An empty payload leaves v
// untouched.
func (e *Envelope) Decode(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

type registration[T any] struct {
	id int
	fn T
}

// HTTPClient is the single client shared by every component talking to the
// REST API. Request transforms and error interceptors are registered at
// runtime and can be ejected.
type HTTPClient struct {
	base   *url.URL
	http   *http.Client
	logger logging.Logger

	mu         sync.RWMutex
	nextID     int
	transforms []registration[RequestTransform]
	onError    []registration[ErrorInterceptor]
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPClient{
		base:   base,
		http:   &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		logger: logger,
	}, nil
}

// UseRequest appends t to the request pipeline.
func (c *HTTPClient) UseRequest(t RequestTransform) (eject func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.transforms = append(c.transforms, registration[RequestTransform]{id: id, fn: t})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.transforms = without(c.transforms, id)
	}
}

// UseError appends h to the error pipeline.
func (c *HTTPClient) UseError(h ErrorInterceptor) (eject func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.onError = append(c.onError, registration[ErrorInterceptor]{id: id, fn: h})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.onError = without(c.onError, id)
	}
}

func without[T any](regs []registration[T], id int) []registration[T] {
	out := regs[:0:0]
	for _, r := range regs {
		if r.id != id {
			out = append(out, r)
		}
	}
	return out
}

// Close ejects every registration and drops idle connections.
func (c *HTTPClient) Close() {
	c.mu.Lock()
	c.transforms = nil
	c.onError = nil
	c.mu.Unlock()
	c.http.CloseIdleConnections()
}

// Do performs req and returns the decoded envelope. Every failure is an
// *APIError and has passed through the error pipeline.
func (c *HTTPClient) Do(ctx context.Context, req *Request) (*Envelope, error) {
	start := time.Now()
	env, apiErr := c.do(ctx, req)
	if apiErr == nil {
		c.logger.Debug(ctx, "api call", "method", req.Method, "path", req.Path, "took", time.Since(start))
		return env, nil
	}

	c.logger.Debug(ctx, "api call failed",
		"method", req.Method, "path", req.Path, "status", apiErr.Status,
		"network", apiErr.IsNetworkError, "error", apiErr.Message)

	c.mu.RLock()
	handlers := make([]ErrorInterceptor, 0, len(c.onError))
	for _, r := range c.onError {
		handlers = append(handlers, r.fn)
	}
	c.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, req, apiErr)
	}
	return nil, apiErr
}

func (c *HTTPClient) do(ctx context.Context, req *Request) (*Envelope, *APIError) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, requestError(err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, networkError(err)
	}
	if len(raw) > MaxResponseBytes {
		return nil, &APIError{
			Message: ErrResponseTooLarge.Error(),
			Status:  resp.StatusCode,
			cause:   ErrResponseTooLarge,
		}
	}

	env := parseEnvelope(raw)
	failed := resp.StatusCode >= http.StatusBadRequest ||
		(env.Success != nil && !*env.Success) ||
		env.Code == DeviceLimitCode || env.Redirect == DeviceLimitRedirect
	if !failed {
		return env, nil
	}

	msg := env.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	data := env.Data
	if len(data) == 0 && len(raw) > 0 && json.Valid(raw) {
		data = raw
	}
	return nil, &APIError{
		Message:  msg,
		Status:   resp.StatusCode,
		Data:     data,
		Code:     env.Code,
		Redirect: env.Redirect,
	}
}

func (c *HTTPClient) build(ctx context.Context, req *Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	u := c.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", common.ApplicationJSON)
	if body != nil {
		httpReq.Header.Set("Content-Type", common.ApplicationJSON)
	}

	c.mu.RLock()
	transforms := make([]RequestTransform, 0, len(c.transforms))
	for _, r := range c.transforms {
		transforms = append(transforms, r.fn)
	}
	c.mu.RUnlock()

	for _, t := range transforms {
		if httpReq, err = t(ctx, httpReq); err != nil {
			return nil, err
		}
	}
	return httpReq, nil
}

// parseEnvelope accepts both the {success, message, data} envelope and bare
// JSON payloads, which end up in Data.
func parseEnvelope(raw []byte) *Envelope {
	env := &Envelope{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return env
	}
	if trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if json.Unmarshal(trimmed, &probe) == nil && isEnvelope(probe) {
			_ = json.Unmarshal(trimmed, env)
			return env
		}
	}
	if json.Valid(trimmed) {
		env.Data = json.RawMessage(trimmed)
	} else {
		env.Message = string(trimmed)
	}
	return env
}

func isEnvelope(m map[string]json.RawMessage) bool {
	for _, k := range []string{"success", "message", "token", "data", "code", "redirect"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// TokenSource supplies the bearer token; "" means no token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// BearerToken attaches the stored token, if any.
func BearerToken(src TokenSource) RequestTransform {
	return func(ctx context.Context, r *http.Request) (*http.Request, error) {
		token, err := src.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		if token == "" {
			return r, nil
		}
		out := r.Clone(ctx)
		out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		return out, nil
	}
}

// UserAgent announces ua on every request.
func UserAgent(ua string) RequestTransform {
	return func(ctx context.Context, r *http.Request) (*http.Request, error) {
		if ua == "" {
			return r, nil
		}
		out := r.Clone(ctx)
		out.Header.Set("User-Agent", ua)
		return out, nil
	}
}
