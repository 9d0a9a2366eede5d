package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/observability"
	"github.com/kbukum/bookstore/session"
)

// Client calls the bookstore API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
	store      session.Store
	log        *logger.Logger
	metrics    *observability.ClientMetrics

	mu      sync.RWMutex
	headers http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithSessionStore sets the store the bearer token is read from.
func WithSessionStore(store session.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l.WithComponent("httpclient") }
}

// WithMetrics records call metrics.
func WithMetrics(m *observability.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := cfg.Transport
	if transport == nil {
		tlsCfg, err := cfg.HTTPS.TLSConfig()
		if err != nil {
			return nil, fmt.Errorf("httpclient: %w", err)
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = tlsCfg
		transport = t
	}

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	c := &Client{
		// No client-level timeout: each call carries its own deadline.
		httpClient: &http.Client{Transport: transport},
		config:     cfg,
		headers:    headers,
		log:        logger.WithComponent("httpclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.config.BaseURL }

// Do executes req. It returns the success envelope with the raw data, or an
// *Error. A non-2xx status is a SERVER error even when the body is not JSON;
// an unparseable body is a GENERIC error only on 2xx.
func (c *Client) Do(ctx context.Context, req Request) (*APIResponse[json.RawMessage], error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	target := req.target()
	ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrHTTPMethod, req.Method),
			attribute.String(observability.AttrHTTPRoute, req.Endpoint),
		))
	defer span.End()

	start := time.Now()
	c.metrics.RecordStart(ctx)

	resp, err := c.do(ctx, req, target)

	duration := time.Since(start)
	outcome := "success"
	fields := logger.Fields(
		logger.FieldMethod, req.Method,
		logger.FieldURL, target,
		logger.FieldDuration, duration.Milliseconds(),
	)
	if err != nil {
		e, _ := AsError(err)
		outcome = e.Kind.String()
		fields[logger.FieldKind] = outcome
		fields[logger.FieldError] = e.Message
		if e.Status != 0 {
			fields[logger.FieldStatus] = e.Status
			span.SetAttributes(attribute.Int(observability.AttrHTTPStatus, e.Status))
		}
		span.SetAttributes(attribute.String(observability.AttrErrorKind, outcome))
		if e.Code != "" {
			span.SetAttributes(attribute.String(observability.AttrErrorCode, e.Code))
		}
		observability.SetSpanError(span, err)
		c.log.WithContext(ctx).Warn("api request failed", fields)
	} else {
		fields[logger.FieldStatus] = resp.Status
		span.SetAttributes(attribute.Int(observability.AttrHTTPStatus, resp.Status))
		c.log.WithContext(ctx).Debug("api request", fields)
	}
	c.metrics.RecordEnd(ctx, req.Method, req.Endpoint, outcome, duration)

	return resp, err
}

func (c *Client) do(ctx context.Context, req Request, target string) (*APIResponse[json.RawMessage], error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, newGenericError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.config.BaseURL+target, body)
	if err != nil {
		return nil, newGenericError(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header = c.buildHeaders(ctx, req.Headers)
	if httpReq.Header.Get(headerRequestID) == "" {
		id := logger.RequestIDFromContext(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		httpReq.Header.Set(headerRequestID, id)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctxErr := deadlineError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newGenericError(fmt.Errorf("read response body: %w", err))
	}

	env, parseErr := parseBody(raw)
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, newServerError(httpResp.StatusCode, env.message, env.code)
	}
	if parseErr != nil {
		return nil, newGenericError(parseErr)
	}
	return env.toResponse(httpResp.StatusCode, raw), nil
}

// classifyTransportError maps a failure without a response. The deadline
// wins over any transport error it caused.
func classifyTransportError(ctx context.Context, err error) *Error {
	if ctxErr := deadlineError(ctx); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return newGenericError(fmt.Errorf("request cancelled: %w", context.Canceled))
	}
	return newNetworkError(err)
}

func deadlineError(ctx context.Context) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newTimeoutError(ctx.Err())
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
