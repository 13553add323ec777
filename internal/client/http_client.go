package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"supermarket-inventory/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var HttpClientTracer = otel.Tracer("HttpClient")

// ErrDecode marks a response body that could not be parsed into the wanted type.
var ErrDecode = errors.New("failed to parse response")

// HTTPClient talks JSON to one upstream (the record store for the proxy, the
// proxy for the dashboard). It propagates the trace context and logs both
// legs of every exchange.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	headers http.Header
}

// RequestOptions describes one call. URL is relative to the base URL unless
// it is absolute.
type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   url.Values
	Body    interface{}
	Timeout time.Duration
	Context context.Context
}

// Response is what came back. Data holds the decoded JSON body, or the zero
// value when the body was empty or not JSON.
type Response[T any] struct {
	Data       T
	StatusCode int
	Headers    http.Header
	RawBody    []byte
}

func (r *Response[T]) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewHTTPClient creates a client for baseURL. A zero timeout means none.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(http.Header),
	}
}

// SetDefaultHeader adds a header sent with every request.
func (c *HTTPClient) SetDefaultHeader(key, value string) {
	c.headers.Set(key, value)
}

// Decode parses the raw body of resp as T.
func Decode[T any](resp *Response[interface{}]) (T, error) {
	var out T
	if err := json.Unmarshal(resp.RawBody, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

// DoWithResponse performs the call. Any answer from the upstream, whatever its
// status, is returned without error; only transport failures are errors.
func (c *HTTPClient) DoWithResponse(opts RequestOptions) (*Response[interface{}], error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	target, err := c.resolve(opts.URL, opts.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}

	ctx, span := HttpClientTracer.Start(ctx, "HttpClient "+opts.Method)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", opts.Method),
		attribute.String("http.url", target),
	)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, opts.Headers)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	req.Header.Set("X-Trace-ID", span.SpanContext().TraceID().String())

	logger.Info(ctx, "HttpClient request",
		slog.String("http.direction", "outgoing::request"),
		slog.String("http.method", req.Method),
		slog.String("http.url", target),
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		logger.Error(ctx, "Upstream unreachable", slog.String("http.url", target), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failure")
		logger.Error(ctx, "Failed to read upstream body", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, "upstream error")
	}
	logger.Info(ctx, "HttpClient response", logger.LogUpstreamResponse(
		req.Method, target, resp.StatusCode, raw,
		resp.Header.Get("Content-Type"), time.Since(start),
	)...)

	out := &Response[interface{}]{StatusCode: resp.StatusCode, Headers: resp.Header, RawBody: raw}
	if len(raw) > 0 {
		var data interface{}
		if json.Unmarshal(raw, &data) == nil {
			out.Data = data
		}
	}
	return out, nil
}

func (c *HTTPClient) GetWithResponse(path string, opts ...RequestOptions) (*Response[interface{}], error) {
	return c.DoWithResponse(with(http.MethodGet, path, nil, opts))
}

func (c *HTTPClient) PostWithResponse(path string, body interface{}, opts ...RequestOptions) (*Response[interface{}], error) {
	return c.DoWithResponse(with(http.MethodPost, path, body, opts))
}

func (c *HTTPClient) PutWithResponse(path string, body interface{}, opts ...RequestOptions) (*Response[interface{}], error) {
	return c.DoWithResponse(with(http.MethodPut, path, body, opts))
}

func (c *HTTPClient) DeleteWithResponse(path string, opts ...RequestOptions) (*Response[interface{}], error) {
	return c.DoWithResponse(with(http.MethodDelete, path, nil, opts))
}

// with fills method, path and body into the first option set, if any.
func with(method, path string, body interface{}, opts []RequestOptions) RequestOptions {
	var o RequestOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	o.Method, o.URL = method, path
	if body != nil {
		o.Body = body
	}
	return o
}

func (c *HTTPClient) resolve(endpoint string, query url.Values) (string, error) {
	raw := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		raw = c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}
	if len(query) == 0 {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range query {
		q[k] = append(q[k], vs...)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// encodeBody sends byte payloads untouched so the proxy can relay a client
// body exactly as received; anything else is marshalled as JSON.
func encodeBody(body interface{}) (io.Reader, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(v), nil
	case json.RawMessage:
		return bytes.NewReader(v), nil
	case string:
		return strings.NewReader(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(b), nil
	}
}

func (c *HTTPClient) setHeaders(req *http.Request, extra map[string]string) {
	for k, vs := range c.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}
}
