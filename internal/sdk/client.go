// Package sdk is the typed client of the proxy's /api/products routes.
// Each call is a single request with no retry, validation or caching.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"supermarket-inventory/internal/client"
	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/model"

	"go.opentelemetry.io/otel"
)

const basePath = "/api/products"

var SdkTracer = otel.Tracer("ProductSDK")

// APIError is returned for any non-2xx answer from the proxy.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status from an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	http *client.HTTPClient
}

// New returns a client for the proxy at baseURL. A zero timeout means none.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(client.NewHTTPClient(baseURL, timeout))
}

func NewWithHTTPClient(c *client.HTTPClient) *Client {
	return &Client{http: c}
}

func itemPath(id string) string {
	return basePath + "/" + url.PathEscape(id)
}

func newAPIError(resp *client.Response[interface{}]) *APIError {
	msg := http.StatusText(resp.StatusCode)
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.RawBody, &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg, Body: resp.RawBody}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*client.Response[interface{}], error) {
	resp, err := c.http.DoWithResponse(client.RequestOptions{
		Method:  method,
		URL:     path,
		Body:    body,
		Context: ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		apiErr := newAPIError(resp)
		logger.Warn(ctx, "Proxy returned an error",
			slog.String("http.method", method),
			slog.String("http.path", path),
			slog.Int("http.status", apiErr.StatusCode))
		return nil, apiErr
	}
	return resp, nil
}

func decodeProduct(resp *client.Response[interface{}]) (*model.Product, error) {
	p, err := client.Decode[model.Product](resp)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAllProducts lists every product in store order. A successful answer
// that is not a JSON array yields an empty list.
func (c *Client) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	ctx, span := SdkTracer.Start(ctx, "ProductSDK.GetAllProducts")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, basePath, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(resp.RawBody)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []model.Product{}, nil
	}

	products, err := client.Decode[[]model.Product](resp)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	ctx, span := SdkTracer.Start(ctx, "ProductSDK.CreateProduct")
	defer span.End()

	resp, err := c.do(ctx, http.MethodPost, basePath, in)
	if err != nil {
		return nil, err
	}
	return decodeProduct(resp)
}

func (c *Client) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	ctx, span := SdkTracer.Start(ctx, "ProductSDK.GetProductByID")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeProduct(resp)
}

// UpdateProduct replaces the whole record stored under id.
func (c *Client) UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error) {
	ctx, span := SdkTracer.Start(ctx, "ProductSDK.UpdateProduct")
	defer span.End()

	resp, err := c.do(ctx, http.MethodPut, itemPath(id), in)
	if err != nil {
		return nil, err
	}
	return decodeProduct(resp)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := SdkTracer.Start(ctx, "ProductSDK.DeleteProduct")
	defer span.End()

	_, err := c.do(ctx, http.MethodDelete, itemPath(id), nil)
	return err
}
