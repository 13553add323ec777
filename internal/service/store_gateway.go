package service

import (
	"context"
	"net/url"
	"strconv"

	"supermarket-inventory/internal/client"
	"supermarket-inventory/internal/logger"

	"go.opentelemetry.io/otel"
)

const collectionPath = "/products"

// StoreGateway issues single-attempt requests to the record store's product
// collection. Every request bypasses intermediate caches.
type StoreGateway struct {
	client *client.HTTPClient
}

var StoreGatewayTracer = otel.Tracer("StoreGateway")

func NewStoreGateway(c *client.HTTPClient) *StoreGateway {
	c.SetDefaultHeader("Cache-Control", "no-store")
	return &StoreGateway{client: c}
}

func itemPath(id string) string {
	return collectionPath + "/" + url.PathEscape(id)
}

func (g *StoreGateway) List(ctx context.Context) (*client.Response[interface{}], error) {
	ctx, span := StoreGatewayTracer.Start(ctx, "StoreGateway.List")
	defer span.End()
	logger.Debug(ctx, "Gateway")

	return g.client.GetWithResponse(collectionPath, client.RequestOptions{Context: ctx})
}

// Create forwards body unchanged.
func (g *StoreGateway) Create(ctx context.Context, body []byte) (*client.Response[interface{}], error) {
	ctx, span := StoreGatewayTracer.Start(ctx, "StoreGateway.Create")
	defer span.End()
	logger.Debug(ctx, "Gateway")

	return g.client.PostWithResponse(collectionPath, body, client.RequestOptions{Context: ctx})
}

func (g *StoreGateway) Get(ctx context.Context, id string) (*client.Response[interface{}], error) {
	ctx, span := StoreGatewayTracer.Start(ctx, "StoreGateway.Get")
	defer span.End()
	logger.Debug(ctx, "Gateway")

	return g.client.GetWithResponse(itemPath(id), client.RequestOptions{Context: ctx})
}

func (g *StoreGateway) Replace(ctx context.Context, id string, record map[string]interface{}) (*client.Response[interface{}], error) {
	ctx, span := StoreGatewayTracer.Start(ctx, "StoreGateway.Replace")
	defer span.End()
	logger.Debug(ctx, "Gateway")

	return g.client.PutWithResponse(itemPath(id), record, client.RequestOptions{Context: ctx})
}

func (g *StoreGateway) Delete(ctx context.Context, id string) (*client.Response[interface{}], error) {
	ctx, span := StoreGatewayTracer.Start(ctx, "StoreGateway.Delete")
	defer span.End()
	logger.Debug(ctx, "Gateway")

	return g.client.DeleteWithResponse(itemPath(id), client.RequestOptions{Context: ctx})
}

// Ping succeeds when the store answers its list endpoint with a 2xx.
func (g *StoreGateway) Ping(ctx context.Context) error {
	resp, err := g.client.GetWithResponse(collectionPath, client.RequestOptions{Context: ctx})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &StoreStatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// StoreStatusError reports a non-2xx answer from the store.
type StoreStatusError struct {
	StatusCode int
}

func (e *StoreStatusError) Error() string {
	return "record store returned status " + strconv.Itoa(e.StatusCode)
}
