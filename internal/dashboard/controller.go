// Package dashboard holds the product list state shown on the main page and
// the per-row actions of the product table.
package dashboard

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/model"

	"go.opentelemetry.io/otel"
)

const LoadErrorMessage = "Failed to load products. Please make sure the record store is running"

var DashboardTracer = otel.Tracer("Dashboard")

type ProductLister interface {
	GetAllProducts(ctx context.Context) ([]model.Product, error)
}

// State is a copy of the controller's state at one instant.
type State struct {
	Products []model.Product
	Loading  bool
	Error    string
}

// Controller owns the product list. A fetch replaces the list wholesale;
// only the most recently started fetch may change the state.
type Controller struct {
	api ProductLister

	mu       sync.Mutex
	products []model.Product
	loading  bool
	err      string
	seq      uint64

	mountOnce sync.Once
}

func NewController(api ProductLister) *Controller {
	return &Controller{
		api:      api,
		products: []model.Product{},
		loading:  true,
	}
}

// Mount performs the initial load. Later calls do nothing.
func (c *Controller) Mount(ctx context.Context) {
	c.mountOnce.Do(func() {
		_ = c.FetchProducts(ctx)
	})
}

// FetchProducts reloads the list. On failure the previous list is kept and
// the fixed load error is set. The returned error is the lister's.
func (c *Controller) FetchProducts(ctx context.Context) error {
	ctx, span := DashboardTracer.Start(ctx, "Dashboard.FetchProducts")
	defer span.End()

	c.mu.Lock()
	c.seq++
	token := c.seq
	c.loading = true
	c.err = ""
	c.mu.Unlock()

	products, err := c.api.GetAllProducts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.seq {
		logger.Debug(ctx, "Discarding superseded product fetch", slog.Uint64("token", token))
		return err
	}

	c.loading = false
	if err != nil {
		c.err = LoadErrorMessage
		logger.Error(ctx, "Failed to load products", slog.String("error", err.Error()))
		return err
	}

	if products == nil {
		products = []model.Product{}
	}
	c.products = products
	return nil
}

// HandleProductDeleted drops the product with id from the list without
// reloading.
func (c *Controller) HandleProductDeleted(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.products = kept
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	products := make([]model.Product, len(c.products))
	copy(products, c.products)
	return State{
		Products: products,
		Loading:  c.loading,
		Error:    c.err,
	}
}

func (c *Controller) Stats() Stats {
	return ComputeStats(c.Snapshot().Products)
}

// ShowEmptyState reports whether the "no products" view applies.
func (s State) ShowEmptyState() bool {
	return !s.Loading && s.Error == "" && len(s.Products) == 0
}

func (s State) Headline() string {
	if len(s.Products) == 0 {
		return "No products found. Add your first product to get started!"
	}
	return "Manage your " + strconv.Itoa(len(s.Products)) + " products efficiently"
}
