package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/model"
)

var ErrDeleteInProgress = errors.New("delete already in progress")

const DeleteFailedMessage = "Failed to delete product. Please try again."

type ProductDeleter interface {
	DeleteProduct(ctx context.Context, id string) error
}

type Notifier interface {
	Success(message string) string
	Error(message string) string
}

// Row is the rendered form of one product.
type Row struct {
	Product  model.Product
	Style    model.Style
	Stock    model.StockLevel
	Price    string
	Deleting bool
}

// Table runs row deletes. A row cannot be deleted twice at once; different
// rows can.
type Table struct {
	api       ProductDeleter
	notifier  Notifier
	onDeleted func(id string)

	mu       sync.Mutex
	deleting map[string]struct{}
}

// NewTable wires deletes to api. onDeleted runs after a successful delete,
// typically Controller.HandleProductDeleted.
func NewTable(api ProductDeleter, notifier Notifier, onDeleted func(id string)) *Table {
	return &Table{
		api:       api,
		notifier:  notifier,
		onDeleted: onDeleted,
		deleting:  make(map[string]struct{}),
	}
}

func (t *Table) IsDeleting(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.deleting[id]
	return ok
}

// Delete removes product upstream and reports the outcome with a toast.
func (t *Table) Delete(ctx context.Context, product model.Product) error {
	ctx, span := DashboardTracer.Start(ctx, "ProductTable.Delete")
	defer span.End()

	t.mu.Lock()
	if _, busy := t.deleting[product.ID]; busy {
		t.mu.Unlock()
		return ErrDeleteInProgress
	}
	t.deleting[product.ID] = struct{}{}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.deleting, product.ID)
		t.mu.Unlock()
	}()

	if err := t.api.DeleteProduct(ctx, product.ID); err != nil {
		logger.Error(ctx, "Failed to delete product",
			slog.String("id", product.ID),
			slog.String("error", err.Error()),
		)
		t.notifier.Error(DeleteFailedMessage)
		return err
	}

	if t.onDeleted != nil {
		t.onDeleted(product.ID)
	}
	t.notifier.Success(product.Name + " has been deleted successfully")
	return nil
}

func (t *Table) Rows(products []model.Product) []Row {
	rows := make([]Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, Row{
			Product:  p,
			Style:    model.CategoryStyle(p.Category),
			Stock:    model.StockLevelOf(p.Quantity),
			Price:    FormatPrice(p.Price),
			Deleting: t.IsDeleting(p.ID),
		})
	}
	return rows
}
