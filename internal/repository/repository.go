package repository

import (
	"context"
	"errors"

	"supermarket-inventory/internal/model"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// ProductRepository persists products for the record store.
// FindAll returns products in insertion order.
type ProductRepository interface {
	Insert(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	Replace(ctx context.Context, id string, product *model.Product) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

var (
	_ ProductRepository = (*MongoProductRepository)(nil)
	_ ProductRepository = (*GormProductRepository)(nil)
)
