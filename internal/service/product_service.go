package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/model"
	"supermarket-inventory/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
)

// ErrInvalidProduct is returned for records that break the storage invariants.
var ErrInvalidProduct = errors.New("invalid product data")

// ProductService is the record store's business layer. It only enforces the
// storage invariants (name present, non-negative price and quantity); the
// stricter submission rules live in the form controllers.
type ProductService struct {
	repo     repository.ProductRepository
	validate *validator.Validate
}

var ProductServiceTracer = otel.Tracer("ProductService")

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *ProductService) check(p *model.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := s.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %s", ErrInvalidProduct, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Create")
	defer span.End()
	logger.Debug(ctx, "Service")

	if err := s.check(p); err != nil {
		return nil, err
	}
	p.ID = ""
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) GetAll(ctx context.Context) ([]model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.GetAll")
	defer span.End()
	logger.Debug(ctx, "Service")

	return s.repo.FindAll(ctx)
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.GetByID")
	defer span.End()
	logger.Debug(ctx, "Service")

	return s.repo.FindByID(ctx, id)
}

// Replace overwrites the whole record; the path id always wins over p.ID.
func (s *ProductService) Replace(ctx context.Context, id string, p *model.Product) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Replace")
	defer span.End()
	logger.Debug(ctx, "Service")

	if err := s.check(p); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.Replace(ctx, id, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Delete")
	defer span.End()
	logger.Debug(ctx, "Service")

	return s.repo.Delete(ctx, id)
}
