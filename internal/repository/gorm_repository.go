package repository

import (
	"context"
	"errors"
	"fmt"

	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRecord is the relational shape of a product. Seq keeps insertion order.
type ProductRecord struct {
	Seq      uint    `gorm:"primaryKey;autoIncrement"`
	ID       string  `gorm:"type:varchar(36);uniqueIndex;not null"`
	Name     string  `gorm:"type:varchar(255);not null"`
	Price    float64 `gorm:"not null"`
	Quantity int     `gorm:"not null"`
	Category string  `gorm:"type:varchar(50)"`
	ImageURL string  `gorm:"type:text"`
}

func (ProductRecord) TableName() string {
	return "products"
}

func (r *ProductRecord) apply(p *model.Product) {
	r.Name = p.Name
	r.Price = p.Price
	r.Quantity = p.Quantity
	r.Category = p.Category
	r.ImageURL = p.ImageURL
}

func (r ProductRecord) toModel() model.Product {
	return model.Product{
		ID:       r.ID,
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
		Category: r.Category,
		ImageURL: r.ImageURL,
	}
}

// GormProductRepository stores products in a SQL database; ids are uuids.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Migrate creates or updates the products table.
func (r *GormProductRepository) Migrate() error {
	return r.db.AutoMigrate(&ProductRecord{})
}

func (r *GormProductRepository) Insert(ctx context.Context, product *model.Product) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "GormProductRepository.Insert")
	defer span.End()
	logger.Debug(ctx, "Repository")

	record := ProductRecord{ID: uuid.New().String()}
	record.apply(product)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	product.ID = record.ID
	return nil
}

func (r *GormProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "GormProductRepository.FindAll")
	defer span.End()
	logger.Debug(ctx, "Repository")

	var records []ProductRecord
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	products := make([]model.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.toModel())
	}
	return products, nil
}

func (r *GormProductRepository) find(ctx context.Context, id string) (*ProductRecord, error) {
	var record ProductRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &record, nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "GormProductRepository.FindByID")
	defer span.End()
	logger.Debug(ctx, "Repository")

	record, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	product := record.toModel()
	return &product, nil
}

func (r *GormProductRepository) Replace(ctx context.Context, id string, product *model.Product) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "GormProductRepository.Replace")
	defer span.End()
	logger.Debug(ctx, "Repository")

	record, err := r.find(ctx, id)
	if err != nil {
		return err
	}
	record.apply(product)
	// Save writes every column, zero values included.
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to replace product: %w", err)
	}
	product.ID = id
	return nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "GormProductRepository.Delete")
	defer span.End()
	logger.Debug(ctx, "Repository")

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ProductRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
