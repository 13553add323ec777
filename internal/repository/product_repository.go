package repository

import (
	"context"
	"errors"
	"fmt"

	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
)

// productDocument is the Mongo shape of a product.
type productDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Price    float64            `bson:"price"`
	Quantity int                `bson:"quantity"`
	Category string             `bson:"category"`
	ImageURL string             `bson:"imageUrl"`
}

func toDocument(p *model.Product) productDocument {
	return productDocument{
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
		Category: p.Category,
		ImageURL: p.ImageURL,
	}
}

func (d productDocument) toModel() model.Product {
	return model.Product{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Price:    d.Price,
		Quantity: d.Quantity,
		Category: d.Category,
		ImageURL: d.ImageURL,
	}
}

// MongoProductRepository stores products in a Mongo collection; ids are ObjectID hex strings.
type MongoProductRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var ProductRepositoryTracer = otel.Tracer("ProductRepository")

func NewMongoProductRepository(client *mongo.Client, db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		client:     client,
		collection: db.Collection("products"),
	}
}

// parseID maps malformed ids to ErrNotFound: no document can carry them.
func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return objID, nil
}

func (r *MongoProductRepository) Insert(ctx context.Context, product *model.Product) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "MongoProductRepository.Insert")
	defer span.End()
	logger.Debug(ctx, "Repository")

	doc := toDocument(product)
	doc.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	product.ID = doc.ID.Hex()
	return nil
}

func (r *MongoProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "MongoProductRepository.FindAll")
	defer span.End()
	logger.Debug(ctx, "Repository")

	// ObjectIDs start with a timestamp, so _id order is insertion order.
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]model.Product, 0)
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "MongoProductRepository.FindByID")
	defer span.End()
	logger.Debug(ctx, "Repository")

	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc productDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	product := doc.toModel()
	return &product, nil
}

func (r *MongoProductRepository) Replace(ctx context.Context, id string, product *model.Product) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "MongoProductRepository.Replace")
	defer span.End()
	logger.Debug(ctx, "Repository")

	objID, err := parseID(id)
	if err != nil {
		return err
	}

	doc := toDocument(product)
	doc.ID = objID
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": objID}, doc)
	if err != nil {
		return fmt.Errorf("failed to replace product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	product.ID = id
	return nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "MongoProductRepository.Delete")
	defer span.End()
	logger.Debug(ctx, "Repository")

	objID, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}
