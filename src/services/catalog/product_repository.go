package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodb "go-clothing-store/src/infrastructure/mongo"
	"go-clothing-store/src/services/identifier"
)

const ProductCollection = "product"

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description *string            `bson:"description"`
	Price       float64            `bson:"price"`
	Category    *string            `bson:"category"`
	ImageURL    *string            `bson:"image_url"`
	InStock     bool               `bson:"in_stock"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{
		collection: mongodb.Collection(db, ProductCollection),
	}
}

func (r *productRepository) Insert(ctx context.Context, product *Product) (identifier.ID, error) {
	if r.collection == nil {
		return identifier.ID{}, mongodb.ErrDatabaseNotConfigured
	}

	doc := toProductDocument(product)
	doc.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return identifier.ID{}, err
	}
	return identifier.FromObjectID(doc.ID), nil
}

func (r *productRepository) FindByID(ctx context.Context, id identifier.ID) (*Product, error) {
	if r.collection == nil {
		return nil, mongodb.ErrDatabaseNotConfigured
	}

	var doc productDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.ObjectID()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // Product not found
		}
		return nil, err
	}
	product := toProduct(doc)
	return &product, nil
}

// List returns every product, newest first
func (r *productRepository) List(ctx context.Context) ([]Product, error) {
	if r.collection == nil {
		return nil, mongodb.ErrDatabaseNotConfigured
	}

	opts := options.Find().SetSort(bson.D{
		bson.E{Key: "created_at", Value: -1},
		bson.E{Key: "_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []Product{}
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		products = append(products, toProduct(doc))
	}
	return products, cursor.Err()
}

func (r *productRepository) Update(ctx context.Context, id identifier.ID, update ProductUpdate, at time.Time) (bool, error) {
	if r.collection == nil {
		return false, mongodb.ErrDatabaseNotConfigured
	}

	set := bson.M{"updated_at": at}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.ImageURL != nil {
		set["image_url"] = *update.ImageURL
	}
	if update.InStock != nil {
		set["in_stock"] = *update.InStock
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id.ObjectID()}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *productRepository) Delete(ctx context.Context, id identifier.ID) (bool, error) {
	if r.collection == nil {
		return false, mongodb.ErrDatabaseNotConfigured
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.ObjectID()})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// SeedProduct inserts product unless one with the same title exists.
func (r *productRepository) SeedProduct(ctx context.Context, product Product) error {
	if r.collection == nil {
		return mongodb.ErrDatabaseNotConfigured
	}

	doc := toProductDocument(&product)
	doc.ID = primitive.NewObjectID()
	filter := bson.M{"title": product.Title}
	update := bson.M{"$setOnInsert": doc}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func toProductDocument(product *Product) productDocument {
	return productDocument{
		ID:          product.ID.ObjectID(),
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		ImageURL:    product.ImageURL,
		InStock:     product.InStock,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func toProduct(doc productDocument) Product {
	return Product{
		ID:          identifier.FromObjectID(doc.ID),
		Title:       doc.Title,
		Description: doc.Description,
		Price:       doc.Price,
		Category:    doc.Category,
		ImageURL:    doc.ImageURL,
		InStock:     doc.InStock,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}
