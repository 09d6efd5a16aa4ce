package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"martshift/internal/model"
)

type ProductStore struct {
	products *mongo.Collection
}

func NewProductStore(ctx context.Context, db *MongoDB) (*ProductStore, error) {
	products := db.Collection("products")

	if _, err := products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create product indexes: %w", err)
	}

	return &ProductStore{products: products}, nil
}

// Create inserts a new product and sets the ID on the struct.
func (s *ProductStore) Create(ctx context.Context, product *model.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	res, err := s.products.InsertOne(ctx, product)
	if err != nil {
		return err
	}
	product.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// Search returns products matching an optional name query and category,
// newest first. Documents without a usable name are excluded.
func (s *ProductStore) Search(ctx context.Context, query, category string) ([]*model.Product, error) {
	filter := bson.M{
		"name": bson.M{"$exists": true, "$nin": bson.A{"", nil}},
	}
	if category != "" {
		filter["category"] = category
	}
	if query != "" {
		filter["name"] = bson.M{"$regex": query, "$options": "i"}
	}

	cursor, err := s.products.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var results []*model.Product
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return results, nil
}

// AdjustStock atomically increments a product's stock by delta and
// optionally sets a new expiry date, returning the updated document or nil
// when the product does not exist.
func (s *ProductStore) AdjustStock(ctx context.Context, id bson.ObjectID, delta int64, expiry *time.Time) (*model.Product, error) {
	update := bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}
	if expiry != nil {
		update["$set"].(bson.M)["expiry_date"] = *expiry
	}

	var product model.Product
	err := s.products.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("adjust product stock: %w", err)
	}
	return &product, nil
}
