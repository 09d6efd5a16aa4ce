package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"martshift/internal/apperr"
	"martshift/internal/model"
)

type ProductService struct {
	products ProductStore
}

func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

// Create registers a new product. Administrator only.
func (s *ProductService) Create(ctx context.Context, ident model.Identity, name, category string, price, stock int64, expiry string) (*model.Product, error) {
	if !ident.IsOwner() {
		return nil, apperr.Permission("error.auth.owner_only")
	}
	if name == "" || category == "" {
		return nil, apperr.Validation("error.product.missing_fields")
	}

	product := &model.Product{
		Name:     name,
		Category: category,
		Price:    price,
		Stock:    stock,
	}
	if expiry != "" {
		parsed, err := time.Parse(time.DateOnly, expiry)
		if err != nil {
			return nil, apperr.Validation("error.product.bad_expiry")
		}
		product.ExpiryDate = &parsed
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// Search lists products by optional name query and category.
func (s *ProductService) Search(ctx context.Context, query, category string) ([]*model.Product, error) {
	products, err := s.products.Search(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// AdjustStock increases a product's stock by a positive delta, optionally
// recording a new expiry date. Used when an order arrives.
func (s *ProductService) AdjustStock(ctx context.Context, id string, delta int64, expiry string) (*model.Product, error) {
	if delta <= 0 {
		return nil, apperr.Validation("error.product.invalid_quantity")
	}

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("error.product.not_found")
	}

	var expiryTime *time.Time
	if expiry != "" {
		parsed, err := time.Parse(time.DateOnly, expiry)
		if err != nil {
			return nil, apperr.Validation("error.product.bad_expiry")
		}
		expiryTime = &parsed
	}

	product, err := s.products.AdjustStock(ctx, oid, delta, expiryTime)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if product == nil {
		return nil, apperr.NotFound("error.product.not_found")
	}
	return product, nil
}
