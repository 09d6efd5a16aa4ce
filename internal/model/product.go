package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Product struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string        `bson:"name" json:"name"`
	Category   string        `bson:"category" json:"category"`
	Price      int64         `bson:"price" json:"price"` // smallest currency unit
	Stock      int64         `bson:"stock" json:"stock"`
	ExpiryDate *time.Time    `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updated_at"`
}
