package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Brand struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Slug        string               `bson:"slug" json:"slug"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	LogoURL     string               `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	Country     string               `bson:"country,omitempty" json:"country,omitempty"`
	FoundedYear int                  `bson:"founded_year,omitempty" json:"founded_year,omitempty"`
	CategoryIDs []primitive.ObjectID `bson:"category_ids,omitempty" json:"category_ids,omitempty"`
	IsActive    bool                 `bson:"is_active" json:"is_active"`
	IsFeatured  bool                 `bson:"is_featured" json:"is_featured"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}
