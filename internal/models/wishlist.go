package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistItem : unique par (user_id, product_id). DisplayOrder définit
// un ordre total par utilisateur (1..N), renuméroté lors des déplacements.
type WishlistItem struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	ProductID       primitive.ObjectID `bson:"product_id" json:"product_id"`
	DisplayOrder    int                `bson:"display_order" json:"display_order"`
	ProductSnapshot WishlistSnapshot   `bson:"product_snapshot" json:"product_snapshot"`
	AddedAt         time.Time          `bson:"added_at" json:"added_at"`
}

// WishlistSnapshot fige le produit au moment de l'ajout en wishlist.
type WishlistSnapshot struct {
	Name          string   `bson:"name" json:"name"`
	Price         float64  `bson:"price" json:"price"`
	OriginalPrice float64  `bson:"original_price,omitempty" json:"original_price,omitempty"`
	Images        []string `bson:"images" json:"images"`
	SKU           string   `bson:"sku" json:"sku"`
	Brand         string   `bson:"brand" json:"brand"`
	Category      string   `bson:"category" json:"category"`
}

type WishlistPage struct {
	Nodes           []WishlistItem `json:"nodes"`
	TotalCount      int            `json:"total_count"`
	HasNextPage     bool           `json:"has_next_page"`
	HasPreviousPage bool           `json:"has_previous_page"`
}
