package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name              string              `bson:"name" json:"name"`
	Description       string              `bson:"description" json:"description"`
	SKU               string              `bson:"sku" json:"sku"`
	Price             float64             `bson:"price" json:"price"`
	OriginalPrice     float64             `bson:"original_price,omitempty" json:"original_price,omitempty"`
	Stock             int                 `bson:"stock" json:"stock"`
	LowStockThreshold int                 `bson:"low_stock_threshold" json:"low_stock_threshold"`
	CategoryID        *primitive.ObjectID `bson:"category_id,omitempty" json:"category_id,omitempty"`
	BrandID           *primitive.ObjectID `bson:"brand_id,omitempty" json:"brand_id,omitempty"`
	Images            []string            `bson:"images" json:"images"`
	Tags              []string            `bson:"tags" json:"tags"`
	IsActive          bool                `bson:"is_active" json:"is_active"`
	IsFeatured        bool                `bson:"is_featured" json:"is_featured"`
	CreatedAt         time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `bson:"updated_at" json:"updated_at"`
}

// ProductRef référence un produit, avec ou sans le document résolu.
// Remplace les champs "parfois un id, parfois un objet peuplé" :
// le consommateur vérifie Resolved au lieu de deviner le type.
type ProductRef struct {
	ID       primitive.ObjectID `bson:"id" json:"id"`
	Resolved *Product           `bson:"-" json:"product,omitempty"`
}

// Deref retourne le produit résolu s'il a été peuplé.
func (r ProductRef) Deref() (*Product, bool) {
	return r.Resolved, r.Resolved != nil
}

// ProductSnapshot fige les champs mutables d'un produit au moment de la
// commande, pour que l'historique reste lisible même si le produit est
// modifié ou supprimé ensuite.
type ProductSnapshot struct {
	Description string   `bson:"description" json:"description"`
	Images      []string `bson:"images" json:"images"`
	Brand       string   `bson:"brand" json:"brand"`
	Category    string   `bson:"category" json:"category"`
}
