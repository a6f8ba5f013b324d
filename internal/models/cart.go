package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem est une ligne de panier : unique par (user_id, product_id).
// UnitPrice est le prix capturé au moment de l'ajout : la commande est
// passée à ce prix même si le produit a changé entre-temps.
type CartItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	ProductID   primitive.ObjectID `bson:"product_id" json:"product_id"`
	ProductName string             `bson:"product_name" json:"product_name"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	UnitPrice   float64            `bson:"unit_price" json:"unit_price"`
	AddedAt     time.Time          `bson:"added_at" json:"added_at"`

	// Produit joint (peuplé par le store, jamais persisté tel quel)
	Product ProductRef `bson:"-" json:"product,omitempty"`
}

// CartValidation est le résultat du pré-check avant checkout.
// Purement informatif : rien n'est muté, la re-validation atomique
// a lieu dans la transaction de commande.
type CartValidation struct {
	IsValid    bool       `json:"is_valid"`
	Errors     []string   `json:"errors"`
	ValidItems []CartItem `json:"valid_items"`
}
