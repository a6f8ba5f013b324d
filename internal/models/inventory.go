package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockMovement trace chaque variation de stock : vente (pipeline de
// commande), retour (annulation), réassort ou ajustement admin.
type StockMovement struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID  `bson:"product_id" json:"product_id"`
	Type      string              `bson:"type" json:"type"` // "sale", "return", "restock", "adjustment"
	Quantity  int                 `bson:"quantity" json:"quantity"`
	PrevStock int                 `bson:"prev_stock" json:"prev_stock"`
	NewStock  int                 `bson:"new_stock" json:"new_stock"`
	Reason    string              `bson:"reason,omitempty" json:"reason,omitempty"`
	OrderID   *primitive.ObjectID `bson:"order_id,omitempty" json:"order_id,omitempty"`
	UserID    string              `bson:"user_id,omitempty" json:"user_id,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}

type StockAlert struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID      primitive.ObjectID `bson:"product_id" json:"product_id"`
	ProductName    string             `bson:"product_name" json:"product_name"`
	CurrentStock   int                `bson:"current_stock" json:"current_stock"`
	ThresholdStock int                `bson:"threshold_stock" json:"threshold_stock"`
	AlertType      string             `bson:"alert_type" json:"alert_type"` // "low_stock", "out_of_stock"
	IsResolved     bool               `bson:"is_resolved" json:"is_resolved"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	ResolvedAt     *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}
