package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts de traitement d'une commande.
// Chemin nominal : pending → confirmed → processing → shipping → delivered.
// cancelled est atteignable depuis tout état non terminal.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipping   = "shipping"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Statuts de paiement, orthogonaux au statut de traitement.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Moyens de paiement acceptés.
const (
	PaymentMethodCOD          = "cod"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
)

// CustomerInfo est le snapshot de livraison dénormalisé dans la commande.
type CustomerInfo struct {
	FullName string `bson:"full_name" json:"full_name"`
	Phone    string `bson:"phone" json:"phone"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	Address  string `bson:"address" json:"address"`
	City     string `bson:"city,omitempty" json:"city,omitempty"`
	Notes    string `bson:"notes,omitempty" json:"notes,omitempty"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber   string             `bson:"order_number" json:"order_number"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	CustomerInfo  CustomerInfo       `bson:"customer_info" json:"customer_info"`
	Status        string             `bson:"status" json:"status"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	PaymentStatus string             `bson:"payment_status" json:"payment_status"`
	Subtotal      float64            `bson:"subtotal" json:"subtotal"`
	TotalAmount   float64            `bson:"total_amount" json:"total_amount"`
	CustomerNotes string             `bson:"customer_notes,omitempty" json:"customer_notes,omitempty"`
	AdminNotes    string             `bson:"admin_notes,omitempty" json:"admin_notes,omitempty"`
	OrderDate     time.Time          `bson:"order_date" json:"order_date"`

	// Horodatages de transition, renseignés par la machine à états
	ConfirmedAt *time.Time `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	ProcessedAt *time.Time `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
	ShippedAt   *time.Time `bson:"shipped_at,omitempty" json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	CancelledAt *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`

	Items []OrderItem `bson:"-" json:"items,omitempty"`
}

// OrderItem est immuable après création : créé avec la commande,
// jamais modifié ensuite.
type OrderItem struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID         primitive.ObjectID `bson:"order_id" json:"order_id"`
	ProductID       primitive.ObjectID `bson:"product_id" json:"product_id"`
	ProductName     string             `bson:"product_name" json:"product_name"`
	ProductSKU      string             `bson:"product_sku" json:"product_sku"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	UnitPrice       float64            `bson:"unit_price" json:"unit_price"`
	TotalPrice      float64            `bson:"total_price" json:"total_price"`
	ProductSnapshot ProductSnapshot    `bson:"product_snapshot" json:"product_snapshot"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// OrderStats est le rollup global des commandes.
type OrderStats struct {
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	ConfirmedOrders int     `json:"confirmed_orders"`
	ShippingOrders  int     `json:"shipping_orders"`
	DeliveredOrders int     `json:"delivered_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	TodayOrders     int     `json:"today_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
}
