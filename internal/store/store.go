// Package store définit les interfaces d'accès aux données consommées par
// la couche service, et leurs implémentations MongoDB. Les services
// reçoivent ces interfaces par injection : les tests substituent des
// fakes en mémoire sans toucher à la base.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/models"
)

// TxRunner exécute fn dans une unité atomique : tout ce que fn écrit via
// le contexte reçu est commité ensemble, ou annulé ensemble si fn échoue.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// DecrementStock décrémente le stock avec précondition stock >= qty.
	// Retourne ErrInsufficientStock si la précondition échoue, sans rien modifier.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	// IncrementStock restaure du stock (annulation de commande, réassort).
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	// LogMovement trace un mouvement de stock (audit, meilleur effort).
	LogMovement(ctx context.Context, m models.StockMovement) error
	// BrandName / CategoryName résolvent le libellé pour les snapshots,
	// "Unknown" si la référence est nulle ou pendante.
	BrandName(ctx context.Context, id *primitive.ObjectID) string
	CategoryName(ctx context.Context, id *primitive.ObjectID) string
}

type CartStore interface {
	// GetByUser retourne les lignes du panier, produit joint résolu dans
	// Product.Resolved quand il existe encore (référence pendante sinon).
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error)
	Insert(ctx context.Context, item models.CartItem) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, productID primitive.ObjectID) error
	ClearByUser(ctx context.Context, userID primitive.ObjectID) error
	ItemCount(ctx context.Context, userID primitive.ObjectID) (int, error)
}

// StatusChange décrit une transition appliquée par le store sous
// précondition : le statut courant doit appartenir à AllowedFrom.
type StatusChange struct {
	NewStatus      string
	Timestamp      time.Time
	AdminNotes     string
	SetPaymentPaid bool
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	InsertItems(ctx context.Context, items []models.OrderItem) error
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ItemsByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error)
	Count(ctx context.Context) (int64, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page Page) ([]models.Order, int64, error)
	ListAll(ctx context.Context, cond OrderCondition, search string, page Page) ([]models.Order, int64, error)
	// UpdateStatus applique change si et seulement si le statut courant est
	// dans allowedFrom. ErrInvalidTransition sinon, ErrOrderNotFound si la
	// commande n'existe pas. La précondition est évaluée atomiquement.
	UpdateStatus(ctx context.Context, orderNumber string, allowedFrom []string, change StatusChange) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderNumber, paymentStatus string) (*models.Order, error)
}

// OrderCondition filtre la liste admin des commandes.
type OrderCondition struct {
	Status        string
	PaymentStatus string
	PaymentMethod string
	UserID        *primitive.ObjectID
	DateFrom      *time.Time
	DateTo        *time.Time
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	SavePasswordResetOTP(ctx context.Context, email, otp string, expires time.Time) error
	FindByValidOTP(ctx context.Context, email, otp string) (*models.User, error)
	ResetPasswordAndClearOTP(ctx context.Context, id primitive.ObjectID, hashedPassword string) error
}

type ReviewStore interface {
	Insert(ctx context.Context, review *models.Review) error
	GetByProduct(ctx context.Context, productID primitive.ObjectID, rating *int, page Page) ([]models.Review, int64, error)
	Stats(ctx context.Context, productID primitive.ObjectID) (*models.ReviewStats, error)
	FindByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*models.Review, error)
	SetAdminReply(ctx context.Context, reviewID primitive.ObjectID, reply string) (*models.Review, error)
}

type WishlistStore interface {
	Add(ctx context.Context, item models.WishlistItem) (*models.WishlistItem, error)
	Remove(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	RemoveMultiple(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) (int64, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID, page Page) (*models.WishlistPage, error)
	ItemCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// Reorder déplace un élément à la position newOrder (1..N) en
	// renumérotant les éléments intermédiaires.
	Reorder(ctx context.Context, itemID, userID primitive.ObjectID, newOrder int) (*models.WishlistItem, error)
	MoveUp(ctx context.Context, itemID, userID primitive.ObjectID) (*models.WishlistItem, error)
	MoveDown(ctx context.Context, itemID, userID primitive.ObjectID) (*models.WishlistItem, error)
}

// ReportStore expose les rollups en lecture seule sous forme de requêtes
// typées (group-by + somme/compte), pas de pipelines bruts dans l'API.
type ReportStore interface {
	OrderStats(ctx context.Context) (*models.OrderStats, error)
	ReportStats(ctx context.Context, r models.DateRange) (*models.ReportStats, error)
	MonthlyReport(ctx context.Context, year int) ([]models.MonthlyReportRow, error)
	ProductSales(ctx context.Context, r models.DateRange, search string, limit int) ([]models.ProductSalesRow, error)
}
