package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/store"
)

// Nombre de régénérations du numéro de commande avant abandon, quand
// l'index unique détecte une collision.
const maxOrderNumberAttempts = 3

// OrderService orchestre le pipeline de commande et le cycle de vie.
// Toutes les dépendances sont injectées : les tests substituent des fakes.
type OrderService struct {
	tx       store.TxRunner
	products store.ProductStore
	carts    store.CartStore
	orders   store.OrderStore
	reports  store.ReportStore
}

func NewOrderService(tx store.TxRunner, products store.ProductStore, carts store.CartStore, orders store.OrderStore, reports store.ReportStore) *OrderService {
	return &OrderService{
		tx:       tx,
		products: products,
		carts:    carts,
		orders:   orders,
		reports:  reports,
	}
}

// PlaceOrderInput : snapshot de livraison + choix de paiement du client.
type PlaceOrderInput struct {
	CustomerInfo  models.CustomerInfo
	PaymentMethod string
	CustomerNotes string
}

// PlaceOrder convertit le panier en commande, tout ou rien :
// validation des lignes, génération du numéro, écriture commande + lignes,
// décrément du stock sous précondition, vidage du panier, le tout dans une seule
// transaction. Aucun effet partiel n'est visible en cas d'échec.
//
// Une collision de numéro (index unique) fait avorter la transaction Mongo
// entière : on régénère le numéro et on rejoue tout le pipeline, jamais un
// ré-insert dans la transaction morte.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, input PlaceOrderInput) (*models.Order, error) {
	var placed *models.Order
	var err error

	for attempt := int64(0); attempt < maxOrderNumberAttempts; attempt++ {
		placed, err = s.placeOrderAttempt(ctx, userID, input, attempt)
		if err == nil {
			log.Printf("✅ Commande %s créée (%d lignes, total %.2f)", placed.OrderNumber, len(placed.Items), placed.TotalAmount)
			return placed, nil
		}
		if !errors.Is(err, store.ErrDuplicateOrderNumber) {
			return nil, err
		}
		log.Printf("⚠️ Collision de numéro de commande, régénération")
	}
	return nil, fmt.Errorf("écriture de la commande: %w", err)
}

func (s *OrderService) placeOrderAttempt(ctx context.Context, userID primitive.ObjectID, input PlaceOrderInput, attempt int64) (*models.Order, error) {
	var placed *models.Order

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		cartItems, err := s.carts.GetByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("lecture du panier: %w", err)
		}
		if len(cartItems) == 0 {
			return store.ErrEmptyCart
		}

		var subtotal float64
		drafts := make([]models.OrderItem, 0, len(cartItems))

		for _, line := range cartItems {
			product, ok := line.Product.Deref()
			if !ok {
				return &store.MissingProductError{
					ProductID:   line.ProductID.Hex(),
					ProductName: line.ProductName,
				}
			}
			if product.Stock < line.Quantity {
				return &store.StockError{
					ProductID:   product.ID.Hex(),
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   line.Quantity,
				}
			}

			itemTotal := line.UnitPrice * float64(line.Quantity)
			subtotal += itemTotal

			drafts = append(drafts, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				ProductSKU:  product.SKU,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				TotalPrice:  itemTotal,
				ProductSnapshot: models.ProductSnapshot{
					Description: product.Description,
					Images:      product.Images,
					Brand:       s.products.BrandName(ctx, product.BrandID),
					Category:    s.products.CategoryName(ctx, product.CategoryID),
				},
			})
		}

		order := &models.Order{
			UserID:        userID,
			CustomerInfo:  input.CustomerInfo,
			Status:        models.OrderStatusPending,
			PaymentMethod: input.PaymentMethod,
			PaymentStatus: models.PaymentStatusPending,
			Subtotal:      subtotal,
			TotalAmount:   subtotal,
			CustomerNotes: input.CustomerNotes,
			OrderDate:     time.Now(),
		}

		count, err := s.orders.Count(ctx)
		if err != nil {
			return fmt.Errorf("comptage des commandes: %w", err)
		}
		// Génération par comptage, donc raceable : l'index unique tranche.
		order.OrderNumber = generateOrderNumber(count+1+attempt, time.Now())
		if err := s.orders.Insert(ctx, order); err != nil {
			if errors.Is(err, store.ErrDuplicateOrderNumber) {
				return err
			}
			return fmt.Errorf("écriture de la commande: %w", err)
		}

		now := time.Now()
		for i := range drafts {
			drafts[i].OrderID = order.ID
			drafts[i].CreatedAt = now
		}
		if err := s.orders.InsertItems(ctx, drafts); err != nil {
			return fmt.Errorf("écriture des lignes de commande: %w", err)
		}

		// Décrément sous précondition stock >= qty : c'est ici que la course
		// entre deux checkouts concurrents se tranche, pas à la lecture.
		for _, line := range cartItems {
			if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, store.ErrInsufficientStock) {
					return s.stockDetail(ctx, line)
				}
				return fmt.Errorf("décrément du stock: %w", err)
			}
			if err := s.products.LogMovement(ctx, models.StockMovement{
				ProductID: line.ProductID,
				Type:      "sale",
				Quantity:  -line.Quantity,
				Reason:    "Commande " + order.OrderNumber,
				OrderID:   &order.ID,
				CreatedAt: now,
			}); err != nil {
				return fmt.Errorf("trace du mouvement de stock: %w", err)
			}
		}

		if err := s.carts.ClearByUser(ctx, userID); err != nil {
			return fmt.Errorf("vidage du panier: %w", err)
		}

		order.Items = drafts
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// stockDetail reconstruit le détail du refus après un échec de précondition :
// le client doit savoir quelle ligne corriger.
func (s *OrderService) stockDetail(ctx context.Context, line models.CartItem) error {
	available := 0
	name := line.ProductName
	if p, err := s.products.FindByID(ctx, line.ProductID); err == nil {
		available = p.Stock
		name = p.Name
	}
	return &store.StockError{
		ProductID:   line.ProductID.Hex(),
		ProductName: name,
		Available:   available,
		Requested:   line.Quantity,
	}
}

// GetOrder retourne la commande et ses lignes.
func (s *OrderService) GetOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.ItemsByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("lecture des lignes de commande: %w", err)
	}
	order.Items = items
	return order, nil
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID primitive.ObjectID, page store.Page) ([]models.Order, int64, error) {
	return s.orders.ListByUser(ctx, userID, page)
}

func (s *OrderService) ListOrders(ctx context.Context, cond store.OrderCondition, search string, page store.Page) ([]models.Order, int64, error) {
	return s.orders.ListAll(ctx, cond, search, page)
}

// UpdateStatus applique une transition du cycle de vie. La table des
// transitions est vérifiée atomiquement par le store : le statut courant
// doit appartenir aux statuts de départ autorisés pour newStatus.
func (s *OrderService) UpdateStatus(ctx context.Context, orderNumber, newStatus, adminNotes string) (*models.Order, error) {
	if newStatus == models.OrderStatusCancelled {
		return s.Cancel(ctx, orderNumber, adminNotes)
	}

	allowedFrom := AllowedFrom(newStatus)
	if allowedFrom == nil {
		return nil, store.ErrInvalidTransition
	}

	change := store.StatusChange{
		NewStatus:  newStatus,
		Timestamp:  time.Now(),
		AdminNotes: adminNotes,
		// La livraison force le paiement à paid
		SetPaymentPaid: newStatus == models.OrderStatusDelivered,
	}

	order, err := s.orders.UpdateStatus(ctx, orderNumber, allowedFrom, change)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Commande %s → %s", orderNumber, newStatus)
	return order, nil
}

// Cancel annule la commande et restaure le stock dans la même transaction.
// La précondition de statut rend l'opération idempotente : une double
// annulation ne restaure pas le stock deux fois.
func (s *OrderService) Cancel(ctx context.Context, orderNumber, reason string) (*models.Order, error) {
	var cancelled *models.Order

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		change := store.StatusChange{
			NewStatus:  models.OrderStatusCancelled,
			Timestamp:  time.Now(),
			AdminNotes: reason,
		}

		order, err := s.orders.UpdateStatus(ctx, orderNumber, AllowedFrom(models.OrderStatusCancelled), change)
		if err != nil {
			return err
		}

		items, err := s.orders.ItemsByOrderID(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("lecture des lignes de commande: %w", err)
		}

		now := time.Now()
		for _, item := range items {
			if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restauration du stock: %w", err)
			}
			if err := s.products.LogMovement(ctx, models.StockMovement{
				ProductID: item.ProductID,
				Type:      "return",
				Quantity:  item.Quantity,
				Reason:    "Annulation commande " + orderNumber,
				OrderID:   &order.ID,
				CreatedAt: now,
			}); err != nil {
				return fmt.Errorf("trace du mouvement de stock: %w", err)
			}
		}

		order.Items = items
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Commande %s annulée, stock restauré", orderNumber)
	return cancelled, nil
}

// UpdatePaymentStatus est orthogonal au cycle de vie de traitement :
// aucune validation croisée entre les deux machines à états.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderNumber, paymentStatus string) (*models.Order, error) {
	if !ValidPaymentStatus(paymentStatus) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPaymentStatus, paymentStatus)
	}
	return s.orders.UpdatePaymentStatus(ctx, orderNumber, paymentStatus)
}

// Stats : rollup global pour le dashboard admin.
func (s *OrderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	return s.reports.OrderStats(ctx)
}
