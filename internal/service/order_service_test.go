package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/store"
)

var testCustomer = models.CustomerInfo{
	FullName: "Jean Dupont",
	Phone:    "0470123456",
	Address:  "12 rue des Lilas, Bruxelles",
}

func placeInput() PlaceOrderInput {
	return PlaceOrderInput{
		CustomerInfo:  testCustomer,
		PaymentMethod: models.PaymentMethodCOD,
	}
}

func TestPlaceOrder(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	phone := db.addProduct("Telephone X", 100, 10)
	coque := db.addProduct("Coque silicone", 50, 5)
	db.addCartLine(userID, phone, 2)
	db.addCartLine(userID, coque, 1)

	order, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)

	assert.Equal(t, 250.0, order.Subtotal)
	assert.Equal(t, 250.0, order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "DH"), "numéro: %s", order.OrderNumber)
	require.Len(t, order.Items, 2)

	// Stock décrémenté, panier vidé
	assert.Equal(t, 8, db.products[phone.ID].Stock)
	assert.Equal(t, 4, db.products[coque.ID].Stock)
	assert.Empty(t, db.carts[userID])

	// Mouvements "sale" tracés pour chaque ligne
	require.Len(t, db.movements, 2)
	for _, m := range db.movements {
		assert.Equal(t, "sale", m.Type)
		assert.Negative(t, m.Quantity)
	}
}

func TestPlaceOrderPriceLock(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Montre connectée", 200, 10)
	db.addCartLine(userID, p, 1)

	// Le prix change entre l'ajout au panier et le checkout
	db.products[p.ID].Price = 250

	order, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)

	// La commande part au prix capturé à l'ajout
	assert.Equal(t, 200.0, order.TotalAmount)
	assert.Equal(t, 200.0, order.Items[0].UnitPrice)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, _ := newTestOrderService()

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), placeInput())
	assert.ErrorIs(t, err, store.ErrEmptyCart)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Casque audio", 80, 3)
	db.addCartLine(userID, p, 5)

	_, err := svc.PlaceOrder(ctx, userID, placeInput())

	var stockErr *store.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Casque audio", stockErr.ProductName)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	// Aucun effet partiel
	assert.Equal(t, 3, db.products[p.ID].Stock)
	assert.Empty(t, db.orders)
	assert.Len(t, db.carts[userID], 1)
}

func TestPlaceOrderMissingProduct(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Produit fantôme", 30, 10)
	db.addCartLine(userID, p, 1)
	delete(db.products, p.ID) // supprimé après l'ajout au panier

	_, err := svc.PlaceOrder(ctx, userID, placeInput())

	var missingErr *store.MissingProductError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "Produit fantôme", missingErr.ProductName)
	assert.Empty(t, db.orders)
}

func TestPlaceOrderRollbackOnFailure(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Tablette", 300, 10)
	db.addCartLine(userID, p, 2)

	// Panne injectée sur la dernière étape de la transaction
	db.failClearCart = true

	_, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.Error(t, err)

	// Tout est annulé : stock, commande, lignes, mouvements, panier
	assert.Equal(t, 10, db.products[p.ID].Stock)
	assert.Empty(t, db.orders)
	assert.Empty(t, db.orderItems)
	assert.Empty(t, db.movements)
	assert.Len(t, db.carts[userID], 1)
}

func TestPlaceOrderNumberCollisionRetry(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Clavier", 60, 10)
	db.addCartLine(userID, p, 1)

	// Deux collisions simulées : la troisième tentative passe
	db.duplicateNumberFailures = 2

	order, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderNumber)

	// Chaque collision avorte la transaction : la régénération doit rejouer
	// le pipeline dans une transaction neuve, pas ré-insérer dans la morte
	assert.Equal(t, 3, db.txRuns)
	assert.Equal(t, 9, db.products[p.ID].Stock)
}

func TestPlaceOrderNumberCollisionExhausted(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Souris", 25, 10)
	db.addCartLine(userID, p, 1)

	db.duplicateNumberFailures = 3

	_, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.Error(t, err)
	require.ErrorIs(t, err, store.ErrDuplicateOrderNumber)

	// Transaction entièrement annulée, après 3 tentatives complètes
	assert.Equal(t, 3, db.txRuns)
	assert.Equal(t, 10, db.products[p.ID].Stock)
	assert.Empty(t, db.orders)
}

func TestPlaceOrderConcurrentStockRace(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()

	// Une seule unité en stock, deux acheteurs
	p := db.addProduct("Édition limitée", 500, 1)
	user1 := primitive.NewObjectID()
	user2 := primitive.NewObjectID()
	db.addCartLine(user1, p, 1)
	db.addCartLine(user2, p, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, uid := range []primitive.ObjectID{user1, user2} {
		wg.Add(1)
		go func(i int, uid primitive.ObjectID) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(ctx, uid, placeInput())
		}(i, uid)
	}
	wg.Wait()

	// Exactement un gagnant
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, store.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, db.products[p.ID].Stock)
	assert.Len(t, db.orders, 1)
}

func TestOrderNumbersUnique(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()

	p := db.addProduct("Article courant", 10, 100)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		userID := primitive.NewObjectID()
		db.addCartLine(userID, p, 1)
		order, err := svc.PlaceOrder(ctx, userID, placeInput())
		require.NoError(t, err)
		assert.False(t, seen[order.OrderNumber], "numéro dupliqué: %s", order.OrderNumber)
		seen[order.OrderNumber] = true
	}
}

func TestCancelRestoresStock(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Enceinte", 120, 10)
	db.addCartLine(userID, p, 3)

	order, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)
	require.Equal(t, 7, db.products[p.ID].Stock)

	cancelled, err := svc.Cancel(ctx, order.OrderNumber, "client injoignable")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 10, db.products[p.ID].Stock)

	// Mouvement "return" tracé
	var returns int
	for _, m := range db.movements {
		if m.Type == "return" {
			returns++
			assert.Equal(t, 3, m.Quantity)
		}
	}
	assert.Equal(t, 1, returns)
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Lampe", 40, 5)
	db.addCartLine(userID, p, 2)

	order, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, order.OrderNumber, "")
	require.NoError(t, err)
	require.Equal(t, 5, db.products[p.ID].Stock)

	// Seconde annulation : refusée, le stock n'est pas restauré deux fois
	_, err = svc.Cancel(ctx, order.OrderNumber, "")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
	assert.Equal(t, 5, db.products[p.ID].Stock)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Chargeur", 20, 10)
	db.addCartLine(userID, p, 1)

	order, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)

	for _, status := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipping,
	} {
		updated, err := svc.UpdateStatus(ctx, order.OrderNumber, status, "")
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	// La livraison force le paiement à paid
	delivered, err := svc.UpdateStatus(ctx, order.OrderNumber, models.OrderStatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, delivered.PaymentStatus)
	assert.NotNil(t, delivered.DeliveredAt)
}

func TestUpdateStatusRejectsInvalidTransitions(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Câble", 10, 10)
	db.addCartLine(userID, p, 1)

	order, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)

	// Saut d'étape interdit : pending → shipping
	_, err = svc.UpdateStatus(ctx, order.OrderNumber, models.OrderStatusShipping, "")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	// pending n'est jamais une cible
	_, err = svc.UpdateStatus(ctx, order.OrderNumber, models.OrderStatusPending, "")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	// Statut inconnu
	_, err = svc.UpdateStatus(ctx, order.OrderNumber, "teleported", "")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	// delivered est terminal : plus d'annulation possible
	for _, status := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipping,
		models.OrderStatusDelivered,
	} {
		_, err = svc.UpdateStatus(ctx, order.OrderNumber, status, "")
		require.NoError(t, err)
	}
	_, err = svc.UpdateStatus(ctx, order.OrderNumber, models.OrderStatusCancelled, "")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _ := newTestOrderService()

	_, err := svc.UpdateStatus(context.Background(), "DH0000", models.OrderStatusConfirmed, "")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestUpdatePaymentStatus(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Batterie", 35, 10)
	db.addCartLine(userID, p, 1)

	order, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)

	updated, err := svc.UpdatePaymentStatus(ctx, order.OrderNumber, models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	// Orthogonal au statut de traitement
	assert.Equal(t, models.OrderStatusPending, updated.Status)

	_, err = svc.UpdatePaymentStatus(ctx, order.OrderNumber, "maybe")
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
}

func TestStatsReconcileWithOrders(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()

	p := db.addProduct("Article stats", 100, 100)

	var numbers []string
	for i := 0; i < 4; i++ {
		userID := primitive.NewObjectID()
		db.addCartLine(userID, p, 1)
		order, err := svc.PlaceOrder(ctx, userID, placeInput())
		require.NoError(t, err)
		numbers = append(numbers, order.OrderNumber)
	}

	// Une livrée, une annulée, deux en attente
	for _, status := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipping,
		models.OrderStatusDelivered,
	} {
		_, err := svc.UpdateStatus(ctx, numbers[0], status, "")
		require.NoError(t, err)
	}
	_, err := svc.Cancel(ctx, numbers[1], "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 2, stats.PendingOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	// Seules les commandes livrées comptent dans le chiffre d'affaires
	assert.Equal(t, 100.0, stats.TotalRevenue)
}

func TestGetOrderReturnsItems(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Écouteurs", 45, 10)
	db.addCartLine(userID, p, 2)

	placed, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)

	got, err := svc.GetOrder(ctx, placed.OrderNumber)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Écouteurs", got.Items[0].ProductName)
	assert.Equal(t, 90.0, got.Items[0].TotalPrice)

	_, err = svc.GetOrder(ctx, "DH-inconnu")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestCancelViaUpdateStatusDelegates(t *testing.T) {
	svc, db := newTestOrderService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Projecteur", 600, 4)
	db.addCartLine(userID, p, 2)

	order, err := svc.PlaceOrder(ctx, userID, placeInput())
	require.NoError(t, err)
	require.Equal(t, 2, db.products[p.ID].Stock)

	// Passer par UpdateStatus("cancelled") restaure aussi le stock
	cancelled, err := svc.UpdateStatus(ctx, order.OrderNumber, models.OrderStatusCancelled, "rupture fournisseur")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 4, db.products[p.ID].Stock)
}
