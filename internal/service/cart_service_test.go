package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/store"
)

func newTestCartService() (*CartService, *memDB) {
	db := newMemDB()
	return NewCartService(&fakeCarts{db: db}, &fakeProducts{db: db}), db
}

func TestAddItemCapturesPrice(t *testing.T) {
	svc, db := newTestCartService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Drone", 400, 5)

	item, err := svc.AddItem(ctx, userID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 400.0, item.UnitPrice)
	assert.Equal(t, 2, item.Quantity)

	// Le prix capturé ne bouge plus, même si le produit change
	db.products[p.ID].Price = 450
	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, cart[0].UnitPrice)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	svc, db := newTestCartService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Écran", 300, 5)

	_, err := svc.AddItem(ctx, userID, p.ID, 0)
	assert.Error(t, err)

	_, err = svc.AddItem(ctx, userID, primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, store.ErrProductMissing)

	db.products[p.ID].IsActive = false
	_, err = svc.AddItem(ctx, userID, p.ID, 1)
	assert.Error(t, err)
}

func TestAddItemDuplicate(t *testing.T) {
	svc, db := newTestCartService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Stylet", 30, 10)

	_, err := svc.AddItem(ctx, userID, p.ID, 1)
	require.NoError(t, err)

	// La même ligne doit passer par UpdateQuantity
	_, err = svc.AddItem(ctx, userID, p.ID, 1)
	assert.ErrorIs(t, err, store.ErrDuplicateCartItem)

	updated, err := svc.UpdateQuantity(ctx, userID, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
}

func TestRemoveAndClearAreIdempotent(t *testing.T) {
	svc, db := newTestCartService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Hub USB", 25, 10)
	db.addCartLine(userID, p, 1)

	require.NoError(t, svc.RemoveItem(ctx, userID, p.ID))
	// Retirer une ligne absente n'est pas une erreur
	require.NoError(t, svc.RemoveItem(ctx, userID, p.ID))

	require.NoError(t, svc.Clear(ctx, userID))
	require.NoError(t, svc.Clear(ctx, userID))
}

func TestItemCountSumsQuantities(t *testing.T) {
	svc, db := newTestCartService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	db.addCartLine(userID, db.addProduct("A", 10, 5), 2)
	db.addCartLine(userID, db.addProduct("B", 20, 5), 3)

	count, err := svc.ItemCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestValidateFlagsEachProblem(t *testing.T) {
	svc, db := newTestCartService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	ok := db.addProduct("Sain", 50, 10)
	deleted := db.addProduct("Supprimé", 30, 10)
	inactive := db.addProduct("Désactivé", 20, 10)
	short := db.addProduct("Stock court", 15, 1)

	db.addCartLine(userID, ok, 1)
	db.addCartLine(userID, deleted, 1)
	db.addCartLine(userID, inactive, 1)
	db.addCartLine(userID, short, 3)

	delete(db.products, deleted.ID)
	db.products[inactive.ID].IsActive = false

	result, err := svc.Validate(ctx, userID)
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 3)
	require.Len(t, result.ValidItems, 1)
	assert.Equal(t, "Sain", result.ValidItems[0].ProductName)
}

func TestValidatePriceDriftIsNotFatal(t *testing.T) {
	svc, db := newTestCartService()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	p := db.addProduct("Volatil", 100, 10)
	db.addCartLine(userID, p, 1)

	db.products[p.ID].Price = 120

	result, err := svc.Validate(ctx, userID)
	require.NoError(t, err)

	// La dérive de prix est signalée mais la ligne reste valide
	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "prix")
	require.Len(t, result.ValidItems, 1)
}

func TestValidateEmptyCart(t *testing.T) {
	svc, _ := newTestCartService()

	result, err := svc.Validate(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.ValidItems)
}
