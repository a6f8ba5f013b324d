package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/store"
)

var (
	wishlistStore store.WishlistStore
	productStore  store.ProductStore
)

// InitWishlist injecte les stores au démarrage.
func InitWishlist(w store.WishlistStore, p store.ProductStore) {
	wishlistStore = w
	productStore = p
}

//
// 💚 POST /api/wishlist
//
func AddToWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		ProductID string `json:"productId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := c.Request.Context()
	product, err := productStore.FindByID(ctx, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	item, err := wishlistStore.Add(ctx, models.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		ProductSnapshot: models.WishlistSnapshot{
			Name:          product.Name,
			Price:         product.Price,
			OriginalPrice: product.OriginalPrice,
			Images:        product.Images,
			SKU:           product.SKU,
			Brand:         productStore.BrandName(ctx, product.BrandID),
			Category:      productStore.CategoryName(ctx, product.CategoryID),
		},
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateWishlist) {
			c.JSON(http.StatusConflict, gin.H{"error": "Produit déjà dans la wishlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout wishlist"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Produit ajouté à la wishlist", "item": item})
}

//
// ❌ DELETE /api/wishlist/:productId
//
func RemoveFromWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	removed, err := wishlistStore.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur retrait wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

//
// ❌ POST /api/wishlist/remove-multiple
//
func RemoveMultipleFromWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		ProductIDs []string `json:"productIds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || len(input.ProductIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Liste de produits requise"})
		return
	}

	ids := make([]primitive.ObjectID, 0, len(input.ProductIDs))
	for _, raw := range input.ProductIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide: " + raw})
			return
		}
		ids = append(ids, id)
	}

	count, err := wishlistStore.RemoveMultiple(c.Request.Context(), userID, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur retrait wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed_count": count})
}

//
// 💚 GET /api/wishlist
//
func GetWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, err := wishlistStore.GetByUser(c.Request.Context(), userID, pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture wishlist"})
		return
	}

	c.JSON(http.StatusOK, page)
}

//
// 🔢 GET /api/wishlist/count
//
func WishlistCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := wishlistStore.ItemCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur comptage wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

//
// 🔀 PUT /api/wishlist/:itemId/reorder
//
func ReorderWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID élément invalide"})
		return
	}

	var input struct {
		DisplayOrder int `json:"displayOrder"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	item, err := wishlistStore.Reorder(c.Request.Context(), itemID, userID, input.DisplayOrder)
	if err != nil {
		if errors.Is(err, store.ErrWishlistItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Élément introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur réordonnancement"})
		return
	}

	c.JSON(http.StatusOK, item)
}

//
// ⬆️ PUT /api/wishlist/:itemId/move-up
//
func MoveWishlistItemUp(c *gin.Context) {
	moveWishlistItem(c, wishlistStore.MoveUp)
}

//
// ⬇️ PUT /api/wishlist/:itemId/move-down
//
func MoveWishlistItemDown(c *gin.Context) {
	moveWishlistItem(c, wishlistStore.MoveDown)
}

func moveWishlistItem(c *gin.Context, move func(ctx context.Context, itemID, userID primitive.ObjectID) (*models.WishlistItem, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID élément invalide"})
		return
	}

	item, err := move(c.Request.Context(), itemID, userID)
	if err != nil {
		if errors.Is(err, store.ErrWishlistItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Élément introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur déplacement"})
		return
	}

	c.JSON(http.StatusOK, item)
}
