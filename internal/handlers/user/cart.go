package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/database"
	"smartshop_back_end/internal/metrics"
	"smartshop_back_end/internal/service"
	"smartshop_back_end/internal/store"
)

var cartService *service.CartService

// InitCart injecte le service de panier au démarrage.
func InitCart(s *service.CartService) {
	cartService = s
}

// publishCartUpdate notifie les websockets ouverts de ce user.
func publishCartUpdate(userID, event string) {
	database.Redis.Publish(context.Background(), "cart_events:"+userID, event)
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user_id invalide"})
		return primitive.NilObjectID, false
	}
	return oid, true
}

//
// 🟢 GET /api/cart
//
func GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	total := 0.0
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

//
// 🟢 POST /api/cart/add
//
func AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
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

	item, err := cartService.AddItem(c.Request.Context(), userID, productID, input.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductMissing):
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		case errors.Is(err, store.ErrDuplicateCartItem):
			c.JSON(http.StatusConflict, gin.H{"error": "Produit déjà dans le panier, modifiez la quantité"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	metrics.CartMutations.WithLabelValues("add").Inc()
	publishCartUpdate(userID.Hex(), "updated")

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit ajouté au panier",
		"item":    item,
	})
}

//
// 🔁 PUT /api/cart/:productId
//
func UpdateCartItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	item, err := cartService.UpdateQuantity(c.Request.Context(), userID, productID, input.Quantity)
	if err != nil {
		if errors.Is(err, store.ErrCartItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable dans le panier"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics.CartMutations.WithLabelValues("update").Inc()
	publishCartUpdate(userID.Hex(), "updated")

	c.JSON(http.StatusOK, gin.H{"message": "Quantité mise à jour", "item": item})
}

//
// ❌ DELETE /api/cart/:productId
//
func RemoveFromCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	if err := cartService.RemoveItem(c.Request.Context(), userID, productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression article"})
		return
	}

	metrics.CartMutations.WithLabelValues("remove").Inc()
	publishCartUpdate(userID.Hex(), "updated")

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé du panier"})
}

//
// 🧹 DELETE /api/cart/clear
//
func ClearCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := cartService.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du vidage du panier"})
		return
	}

	metrics.CartMutations.WithLabelValues("clear").Inc()
	publishCartUpdate(userID.Hex(), "cleared")

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé avec succès"})
}

//
// 🔍 GET /api/cart/validate
//
func ValidateCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	validation, err := cartService.Validate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur validation panier"})
		return
	}

	c.JSON(http.StatusOK, validation)
}

//
// 🔢 GET /api/cart/count
//
func CartCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := cartService.ItemCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur comptage panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
