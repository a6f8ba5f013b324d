package product

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/models"
)

//
// 📦 POST /api/admin/products/:id/restock
//
func RestockProduct(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		Quantity int    `json:"quantity" binding:"required,min=1"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()

	p, err := productStore.FindByID(ctx, oid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	if err := productStore.IncrementStock(ctx, oid, req.Quantity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur réassort"})
		return
	}

	if err := productStore.LogMovement(ctx, models.StockMovement{
		ProductID: oid,
		Type:      "restock",
		Quantity:  req.Quantity,
		PrevStock: p.Stock,
		NewStock:  p.Stock + req.Quantity,
		Reason:    req.Reason,
		UserID:    c.GetString("user_id"),
	}); err != nil {
		log.Printf("⚠️ Mouvement de stock non tracé pour %s: %v", oid.Hex(), err)
	}

	log.Printf("📦 Réassort %s: +%d (stock %d → %d)", p.Name, req.Quantity, p.Stock, p.Stock+req.Quantity)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Stock réapprovisionné",
		"new_stock": p.Stock + req.Quantity,
	})
}

//
// 📦 POST /api/admin/products/:id/adjust-stock
//
func AdjustStock(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		NewStock *int   `json:"new_stock" binding:"required"`
		Reason   string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if *req.NewStock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le stock ne peut pas être négatif"})
		return
	}

	ctx := c.Request.Context()

	p, err := productStore.FindByID(ctx, oid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	if _, err := productStore.Update(ctx, oid, bson.M{"stock": *req.NewStock}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajustement stock"})
		return
	}

	if err := productStore.LogMovement(ctx, models.StockMovement{
		ProductID: oid,
		Type:      "adjustment",
		Quantity:  *req.NewStock - p.Stock,
		PrevStock: p.Stock,
		NewStock:  *req.NewStock,
		Reason:    req.Reason,
		UserID:    c.GetString("user_id"),
	}); err != nil {
		log.Printf("⚠️ Mouvement de stock non tracé pour %s: %v", oid.Hex(), err)
	}

	log.Printf("📦 Ajustement %s: stock %d → %d (%s)", p.Name, p.Stock, *req.NewStock, req.Reason)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Stock ajusté",
		"new_stock": *req.NewStock,
	})
}

//
// 📦 GET /api/admin/products/:id/movements
//
func GetStockMovements(c *gin.Context) {
	var productID *primitive.ObjectID
	if raw := c.Param("id"); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
			return
		}
		productID = &oid
	}

	movements, total, err := productStore.Movements(c.Request.Context(), productID, pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture mouvements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": movements, "total_count": total})
}

//
// 📦 GET /api/admin/inventory/alerts
//
func GetStockAlerts(c *gin.Context) {
	alerts, err := productStore.LowStock(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture alertes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": alerts, "total_count": len(alerts)})
}
