// Package admin regroupe les endpoints réservés au back-office :
// gestion des commandes et rapports de ventes.
package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/metrics"
	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/service"
	"smartshop_back_end/internal/store"
)

var orderService *service.OrderService

func InitOrders(s *service.OrderService) {
	orderService = s
}

func pageFromQuery(c *gin.Context) store.Page {
	first, _ := strconv.Atoi(c.DefaultQuery("first", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return store.Page{
		First:   first,
		Offset:  offset,
		OrderBy: c.Query("orderBy"),
	}
}

func dateQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

//
// 📦 GET /api/admin/orders
//
func ListOrders(c *gin.Context) {
	cond := store.OrderCondition{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		PaymentMethod: c.Query("payment_method"),
		DateFrom:      dateQuery(c, "date_from"),
		DateTo:        dateQuery(c, "date_to"),
	}
	if raw := c.Query("user_id"); raw != "" {
		if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
			cond.UserID = &oid
		}
	}

	orders, total, err := orderService.ListOrders(c.Request.Context(), cond, c.Query("search"), pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": orders, "total_count": total})
}

//
// 📦 GET /api/admin/orders/:orderNumber
//
func GetOrder(c *gin.Context) {
	order, err := orderService.GetOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}

	c.JSON(http.StatusOK, order)
}

//
// 📦 PUT /api/admin/orders/:orderNumber/status
//
func UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status     string `json:"status" binding:"required"`
		AdminNotes string `json:"admin_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	order, err := orderService.UpdateStatus(c.Request.Context(), c.Param("orderNumber"), req.Status, req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		case errors.Is(err, store.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "Transition de statut non autorisée"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour statut"})
		}
		return
	}
	if req.Status == models.OrderStatusCancelled {
		metrics.OrdersCancelled.Inc()
	}

	c.JSON(http.StatusOK, order)
}

//
// 💳 PUT /api/admin/orders/:orderNumber/payment-status
//
func UpdatePaymentStatus(c *gin.Context) {
	var req struct {
		PaymentStatus string `json:"payment_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	order, err := orderService.UpdatePaymentStatus(c.Request.Context(), c.Param("orderNumber"), req.PaymentStatus)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		case errors.Is(err, service.ErrInvalidPaymentStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Statut de paiement invalide"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour paiement"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

//
// 📊 GET /api/admin/orders/stats
//
func GetOrderStats(c *gin.Context) {
	stats, err := orderService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul statistiques"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
