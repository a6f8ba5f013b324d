package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartshop_back_end/internal/metrics"
	"smartshop_back_end/internal/service"
	"smartshop_back_end/internal/store"
)

var orderService *service.OrderService

// InitOrders injecte le service de commandes au démarrage.
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

//
// 📦 GET /api/orders
//
func MyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, total, err := orderService.ListOrdersForUser(c.Request.Context(), userID, pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": orders, "total_count": total})
}

//
// 📦 GET /api/orders/:orderNumber
//
func GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order, err := orderService.GetOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}

	// Un client ne voit que ses propres commandes
	if order.UserID != userID && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	c.JSON(http.StatusOK, order)
}

//
// ❌ POST /api/orders/:orderNumber/cancel
//
func CancelMyOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderNumber := c.Param("orderNumber")

	order, err := orderService.GetOrder(c.Request.Context(), orderNumber)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}
	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&input)

	cancelled, err := orderService.Cancel(c.Request.Context(), orderNumber, input.Reason)
	if err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": "Cette commande ne peut plus être annulée"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation commande"})
		return
	}
	metrics.OrdersCancelled.Inc()

	c.JSON(http.StatusOK, gin.H{"message": "Commande annulée", "order": cancelled})
}
