// Package pa gère la conversion du panier en commande et le paiement :
// création atomique (stock compris), PaymentIntent Stripe pour la carte,
// QR SEPA pour le virement.
package pa

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/metrics"
	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/service"
	"smartshop_back_end/internal/store"
	"smartshop_back_end/internal/utils"
)

var orderService *service.OrderService

func InitCheckout(s *service.OrderService) {
	orderService = s
}

// Checkout convertit le panier en commande, tout ou rien, puis prépare le
// paiement selon la méthode choisie.
func Checkout(c *gin.Context) {
	var req struct {
		CustomerInfo  models.CustomerInfo `json:"customer_info" binding:"required"`
		PaymentMethod string              `json:"payment_method" binding:"required"`
		CustomerNotes string              `json:"customer_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	email := c.GetString("email")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	if req.CustomerInfo.FullName == "" || req.CustomerInfo.Phone == "" || req.CustomerInfo.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom, téléphone et adresse de livraison obligatoires"})
		return
	}

	switch req.PaymentMethod {
	case models.PaymentMethodCOD, models.PaymentMethodBankTransfer, models.PaymentMethodCard:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Moyen de paiement non supporté"})
		return
	}

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	order, err := orderService.PlaceOrder(c.Request.Context(), userOID, service.PlaceOrderInput{
		CustomerInfo:  req.CustomerInfo,
		PaymentMethod: req.PaymentMethod,
		CustomerNotes: req.CustomerNotes,
	})
	if err != nil {
		var stockErr *store.StockError
		var missingErr *store.MissingProductError
		switch {
		case errors.Is(err, store.ErrEmptyCart):
			metrics.OrdersFailed.WithLabelValues("empty_cart").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		case errors.As(err, &stockErr):
			metrics.OrdersFailed.WithLabelValues("insufficient_stock").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Stock insuffisant",
				"product":   stockErr.ProductName,
				"available": stockErr.Available,
				"requested": stockErr.Requested,
			})
		case errors.As(err, &missingErr):
			metrics.OrdersFailed.WithLabelValues("missing_product").Inc()
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Produit introuvable",
				"product": missingErr.ProductName,
			})
		default:
			metrics.OrdersFailed.WithLabelValues("internal").Inc()
			log.Printf("❌ Erreur checkout pour %s: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		}
		return
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderAmount.Observe(order.TotalAmount)

	resp := gin.H{
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"amount":       order.TotalAmount,
		"items_count":  len(order.Items),
	}

	var sepaQR string
	switch req.PaymentMethod {
	case models.PaymentMethodCard:
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(int64(order.TotalAmount * 100)),
			Currency: stripe.String("eur"),
			AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
				Enabled: stripe.Bool(true),
			},
			Metadata: map[string]string{
				"user_id":      userID,
				"email":        email,
				"order_number": order.OrderNumber,
			},
		}
		intent, err := paymentintent.New(params)
		if err != nil {
			// la commande existe déjà, le client peut relancer le paiement
			log.Printf("❌ Erreur Stripe pour %s: %v", order.OrderNumber, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":        "Erreur création paiement",
				"order_number": order.OrderNumber,
			})
			return
		}
		log.Printf("💳 Checkout créé: %s (%.2f€) pour %s", intent.ID, order.TotalAmount, email)
		resp["client_secret"] = intent.ClientSecret
		resp["payment_id"] = intent.ID

	case models.PaymentMethodBankTransfer:
		qr, err := utils.OrderPaymentQR(*order)
		if err != nil {
			log.Printf("⚠️ QR SEPA indisponible pour %s: %v", order.OrderNumber, err)
		} else {
			sepaQR = qr
			resp["sepa_qr"] = qr
		}
	}

	if email != "" {
		go utils.SendOrderConfirmationEmail(email, *order, sepaQR)
	}

	c.JSON(http.StatusCreated, resp)
}
