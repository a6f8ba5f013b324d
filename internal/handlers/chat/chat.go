// Package chat expose l'assistant d'achat : analyse de la demande
// (API IA avec parseur local de secours) puis recommandation produits.
package chat

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/metrics"
	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/services"
	"smartshop_back_end/internal/store"
)

var (
	aiClient     *services.AIClient
	productStore *store.MongoProductStore
)

func InitChat(ai *services.AIClient, ps *store.MongoProductStore) {
	aiClient = ai
	productStore = ps
}

// searchTerms assemble la requête catalogue depuis l'analyse.
func searchTerms(a models.QueryAnalysis) string {
	terms := make([]string, 0, 4)
	if a.Brand != "" {
		terms = append(terms, a.Brand)
	}
	if a.ProductType != "" {
		terms = append(terms, a.ProductType)
	}
	terms = append(terms, a.Keywords...)
	return strings.TrimSpace(strings.Join(terms, " "))
}

// filterByPrice applique les bornes de prix de l'analyse.
func filterByPrice(products []models.Product, min, max float64) []models.Product {
	if min == 0 && max == 0 {
		return products
	}
	kept := products[:0]
	for _, p := range products {
		if min > 0 && p.Price < min {
			continue
		}
		if max > 0 && p.Price > max {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func chatMessage(a models.QueryAnalysis, count int) string {
	if count == 0 {
		return "Désolé, aucun produit ne correspond à votre demande. Essayez d'élargir vos critères."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Voici %d produit(s) correspondant à votre recherche", count)
	if a.Brand != "" {
		fmt.Fprintf(&b, " %s", a.Brand)
	}
	if a.MaxPrice > 0 {
		fmt.Fprintf(&b, " (budget max %.0f)", a.MaxPrice)
	}
	b.WriteString(".")
	return b.String()
}

//
// 🤖 POST /api/chat
//
func Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required,max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message requis"})
		return
	}

	ctx := c.Request.Context()
	analysis := aiClient.AnalyzeQuery(ctx, req.Message)

	if analysis.UsedAI {
		metrics.AIRequests.WithLabelValues("ok").Inc()
	} else {
		metrics.AIRequests.WithLabelValues("fallback").Inc()
	}

	terms := searchTerms(analysis)
	if terms == "" {
		terms = req.Message
	}

	products, _, err := productStore.Search(ctx, terms, store.Page{First: 20})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche produits"})
		return
	}
	products = filterByPrice(products, analysis.MinPrice, analysis.MaxPrice)
	if len(products) > 10 {
		products = products[:10]
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		Message:  chatMessage(analysis, len(products)),
		Analysis: analysis,
		Products: products,
	})
}

//
// 🤖 POST /api/chat/compare
//
func CompareProducts(c *gin.Context) {
	var req struct {
		ProductIDs  []string `json:"product_ids" binding:"required,min=2,max=3"`
		Preferences string   `json:"preferences" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Choisissez 2 à 3 produits à comparer"})
		return
	}

	ctx := c.Request.Context()
	products := make([]models.Product, 0, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de produit invalide"})
			return
		}
		p, err := productStore.FindByID(ctx, oid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable", "product_id": id})
			return
		}
		products = append(products, *p)
	}

	analysis := aiClient.CompareProducts(ctx, products, req.Preferences)
	if analysis.UsedAI {
		metrics.AIRequests.WithLabelValues("ok").Inc()
	} else {
		metrics.AIRequests.WithLabelValues("fallback").Inc()
	}

	c.JSON(http.StatusOK, models.ProductComparison{
		Products: products,
		Analysis: analysis,
	})
}

//
// 🤖 POST /api/chat/image
//
func ImageSearch(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image requise (champ 'image')"})
		return
	}
	if file.Size > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image trop lourde (max 5 Mo)"})
		return
	}

	mediaType := file.Header.Get("Content-Type")
	switch mediaType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format d'image non supporté (jpeg, png, webp)"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture image"})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture image"})
		return
	}

	ctx := c.Request.Context()
	analysis := aiClient.AnalyzeImage(ctx, base64.StdEncoding.EncodeToString(raw), mediaType)

	if analysis.UsedAI {
		metrics.AIRequests.WithLabelValues("ok").Inc()
	} else {
		metrics.AIRequests.WithLabelValues("fallback").Inc()
	}

	terms := make([]string, 0, 4)
	if analysis.Brand != "" {
		terms = append(terms, analysis.Brand)
	}
	if analysis.Model != "" {
		terms = append(terms, analysis.Model)
	}
	if analysis.ProductType != "" {
		terms = append(terms, analysis.ProductType)
	}
	terms = append(terms, analysis.Keywords...)

	var products []models.Product
	if len(terms) > 0 {
		products, _, err = productStore.Search(ctx, strings.Join(terms, " "), store.Page{First: 10})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche produits"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis": analysis,
		"products": products,
	})
}
