package product

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/cache"
	"smartshop_back_end/internal/database"
	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/services"
	"smartshop_back_end/internal/store"
)

var reviewStore store.ReviewStore

func InitReviews(rs store.ReviewStore) {
	reviewStore = rs
}

// hasPurchased vérifie que l'utilisateur a une commande livrée contenant le
// produit, pour le badge "achat vérifié".
func hasPurchased(ctx context.Context, userID, productID primitive.ObjectID) bool {
	orders := database.MongoOrdersDB.Collection("orders")
	cursor, err := orders.Find(ctx, bson.M{"user_id": userID, "status": models.OrderStatusDelivered})
	if err != nil {
		return false
	}
	defer cursor.Close(ctx)

	var delivered []models.Order
	if err := cursor.All(ctx, &delivered); err != nil || len(delivered) == 0 {
		return false
	}

	ids := make([]primitive.ObjectID, 0, len(delivered))
	for _, o := range delivered {
		ids = append(ids, o.ID)
	}

	n, err := database.MongoOrdersDB.Collection("order_items").CountDocuments(ctx, bson.M{
		"order_id":   bson.M{"$in": ids},
		"product_id": productID,
	})
	return err == nil && n > 0
}

//
// ⭐ POST /api/products/:id/reviews
//
func CreateReview(c *gin.Context) {
	userID := c.GetString("user_id")
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	productOID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		Rating  int      `json:"rating" binding:"min=0,max=5"`
		Comment string   `json:"comment" binding:"required,min=10,max=2000"`
		Images  []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if _, err := productStore.FindByID(ctx, productOID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	userName := "Utilisateur"
	if u, err := cache.GetUserFromCache(userID); err == nil && u.Username != "" {
		userName = u.Username
	}

	review := models.Review{
		UserID:     userOID,
		ProductID:  productOID,
		UserName:   userName,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Images:     req.Images,
		IsVerified: hasPurchased(ctx, userOID, productOID),
	}

	if err := reviewStore.Insert(ctx, &review); err != nil {
		if err == store.ErrDuplicateReview {
			c.JSON(http.StatusConflict, gin.H{"error": "Vous avez déjà laissé un avis sur ce produit"})
			return
		}
		log.Printf("❌ Erreur création avis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création avis"})
		return
	}

	log.Printf("⭐ Avis créé pour produit %s (note: %d/5)", productOID.Hex(), req.Rating)
	c.JSON(http.StatusCreated, review)
}

//
// ⭐ GET /api/products/:id/reviews?rating=5
//
func GetProductReviews(c *gin.Context) {
	productOID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var rating *int
	if raw := c.Query("rating"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Filtre de note invalide"})
			return
		}
		rating = &v
	}

	reviews, total, err := reviewStore.GetByProduct(c.Request.Context(), productOID, rating, pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": reviews, "total_count": total})
}

//
// ⭐ GET /api/products/:id/reviews/stats
//
func GetReviewStats(c *gin.Context) {
	productOID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	stats, err := reviewStore.Stats(c.Request.Context(), productOID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul statistiques"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

//
// ⭐ POST /api/products/:id/reviews/images
//
func UploadReviewImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formulaire multipart invalide"})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune image fournie"})
		return
	}
	if len(files) > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum 5 images par avis"})
		return
	}

	bucket := os.Getenv("MINIO_BUCKET_REVIEWS")
	if bucket == "" {
		bucket = "reviews"
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := services.UploadFile(c.Request.Context(), bucket, file)
		if err != nil {
			log.Printf("🪣 Échec upload image avis: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
			return
		}
		urls = append(urls, url)
	}

	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

//
// ⭐ PUT /api/admin/reviews/:reviewId/reply
//
func ReplyToReview(c *gin.Context) {
	reviewOID, err := primitive.ObjectIDFromHex(c.Param("reviewId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID avis invalide"})
		return
	}

	var req struct {
		Reply string `json:"reply" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	review, err := reviewStore.SetAdminReply(c.Request.Context(), reviewOID, req.Reply)
	if err != nil {
		if err == store.ErrReviewNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Avis introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement réponse"})
		return
	}

	c.JSON(http.StatusOK, review)
}
