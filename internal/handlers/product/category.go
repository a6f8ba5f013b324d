package product

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"smartshop_back_end/internal/database"
	"smartshop_back_end/internal/models"
)

func getCategoryCollection() *mongo.Collection {
	if database.MongoProductsDB == nil {
		panic("❌ MongoProductsDB n'est pas initialisée")
	}
	return database.MongoProductsDB.Collection("categories")
}

// 🔵 Lister les catégories
func GetAllCategories(c *gin.Context) {
	ctx := c.Request.Context()
	cacheKey := "categories:all"

	// Cache Redis
	if val, err := database.RedisClient.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached []models.Category
		if json.Unmarshal([]byte(val), &cached) == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	cursor, err := getCategoryCollection().Find(ctx, bson.M{"is_active": true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories"})
		return
	}
	defer cursor.Close(ctx)

	var cats []models.Category
	if err := cursor.All(ctx, &cats); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories"})
		return
	}

	if data, err := json.Marshal(cats); err == nil {
		database.RedisClient.Set(context.Background(), cacheKey, data, time.Hour)
	}

	c.JSON(http.StatusOK, cats)
}

// 🔵 Détail d'une catégorie
func GetCategory(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	var cat models.Category
	if err := getCategoryCollection().FindOne(c.Request.Context(), bson.M{"_id": oid}).Decode(&cat); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	c.JSON(http.StatusOK, cat)
}

// 🟢 Créer une catégorie (admin)
func CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if cat.Name == "" || cat.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'name' et 'slug' sont obligatoires"})
		return
	}

	now := time.Now()
	cat.CreatedAt = now
	cat.UpdatedAt = now
	cat.IsActive = true

	res, err := getCategoryCollection().InsertOne(c.Request.Context(), cat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie"})
		return
	}

	database.RedisClient.Del(context.Background(), "categories:all")
	c.JSON(http.StatusCreated, gin.H{"id": res.InsertedID})
}

// 🟠 Mettre à jour une catégorie (admin)
func UpdateCategory(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updated_at": time.Now()}
	for _, field := range []string{"name", "slug", "description", "image_url", "is_active"} {
		if v, ok := input[field]; ok {
			set[field] = v
		}
	}

	res, err := getCategoryCollection().UpdateOne(c.Request.Context(), bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour catégorie"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	database.RedisClient.Del(context.Background(), "categories:all")
	c.JSON(http.StatusOK, gin.H{"message": "Catégorie mise à jour"})
}

// 🔴 Supprimer une catégorie (admin)
func DeleteCategory(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	res, err := getCategoryCollection().DeleteOne(c.Request.Context(), bson.M{"_id": oid})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression catégorie"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	database.RedisClient.Del(context.Background(), "categories:all")
	c.JSON(http.StatusOK, gin.H{"message": "Catégorie supprimée"})
}
