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

func getBrandCollection() *mongo.Collection {
	if database.MongoProductsDB == nil {
		panic("❌ MongoProductsDB n'est pas initialisée")
	}
	return database.MongoProductsDB.Collection("brands")
}

// 🔵 Lister les marques, filtrables par catégorie
func GetAllBrands(c *gin.Context) {
	ctx := c.Request.Context()

	filter := bson.M{"is_active": true}
	if raw := c.Query("category_id"); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
			return
		}
		filter["category_ids"] = oid
	}
	if c.Query("featured") == "true" {
		filter["is_featured"] = true
	}

	// cache uniquement la liste complète, les filtres passent en direct
	cacheKey := "brands:all"
	if len(filter) == 1 {
		if val, err := database.RedisClient.Get(ctx, cacheKey).Result(); err == nil && val != "" {
			var cached []models.Brand
			if json.Unmarshal([]byte(val), &cached) == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	cursor, err := getBrandCollection().Find(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture marques"})
		return
	}
	defer cursor.Close(ctx)

	var brands []models.Brand
	if err := cursor.All(ctx, &brands); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture marques"})
		return
	}

	if len(filter) == 1 {
		if data, err := json.Marshal(brands); err == nil {
			database.RedisClient.Set(context.Background(), cacheKey, data, time.Hour)
		}
	}

	c.JSON(http.StatusOK, brands)
}

// 🔵 Détail d'une marque
func GetBrand(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID marque invalide"})
		return
	}

	var brand models.Brand
	if err := getBrandCollection().FindOne(c.Request.Context(), bson.M{"_id": oid}).Decode(&brand); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Marque introuvable"})
		return
	}

	c.JSON(http.StatusOK, brand)
}

// 🟢 Créer une marque (admin)
func CreateBrand(c *gin.Context) {
	var brand models.Brand
	if err := c.ShouldBindJSON(&brand); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if brand.Name == "" || brand.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'name' et 'slug' sont obligatoires"})
		return
	}

	now := time.Now()
	brand.CreatedAt = now
	brand.UpdatedAt = now
	brand.IsActive = true

	res, err := getBrandCollection().InsertOne(c.Request.Context(), brand)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création marque"})
		return
	}

	database.RedisClient.Del(context.Background(), "brands:all")
	c.JSON(http.StatusCreated, gin.H{"id": res.InsertedID})
}

// 🟠 Mettre à jour une marque (admin)
func UpdateBrand(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID marque invalide"})
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updated_at": time.Now()}
	for _, field := range []string{
		"name", "slug", "description", "logo_url", "country",
		"founded_year", "is_active", "is_featured",
	} {
		if v, ok := input[field]; ok {
			set[field] = v
		}
	}
	if raw, ok := input["category_ids"].([]interface{}); ok {
		ids := make([]primitive.ObjectID, 0, len(raw))
		for _, r := range raw {
			if s, ok := r.(string); ok {
				if id, err := primitive.ObjectIDFromHex(s); err == nil {
					ids = append(ids, id)
				}
			}
		}
		set["category_ids"] = ids
	}

	res, err := getBrandCollection().UpdateOne(c.Request.Context(), bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour marque"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Marque introuvable"})
		return
	}

	database.RedisClient.Del(context.Background(), "brands:all")
	c.JSON(http.StatusOK, gin.H{"message": "Marque mise à jour"})
}

// 🔴 Supprimer une marque (admin)
func DeleteBrand(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID marque invalide"})
		return
	}

	res, err := getBrandCollection().DeleteOne(c.Request.Context(), bson.M{"_id": oid})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression marque"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Marque introuvable"})
		return
	}

	database.RedisClient.Del(context.Background(), "brands:all")
	c.JSON(http.StatusOK, gin.H{"message": "Marque supprimée"})
}
