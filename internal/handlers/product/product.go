package product

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/cache"
	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/services"
	"smartshop_back_end/internal/store"
)

var productStore *store.MongoProductStore

func InitProducts(ps *store.MongoProductStore) {
	productStore = ps
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

func objectIDQuery(c *gin.Context, name string) *primitive.ObjectID {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil
	}
	return &oid
}

//
// 🛍️ GET /api/products
//
func ListProducts(c *gin.Context) {
	cond := store.ProductCondition{
		Name:       c.Query("name"),
		CategoryID: objectIDQuery(c, "category_id"),
		BrandID:    objectIDQuery(c, "brand_id"),
	}

	// le public ne voit que les produits actifs, l'admin peut tout lister
	if c.GetString("role") == "admin" {
		if raw := c.Query("is_active"); raw != "" {
			v := raw == "true"
			cond.IsActive = &v
		}
	} else {
		active := true
		cond.IsActive = &active
	}

	if raw := c.Query("is_featured"); raw != "" {
		v := raw == "true"
		cond.IsFeatured = &v
	}
	if raw := c.Query("price_min"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cond.PriceMin = &v
		}
	}
	if raw := c.Query("price_max"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cond.PriceMax = &v
		}
	}

	products, total, err := productStore.List(c.Request.Context(), cond, pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": products, "total_count": total})
}

//
// 🛍️ GET /api/products/:id
//
func GetProduct(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	p, err := productStore.FindByID(c.Request.Context(), oid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	c.JSON(http.StatusOK, p)
}

//
// 🔎 GET /api/products/search?q=...
//
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'q' manquant"})
		return
	}

	// 1️⃣ Recherche Elasticsearch (prioritaire)
	if results, err := services.SearchProducts(query); err == nil && len(results) > 0 {
		c.JSON(http.StatusOK, gin.H{"items": results, "total_count": len(results), "source": "elasticsearch"})
		return
	}

	// 2️⃣ Fallback Mongo multi-termes si ES indisponible ou vide
	products, total, err := productStore.Search(c.Request.Context(), query, pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": products, "total_count": total, "source": "mongo"})
}

// ================== CRUD ADMIN ==================

//
// 🛍️ POST /api/admin/products
//
func CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Name == "" || p.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom et prix positif obligatoires"})
		return
	}
	if p.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le stock ne peut pas être négatif"})
		return
	}

	if err := productStore.Create(c.Request.Context(), &p); err != nil {
		log.Printf("❌ Erreur création produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)

	log.Printf("✅ Produit créé: %s (%s)", p.Name, p.ID.Hex())
	c.JSON(http.StatusCreated, p)
}

//
// 🛍️ PUT /api/admin/products/:id
//
func UpdateProduct(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// seuls les champs éditables passent, le stock se gère via l'inventaire
	set := bson.M{}
	for _, field := range []string{
		"name", "description", "sku", "price", "original_price",
		"low_stock_threshold", "images", "tags", "is_active", "is_featured",
	} {
		if v, ok := input[field]; ok {
			set[field] = v
		}
	}
	for _, field := range []string{"category_id", "brand_id"} {
		if raw, ok := input[field].(string); ok {
			if ref, err := primitive.ObjectIDFromHex(raw); err == nil {
				set[field] = ref
			}
		}
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun champ à mettre à jour"})
		return
	}

	p, err := productStore.Update(c.Request.Context(), oid, set)
	if err != nil {
		if err == store.ErrProductMissing {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProductCache(oid.Hex())
	go services.IndexProduct(*p)

	c.JSON(http.StatusOK, p)
}

//
// 🛍️ DELETE /api/admin/products/:id
//
func DeleteProduct(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	if err := productStore.Delete(c.Request.Context(), oid); err != nil {
		if err == store.ErrProductMissing {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	cache.InvalidateProductCache(oid.Hex())
	go services.RemoveProductFromIndex(oid.Hex())

	log.Printf("✅ Produit supprimé: %s", oid.Hex())
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}
