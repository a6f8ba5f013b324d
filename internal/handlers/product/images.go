package product

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/cache"
	"smartshop_back_end/internal/services"
)

//
// 🪣 POST /api/admin/products/:id/images
//
func UploadProductImages(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := c.Request.Context()

	p, err := productStore.FindByID(ctx, oid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

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

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "products"
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := services.UploadFile(ctx, bucket, file)
		if err != nil {
			log.Printf("🪣 Échec upload image produit %s: %v", oid.Hex(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
			return
		}
		urls = append(urls, url)
	}

	updated, err := productStore.Update(ctx, oid, bson.M{"images": append(p.Images, urls...)})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProductCache(oid.Hex())
	go services.IndexProduct(*updated)

	log.Printf("🪣 %d image(s) ajoutée(s) au produit %s", len(urls), p.Name)
	c.JSON(http.StatusOK, gin.H{"images": updated.Images})
}
