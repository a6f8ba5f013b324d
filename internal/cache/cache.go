package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/database"
	"smartshop_back_end/internal/models"
)

const (
	UserCacheTTL    = 5 * time.Minute
	ProductCacheTTL = 10 * time.Minute
)

// GetUserFromCache récupère un utilisateur depuis Redis, MongoDB en repli
func GetUserFromCache(userID string) (*models.User, error) {
	ctx := context.Background()
	key := "user:" + userID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var user models.User
		if json.Unmarshal([]byte(data), &user) == nil {
			return &user, nil
		}
	}

	// 2. Récupérer de MongoDB
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = database.MongoUsersDB.Collection("users").
		FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(user)
	database.Redis.Set(ctx, key, jsonData, UserCacheTTL)

	return &user, nil
}

// InvalidateUserCache invalide le cache d'un utilisateur
func InvalidateUserCache(userID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "user:"+userID)
}

// GetProductNamesFromCache récupère plusieurs noms de produits
func GetProductNamesFromCache(productIDs []string) map[string]string {
	ctx := context.Background()
	result := make(map[string]string)
	missingIDs := []primitive.ObjectID{}

	// 1. Essayer de récupérer depuis Redis
	for _, productID := range productIDs {
		key := "product_name:" + productID
		name, err := database.Redis.Get(ctx, key).Result()
		if err == nil {
			result[productID] = name
			continue
		}
		if oid, err := primitive.ObjectIDFromHex(productID); err == nil {
			missingIDs = append(missingIDs, oid)
		}
	}

	// 2. Récupérer les produits manquants depuis MongoDB
	if len(missingIDs) > 0 {
		cursor, err := database.MongoProductsDB.Collection("products").
			Find(ctx, bson.M{"_id": bson.M{"$in": missingIDs}})
		if err == nil {
			defer cursor.Close(ctx)
			var products []models.Product
			if cursor.All(ctx, &products) == nil {
				for _, p := range products {
					id := p.ID.Hex()
					result[id] = p.Name
					database.Redis.Set(ctx, "product_name:"+id, p.Name, ProductCacheTTL)
				}
			}
		}
	}

	return result
}

// InvalidateProductCache invalide le nom en cache après modification admin
func InvalidateProductCache(productID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "product_name:"+productID)
}
