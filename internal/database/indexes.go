package database

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var indexesOnce sync.Once

// InitIndexes crée les index dont les invariants métier dépendent.
// L'unicité de order_number est garantie ICI, pas par le schéma de
// génération : la dérivation par compteur est raciale sous concurrence.
func InitIndexes() {
	indexesOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		unique := options.Index().SetUnique(true)

		createIndexes(ctx, MongoOrdersDB.Collection("orders"), []mongo.IndexModel{
			{Keys: bson.D{{Key: "order_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "order_date", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "order_date", Value: -1}}},
		})

		createIndexes(ctx, MongoOrdersDB.Collection("order_items"), []mongo.IndexModel{
			{Keys: bson.D{{Key: "order_id", Value: 1}}},
			{Keys: bson.D{{Key: "product_id", Value: 1}}},
		})

		createIndexes(ctx, MongoUsersDB.Collection("carts"), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}}, Options: unique},
		})

		createIndexes(ctx, MongoUsersDB.Collection("users"), []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		})

		createIndexes(ctx, MongoUsersDB.Collection("wishlists"), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "display_order", Value: 1}}},
		})

		createIndexes(ctx, MongoProductsDB.Collection("reviews"), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}},
		})

		createIndexes(ctx, MongoProductsDB.Collection("stock_movements"), []mongo.IndexModel{
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}},
		})

		log.Println("✅ Index MongoDB initialisés")
	})
}

func createIndexes(ctx context.Context, coll *mongo.Collection, idx []mongo.IndexModel) {
	if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
		log.Printf("⚠️ Erreur création index sur %s: %v", coll.Name(), err)
	}
}
