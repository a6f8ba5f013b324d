package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartshop_back_end/internal/models"
)

type MongoCartStore struct {
	carts    *mongo.Collection
	products *mongo.Collection
}

func NewMongoCartStore(usersDB, productsDB *mongo.Database) *MongoCartStore {
	return &MongoCartStore{
		carts:    usersDB.Collection("carts"),
		products: productsDB.Collection("products"),
	}
}

// GetByUser retourne les lignes du panier, triées par ajout décroissant,
// avec le produit courant résolu dans Product.Resolved. Une référence
// pendante (produit supprimé) laisse Resolved à nil, c'est au pipeline
// de commande d'en faire une erreur.
func (s *MongoCartStore) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}})
	cursor, err := s.carts.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("décodage panier: %w", err)
	}

	for i := range items {
		items[i].Product = models.ProductRef{ID: items[i].ProductID}
		var p models.Product
		if err := s.products.FindOne(ctx, bson.M{"_id": items[i].ProductID}).Decode(&p); err == nil {
			items[i].Product.Resolved = &p
		}
	}
	return items, nil
}

func (s *MongoCartStore) Insert(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	res, err := s.carts.InsertOne(ctx, item)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateCartItem
		}
		return nil, fmt.Errorf("ajout panier: %w", err)
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return &item, nil
}

func (s *MongoCartStore) UpdateQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.CartItem, error) {
	after := options.After
	var item models.CartItem
	err := s.carts.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID, "product_id": productID},
		bson.M{"$set": bson.M{"quantity": quantity}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mise à jour quantité: %w", err)
	}
	return &item, nil
}

func (s *MongoCartStore) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	// Idempotent : supprimer une ligne absente n'est pas une erreur
	_, err := s.carts.DeleteOne(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return fmt.Errorf("suppression ligne panier: %w", err)
	}
	return nil
}

func (s *MongoCartStore) ClearByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.carts.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("vidage panier: %w", err)
	}
	return nil
}

func (s *MongoCartStore) ItemCount(ctx context.Context, userID primitive.ObjectID) (int, error) {
	cursor, err := s.carts.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("comptage panier: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return 0, fmt.Errorf("décodage panier: %w", err)
	}

	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count, nil
}
