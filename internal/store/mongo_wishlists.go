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

// MongoWishlistStore implémente WishlistStore sur la base users.
type MongoWishlistStore struct {
	wishlists *mongo.Collection
}

func NewMongoWishlistStore(usersDB *mongo.Database) *MongoWishlistStore {
	return &MongoWishlistStore{wishlists: usersDB.Collection("wishlists")}
}

// Add place le nouvel élément en fin de liste (display_order = N+1).
func (s *MongoWishlistStore) Add(ctx context.Context, item models.WishlistItem) (*models.WishlistItem, error) {
	count, err := s.wishlists.CountDocuments(ctx, bson.M{"user_id": item.UserID})
	if err != nil {
		return nil, fmt.Errorf("comptage wishlist: %w", err)
	}

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	item.DisplayOrder = int(count) + 1
	item.AddedAt = time.Now()

	_, err = s.wishlists.InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicateWishlist
	}
	if err != nil {
		return nil, fmt.Errorf("ajout wishlist: %w", err)
	}
	return &item, nil
}

// Remove retire l'élément et referme le trou : les display_order supérieurs
// sont décrémentés pour préserver la séquence 1..N.
func (s *MongoWishlistStore) Remove(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	var removed models.WishlistItem
	err := s.wishlists.FindOneAndDelete(ctx, bson.M{
		"user_id":    userID,
		"product_id": productID,
	}).Decode(&removed)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("retrait wishlist: %w", err)
	}

	_, err = s.wishlists.UpdateMany(ctx,
		bson.M{"user_id": userID, "display_order": bson.M{"$gt": removed.DisplayOrder}},
		bson.M{"$inc": bson.M{"display_order": -1}},
	)
	if err != nil {
		return true, fmt.Errorf("renumérotation wishlist: %w", err)
	}
	return true, nil
}

// RemoveMultiple retire un lot puis renumérote la liste entière, moins
// coûteux qu'un refermement trou par trou.
func (s *MongoWishlistStore) RemoveMultiple(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) (int64, error) {
	res, err := s.wishlists.DeleteMany(ctx, bson.M{
		"user_id":    userID,
		"product_id": bson.M{"$in": productIDs},
	})
	if err != nil {
		return 0, fmt.Errorf("retrait multiple wishlist: %w", err)
	}
	if res.DeletedCount > 0 {
		if err := s.renumber(ctx, userID); err != nil {
			return res.DeletedCount, err
		}
	}
	return res.DeletedCount, nil
}

func (s *MongoWishlistStore) GetByUser(ctx context.Context, userID primitive.ObjectID, page Page) (*models.WishlistPage, error) {
	page = page.Normalize()

	filter := bson.M{"user_id": userID}
	total, err := s.wishlists.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("comptage wishlist: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "display_order", Value: 1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.First))

	cursor, err := s.wishlists.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("liste wishlist: %w", err)
	}
	defer cursor.Close(ctx)

	nodes := []models.WishlistItem{}
	if err := cursor.All(ctx, &nodes); err != nil {
		return nil, fmt.Errorf("décodage wishlist: %w", err)
	}

	return &models.WishlistPage{
		Nodes:           nodes,
		TotalCount:      int(total),
		HasNextPage:     int64(page.Offset+page.First) < total,
		HasPreviousPage: page.Offset > 0,
	}, nil
}

func (s *MongoWishlistStore) ItemCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.wishlists.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("comptage wishlist: %w", err)
	}
	return count, nil
}

// Reorder déplace l'élément à la position newOrder (bornée à 1..N) et
// décale les éléments intermédiaires d'un cran dans l'autre sens.
func (s *MongoWishlistStore) Reorder(ctx context.Context, itemID, userID primitive.ObjectID, newOrder int) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := s.wishlists.FindOne(ctx, bson.M{"_id": itemID, "user_id": userID}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrWishlistItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recherche élément wishlist: %w", err)
	}

	count, err := s.wishlists.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("comptage wishlist: %w", err)
	}
	if newOrder < 1 {
		newOrder = 1
	}
	if newOrder > int(count) {
		newOrder = int(count)
	}
	if newOrder == item.DisplayOrder {
		return &item, nil
	}

	if newOrder < item.DisplayOrder {
		// Déplacement vers le haut : les éléments entre les deux descendent.
		_, err = s.wishlists.UpdateMany(ctx,
			bson.M{
				"user_id":       userID,
				"display_order": bson.M{"$gte": newOrder, "$lt": item.DisplayOrder},
			},
			bson.M{"$inc": bson.M{"display_order": 1}},
		)
	} else {
		// Déplacement vers le bas : les éléments entre les deux montent.
		_, err = s.wishlists.UpdateMany(ctx,
			bson.M{
				"user_id":       userID,
				"display_order": bson.M{"$gt": item.DisplayOrder, "$lte": newOrder},
			},
			bson.M{"$inc": bson.M{"display_order": -1}},
		)
	}
	if err != nil {
		return nil, fmt.Errorf("décalage wishlist: %w", err)
	}

	err = s.wishlists.FindOneAndUpdate(ctx,
		bson.M{"_id": itemID},
		bson.M{"$set": bson.M{"display_order": newOrder}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if err != nil {
		return nil, fmt.Errorf("repositionnement wishlist: %w", err)
	}
	return &item, nil
}

func (s *MongoWishlistStore) MoveUp(ctx context.Context, itemID, userID primitive.ObjectID) (*models.WishlistItem, error) {
	return s.moveBy(ctx, itemID, userID, -1)
}

func (s *MongoWishlistStore) MoveDown(ctx context.Context, itemID, userID primitive.ObjectID) (*models.WishlistItem, error) {
	return s.moveBy(ctx, itemID, userID, +1)
}

// moveBy échange l'élément avec son voisin immédiat. Aux bornes (premier
// élément qui monte, dernier qui descend) l'opération est un no-op.
func (s *MongoWishlistStore) moveBy(ctx context.Context, itemID, userID primitive.ObjectID, delta int) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := s.wishlists.FindOne(ctx, bson.M{"_id": itemID, "user_id": userID}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrWishlistItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recherche élément wishlist: %w", err)
	}

	target := item.DisplayOrder + delta
	var neighbor models.WishlistItem
	err = s.wishlists.FindOne(ctx, bson.M{
		"user_id":       userID,
		"display_order": target,
	}).Decode(&neighbor)
	if err == mongo.ErrNoDocuments {
		return &item, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recherche voisin wishlist: %w", err)
	}

	_, err = s.wishlists.UpdateOne(ctx,
		bson.M{"_id": neighbor.ID},
		bson.M{"$set": bson.M{"display_order": item.DisplayOrder}},
	)
	if err != nil {
		return nil, fmt.Errorf("échange wishlist: %w", err)
	}

	err = s.wishlists.FindOneAndUpdate(ctx,
		bson.M{"_id": item.ID},
		bson.M{"$set": bson.M{"display_order": target}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if err != nil {
		return nil, fmt.Errorf("échange wishlist: %w", err)
	}
	return &item, nil
}

// renumber réécrit la séquence 1..N dans l'ordre courant.
func (s *MongoWishlistStore) renumber(ctx context.Context, userID primitive.ObjectID) error {
	cursor, err := s.wishlists.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}}),
	)
	if err != nil {
		return fmt.Errorf("renumérotation wishlist: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.WishlistItem
	if err := cursor.All(ctx, &items); err != nil {
		return fmt.Errorf("renumérotation wishlist: %w", err)
	}

	for i, it := range items {
		if it.DisplayOrder == i+1 {
			continue
		}
		_, err := s.wishlists.UpdateOne(ctx,
			bson.M{"_id": it.ID},
			bson.M{"$set": bson.M{"display_order": i + 1}},
		)
		if err != nil {
			return fmt.Errorf("renumérotation wishlist: %w", err)
		}
	}
	return nil
}
