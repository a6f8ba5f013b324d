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

var reviewColumns = map[string]string{
	"CREATED": "created_at",
	"RATING":  "rating",
}

// MongoReviewStore implémente ReviewStore sur la base products.
type MongoReviewStore struct {
	reviews *mongo.Collection
}

func NewMongoReviewStore(productsDB *mongo.Database) *MongoReviewStore {
	return &MongoReviewStore{reviews: productsDB.Collection("reviews")}
}

func (s *MongoReviewStore) Insert(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	review.CreatedAt = time.Now()
	_, err := s.reviews.InsertOne(ctx, review)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateReview
	}
	if err != nil {
		return fmt.Errorf("insertion avis: %w", err)
	}
	return nil
}

func (s *MongoReviewStore) GetByProduct(ctx context.Context, productID primitive.ObjectID, rating *int, page Page) ([]models.Review, int64, error) {
	page = page.Normalize()

	filter := bson.M{"product_id": productID}
	if rating != nil {
		filter["rating"] = *rating
	}

	total, err := s.reviews.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("comptage avis: %w", err)
	}

	opts := options.Find().
		SetSort(SortOptions(page.OrderBy, reviewColumns)).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.First))

	cursor, err := s.reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("liste avis: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, fmt.Errorf("décodage avis: %w", err)
	}
	return reviews, total, nil
}

// Stats agrège la note moyenne et la distribution 1..5 côté base.
func (s *MongoReviewStore) Stats(ctx context.Context, productID primitive.ObjectID) (*models.ReviewStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$rating",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("agrégation avis: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Rating int `bson:"_id"`
		Count  int `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("décodage stats avis: %w", err)
	}

	stats := &models.ReviewStats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, r := range rows {
		stats.TotalReviews += r.Count
		sum += r.Rating * r.Count
		if r.Rating >= 1 && r.Rating <= 5 {
			stats.Distribution[r.Rating] = r.Count
		}
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
	}
	return stats, nil
}

func (s *MongoReviewStore) FindByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := s.reviews.FindOne(ctx, bson.M{"user_id": userID, "product_id": productID}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recherche avis: %w", err)
	}
	return &review, nil
}

func (s *MongoReviewStore) SetAdminReply(ctx context.Context, reviewID primitive.ObjectID, reply string) (*models.Review, error) {
	now := time.Now()
	var review models.Review
	err := s.reviews.FindOneAndUpdate(ctx,
		bson.M{"_id": reviewID},
		bson.M{"$set": bson.M{
			"admin_reply":            reply,
			"admin_reply_updated_at": now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("réponse admin: %w", err)
	}
	return &review, nil
}
