package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"smartshop_back_end/internal/models"
)

// MongoUserStore implémente UserStore sur la base users.
type MongoUserStore struct {
	users *mongo.Collection
}

func NewMongoUserStore(usersDB *mongo.Database) *MongoUserStore {
	return &MongoUserStore{users: usersDB.Collection("users")}
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recherche utilisateur: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recherche utilisateur par email: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insertion utilisateur: %w", err)
	}
	return nil
}

// SavePasswordResetOTP écrase l'OTP précédent : un seul code valide à la fois.
func (s *MongoUserStore) SavePasswordResetOTP(ctx context.Context, email, otp string, expires time.Time) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"password_reset_otp":         otp,
			"password_reset_otp_expires": expires,
			"password_reset_email":       email,
			"updated_at":                 time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("enregistrement OTP: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// FindByValidOTP ne retourne l'utilisateur que si l'OTP correspond ET n'a
// pas expiré ; l'expiration est évaluée côté base pour éviter toute dérive
// d'horloge entre instances.
func (s *MongoUserStore) FindByValidOTP(ctx context.Context, email, otp string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{
		"email":                      email,
		"password_reset_otp":         otp,
		"password_reset_otp_expires": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("vérification OTP: %w", err)
	}
	return &user, nil
}

// ResetPasswordAndClearOTP invalide l'OTP dans la même écriture que le
// nouveau mot de passe : un code consommé ne peut pas être rejoué.
func (s *MongoUserStore) ResetPasswordAndClearOTP(ctx context.Context, id primitive.ObjectID, hashedPassword string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				"password":   hashedPassword,
				"updated_at": time.Now(),
			},
			"$unset": bson.M{
				"password_reset_otp":         "",
				"password_reset_otp_expires": "",
				"password_reset_email":       "",
			},
		},
	)
	if err != nil {
		return fmt.Errorf("réinitialisation mot de passe: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
