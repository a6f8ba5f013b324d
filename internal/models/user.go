package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // hash argon2id (bcrypt legacy accepté), jamais exposé
	FirstName string             `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string             `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Role      string             `bson:"role" json:"role"` // "user" | "admin"
	Provider  string             `bson:"provider,omitempty" json:"provider,omitempty"`

	// Champs OTP pour la réinitialisation de mot de passe
	PasswordResetOTP        string     `bson:"password_reset_otp,omitempty" json:"-"`
	PasswordResetOTPExpires *time.Time `bson:"password_reset_otp_expires,omitempty" json:"-"`
	PasswordResetEmail      string     `bson:"password_reset_email,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
