package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review : un seul avis par (user_id, product_id), garanti par index unique.
type Review struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID  `bson:"user_id" json:"user_id"`
	ProductID           primitive.ObjectID  `bson:"product_id" json:"product_id"`
	OrderID             *primitive.ObjectID `bson:"order_id,omitempty" json:"order_id,omitempty"`
	UserName            string              `bson:"user_name" json:"user_name"`
	Rating              int                 `bson:"rating" json:"rating"` // 0-5
	Comment             string              `bson:"comment" json:"comment"`
	Images              []string            `bson:"images,omitempty" json:"images,omitempty"`
	IsVerified          bool                `bson:"is_verified" json:"is_verified"`
	AdminReply          string              `bson:"admin_reply,omitempty" json:"admin_reply,omitempty"`
	AdminReplyUpdatedAt *time.Time          `bson:"admin_reply_updated_at,omitempty" json:"admin_reply_updated_at,omitempty"`
	CreatedAt           time.Time           `bson:"created_at" json:"created_at"`
}

type ReviewStats struct {
	TotalReviews  int         `json:"total_reviews"`
	AverageRating float64     `json:"average_rating"`
	Distribution  map[int]int `json:"distribution"`
}
