package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon is a single-use percentage discount owned by one user. At most
// one active coupon exists per user; issuing a new one deletes the prior.
type Coupon struct {
	ID                 primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Code               string             `json:"code" bson:"code"`
	DiscountPercentage float64            `json:"discountPercentage" bson:"discountPercentage"`
	ExpirationDate     time.Time          `json:"expirationDate" bson:"expirationDate"`
	UserID             primitive.ObjectID `json:"userId" bson:"userId"`
	IsActive           bool               `json:"isActive" bson:"isActive"`
	CreatedAt          time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// Expired reports whether the coupon's expiration date has passed. Checked
// at every read regardless of cache status: the cache TTL is far shorter
// than coupon validity, so a cached coupon can outlive its expiration
// between checks.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpirationDate.Before(now)
}

type ValidateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type ValidateCouponResponse struct {
	Message            string  `json:"message"`
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discountPercentage"`
}
