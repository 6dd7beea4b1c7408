package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem snapshots a product at purchase time. Price is the catalog
// price at session-creation time, never re-read at finalization.
type OrderItem struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Price    float64            `json:"price" bson:"price"`
}

type Order struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user" bson:"user"`
	Products        []OrderItem        `json:"products" bson:"products"`
	TotalAmount     float64            `json:"totalAmount" bson:"totalAmount"`
	StripeSessionID string             `json:"stripeSessionId" bson:"stripeSessionId"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// DailySales is one calendar day's aggregate. Ranges are zero-filled, so a
// day with no orders still appears with sales=0, revenue=0.
type DailySales struct {
	Date    string  `json:"date" bson:"_id"`
	Sales   int64   `json:"sales" bson:"sales"`
	Revenue float64 `json:"revenue" bson:"revenue"`
}

// AnalyticsData is the cached overview aggregate.
type AnalyticsData struct {
	Users        int64   `json:"users"`
	Products     int64   `json:"products"`
	TotalSales   int64   `json:"totalSales"`
	TotalRevenue float64 `json:"totalRevenue"`
}
