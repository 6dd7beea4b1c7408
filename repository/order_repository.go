package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
)

// SalesTotals is the all-time aggregate over the orders collection.
type SalesTotals struct {
	TotalSales   int64   `bson:"totalSales"`
	TotalRevenue float64 `bson:"totalRevenue"`
}

type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	// FindBySessionID returns nil without error when no order exists for
	// the payment session. Together with the unique index on
	// stripeSessionId this makes finalization idempotent.
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	Count(ctx context.Context) (int64, error)
	Totals(ctx context.Context) (SalesTotals, error)
	DailySales(ctx context.Context, start, end time.Time) ([]models.DailySales, error)
}

type mongoOrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository ensures the unique stripeSessionId index so a payment
// session can finalize into at most one order.
func NewOrderRepository(ctx context.Context, db *mongo.Database) (OrderRepository, error) {
	collection := db.Collection("orders")

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "stripeSessionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return &mongoOrderRepository{collection: collection}, nil
}

func (r *mongoOrderRepository) Insert(ctx context.Context, order *models.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *mongoOrderRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"stripeSessionId": sessionID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *mongoOrderRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *mongoOrderRepository) Totals(ctx context.Context) (SalesTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"totalSales":   bson.M{"$sum": 1},
			"totalRevenue": bson.M{"$sum": "$totalAmount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return SalesTotals{}, err
	}
	defer cursor.Close(ctx)

	var results []SalesTotals
	if err := cursor.All(ctx, &results); err != nil {
		return SalesTotals{}, err
	}
	if len(results) == 0 {
		return SalesTotals{}, nil
	}
	return results[0], nil
}

func (r *mongoOrderRepository) DailySales(ctx context.Context, start, end time.Time) ([]models.DailySales, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"sales":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalAmount"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sales := []models.DailySales{}
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}
