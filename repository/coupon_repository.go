package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
)

type CouponRepository interface {
	// FindActiveByUser returns the user's active coupon, or nil without
	// error when none exists.
	FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, error)
	FindActiveByCodeAndUser(ctx context.Context, code string, userID primitive.ObjectID) (*models.Coupon, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	DeactivateByCodeAndUser(ctx context.Context, code string, userID primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
	Insert(ctx context.Context, coupon *models.Coupon) error
}

type mongoCouponRepository struct {
	collection *mongo.Collection
}

func NewCouponRepository(db *mongo.Database) CouponRepository {
	return &mongoCouponRepository{collection: db.Collection("coupons")}
}

func (r *mongoCouponRepository) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "isActive": true}).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *mongoCouponRepository) FindActiveByCodeAndUser(ctx context.Context, code string, userID primitive.ObjectID) (*models.Coupon, error) {
	var coupon models.Coupon
	filter := bson.M{"code": code, "userId": userID, "isActive": true}
	err := r.collection.FindOne(ctx, filter).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *mongoCouponRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"isActive": false}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *mongoCouponRepository) DeactivateByCodeAndUser(ctx context.Context, code string, userID primitive.ObjectID) error {
	filter := bson.M{"code": code, "userId": userID}
	update := bson.M{"$set": bson.M{"isActive": false}}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

func (r *mongoCouponRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

func (r *mongoCouponRepository) Insert(ctx context.Context, coupon *models.Coupon) error {
	coupon.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		coupon.ID = oid
	}
	return nil
}
