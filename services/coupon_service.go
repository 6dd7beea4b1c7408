package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lokeshbavandla/shophub-ecommerce-app/cache"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
)

// CouponService reads and validates the per-user gift coupon.
type CouponService interface {
	// GetCoupon returns the user's active coupon, or nil when none
	// exists. The nil result is cached too, so repeated lookups for
	// couponless users do not hit the store.
	GetCoupon(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, *ServiceError)
	ValidateCoupon(ctx context.Context, userID primitive.ObjectID, code string) (*models.ValidateCouponResponse, *ServiceError)
}

type couponService struct {
	repo   repository.CouponRepository
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewCouponService(repo repository.CouponRepository, c cache.Cache, logger *zap.Logger) CouponService {
	return &couponService{repo: repo, cache: c, logger: logger, now: time.Now}
}

func (s *couponService) GetCoupon(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, *ServiceError) {
	key := cache.KeyUserCoupon(userID.Hex())

	var cached *models.Coupon
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	coupon, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to fetch coupon", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, serverError("Server error")
	}

	s.cache.Set(ctx, key, coupon, cache.TTLCoupon)
	return coupon, nil
}

func (s *couponService) ValidateCoupon(ctx context.Context, userID primitive.ObjectID, code string) (*models.ValidateCouponResponse, *ServiceError) {
	codeKey := cache.KeyCouponByCode(code)

	var cached *models.Coupon
	if s.cache.Get(ctx, codeKey, &cached) && cached != nil {
		if cached.UserID != userID {
			return nil, notFound("Coupon not found")
		}
		// A cache hit is not trusted for expiration: the TTL window is
		// far shorter than coupon validity, so the date is re-checked
		// against the clock on every read.
		if cached.Expired(s.now()) {
			s.expireCoupon(ctx, cached)
			return nil, notFound("Coupon expired")
		}

		return &models.ValidateCouponResponse{
			Message:            "Coupon is valid",
			Code:               cached.Code,
			DiscountPercentage: cached.DiscountPercentage,
		}, nil
	}

	coupon, err := s.repo.FindActiveByCodeAndUser(ctx, code, userID)
	if err != nil {
		s.logger.Error("failed to fetch coupon by code",
			zap.String("user_id", userID.Hex()), zap.String("code", code), zap.Error(err))
		return nil, serverError("Server error")
	}
	if coupon == nil {
		return nil, notFound("Coupon not found")
	}

	if coupon.Expired(s.now()) {
		s.expireCoupon(ctx, coupon)
		return nil, notFound("Coupon expired")
	}

	s.cache.Set(ctx, codeKey, coupon, cache.TTLCoupon)
	s.cache.Set(ctx, cache.KeyUserCoupon(userID.Hex()), coupon, cache.TTLCoupon)

	return &models.ValidateCouponResponse{
		Message:            "Coupon is valid",
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
	}, nil
}

// expireCoupon persists isActive=false and drops both coupon cache keys.
// Runs as a side effect of validation; coupons are not eagerly swept.
func (s *couponService) expireCoupon(ctx context.Context, coupon *models.Coupon) {
	if err := s.repo.Deactivate(ctx, coupon.ID); err != nil {
		s.logger.Error("failed to deactivate expired coupon",
			zap.String("code", coupon.Code), zap.Error(err))
	}
	s.cache.Delete(ctx,
		cache.KeyCouponByCode(coupon.Code),
		cache.KeyUserCoupon(coupon.UserID.Hex()),
	)

	s.logger.Warn("coupon expired",
		zap.String("code", coupon.Code),
		zap.Time("expiration_date", coupon.ExpirationDate),
	)
}
