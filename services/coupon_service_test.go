package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lokeshbavandla/shophub-ecommerce-app/cache"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

func newCouponFixture() (services.CouponService, *mockCouponRepo, *fakeCache) {
	repo := &mockCouponRepo{}
	fc := newFakeCache()
	return services.NewCouponService(repo, fc, zap.NewNop()), repo, fc
}

func activeCoupon(userID primitive.ObjectID, code string, expiresIn time.Duration) *models.Coupon {
	return &models.Coupon{
		ID:                 primitive.NewObjectID(),
		Code:               code,
		DiscountPercentage: 10,
		ExpirationDate:     time.Now().Add(expiresIn),
		UserID:             userID,
		IsActive:           true,
	}
}

func TestGetCoupon(t *testing.T) {
	svc, repo, fc := newCouponFixture()
	userID := primitive.NewObjectID()
	repo.coupons = append(repo.coupons, activeCoupon(userID, "GIFTAB12CD", 24*time.Hour))

	coupon, svcErr := svc.GetCoupon(context.Background(), userID)
	require.Nil(t, svcErr)
	require.NotNil(t, coupon)
	assert.Equal(t, "GIFTAB12CD", coupon.Code)
	assert.True(t, fc.has(cache.KeyUserCoupon(userID.Hex())))
}

func TestGetCouponCachesAbsence(t *testing.T) {
	svc, repo, fc := newCouponFixture()
	userID := primitive.NewObjectID()

	coupon, svcErr := svc.GetCoupon(context.Background(), userID)
	require.Nil(t, svcErr)
	assert.Nil(t, coupon)

	// The nil result is itself cached, so a coupon inserted afterwards
	// stays invisible until the entry expires or is invalidated.
	assert.True(t, fc.has(cache.KeyUserCoupon(userID.Hex())))
	repo.coupons = append(repo.coupons, activeCoupon(userID, "GIFTAB12CD", 24*time.Hour))

	coupon, svcErr = svc.GetCoupon(context.Background(), userID)
	require.Nil(t, svcErr)
	assert.Nil(t, coupon)
}

func TestValidateCoupon(t *testing.T) {
	svc, repo, fc := newCouponFixture()
	userID := primitive.NewObjectID()
	repo.coupons = append(repo.coupons, activeCoupon(userID, "GIFTAB12CD", 24*time.Hour))

	resp, svcErr := svc.ValidateCoupon(context.Background(), userID, "GIFTAB12CD")
	require.Nil(t, svcErr)
	assert.Equal(t, "Coupon is valid", resp.Message)
	assert.Equal(t, "GIFTAB12CD", resp.Code)
	assert.Equal(t, 10.0, resp.DiscountPercentage)

	assert.True(t, fc.has(cache.KeyCouponByCode("GIFTAB12CD")))
	assert.True(t, fc.has(cache.KeyUserCoupon(userID.Hex())))
}

func TestValidateCouponUnknownCode(t *testing.T) {
	svc, _, _ := newCouponFixture()

	_, svcErr := svc.ValidateCoupon(context.Background(), primitive.NewObjectID(), "NOSUCHCODE")
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
	assert.Equal(t, "Coupon not found", svcErr.Message)
}

func TestValidateCouponOwnedByAnotherUser(t *testing.T) {
	svc, repo, _ := newCouponFixture()
	owner := primitive.NewObjectID()
	repo.coupons = append(repo.coupons, activeCoupon(owner, "GIFTAB12CD", 24*time.Hour))

	_, svcErr := svc.ValidateCoupon(context.Background(), primitive.NewObjectID(), "GIFTAB12CD")
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
	assert.Equal(t, "Coupon not found", svcErr.Message)
}

func TestValidateCouponOwnershipCheckedOnCacheHit(t *testing.T) {
	svc, repo, fc := newCouponFixture()
	owner := primitive.NewObjectID()
	coupon := activeCoupon(owner, "GIFTAB12CD", 24*time.Hour)
	repo.coupons = append(repo.coupons, coupon)
	fc.Set(context.Background(), cache.KeyCouponByCode("GIFTAB12CD"), coupon, time.Minute)

	_, svcErr := svc.ValidateCoupon(context.Background(), primitive.NewObjectID(), "GIFTAB12CD")
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestValidateCouponExpired(t *testing.T) {
	svc, repo, fc := newCouponFixture()
	userID := primitive.NewObjectID()
	coupon := activeCoupon(userID, "GIFTAB12CD", -time.Hour)
	repo.coupons = append(repo.coupons, coupon)

	_, svcErr := svc.ValidateCoupon(context.Background(), userID, "GIFTAB12CD")
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
	assert.Equal(t, "Coupon expired", svcErr.Message)

	// Expiration is persisted, not just reported.
	assert.False(t, coupon.IsActive)
	assert.Contains(t, fc.deletedKeys, cache.KeyCouponByCode("GIFTAB12CD"))
	assert.Contains(t, fc.deletedKeys, cache.KeyUserCoupon(userID.Hex()))
}

func TestValidateCouponExpirationCheckedOnCacheHit(t *testing.T) {
	svc, repo, fc := newCouponFixture()
	userID := primitive.NewObjectID()
	coupon := activeCoupon(userID, "GIFTAB12CD", -time.Hour)
	repo.coupons = append(repo.coupons, coupon)

	// A cached copy can outlive the coupon itself; the date check must not
	// be skipped just because the entry is fresh.
	fc.Set(context.Background(), cache.KeyCouponByCode("GIFTAB12CD"), coupon, time.Minute)

	_, svcErr := svc.ValidateCoupon(context.Background(), userID, "GIFTAB12CD")
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
	assert.Equal(t, "Coupon expired", svcErr.Message)

	assert.False(t, coupon.IsActive)
	assert.False(t, fc.has(cache.KeyCouponByCode("GIFTAB12CD")))
	assert.False(t, fc.has(cache.KeyUserCoupon(userID.Hex())))
}

func TestValidateCouponServedFromCache(t *testing.T) {
	svc, repo, fc := newCouponFixture()
	userID := primitive.NewObjectID()
	coupon := activeCoupon(userID, "GIFTAB12CD", 24*time.Hour)
	fc.Set(context.Background(), cache.KeyCouponByCode("GIFTAB12CD"), coupon, time.Minute)

	// Nothing in the repository: a hit on the code key short-circuits the
	// store read entirely.
	resp, svcErr := svc.ValidateCoupon(context.Background(), userID, "GIFTAB12CD")
	require.Nil(t, svcErr)
	assert.Equal(t, "GIFTAB12CD", resp.Code)
	assert.Empty(t, repo.coupons)
}
