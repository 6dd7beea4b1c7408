package cache

import (
	"fmt"
	"time"
)

// TTLs per entity kind, chosen by data volatility. Coupon TTL is shorter
// than coupon validity (30 minutes vs 30 days), so expiration is always
// re-checked at read time and never delegated to the cache.
const (
	TTLProducts            = time.Hour
	TTLFeaturedProducts    = 30 * time.Minute
	TTLRecommendedProducts = 30 * time.Minute
	TTLCategoryProducts    = time.Hour
	TTLCart                = 30 * time.Minute
	TTLCoupon              = 30 * time.Minute
	TTLUserProfile         = 30 * time.Minute
	TTLAnalytics           = 15 * time.Minute
	TTLDailySales          = 30 * time.Minute
	TTLRefreshToken        = 7 * 24 * time.Hour
)

// Key builders. Each entity kind owns a distinct prefix so keys cannot
// collide across kinds, and prefixes double as glob patterns for bulk
// invalidation. Identical parameters always produce identical keys.

func KeyAllProducts() string         { return "products:all" }
func KeyFeaturedProducts() string    { return "products:featured" }
func KeyRecommendedProducts() string { return "products:recommended" }

func KeyProductByID(id string) string {
	return fmt.Sprintf("products:%s", id)
}

func KeyProductsByCategory(category string) string {
	return fmt.Sprintf("products:category:%s", category)
}

// PatternCategoryProducts matches every category listing. Category
// membership of a mutated product is not tracked per key, so product
// mutations sweep all category listings at once.
const PatternCategoryProducts = "products:category:*"

func KeyUserProfile(userID string) string {
	return fmt.Sprintf("user:%s:profile", userID)
}

func KeyUserCart(userID string) string {
	return fmt.Sprintf("user:%s:cart", userID)
}

func KeyUserCoupon(userID string) string {
	return fmt.Sprintf("coupon:user:%s", userID)
}

func KeyCouponByCode(code string) string {
	return fmt.Sprintf("coupon:code:%s", code)
}

func KeyAnalytics() string { return "analytics:data" }

func KeyDailySales(startDate, endDate string) string {
	return fmt.Sprintf("analytics:daily:%s:%s", startDate, endDate)
}

const PatternDailySales = "analytics:daily:*"

func KeyRefreshToken(userID string) string {
	return fmt.Sprintf("refresh_token:%s", userID)
}
