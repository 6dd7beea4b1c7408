package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/lokeshbavandla/shophub-ecommerce-app/controllers"
	"github.com/lokeshbavandla/shophub-ecommerce-app/middleware"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

// Controllers bundles everything the route table needs.
type Controllers struct {
	Auth      *controllers.AuthController
	Products  *controllers.ProductController
	Cart      *controllers.CartController
	Coupons   *controllers.CouponController
	Payments  *controllers.PaymentController
	Analytics *controllers.AnalyticsController
}

// Register wires the /api route table. Cart, coupon, checkout and
// analytics endpoints require an authenticated user; product mutations and
// analytics additionally require the admin role.
func Register(router *gin.Engine, c Controllers, tokens *services.TokenService, users repository.UserRepository) {
	protect := middleware.ProtectRoute(tokens, users)
	admin := middleware.AdminRoute()

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", c.Auth.Signup)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/refresh-token", c.Auth.RefreshToken)
		auth.GET("/profile", protect, c.Auth.GetProfile)
	}

	products := api.Group("/products")
	{
		products.GET("", protect, admin, c.Products.GetAllProducts)
		products.GET("/featured", c.Products.GetFeaturedProducts)
		products.GET("/recommendations", c.Products.GetRecommendedProducts)
		products.GET("/category/:category", c.Products.GetProductsByCategory)
		products.POST("", protect, admin, c.Products.CreateProduct)
		products.PUT("/:id", protect, admin, c.Products.UpdateProduct)
		products.DELETE("/:id", protect, admin, c.Products.DeleteProduct)
		products.PATCH("/:id", protect, admin, c.Products.ToggleFeaturedProduct)
	}

	cart := api.Group("/cart", protect)
	{
		cart.GET("", c.Cart.GetCartProducts)
		cart.POST("", c.Cart.AddToCart)
		cart.DELETE("", c.Cart.RemoveAllFromCart)
		cart.PUT("/:id", c.Cart.UpdateQuantity)
	}

	coupons := api.Group("/coupons", protect)
	{
		coupons.GET("", c.Coupons.GetCoupon)
		coupons.POST("/validate", c.Coupons.ValidateCoupon)
	}

	payments := api.Group("/payments", protect)
	{
		payments.POST("/create-checkout-session", c.Payments.CreateCheckoutSession)
		payments.POST("/checkout-success", c.Payments.CheckoutSuccess)
	}

	api.GET("/analytics", protect, admin, c.Analytics.GetAnalytics)
}
