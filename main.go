package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lokeshbavandla/shophub-ecommerce-app/cache"
	"github.com/lokeshbavandla/shophub-ecommerce-app/config"
	"github.com/lokeshbavandla/shophub-ecommerce-app/controllers"
	"github.com/lokeshbavandla/shophub-ecommerce-app/database"
	"github.com/lokeshbavandla/shophub-ecommerce-app/logger"
	"github.com/lokeshbavandla/shophub-ecommerce-app/middleware"
	"github.com/lokeshbavandla/shophub-ecommerce-app/payment"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
	"github.com/lokeshbavandla/shophub-ecommerce-app/routes"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
	"github.com/lokeshbavandla/shophub-ecommerce-app/storage"
)

func main() {
	cfg := config.Load()

	log := logger.Initialize(cfg.Env)
	defer log.Sync()

	mongoClient, db, err := database.ConnectMongo(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.CloseMongo(mongoClient); err != nil {
			log.Error("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if redisClient == nil {
		// A malformed URL is a configuration error, not an outage.
		log.Fatal("invalid Redis URL", zap.Error(err))
	}
	if err != nil {
		// The cache layer degrades to miss when Redis is down, so a
		// failed ping is not fatal.
		log.Warn("Redis unavailable, running in degraded mode", zap.Error(err))
	}
	defer redisClient.Close()

	store := cache.NewRedisCache(redisClient, log)

	images, err := storage.NewS3Store(context.Background(), cfg.S3Bucket, cfg.AWSRegion)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	provider := payment.NewStripeProvider(cfg.StripeSecretKey)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	orderRepo, err := repository.NewOrderRepository(context.Background(), db)
	if err != nil {
		log.Fatal("failed to initialize order repository", zap.Error(err))
	}

	tokenSvc := services.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	authSvc := services.NewAuthService(userRepo, tokenSvc, store, log)
	productSvc := services.NewProductService(productRepo, store, images, log)
	cartSvc := services.NewCartService(userRepo, productRepo, store, log)
	couponSvc := services.NewCouponService(couponRepo, store, log)
	checkoutSvc := services.NewCheckoutService(couponRepo, orderRepo, userRepo, store, provider, cfg.ClientURL, log)
	analyticsSvc := services.NewAnalyticsService(userRepo, productRepo, orderRepo, store, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.ClientURL))
	router.Use(middleware.RateLimit())

	routes.Register(router, routes.Controllers{
		Auth:      controllers.NewAuthController(authSvc, cfg.Env == "production"),
		Products:  controllers.NewProductController(productSvc),
		Cart:      controllers.NewCartController(cartSvc),
		Coupons:   controllers.NewCouponController(couponSvc),
		Payments:  controllers.NewPaymentController(checkoutSvc),
		Analytics: controllers.NewAnalyticsController(analyticsSvc),
	}, tokenSvc, userRepo)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	log.Info("server shutdown complete")
}
