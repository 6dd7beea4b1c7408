package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lokeshbavandla/shophub-ecommerce-app/cache"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
	"github.com/lokeshbavandla/shophub-ecommerce-app/storage"
)

// recommendedSampleSize is how many products the recommendation endpoint
// samples. The sample is re-drawn only when its cache entry expires, so
// recommendations are sticky for the TTL window.
const recommendedSampleSize = 4

// ProductService covers the catalog read path and admin product mutations.
type ProductService interface {
	GetAllProducts(ctx context.Context) ([]models.Product, *ServiceError)
	GetFeaturedProducts(ctx context.Context) ([]models.Product, *ServiceError)
	GetRecommendedProducts(ctx context.Context) ([]models.RecommendedProduct, *ServiceError)
	GetProductsByCategory(ctx context.Context, category string) ([]models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id string) *ServiceError
	ToggleFeatured(ctx context.Context, id string) (bool, *ServiceError)
}

type productService struct {
	repo   repository.ProductRepository
	cache  cache.Cache
	images storage.ImageStore
	logger *zap.Logger
}

func NewProductService(repo repository.ProductRepository, c cache.Cache, images storage.ImageStore, logger *zap.Logger) ProductService {
	return &productService{repo: repo, cache: c, images: images, logger: logger}
}

func (s *productService) GetAllProducts(ctx context.Context) ([]models.Product, *ServiceError) {
	var products []models.Product
	if s.cache.Get(ctx, cache.KeyAllProducts(), &products) {
		return products, nil
	}

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("failed to fetch products", zap.Error(err))
		return nil, serverError("Server error")
	}

	s.cache.Set(ctx, cache.KeyAllProducts(), products, cache.TTLProducts)
	return products, nil
}

func (s *productService) GetFeaturedProducts(ctx context.Context) ([]models.Product, *ServiceError) {
	var products []models.Product
	if s.cache.Get(ctx, cache.KeyFeaturedProducts(), &products) {
		return products, nil
	}

	products, err := s.repo.FindFeatured(ctx)
	if err != nil {
		s.logger.Error("failed to fetch featured products", zap.Error(err))
		return nil, serverError("Server error")
	}

	// An empty featured list is never cached: caching it would suppress
	// newly featured products from appearing until the TTL expires.
	if len(products) == 0 {
		return nil, notFound("No featured products found")
	}

	s.cache.Set(ctx, cache.KeyFeaturedProducts(), products, cache.TTLFeaturedProducts)
	return products, nil
}

func (s *productService) GetRecommendedProducts(ctx context.Context) ([]models.RecommendedProduct, *ServiceError) {
	var products []models.RecommendedProduct
	if s.cache.Get(ctx, cache.KeyRecommendedProducts(), &products) {
		return products, nil
	}

	products, err := s.repo.Sample(ctx, recommendedSampleSize)
	if err != nil {
		s.logger.Error("failed to sample recommended products", zap.Error(err))
		return nil, serverError("Server error")
	}

	s.cache.Set(ctx, cache.KeyRecommendedProducts(), products, cache.TTLRecommendedProducts)
	return products, nil
}

func (s *productService) GetProductsByCategory(ctx context.Context, category string) ([]models.Product, *ServiceError) {
	key := cache.KeyProductsByCategory(category)

	var products []models.Product
	if s.cache.Get(ctx, key, &products) {
		return products, nil
	}

	products, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		s.logger.Error("failed to fetch products by category", zap.String("category", category), zap.Error(err))
		return nil, serverError("Server error")
	}

	s.cache.Set(ctx, key, products, cache.TTLCategoryProducts)
	return products, nil
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	imageURL := ""
	if req.Image != "" {
		url, err := s.uploadImage(ctx, req.Image)
		if err != nil {
			s.logger.Error("failed to upload product image", zap.Error(err))
			return nil, serverError("Server error")
		}
		imageURL = url
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       imageURL,
		Category:    req.Category,
	}
	if err := s.repo.Insert(ctx, product); err != nil {
		s.logger.Error("failed to create product", zap.String("name", req.Name), zap.Error(err))
		return nil, serverError("Server error")
	}

	s.invalidateProductCaches(ctx)
	s.cache.Delete(ctx, cache.KeyAnalytics())

	s.logger.Info("product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("name", product.Name),
		zap.String("category", product.Category),
	)
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, badRequest("Invalid product id")
	}

	existing, err := s.repo.FindByID(ctx, oid)
	if err == mongo.ErrNoDocuments {
		return nil, notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("failed to load product", zap.String("product_id", id), zap.Error(err))
		return nil, serverError("Server error")
	}

	imageURL := existing.Image
	if strings.HasPrefix(req.Image, "data:image") {
		// Old object removal is best-effort; the update proceeds even if
		// the delete fails.
		if existing.Image != "" {
			if err := s.images.Delete(ctx, existing.Image); err != nil {
				s.logger.Warn("failed to delete old product image",
					zap.String("product_id", id), zap.Error(err))
			}
		}

		url, err := s.uploadImage(ctx, req.Image)
		if err != nil {
			s.logger.Error("failed to upload product image", zap.String("product_id", id), zap.Error(err))
			return nil, serverError("Server error")
		}
		imageURL = url
	}

	updated, err := s.repo.Update(ctx, oid, bson.M{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"image":       imageURL,
		"category":    req.Category,
		"isFeatured":  req.IsFeatured,
	})
	if err != nil {
		s.logger.Error("failed to update product", zap.String("product_id", id), zap.Error(err))
		return nil, serverError("Server error")
	}

	s.invalidateProductCaches(ctx)
	s.cache.Delete(ctx, cache.KeyProductByID(id))

	s.logger.Info("product updated", zap.String("product_id", id), zap.String("name", updated.Name))
	return updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) *ServiceError {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return badRequest("Invalid product id")
	}

	product, err := s.repo.FindByID(ctx, oid)
	if err == mongo.ErrNoDocuments {
		return notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("failed to load product", zap.String("product_id", id), zap.Error(err))
		return serverError("Server error")
	}

	if product.Image != "" {
		if err := s.images.Delete(ctx, product.Image); err != nil {
			s.logger.Warn("failed to delete product image from object storage",
				zap.String("product_id", id), zap.Error(err))
		}
	}

	if err := s.repo.Delete(ctx, oid); err != nil {
		s.logger.Error("failed to delete product", zap.String("product_id", id), zap.Error(err))
		return serverError("Server error")
	}

	s.invalidateProductCaches(ctx)
	s.cache.Delete(ctx, cache.KeyProductByID(id), cache.KeyAnalytics())

	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *productService) ToggleFeatured(ctx context.Context, id string) (bool, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, badRequest("Invalid product id")
	}

	product, err := s.repo.FindByID(ctx, oid)
	if err == mongo.ErrNoDocuments {
		return false, notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("failed to load product", zap.String("product_id", id), zap.Error(err))
		return false, serverError("Server error")
	}

	updated, err := s.repo.Update(ctx, oid, bson.M{"isFeatured": !product.IsFeatured})
	if err != nil {
		s.logger.Error("failed to toggle featured status", zap.String("product_id", id), zap.Error(err))
		return false, serverError("Server error")
	}

	s.invalidateProductCaches(ctx)
	s.cache.Delete(ctx, cache.KeyProductByID(id))

	return updated.IsFeatured, nil
}

// invalidateProductCaches sweeps every product-derived cache entry after a
// mutation. Runs synchronously: the staleness window must close before the
// mutating response returns.
func (s *productService) invalidateProductCaches(ctx context.Context) {
	s.cache.Delete(ctx,
		cache.KeyAllProducts(),
		cache.KeyFeaturedProducts(),
		cache.KeyRecommendedProducts(),
	)
	s.cache.DeletePattern(ctx, cache.PatternCategoryProducts)
}

// uploadImage stores a base64 data-URL image and returns its public URL.
func (s *productService) uploadImage(ctx context.Context, dataURL string) (string, error) {
	data, ext, err := decodeImageDataURL(dataURL)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("products/%s.%s", uuid.New().String(), ext)
	return s.images.Put(ctx, key, data, "image/"+ext)
}

func decodeImageDataURL(dataURL string) ([]byte, string, error) {
	header, encoded, found := strings.Cut(dataURL, ",")
	if !found || !strings.HasPrefix(header, "data:image/") {
		return nil, "", fmt.Errorf("not an image data URL")
	}

	ext := strings.TrimPrefix(header, "data:image/")
	ext = strings.TrimSuffix(ext, ";base64")

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return data, ext, nil
}
