package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lokeshbavandla/shophub-ecommerce-app/cache"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
)

// CartService mutates the authenticated user's persisted cart. Every
// mutation is read-modify-write against the user document followed by a
// synchronous invalidation of that user's cart cache entry. The cache is
// never updated in place, so a concurrent reader can at worst see a miss.
type CartService interface {
	GetCartProducts(ctx context.Context, user *models.User) ([]models.CartProduct, *ServiceError)
	AddToCart(ctx context.Context, user *models.User, productID string) ([]models.CartItem, *ServiceError)
	// RemoveFromCart removes one product, or the whole cart when productID
	// is empty.
	RemoveFromCart(ctx context.Context, user *models.User, productID string) ([]models.CartItem, *ServiceError)
	UpdateQuantity(ctx context.Context, user *models.User, productID string, quantity int) ([]models.CartItem, *ServiceError)
}

type cartService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	cache    cache.Cache
	logger   *zap.Logger
}

func NewCartService(users repository.UserRepository, products repository.ProductRepository, c cache.Cache, logger *zap.Logger) CartService {
	return &cartService{users: users, products: products, cache: c, logger: logger}
}

func (s *cartService) GetCartProducts(ctx context.Context, user *models.User) ([]models.CartProduct, *ServiceError) {
	userID := user.ID.Hex()
	key := cache.KeyUserCart(userID)

	var cached []models.CartProduct
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	ids := make([]primitive.ObjectID, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		ids = append(ids, item.Product)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to fetch cart products", zap.String("user_id", userID), zap.Error(err))
		return nil, serverError("Server error")
	}

	cartProducts := make([]models.CartProduct, 0, len(products))
	for _, product := range products {
		quantity := 1
		for _, item := range user.CartItems {
			if item.Product == product.ID {
				quantity = item.Quantity
				break
			}
		}
		cartProducts = append(cartProducts, models.CartProduct{Product: product, Quantity: quantity})
	}

	s.cache.Set(ctx, key, cartProducts, cache.TTLCart)
	return cartProducts, nil
}

func (s *cartService) AddToCart(ctx context.Context, user *models.User, productID string) ([]models.CartItem, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, badRequest("Invalid product id")
	}

	items := append([]models.CartItem{}, user.CartItems...)
	found := false
	for i := range items {
		if items[i].Product == oid {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, models.CartItem{Product: oid, Quantity: 1})
	}

	return s.saveCart(ctx, user, items)
}

func (s *cartService) RemoveFromCart(ctx context.Context, user *models.User, productID string) ([]models.CartItem, *ServiceError) {
	if productID == "" {
		return s.saveCart(ctx, user, []models.CartItem{})
	}

	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, badRequest("Invalid product id")
	}

	items := make([]models.CartItem, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		if item.Product != oid {
			items = append(items, item)
		}
	}

	return s.saveCart(ctx, user, items)
}

func (s *cartService) UpdateQuantity(ctx context.Context, user *models.User, productID string, quantity int) ([]models.CartItem, *ServiceError) {
	if quantity < 0 {
		return nil, badRequest("Invalid quantity")
	}

	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, badRequest("Invalid product id")
	}

	found := false
	items := make([]models.CartItem, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		if item.Product != oid {
			items = append(items, item)
			continue
		}
		found = true
		// Quantity zero means removal; a zero-quantity line never
		// survives a write.
		if quantity > 0 {
			item.Quantity = quantity
			items = append(items, item)
		}
	}

	if !found {
		return nil, notFound("Product not found")
	}

	return s.saveCart(ctx, user, items)
}

// saveCart persists the new cart and invalidates the cart cache before
// returning, bounding the staleness window to the duration of the write.
func (s *cartService) saveCart(ctx context.Context, user *models.User, items []models.CartItem) ([]models.CartItem, *ServiceError) {
	if err := s.users.UpdateCart(ctx, user.ID, items); err != nil {
		s.logger.Error("failed to save cart", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		return nil, serverError("Server error")
	}
	user.CartItems = items

	s.cache.Delete(ctx, cache.KeyUserCart(user.ID.Hex()))
	return items, nil
}
