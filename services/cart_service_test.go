package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lokeshbavandla/shophub-ecommerce-app/cache"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

type cartFixture struct {
	svc      services.CartService
	users    *mockUserRepo
	products *mockProductRepo
	cache    *fakeCache
	user     *models.User
}

func newCartFixture(t *testing.T, catalog ...models.Product) *cartFixture {
	t.Helper()

	users := newMockUserRepo()
	products := &mockProductRepo{products: catalog}
	fc := newFakeCache()

	user := &models.User{Name: "Asha", Email: "asha@example.com", Role: models.RoleCustomer}
	require.NoError(t, users.Insert(context.Background(), user))

	svc := services.NewCartService(users, products, fc, zap.NewNop())
	return &cartFixture{svc: svc, users: users, products: products, cache: fc, user: user}
}

func catalogProduct(name string, price float64) models.Product {
	return models.Product{ID: primitive.NewObjectID(), Name: name, Price: price, Category: "shoes"}
}

func TestAddToCart(t *testing.T) {
	shoe := catalogProduct("Shoes", 99.99)
	f := newCartFixture(t, shoe)

	items, svcErr := f.svc.AddToCart(context.Background(), f.user, shoe.ID.Hex())
	require.Nil(t, svcErr)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	// Adding the same product again increments rather than duplicating.
	items, svcErr = f.svc.AddToCart(context.Background(), f.user, shoe.ID.Hex())
	require.Nil(t, svcErr)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	stored, err := f.users.FindByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, items, stored.CartItems)
}

func TestAddToCartInvalidID(t *testing.T) {
	f := newCartFixture(t)

	_, svcErr := f.svc.AddToCart(context.Background(), f.user, "not-an-object-id")
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestAddToCartInvalidatesCartCache(t *testing.T) {
	shoe := catalogProduct("Shoes", 99.99)
	f := newCartFixture(t, shoe)

	key := cache.KeyUserCart(f.user.ID.Hex())
	f.cache.Set(context.Background(), key, []models.CartProduct{}, cache.TTLCart)

	_, svcErr := f.svc.AddToCart(context.Background(), f.user, shoe.ID.Hex())
	require.Nil(t, svcErr)
	assert.False(t, f.cache.has(key))
}

func TestUpdateQuantity(t *testing.T) {
	shoe := catalogProduct("Shoes", 99.99)
	f := newCartFixture(t, shoe)
	f.user.CartItems = []models.CartItem{{Product: shoe.ID, Quantity: 2}}

	items, svcErr := f.svc.UpdateQuantity(context.Background(), f.user, shoe.ID.Hex(), 5)
	require.Nil(t, svcErr)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	shoe := catalogProduct("Shoes", 99.99)
	sock := catalogProduct("Socks", 9.99)
	f := newCartFixture(t, shoe, sock)
	f.user.CartItems = []models.CartItem{
		{Product: shoe.ID, Quantity: 2},
		{Product: sock.ID, Quantity: 1},
	}

	items, svcErr := f.svc.UpdateQuantity(context.Background(), f.user, shoe.ID.Hex(), 0)
	require.Nil(t, svcErr)
	require.Len(t, items, 1)
	assert.Equal(t, sock.ID, items[0].Product)

	stored, err := f.users.FindByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	for _, item := range stored.CartItems {
		assert.NotEqual(t, 0, item.Quantity)
	}
}

func TestUpdateQuantityNegative(t *testing.T) {
	shoe := catalogProduct("Shoes", 99.99)
	f := newCartFixture(t, shoe)
	f.user.CartItems = []models.CartItem{{Product: shoe.ID, Quantity: 2}}

	_, svcErr := f.svc.UpdateQuantity(context.Background(), f.user, shoe.ID.Hex(), -1)
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestUpdateQuantityMissingProduct(t *testing.T) {
	f := newCartFixture(t)

	_, svcErr := f.svc.UpdateQuantity(context.Background(), f.user, primitive.NewObjectID().Hex(), 3)
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestRemoveFromCart(t *testing.T) {
	shoe := catalogProduct("Shoes", 99.99)
	sock := catalogProduct("Socks", 9.99)
	f := newCartFixture(t, shoe, sock)
	f.user.CartItems = []models.CartItem{
		{Product: shoe.ID, Quantity: 2},
		{Product: sock.ID, Quantity: 1},
	}

	items, svcErr := f.svc.RemoveFromCart(context.Background(), f.user, shoe.ID.Hex())
	require.Nil(t, svcErr)
	require.Len(t, items, 1)
	assert.Equal(t, sock.ID, items[0].Product)
}

func TestRemoveFromCartEmptyIDClearsCart(t *testing.T) {
	shoe := catalogProduct("Shoes", 99.99)
	f := newCartFixture(t, shoe)
	f.user.CartItems = []models.CartItem{{Product: shoe.ID, Quantity: 2}}

	items, svcErr := f.svc.RemoveFromCart(context.Background(), f.user, "")
	require.Nil(t, svcErr)
	assert.Empty(t, items)

	stored, err := f.users.FindByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CartItems)
}

func TestGetCartProducts(t *testing.T) {
	shoe := catalogProduct("Shoes", 99.99)
	sock := catalogProduct("Socks", 9.99)
	f := newCartFixture(t, shoe, sock)
	f.user.CartItems = []models.CartItem{
		{Product: shoe.ID, Quantity: 3},
		{Product: sock.ID, Quantity: 1},
	}

	cart, svcErr := f.svc.GetCartProducts(context.Background(), f.user)
	require.Nil(t, svcErr)
	require.Len(t, cart, 2)
	assert.Equal(t, "Shoes", cart[0].Name)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.Equal(t, 1, cart[1].Quantity)

	// Second read is served from cache without touching the catalog.
	again, svcErr := f.svc.GetCartProducts(context.Background(), f.user)
	require.Nil(t, svcErr)
	assert.Equal(t, cart, again)
	assert.Equal(t, 1, f.products.findByIDsCalls)
}

func TestGetCartProductsEmptyCart(t *testing.T) {
	f := newCartFixture(t)

	cart, svcErr := f.svc.GetCartProducts(context.Background(), f.user)
	require.Nil(t, svcErr)
	assert.Empty(t, cart)
}
