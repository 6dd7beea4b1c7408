package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/payment"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
)

// --- Fake cache ---

// fakeCache is an in-memory stand-in for the Redis-backed facade. It
// round-trips values through JSON so cached reads behave exactly like the
// real thing, including the cached-null coupon case.
type fakeCache struct {
	entries         map[string][]byte
	deletedKeys     []string
	deletedPatterns []string
	disabled        bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) bool {
	if f.disabled {
		return false
	}
	data, ok := f.entries[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false
	}
	return true
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) {
	if f.disabled {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	f.entries[key] = data
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		delete(f.entries, key)
		f.deletedKeys = append(f.deletedKeys, key)
	}
}

func (f *fakeCache) DeletePattern(_ context.Context, pattern string) {
	f.deletedPatterns = append(f.deletedPatterns, pattern)
	for key := range f.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(f.entries, key)
		}
	}
}

func (f *fakeCache) has(key string) bool {
	_, ok := f.entries[key]
	return ok
}

// --- Mock product repository ---

type mockProductRepo struct {
	products       []models.Product
	findAllCalls   int
	sampleCalls    int
	findByIDsCalls int
}

func (m *mockProductRepo) FindAll(_ context.Context) ([]models.Product, error) {
	m.findAllCalls++
	return append([]models.Product{}, m.products...), nil
}

func (m *mockProductRepo) FindFeatured(_ context.Context) ([]models.Product, error) {
	featured := []models.Product{}
	for _, p := range m.products {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

func (m *mockProductRepo) FindByCategory(_ context.Context, category string) ([]models.Product, error) {
	matched := []models.Product{}
	for _, p := range m.products {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (m *mockProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockProductRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	m.findByIDsCalls++
	matched := []models.Product{}
	for _, p := range m.products {
		for _, id := range ids {
			if p.ID == id {
				matched = append(matched, p)
				break
			}
		}
	}
	return matched, nil
}

func (m *mockProductRepo) Sample(_ context.Context, size int) ([]models.RecommendedProduct, error) {
	m.sampleCalls++
	sample := []models.RecommendedProduct{}
	for _, p := range m.products {
		if len(sample) == size {
			break
		}
		sample = append(sample, models.RecommendedProduct{
			ID: p.ID, Name: p.Name, Description: p.Description, Image: p.Image, Price: p.Price,
		})
	}
	return sample, nil
}

func (m *mockProductRepo) Insert(_ context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	m.products = append(m.products, *product)
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, id primitive.ObjectID, updates bson.M) (*models.Product, error) {
	for i := range m.products {
		if m.products[i].ID != id {
			continue
		}
		if featured, ok := updates["isFeatured"].(bool); ok {
			m.products[i].IsFeatured = featured
		}
		if name, ok := updates["name"].(string); ok {
			m.products[i].Name = name
		}
		p := m.products[i]
		return &p, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

// --- Mock user repository ---

type mockUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockUserRepo) Insert(_ context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	if user.CartItems == nil {
		user.CartItems = []models.CartItem{}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdateCart(_ context.Context, userID primitive.ObjectID, items []models.CartItem) error {
	u, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if items == nil {
		items = []models.CartItem{}
	}
	u.CartItems = items
	return nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

// --- Mock coupon repository ---

type mockCouponRepo struct {
	coupons     []*models.Coupon
	insertCalls int
	deleteCalls int
}

func (m *mockCouponRepo) FindActiveByUser(_ context.Context, userID primitive.ObjectID) (*models.Coupon, error) {
	for _, c := range m.coupons {
		if c.UserID == userID && c.IsActive {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCouponRepo) FindActiveByCodeAndUser(_ context.Context, code string, userID primitive.ObjectID) (*models.Coupon, error) {
	for _, c := range m.coupons {
		if c.Code == code && c.UserID == userID && c.IsActive {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCouponRepo) Deactivate(_ context.Context, id primitive.ObjectID) error {
	for _, c := range m.coupons {
		if c.ID == id {
			c.IsActive = false
			return nil
		}
	}
	return errors.New("coupon not found")
}

func (m *mockCouponRepo) DeactivateByCodeAndUser(_ context.Context, code string, userID primitive.ObjectID) error {
	for _, c := range m.coupons {
		if c.Code == code && c.UserID == userID {
			c.IsActive = false
			return nil
		}
	}
	return nil
}

func (m *mockCouponRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	m.deleteCalls++
	kept := m.coupons[:0]
	for _, c := range m.coupons {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	m.coupons = kept
	return nil
}

func (m *mockCouponRepo) Insert(_ context.Context, coupon *models.Coupon) error {
	m.insertCalls++
	coupon.ID = primitive.NewObjectID()
	m.coupons = append(m.coupons, coupon)
	return nil
}

func (m *mockCouponRepo) activeForUser(userID primitive.ObjectID) *models.Coupon {
	c, _ := m.FindActiveByUser(context.Background(), userID)
	return c
}

// --- Mock order repository ---

type mockOrderRepo struct {
	orders []*models.Order
}

func (m *mockOrderRepo) Insert(_ context.Context, order *models.Order) error {
	for _, existing := range m.orders {
		if existing.StripeSessionID == order.StripeSessionID {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	order.ID = primitive.NewObjectID()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderRepo) FindBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	for _, o := range m.orders {
		if o.StripeSessionID == sessionID {
			return o, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.orders)), nil
}

func (m *mockOrderRepo) Totals(_ context.Context) (repository.SalesTotals, error) {
	totals := repository.SalesTotals{}
	for _, o := range m.orders {
		totals.TotalSales++
		totals.TotalRevenue += o.TotalAmount
	}
	return totals, nil
}

func (m *mockOrderRepo) DailySales(_ context.Context, start, end time.Time) ([]models.DailySales, error) {
	grouped := map[string]*models.DailySales{}
	for _, o := range m.orders {
		if o.CreatedAt.Before(start) || o.CreatedAt.After(end) {
			continue
		}
		date := o.CreatedAt.Format("2006-01-02")
		if _, ok := grouped[date]; !ok {
			grouped[date] = &models.DailySales{Date: date}
		}
		grouped[date].Sales++
		grouped[date].Revenue += o.TotalAmount
	}

	result := []models.DailySales{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if g, ok := grouped[day.Format("2006-01-02")]; ok {
			result = append(result, *g)
		}
	}
	return result, nil
}

// --- Mock payment provider ---

type mockPaymentProvider struct {
	createdSessions []*payment.SessionRequest
	sessions        map[string]*payment.Session
}

func newMockPaymentProvider() *mockPaymentProvider {
	return &mockPaymentProvider{sessions: map[string]*payment.Session{}}
}

func (m *mockPaymentProvider) CreateSession(_ context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	m.createdSessions = append(m.createdSessions, req)

	var total int64
	for _, item := range req.LineItems {
		total += item.UnitAmount * item.Quantity
	}

	session := &payment.Session{
		ID:          "cs_test_" + primitive.NewObjectID().Hex(),
		AmountTotal: total,
		Metadata:    req.Metadata,
	}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *mockPaymentProvider) GetSession(_ context.Context, sessionID string) (*payment.Session, error) {
	if s, ok := m.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, errors.New("no such session")
}

// markPaid flips a created session to paid, simulating the provider-side
// payment completing.
func (m *mockPaymentProvider) markPaid(sessionID string) {
	if s, ok := m.sessions[sessionID]; ok {
		s.Paid = true
	}
}

// --- Mock image store ---

type mockImageStore struct {
	stored  map[string][]byte
	deleted []string
}

func newMockImageStore() *mockImageStore {
	return &mockImageStore{stored: map[string][]byte{}}
}

func (m *mockImageStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	m.stored[key] = body
	return "https://bucket.s3.ap-south-1.amazonaws.com/" + key, nil
}

func (m *mockImageStore) Delete(_ context.Context, publicURL string) error {
	m.deleted = append(m.deleted, publicURL)
	return nil
}
