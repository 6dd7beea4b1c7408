package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lokeshbavandla/shophub-ecommerce-app/cache"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
)

const dateLayout = "2006-01-02"

// AnalyticsService computes store-wide aggregates with a longer-lived
// cache than the catalog reads.
type AnalyticsService interface {
	GetAnalyticsData(ctx context.Context) (*models.AnalyticsData, *ServiceError)
	// GetDailySalesData returns one entry per calendar day in
	// [start, end] inclusive, ascending, zero-filled for days without
	// orders.
	GetDailySalesData(ctx context.Context, start, end time.Time) ([]models.DailySales, *ServiceError)
}

type analyticsService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	cache    cache.Cache
	logger   *zap.Logger
}

func NewAnalyticsService(
	users repository.UserRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	c cache.Cache,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsService{users: users, products: products, orders: orders, cache: c, logger: logger}
}

func (s *analyticsService) GetAnalyticsData(ctx context.Context) (*models.AnalyticsData, *ServiceError) {
	var cached models.AnalyticsData
	if s.cache.Get(ctx, cache.KeyAnalytics(), &cached) {
		return &cached, nil
	}

	userCount, err := s.users.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count users", zap.Error(err))
		return nil, serverError("Server error")
	}

	productCount, err := s.products.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count products", zap.Error(err))
		return nil, serverError("Server error")
	}

	totals, err := s.orders.Totals(ctx)
	if err != nil {
		s.logger.Error("failed to aggregate order totals", zap.Error(err))
		return nil, serverError("Server error")
	}

	data := &models.AnalyticsData{
		Users:        userCount,
		Products:     productCount,
		TotalSales:   totals.TotalSales,
		TotalRevenue: totals.TotalRevenue,
	}

	s.cache.Set(ctx, cache.KeyAnalytics(), data, cache.TTLAnalytics)
	return data, nil
}

func (s *analyticsService) GetDailySalesData(ctx context.Context, start, end time.Time) ([]models.DailySales, *ServiceError) {
	key := cache.KeyDailySales(start.Format(dateLayout), end.Format(dateLayout))

	var cached []models.DailySales
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	grouped, err := s.orders.DailySales(ctx, start, end)
	if err != nil {
		s.logger.Error("failed to aggregate daily sales", zap.Error(err))
		return nil, serverError("Server error")
	}

	byDate := make(map[string]models.DailySales, len(grouped))
	for _, day := range grouped {
		byDate[day.Date] = day
	}

	// Left-join against every calendar day in the range so gaps appear
	// as explicit zero rows.
	result := []models.DailySales{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		if found, ok := byDate[date]; ok {
			result = append(result, found)
		} else {
			result = append(result, models.DailySales{Date: date})
		}
	}

	s.cache.Set(ctx, key, result, cache.TTLDailySales)
	return result, nil
}
