package services

import (
	"context"
	"encoding/json"
	"log"

	"shop-backend/internal/cache"
	"shop-backend/internal/models"
	"shop-backend/internal/repositories"
)

// AnalyticsService serves dashboard aggregates with a short-lived Redis cache
// in front. Cache misses and cache outages both fall through to Postgres.
type AnalyticsService struct {
	repo *repositories.AnalyticsRepository
}

func NewAnalyticsService(repo *repositories.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

func (s *AnalyticsService) DashboardStats(ctx context.Context, storeID int) (*models.DashboardStats, error) {
	if data, ok := cache.GetCachedDashboardStats(ctx, storeID); ok {
		var stats models.DashboardStats
		if err := json.Unmarshal(data, &stats); err == nil {
			return &stats, nil
		}
		log.Printf("[Analytics] WARNING: discarding corrupt cached dashboard stats for store %d", storeID)
	}

	stats, err := s.repo.DashboardStats(ctx, storeID, LowStockThreshold)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		cache.CacheDashboardStats(ctx, storeID, data)
	}
	return stats, nil
}

func (s *AnalyticsService) SalesSeries(ctx context.Context, storeID, days int) ([]models.SalesPoint, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	if data, ok := cache.GetCachedSalesSeries(ctx, storeID, days); ok {
		var series []models.SalesPoint
		if err := json.Unmarshal(data, &series); err == nil {
			return series, nil
		}
	}

	series, err := s.repo.SalesSeries(ctx, storeID, days)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(series); err == nil {
		cache.CacheSalesSeries(ctx, storeID, days, data)
	}
	return series, nil
}
