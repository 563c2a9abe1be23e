package service

import (
	"context"
	"time"

	"github.com/glowmart/storefront-backend/internal/errors"
	"github.com/glowmart/storefront-backend/internal/models"
	repository "github.com/glowmart/storefront-backend/internal/repositories"
)

const (
	defaultAnalyticsWindow = 30 * 24 * time.Hour
	maxTopProducts         = 20
)

type AnalyticsService interface {
	SalesSummary(ctx context.Context, days int) (*models.SalesSummary, error)
	TopProducts(ctx context.Context, days, limit int) ([]models.TopProduct, error)
}

type analyticsService struct {
	repo repository.AnalyticsRepository
}

func NewAnalyticsService(repo repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{repo: repo}
}

func windowStart(days int) time.Time {
	if days < 1 {
		return time.Now().Add(-defaultAnalyticsWindow)
	}

	return time.Now().AddDate(0, 0, -days)
}

func (s *analyticsService) SalesSummary(ctx context.Context, days int) (*models.SalesSummary, error) {
	summary, err := s.repo.SalesSummary(ctx, windowStart(days))
	if err != nil {
		return nil, errors.DatabaseError("Failed to compute sales summary").WithError(err)
	}

	return summary, nil
}

func (s *analyticsService) TopProducts(ctx context.Context, days, limit int) ([]models.TopProduct, error) {
	if limit < 1 || limit > maxTopProducts {
		limit = 5
	}

	products, err := s.repo.TopProducts(ctx, windowStart(days), limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to compute top products").WithError(err)
	}

	return products, nil
}
