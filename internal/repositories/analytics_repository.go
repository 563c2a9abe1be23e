package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glowmart/storefront-backend/internal/models"
)

// AnalyticsRepository runs the aggregate queries behind the admin dashboard.
type AnalyticsRepository interface {
	SalesSummary(ctx context.Context, since time.Time) (*models.SalesSummary, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]models.TopProduct, error)
}

type analyticsRepository struct {
	DB *sql.DB
}

func NewAnalyticsRepo(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{DB: db}
}

func (r *analyticsRepository) SalesSummary(ctx context.Context, since time.Time) (*models.SalesSummary, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	summary := &models.SalesSummary{OrdersByStatus: make(map[string]int)}

	// Cancelled and soft deleted orders do not count towards revenue.
	revenueQuery := `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND status NOT IN ('cancelled', 'deleted')
	`

	err := r.DB.QueryRowContext(dbCtx, revenueQuery, since).Scan(&summary.TotalRevenue, &summary.TotalOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	statusQuery := `
		SELECT status, COUNT(*)
		FROM orders
		WHERE created_at >= $1
		GROUP BY status
	`

	rows, err := r.DB.QueryContext(dbCtx, statusQuery, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate order statuses: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var status string

		var count int

		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}

		summary.OrdersByStatus[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	customersQuery := `SELECT COUNT(*) FROM users WHERE created_at >= $1 AND is_admin = FALSE`
	if err := r.DB.QueryRowContext(dbCtx, customersQuery, since).Scan(&summary.NewCustomers); err != nil {
		return nil, fmt.Errorf("failed to count new customers: %w", err)
	}

	return summary, nil
}

func (r *analyticsRepository) TopProducts(ctx context.Context, since time.Time, limit int) ([]models.TopProduct, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT oi.product_id, p.name, SUM(oi.quantity), SUM(oi.quantity * oi.price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.created_at >= $1 AND o.status NOT IN ('cancelled', 'deleted')
		GROUP BY oi.product_id, p.name
		ORDER BY SUM(oi.quantity) DESC
		LIMIT $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}

	defer rows.Close()

	var products []models.TopProduct

	for rows.Next() {
		var product models.TopProduct

		if err := rows.Scan(&product.ProductID, &product.ProductName, &product.UnitsSold, &product.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}

		products = append(products, product)
	}

	return products, rows.Err()
}
