package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/glowmart/storefront-backend/internal/config"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/lib/pq"
)

const queryTimeout = 5 * time.Second

// withQueryTimeout bounds each statement so a wedged connection cannot hold
// a request open past its deadline.
func withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// Repositories bundles everything backed by the Postgres pool.
type Repositories struct {
	DB        *sql.DB
	User      UserRepository
	Product   ProductRepository
	Order     OrderRepository
	Analytics AnalyticsRepository
}

func New(cfg *config.Config) (*Repositories, error) {
	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repositories{
		DB:        db,
		User:      NewUserRepo(db),
		Product:   NewProductRepo(db),
		Order:     NewOrderRepository(db),
		Analytics: NewAnalyticsRepo(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
