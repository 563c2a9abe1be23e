package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/glowmart/storefront-backend/internal/models"
	"github.com/google/uuid"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// GetProductDetails is the narrow lookup the cart uses to resolve a line's
	// price and image.
	GetProductDetails(ctx context.Context, id uuid.UUID) (*models.ProductDetails, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	ListProducts(ctx context.Context, q models.ListProductsQuery) ([]*models.Product, int, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO products (id, category_id, name, description, price, stock, image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		product.ID, product.CategoryID, product.Name, product.Description,
		product.Price, product.Stock, product.ImageURL, product.Status).
		Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `
		SELECT p.id, p.category_id, p.name, p.description, p.price,
		       p.stock, p.image_url, p.status, p.created_at, p.updated_at,
		       c.id, c.name, c.description
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`

	var category models.Category

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(
		&product.ID, &product.CategoryID, &product.Name, &product.Description,
		&product.Price, &product.Stock, &product.ImageURL, &product.Status,
		&product.CreatedAt, &product.UpdatedAt,
		&category.ID, &category.Name, &category.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	product.Category = &category

	return product, nil
}

func (r *productRepository) GetProductDetails(ctx context.Context, id uuid.UUID) (*models.ProductDetails, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	details := &models.ProductDetails{}

	query := `SELECT price, image_url FROM products WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&details.Price, &details.ImageURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return details, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, stock = $5, image_url = $6, status = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		product.CategoryID, product.Name, product.Description, product.Price,
		product.Stock, product.ImageURL, product.Status, product.ID).
		Scan(&product.UpdatedAt)
}

// ListProducts supports the shop page: optional category filter, free-text
// search over name and description, and pagination.
func (r *productRepository) ListProducts(ctx context.Context, q models.ListProductsQuery) ([]*models.Product, int, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	where := `WHERE p.status = 'active'`
	args := []any{}

	if q.Category != "" {
		args = append(args, q.Category)
		where += fmt.Sprintf(" AND c.name = $%d", len(args))
	}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args))
	}

	var total int

	countQuery := `SELECT COUNT(*) FROM products p LEFT JOIN categories c ON p.category_id = c.id ` + where
	if err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	args = append(args, q.Size, (q.Page-1)*q.Size)
	query := fmt.Sprintf(`
		SELECT p.id, p.category_id, p.name, p.description, p.price,
		       p.stock, p.image_url, p.status, p.created_at, p.updated_at
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}

		err := rows.Scan(&product.ID, &product.CategoryID, &product.Name,
			&product.Description, &product.Price, &product.Stock,
			&product.ImageURL, &product.Status, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, product)
	}

	return products, total, rows.Err()
}

func (r *productRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(dbCtx, `SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	defer rows.Close()

	var categories []models.Category

	for rows.Next() {
		var category models.Category

		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}

		categories = append(categories, category)
	}

	return categories, rows.Err()
}
