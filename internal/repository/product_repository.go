package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository defines the interface for product data access.
// Reads never mutate state; every write is a single statement.
type ProductRepository interface {
	FindAll(ctx context.Context, filter domain.ProductFilter, sort domain.SortOptions, page domain.Pagination) (*domain.ProductPage, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Search(ctx context.Context, term string, limit int) ([]*domain.Product, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uuid.UUID, changes domain.ProductChanges) (*domain.Product, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	HardDelete(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.Product, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) (*domain.Product, error)
	UpdateImages(ctx context.Context, id uuid.UUID, images []string) (*domain.Product, error)
}

type productRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepository{db: db}
}

var productColumns = []string{
	"p.id", "p.title", "p.slug", "p.description", "p.brand", "p.badge", "p.tags",
	"p.price", "p.original_price", "p.currency", "p.sku",
	"p.stock_quantity", "p.in_stock", "p.category_id",
	"p.rating", "p.review_count", "p.view_count",
	"p.is_active", "p.published_at",
	"p.images", "p.specifications", "p.variants", "p.dimensions", "p.weight", "p.weight_unit",
	"p.created_at", "p.updated_at",
}

var returningProduct = " RETURNING " + strings.Join(productColumns, ", ")

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func productScanTargets(p *domain.Product) []any {
	return []any{
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Brand, &p.Badge, &p.Tags,
		&p.Price, &p.OriginalPrice, &p.Currency, &p.SKU,
		&p.StockQuantity, &p.InStock, &p.CategoryID,
		&p.Rating, &p.ReviewCount, &p.ViewCount,
		&p.IsActive, &p.PublishedAt,
		&p.Images, &p.Specifications, &p.Variants, &p.Dimensions, &p.Weight, &p.WeightUnit,
		&p.CreatedAt, &p.UpdatedAt,
	}
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	if err := row.Scan(productScanTargets(product)...); err != nil {
		return nil, err
	}
	return product, nil
}

// withDefaults replaces nil collections so NOT NULL array and JSONB columns
// receive empty values instead of NULL
func withDefaults(p *domain.Product) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Specifications == nil {
		p.Specifications = map[string]any{}
	}
	if p.Variants == nil {
		p.Variants = map[string]any{}
	}
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	withDefaults(product)

	query := `
		INSERT INTO products (
			id, title, slug, description, brand, badge, tags,
			price, original_price, currency, sku,
			stock_quantity, in_stock, category_id,
			rating, review_count, view_count,
			is_active, published_at,
			images, specifications, variants, dimensions, weight, weight_unit,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Slug,
		product.Description,
		product.Brand,
		product.Badge,
		product.Tags,
		product.Price,
		product.OriginalPrice,
		product.Currency,
		product.SKU,
		product.StockQuantity,
		product.InStock,
		product.CategoryID,
		product.Rating,
		product.ReviewCount,
		product.ViewCount,
		product.IsActive,
		product.PublishedAt,
		product.Images,
		product.Specifications,
		product.Variants,
		product.Dimensions,
		product.Weight,
		product.WeightUnit,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update writes only the columns set in changes, in one statement, and
// returns the stored row. A changed quantity re-derives in_stock.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, changes domain.ProductChanges) (*domain.Product, error) {
	args := []any{id}
	var sets []string
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Title != nil {
		set("title", *changes.Title)
	}
	if changes.Slug != nil {
		set("slug", *changes.Slug)
	}
	if changes.Description != nil {
		set("description", *changes.Description)
	}
	if changes.Brand != nil {
		set("brand", *changes.Brand)
	}
	if changes.Badge != nil {
		set("badge", *changes.Badge)
	}
	if changes.Tags != nil {
		set("tags", changes.Tags)
	}
	if changes.Price != nil {
		set("price", *changes.Price)
	}
	if changes.OriginalPrice != nil {
		set("original_price", *changes.OriginalPrice)
	}
	if changes.Currency != nil {
		set("currency", *changes.Currency)
	}
	if changes.SKU != nil {
		set("sku", *changes.SKU)
	}
	if changes.StockQuantity != nil {
		set("stock_quantity", *changes.StockQuantity)
		sets = append(sets, fmt.Sprintf("in_stock = $%d > 0", len(args)))
	}
	if changes.CategoryID != nil {
		set("category_id", *changes.CategoryID)
	}
	if changes.IsActive != nil {
		set("is_active", *changes.IsActive)
	}
	if changes.Images != nil {
		set("images", changes.Images)
	}
	if changes.Specifications != nil {
		set("specifications", changes.Specifications)
	}
	if changes.Variants != nil {
		set("variants", changes.Variants)
	}
	if changes.Dimensions != nil {
		set("dimensions", changes.Dimensions)
	}
	if changes.Weight != nil {
		set("weight", *changes.Weight)
	}
	if changes.WeightUnit != nil {
		set("weight_unit", *changes.WeightUnit)
	}
	set("updated_at", time.Now())

	query := `
		UPDATE products AS p
		SET ` + strings.Join(sets, ", ") + `
		WHERE p.id = $1` + returningProduct

	product, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// SoftDelete marks the product inactive and reports whether a row matched
func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to soft delete product: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// HardDelete removes the row and reports whether one was removed
func (r *productRepository) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateStock sets the quantity and the derived availability flag in one
// statement
func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.Product, error) {
	query := `
		UPDATE products AS p
		SET stock_quantity = $2, in_stock = $2 > 0
		WHERE p.id = $1` + returningProduct

	product, err := scanProduct(r.db.QueryRow(ctx, query, id, quantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product stock: %w", err)
	}
	return product, nil
}

// IncrementViewCount adds one view without reading the current value
func (r *productRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE products SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to increment view count: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateRating overwrites the aggregate rating and review count
func (r *productRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) (*domain.Product, error) {
	query := `
		UPDATE products AS p
		SET rating = $2, review_count = $3
		WHERE p.id = $1` + returningProduct

	product, err := scanProduct(r.db.QueryRow(ctx, query, id, rating, reviewCount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product rating: %w", err)
	}
	return product, nil
}

// UpdateImages replaces the whole image sequence
func (r *productRepository) UpdateImages(ctx context.Context, id uuid.UUID, images []string) (*domain.Product, error) {
	if images == nil {
		images = []string{}
	}

	query := `
		UPDATE products AS p
		SET images = $2, updated_at = $3
		WHERE p.id = $1` + returningProduct

	product, err := scanProduct(r.db.QueryRow(ctx, query, id, images, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product images: %w", err)
	}
	return product, nil
}

// SlugExists reports whether any product other than excludeID, active or
// not, already uses slug
func (r *productRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var (
		exists bool
		err    error
	)
	if excludeID != nil {
		err = r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`,
			slug, *excludeID,
		).Scan(&exists)
	} else {
		err = r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`,
			slug,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	return exists, nil
}
