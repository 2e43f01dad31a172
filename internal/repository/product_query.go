package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/pkg/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const productTable = "products p"

// sortColumns is the allow-list of ORDER BY targets
var sortColumns = map[domain.SortField]string{
	domain.SortByPrice:     "p.price",
	domain.SortByRating:    "p.rating",
	domain.SortByCreatedAt: "p.created_at",
	domain.SortByTitle:     "p.title",
	domain.SortByViewCount: "p.view_count",
}

// applyFilter narrows b by every filter that is set. is_active always
// applies and defaults to true.
func applyFilter(b *query.Builder, filter domain.ProductFilter) *query.Builder {
	isActive := true
	if filter.IsActive != nil {
		isActive = *filter.IsActive
	}
	b = b.Where(query.Eq("p.is_active", isActive))

	if filter.CategoryID != nil {
		b = b.Where(query.Eq("p.category_id", *filter.CategoryID))
	}
	if filter.MinPrice != nil {
		b = b.Where(query.Gte("p.price", *filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		b = b.Where(query.Lte("p.price", *filter.MaxPrice))
	}
	if filter.InStock != nil && *filter.InStock {
		b = b.Where(query.Eq("p.in_stock", true)).
			Where(query.Gt("p.stock_quantity", 0))
	}
	if filter.Brand != nil && *filter.Brand != "" {
		b = b.Where(query.EqFold("p.brand", *filter.Brand))
	}
	if filter.Search != nil && *filter.Search != "" {
		b = b.Where(query.ContainsFold(*filter.Search, "p.title", "p.description"))
	}
	if len(filter.Tags) > 0 {
		b = b.Where(query.Overlaps("p.tags", filter.Tags))
	}
	return b
}

func direction(d domain.SortDirection) query.Direction {
	if d == domain.SortAsc {
		return query.Asc
	}
	return query.Desc
}

// FindAll returns one page of the filtered listing and the size of the whole
// filtered set. Exactly one sort key is applied.
func (r *productRepository) FindAll(ctx context.Context, filter domain.ProductFilter, sort domain.SortOptions, page domain.Pagination) (*domain.ProductPage, error) {
	sort = sort.Normalize()
	page = page.Normalize()

	base := applyFilter(query.From(productTable).Select(productColumns...), filter)

	countSQL, countArgs := base.Count().Build()
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	listSQL, listArgs := base.
		OrderBy(sortColumns[sort.Field], direction(sort.Direction)).
		Limit(int64(page.Limit)).
		Offset(int64(page.Offset())).
		Build()

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}

	return domain.NewProductPage(products, total, page), nil
}

// FindByID retrieves a product by ID with its category, whether active or not
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.findOne(ctx, query.Eq("p.id", id))
}

// FindBySlug retrieves a product by slug with its category
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, query.Eq("p.slug", slug))
}

func (r *productRepository) findOne(ctx context.Context, cond query.Condition) (*domain.Product, error) {
	sql, args := query.From(productTable).
		Select(productColumns...).
		Select("c.id", "c.name", "c.slug", "c.description", "c.created_at").
		LeftJoin("categories c ON c.id = p.category_id").
		Where(cond).
		Build()

	product := &domain.Product{}
	var (
		categoryID          *uuid.UUID
		categoryName        *string
		categorySlug        *string
		categoryDescription *string
		categoryCreatedAt   *time.Time
	)
	targets := append(productScanTargets(product),
		&categoryID, &categoryName, &categorySlug, &categoryDescription, &categoryCreatedAt)

	if err := r.db.QueryRow(ctx, sql, args...).Scan(targets...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	if categoryID != nil {
		product.Category = &domain.Category{
			ID:          *categoryID,
			Name:        deref(categoryName),
			Slug:        deref(categorySlug),
			Description: deref(categoryDescription),
		}
		if categoryCreatedAt != nil {
			product.Category.CreatedAt = *categoryCreatedAt
		}
	}

	return product, nil
}

// Search matches term against title, description and brand among active,
// in-stock products, best rated and most viewed first
func (r *productRepository) Search(ctx context.Context, term string, limit int) ([]*domain.Product, error) {
	sql, args := query.From(productTable).
		Select(productColumns...).
		Where(query.Eq("p.is_active", true)).
		Where(query.Eq("p.in_stock", true)).
		Where(query.ContainsFold(term, "p.title", "p.description", "p.brand")).
		OrderBy("p.rating", query.Desc).
		OrderBy("p.view_count", query.Desc).
		Limit(int64(limit)).
		Build()

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
