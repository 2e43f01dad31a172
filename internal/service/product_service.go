package service

import (
	"context"
	"fmt"
	"time"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductInput carries the fields of a new product. Availability and
// engagement counters are derived, never supplied.
type CreateProductInput struct {
	Title          string
	Slug           string
	Description    string
	Brand          *string
	Badge          *string
	Tags           []string
	Price          decimal.Decimal
	OriginalPrice  *decimal.Decimal
	Currency       string
	SKU            *string
	StockQuantity  int
	CategoryID     uuid.UUID
	IsActive       *bool
	Images         []string
	Specifications map[string]any
	Variants       map[string]any
	Dimensions     *domain.Dimensions
	Weight         *float64
	WeightUnit     *string
}

// UpdateProductInput is a partial update. Only the fields it sets reach
// the store, so concurrent stock and image updates are never written back
// with stale values.
type UpdateProductInput = domain.ProductChanges

// ProductService defines the catalog operations
type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter, sort domain.SortOptions, page domain.Pagination) (*domain.ProductPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Search(ctx context.Context, term string, limit int) ([]*domain.Product, error)

	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	HardDelete(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.Product, error)
	IncrementView(ctx context.Context, id uuid.UUID) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) (*domain.Product, error)
	AddImages(ctx context.Context, id uuid.UUID, urls []string) (*domain.Product, error)
	RemoveImage(ctx context.Context, id uuid.UUID, url string) (*domain.Product, error)
	ReorderImages(ctx context.Context, id uuid.UUID, urls []string) (*domain.Product, error)
}

type productService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	logger *zap.Logger,
) ProductService {
	return &productService{
		products:   products,
		categories: categories,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter, sort domain.SortOptions, page domain.Pagination) (*domain.ProductPage, error) {
	return s.products.FindAll(ctx, filter, sort.Normalize(), page.Normalize())
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.products.FindBySlug(ctx, slug)
}

func (s *productService) Search(ctx context.Context, term string, limit int) ([]*domain.Product, error) {
	return s.products.Search(ctx, term, limit)
}

// Create validates the category reference and slug uniqueness, then stores
// the product with derived availability
func (s *productService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	taken, err := s.products.SlugExists(ctx, input.Slug, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSlugTaken
	}

	now := s.now()
	product := &domain.Product{
		ID:             uuid.New(),
		Title:          input.Title,
		Slug:           input.Slug,
		Description:    input.Description,
		Brand:          input.Brand,
		Badge:          input.Badge,
		Tags:           input.Tags,
		Price:          input.Price,
		Currency:       input.Currency,
		SKU:            input.SKU,
		CategoryID:     input.CategoryID,
		IsActive:       true,
		PublishedAt:    &now,
		Images:         input.Images,
		Specifications: input.Specifications,
		Variants:       input.Variants,
		Dimensions:     input.Dimensions,
		Weight:         input.Weight,
		WeightUnit:     input.WeightUnit,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if product.Currency == "" {
		product.Currency = domain.DefaultCurrency
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = decimal.NewNullDecimal(*input.OriginalPrice)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.SetStock(input.StockQuantity)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
		zap.String("category_id", product.CategoryID.String()),
	)

	return product, nil
}

// Update applies a partial update to an existing product
func (s *productService) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	if input.Slug != nil {
		taken, err := s.products.SlugExists(ctx, *input.Slug, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrSlugTaken
		}
	}

	product, err := s.products.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.String("product_id", product.ID.String()))

	return product, nil
}

func (s *productService) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.products.SoftDelete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("Product deactivated", zap.String("product_id", id.String()))
	}
	return deleted, nil
}

func (s *productService) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.products.HardDelete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	}
	return deleted, nil
}

func (s *productService) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.Product, error) {
	product, err := s.products.UpdateStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product stock updated",
		zap.String("product_id", id.String()),
		zap.Int("stock_quantity", product.StockQuantity),
		zap.Bool("in_stock", product.InStock),
	)

	return product, nil
}

// IncrementView records one view. An unknown id is ErrProductNotFound.
func (s *productService) IncrementView(ctx context.Context, id uuid.UUID) error {
	ok, err := s.products.IncrementViewCount(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProductNotFound
	}
	return nil
}

func (s *productService) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) (*domain.Product, error) {
	product, err := s.products.UpdateRating(ctx, id, rating, reviewCount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product rating updated",
		zap.String("product_id", id.String()),
		zap.Float64("rating", rating),
		zap.Int("review_count", reviewCount),
	)

	return product, nil
}

// AddImages appends urls after the existing images
func (s *productService) AddImages(ctx context.Context, id uuid.UUID, urls []string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images := make([]string, 0, len(product.Images)+len(urls))
	images = append(images, product.Images...)
	images = append(images, urls...)

	return s.saveImages(ctx, id, images)
}

// RemoveImage drops every occurrence of url
func (s *productService) RemoveImage(ctx context.Context, id uuid.UUID, url string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images := make([]string, 0, len(product.Images))
	for _, image := range product.Images {
		if image != url {
			images = append(images, image)
		}
	}

	return s.saveImages(ctx, id, images)
}

// ReorderImages replaces the image sequence with urls. Every url must already
// be attached and may appear once; otherwise nothing is written.
func (s *productService) ReorderImages(ctx context.Context, id uuid.UUID, urls []string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkReorder(product.Images, urls); err != nil {
		return nil, err
	}

	return s.saveImages(ctx, id, urls)
}

func checkReorder(current, proposed []string) error {
	tracked := make(map[string]struct{}, len(current))
	for _, image := range current {
		tracked[image] = struct{}{}
	}

	seen := make(map[string]struct{}, len(proposed))
	for _, image := range proposed {
		if _, ok := tracked[image]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrImageNotTracked, image)
		}
		if _, dup := seen[image]; dup {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateImage, image)
		}
		seen[image] = struct{}{}
	}
	return nil
}

func (s *productService) saveImages(ctx context.Context, id uuid.UUID, images []string) (*domain.Product, error) {
	product, err := s.products.UpdateImages(ctx, id, images)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product images updated",
		zap.String("product_id", id.String()),
		zap.Int("image_count", len(product.Images)),
	)

	return product, nil
}

func (s *productService) ensureCategory(ctx context.Context, id uuid.UUID) error {
	exists, err := s.categories.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrCategoryNotFound
	}
	return nil
}
