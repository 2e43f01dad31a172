package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied when a product is created without a currency
const DefaultCurrency = "USD"

// Dimensions describes the physical size of a product
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// Product represents a product in the catalog
type Product struct {
	ID             uuid.UUID           `json:"id" db:"id"`
	Title          string              `json:"title" db:"title"`
	Slug           string              `json:"slug" db:"slug"`
	Description    string              `json:"description" db:"description"`
	Brand          *string             `json:"brand,omitempty" db:"brand"`
	Badge          *string             `json:"badge,omitempty" db:"badge"`
	Tags           []string            `json:"tags" db:"tags"`
	Price          decimal.Decimal     `json:"price" db:"price"`
	OriginalPrice  decimal.NullDecimal `json:"originalPrice" db:"original_price"`
	Currency       string              `json:"currency" db:"currency"`
	SKU            *string             `json:"sku,omitempty" db:"sku"`
	StockQuantity  int                 `json:"stockQuantity" db:"stock_quantity"`
	InStock        bool                `json:"inStock" db:"in_stock"`
	CategoryID     uuid.UUID           `json:"categoryId" db:"category_id"`
	Category       *Category           `json:"category,omitempty" db:"-"`
	Rating         float64             `json:"rating" db:"rating"`
	ReviewCount    int                 `json:"reviewCount" db:"review_count"`
	ViewCount      int64               `json:"viewCount" db:"view_count"`
	IsActive       bool                `json:"isActive" db:"is_active"`
	PublishedAt    *time.Time          `json:"publishedAt,omitempty" db:"published_at"`
	Images         []string            `json:"images" db:"images"`
	Specifications map[string]any      `json:"specifications" db:"specifications"`
	Variants       map[string]any      `json:"variants" db:"variants"`
	Dimensions     *Dimensions         `json:"dimensions,omitempty" db:"dimensions"`
	Weight         *float64            `json:"weight,omitempty" db:"weight"`
	WeightUnit     *string             `json:"weightUnit,omitempty" db:"weight_unit"`
	CreatedAt      time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time           `json:"updatedAt" db:"updated_at"`
}

// SetStock writes the quantity and keeps InStock in sync with it
func (p *Product) SetStock(quantity int) {
	p.StockQuantity = quantity
	p.InStock = quantity > 0
}

// ProductChanges is a partial product update. Only non-nil fields are
// written; slices and maps replace the stored value whole. Rating, review
// count and view count have dedicated operations and are not part of it.
type ProductChanges struct {
	Title          *string
	Slug           *string
	Description    *string
	Brand          *string
	Badge          *string
	Tags           []string
	Price          *decimal.Decimal
	OriginalPrice  *decimal.Decimal
	Currency       *string
	SKU            *string
	StockQuantity  *int
	CategoryID     *uuid.UUID
	IsActive       *bool
	Images         []string
	Specifications map[string]any
	Variants       map[string]any
	Dimensions     *Dimensions
	Weight         *float64
	WeightUnit     *string
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
