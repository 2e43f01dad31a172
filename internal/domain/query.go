package domain

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SortField is a product attribute listings may be ordered by
type SortField string

const (
	SortByPrice     SortField = "price"
	SortByRating    SortField = "rating"
	SortByCreatedAt SortField = "createdAt"
	SortByTitle     SortField = "title"
	SortByViewCount SortField = "viewCount"
)

// SortDirection represents the sort direction
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// ValidSortField reports whether f is one of the sortable attributes
func ValidSortField(f SortField) bool {
	switch f {
	case SortByPrice, SortByRating, SortByCreatedAt, SortByTitle, SortByViewCount:
		return true
	}
	return false
}

// ProductFilter narrows a product listing. Nil fields are not applied,
// except IsActive which defaults to true.
type ProductFilter struct {
	CategoryID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    *bool
	IsActive   *bool
	Brand      *string
	Search     *string
	Tags       []string
}

// SortOptions selects the single ordering key of a listing
type SortOptions struct {
	Field     SortField
	Direction SortDirection
}

// Normalize replaces unknown values with createdAt DESC
func (s SortOptions) Normalize() SortOptions {
	if !ValidSortField(s.Field) {
		s.Field = SortByCreatedAt
	}
	if s.Direction != SortAsc && s.Direction != SortDesc {
		s.Direction = SortDesc
	}
	return s
}

// Pagination is a 1-based page window
type Pagination struct {
	Page  int
	Limit int
}

// Normalize clamps the limit to [1, MaxLimit] and the page to
// [1, MaxPage(limit)], so Offset never overflows
func (p Pagination) Normalize() Pagination {
	switch {
	case p.Limit == 0:
		p.Limit = DefaultLimit
	case p.Limit < 1:
		p.Limit = 1
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if maxPage := MaxPage(p.Limit); p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// MaxPage bounds the page so that its offset fits in an int
func MaxPage(limit int) int {
	return math.MaxInt / limit
}

// Offset is the number of rows skipped before the page starts
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ProductPage is one page of a filtered listing. Total counts the whole
// filtered set.
type ProductPage struct {
	Items      []*Product `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

// NewProductPage computes TotalPages as ceil(total/limit)
func NewProductPage(items []*Product, total int, p Pagination) *ProductPage {
	if items == nil {
		items = []*Product{}
	}
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return &ProductPage{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}
