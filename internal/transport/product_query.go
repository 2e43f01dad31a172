package transport

import (
	"net/url"
	"strconv"
	"strings"

	"storefront-catalog/internal/apperror"
	"storefront-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// listParams is a product listing request parsed from the query string
type listParams struct {
	Filter     domain.ProductFilter
	Sort       domain.SortOptions
	Pagination domain.Pagination
}

// queryParser collects one detail per malformed parameter so a request
// reports all of them at once
type queryParser struct {
	values url.Values
	errs   []apperror.FieldError
}

func (p *queryParser) fail(field, message, code string) {
	p.errs = append(p.errs, apperror.FieldError{Field: field, Message: message, Code: code})
}

func (p *queryParser) str(name string) *string {
	v := strings.TrimSpace(p.values.Get(name))
	if v == "" {
		return nil
	}
	return &v
}

func (p *queryParser) integer(name string, fallback int) int {
	v := p.str(name)
	if v == nil {
		return fallback
	}
	n, err := strconv.Atoi(*v)
	if err != nil {
		p.fail(name, "Must be an integer", "integer")
		return fallback
	}
	return n
}

func (p *queryParser) decimal(name string) *decimal.Decimal {
	v := p.str(name)
	if v == nil {
		return nil
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		p.fail(name, "Must be a number", "number")
		return nil
	}
	if d.IsNegative() {
		p.fail(name, "Must be greater than or equal to 0", "gte")
		return nil
	}
	return &d
}

func (p *queryParser) uuid(name string) *uuid.UUID {
	v := p.str(name)
	if v == nil {
		return nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		p.fail(name, "Invalid UUID", "uuid")
		return nil
	}
	return &id
}

func (p *queryParser) list(name string) []string {
	v := p.str(name)
	if v == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(*v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p *queryParser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return apperror.NewValidation("Invalid query parameters", p.errs)
}

// parseListParams turns the listing query string into filter, sort and
// pagination. isActive is true unless explicitly "false"; inStock applies
// only when "true". Page and limit are clamped, never rejected for range.
func parseListParams(values url.Values) (listParams, error) {
	p := &queryParser{values: values}

	isActive := true
	if v := p.str("isActive"); v != nil && strings.EqualFold(*v, "false") {
		isActive = false
	}

	var inStock *bool
	if v := p.str("inStock"); v != nil && strings.EqualFold(*v, "true") {
		t := true
		inStock = &t
	}

	params := listParams{
		Filter: domain.ProductFilter{
			CategoryID: p.uuid("categoryId"),
			MinPrice:   p.decimal("minPrice"),
			MaxPrice:   p.decimal("maxPrice"),
			InStock:    inStock,
			IsActive:   &isActive,
			Brand:      p.str("brand"),
			Search:     p.str("search"),
			Tags:       p.list("tags"),
		},
		Sort: domain.SortOptions{
			Field:     domain.SortByCreatedAt,
			Direction: domain.SortDesc,
		},
		Pagination: domain.Pagination{
			Page:  p.integer("page", domain.DefaultPage),
			Limit: p.integer("limit", domain.DefaultLimit),
		}.Normalize(),
	}

	if v := p.str("sortBy"); v != nil {
		field := domain.SortField(*v)
		if domain.ValidSortField(field) {
			params.Sort.Field = field
		} else {
			p.fail("sortBy", "Must be one of: price, rating, createdAt, title, viewCount", "oneof")
		}
	}
	if v := p.str("sortOrder"); v != nil {
		switch dir := domain.SortDirection(strings.ToUpper(*v)); dir {
		case domain.SortAsc, domain.SortDesc:
			params.Sort.Direction = dir
		default:
			p.fail("sortOrder", "Must be one of: asc, desc", "oneof")
		}
	}

	if f := params.Filter; f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		p.fail("minPrice", "Must not exceed maxPrice", "ltefield")
	}

	if err := p.err(); err != nil {
		return listParams{}, err
	}
	return params, nil
}

// parseSearchParams reads the search term and clamps the limit to
// [1, maxLimit]
func parseSearchParams(values url.Values, defaultLimit, maxLimit int) (string, int, error) {
	p := &queryParser{values: values}

	term := p.str("q")
	if term == nil {
		p.fail("q", "This field is required", "required")
	}
	limit := p.integer("limit", defaultLimit)

	if err := p.err(); err != nil {
		return "", 0, err
	}

	switch {
	case limit < 1:
		limit = 1
	case limit > maxLimit:
		limit = maxLimit
	}
	return *term, limit, nil
}
