package domain

import "errors"

// Catalog failures. Callers tell them apart with errors.Is; the apperror
// package maps each of them to a fixed taxonomy kind.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSlugTaken        = errors.New("product with this slug already exists")
	ErrImageNotTracked  = errors.New("image URL is not attached to the product")
	ErrDuplicateImage   = errors.New("image URL appears more than once")
)
