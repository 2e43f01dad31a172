package service

import (
	"context"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/repository"
)

// CategoryService exposes the read-only category navigation
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
}

type categoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}
