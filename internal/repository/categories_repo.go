package repository

import (
	"context"

	"agsavn-data/internal/domain"
)

// CategoriesRepository categories table
type CategoriesRepository interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
	// EnsureDefaultCategories inserts any missing seed category; existing codes are left alone.
	EnsureDefaultCategories(ctx context.Context) (int, error)
}
