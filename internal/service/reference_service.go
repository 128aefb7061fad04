package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/repository"
)

// ReferenceService regions and categories.
type ReferenceService interface {
	ListRegions(ctx context.Context, search string) ([]*domain.Region, error)
	GetRegion(ctx context.Context, regionID string) (*domain.Region, error)
	CreateRegion(ctx context.Context, role string, region domain.Region) (*domain.Region, error)
	UpdateRegion(ctx context.Context, role string, region domain.Region) (*domain.Region, error)
	DeleteRegion(ctx context.Context, role, regionID string) error

	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*domain.Category, error)
	CreateCategory(ctx context.Context, role string, category domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, role string, category domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, role, categoryID string) error
	SeedCategories(ctx context.Context) error
}

type referenceService struct {
	regions    repository.RegionsRepository
	categories repository.CategoriesRepository
	logger     *zap.Logger
}

func NewReferenceService(regions repository.RegionsRepository, categories repository.CategoriesRepository, logger *zap.Logger) ReferenceService {
	return &referenceService{regions: regions, categories: categories, logger: logger}
}

func validateRegion(r *domain.Region) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.TrimSpace(r.Code)
	if r.Name == "" {
		return domain.Validationf("name is required")
	}
	if r.Code == "" {
		return domain.Validationf("code is required")
	}
	return nil
}

func (s *referenceService) ListRegions(ctx context.Context, search string) ([]*domain.Region, error) {
	return s.regions.ListRegions(ctx, search)
}

func (s *referenceService) GetRegion(ctx context.Context, regionID string) (*domain.Region, error) {
	return s.regions.GetRegion(ctx, regionID)
}

func (s *referenceService) CreateRegion(ctx context.Context, role string, r domain.Region) (*domain.Region, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	r.RegionID = ""
	if err := validateRegion(&r); err != nil {
		return nil, err
	}
	if err := s.regions.CreateRegion(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *referenceService) UpdateRegion(ctx context.Context, role string, r domain.Region) (*domain.Region, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	if err := validateRegion(&r); err != nil {
		return nil, err
	}
	if err := s.regions.UpdateRegion(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *referenceService) DeleteRegion(ctx context.Context, role, regionID string) error {
	if err := requireAdmin(role); err != nil {
		return err
	}
	return s.regions.DeleteRegion(ctx, regionID)
}

func validateCategory(c *domain.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.Validationf("name is required")
	}
	if !c.Code.Valid() {
		return domain.Validationf("invalid category code %q", c.Code)
	}
	return nil
}

func (s *referenceService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

func (s *referenceService) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.categories.GetCategory(ctx, categoryID)
}

func (s *referenceService) CreateCategory(ctx context.Context, role string, c domain.Category) (*domain.Category, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	c.CategoryID = ""
	if err := validateCategory(&c); err != nil {
		return nil, err
	}
	if err := s.categories.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *referenceService) UpdateCategory(ctx context.Context, role string, c domain.Category) (*domain.Category, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	if err := validateCategory(&c); err != nil {
		return nil, err
	}
	if err := s.categories.UpdateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *referenceService) DeleteCategory(ctx context.Context, role, categoryID string) error {
	if err := requireAdmin(role); err != nil {
		return err
	}
	return s.categories.DeleteCategory(ctx, categoryID)
}

func (s *referenceService) SeedCategories(ctx context.Context) error {
	n, err := s.categories.EnsureDefaultCategories(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("Seeded default categories", zap.Int("inserted", n))
	}
	return nil
}
