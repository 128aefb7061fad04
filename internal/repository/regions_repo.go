package repository

import (
	"context"

	"agsavn-data/internal/domain"
)

// RegionsRepository regions table
type RegionsRepository interface {
	ListRegions(ctx context.Context, search string) ([]*domain.Region, error)
	GetRegion(ctx context.Context, regionID string) (*domain.Region, error)
	CreateRegion(ctx context.Context, region *domain.Region) error
	UpdateRegion(ctx context.Context, region *domain.Region) error
	DeleteRegion(ctx context.Context, regionID string) error
}
