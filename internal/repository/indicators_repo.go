package repository

import (
	"context"

	"agsavn-data/internal/domain"
)

// IndicatorsRepository indicators table
type IndicatorsRepository interface {
	ListIndicators(ctx context.Context, filters IndicatorFilters) ([]*domain.Indicator, error)
	GetIndicator(ctx context.Context, indicatorID string) (*domain.Indicator, error)
	CreateIndicator(ctx context.Context, indicator *domain.Indicator) error
	UpdateIndicator(ctx context.Context, indicator *domain.Indicator) error
	DeleteIndicator(ctx context.Context, indicatorID string) error
}

// IndicatorFilters list filters; zero values are ignored.
type IndicatorFilters struct {
	CategoryID string
	AlertType  domain.AlertType
	Search     string // name or description, case-insensitive
}
