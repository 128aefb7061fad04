package repository

import (
	"context"
	"time"

	"agsavn-data/internal/domain"
)

// MeasurementsRepository measurements table
type MeasurementsRepository interface {
	ListMeasurements(ctx context.Context, filters MeasurementFilters, page, size int) ([]*domain.Measurement, int, error)
	GetMeasurement(ctx context.Context, measurementID string) (*domain.Measurement, error)
	// CreateMeasurement returns ErrValidation on a duplicate (indicator, region, date).
	CreateMeasurement(ctx context.Context, m *domain.Measurement) error
	// UpdateMeasurement rewrites value, source and date. Thresholds are not re-evaluated.
	UpdateMeasurement(ctx context.Context, m *domain.Measurement) error
	DeleteMeasurement(ctx context.Context, measurementID string) error
}

// MeasurementFilters list filters; zero values are ignored.
type MeasurementFilters struct {
	IndicatorID string
	RegionID    string
	DateFrom    *time.Time
	DateTo      *time.Time
	Search      string // indicator name, region name or source
	Ordering    string // date, value, created_at; "-" prefix for descending
}

var measurementOrdering = map[string]string{
	"date":        "m.date ASC, m.created_at ASC",
	"-date":       "m.date DESC, m.created_at DESC",
	"value":       "m.value ASC",
	"-value":      "m.value DESC",
	"created_at":  "m.created_at ASC",
	"-created_at": "m.created_at DESC",
}
