package repository

import (
	"context"
	"time"

	"agsavn-data/internal/domain"
)

// AlertsRepository alerts table
type AlertsRepository interface {
	ListAlerts(ctx context.Context, filters AlertFilters, page, size int) ([]*domain.AlertSummary, int, error)
	GetAlert(ctx context.Context, alertID string) (*domain.Alert, error)
	// GetAlertForUpdate locks the row until the surrounding transaction ends.
	GetAlertForUpdate(ctx context.Context, alertID string) (*domain.Alert, error)
	CreateAlert(ctx context.Context, alert *domain.Alert) error
	UpdateAlertStatus(ctx context.Context, alertID string, status domain.AlertStatus, handledBy string) (time.Time, error)
	// UpdateAlert is the unrestricted admin write of severity, status, handled_by and description.
	UpdateAlert(ctx context.Context, alert *domain.Alert) error

	CountAlerts(ctx context.Context, filters StatsFilters) (int, error)
	CountAlertsBy(ctx context.Context, dim StatsDimension, filters StatsFilters) (map[string]int, error)
}

// AlertFilters list filters; zero values are ignored.
type AlertFilters struct {
	Status      domain.AlertStatus
	Severity    domain.AlertSeverity
	IndicatorID string
	RegionID    string
	Search      string // indicator name, region name or description
	Ordering    string // created_at, updated_at, severity; "-" prefix for descending
}

// StatsFilters scope for alert aggregates.
type StatsFilters struct {
	Since      time.Time
	RegionID   string
	CategoryID string
}

// StatsDimension is a GROUP BY key for CountAlertsBy.
type StatsDimension string

const (
	DimStatus   StatsDimension = "status"
	DimSeverity StatsDimension = "severity"
	DimCategory StatsDimension = "category"
	DimRegion   StatsDimension = "region"
)

var statsDimensionColumn = map[StatsDimension]string{
	DimStatus:   "a.status",
	DimSeverity: "a.severity",
	DimCategory: "COALESCE(c.name, '')",
	DimRegion:   "r.name",
}

const severityRankSQL = `CASE a.severity WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END`

var alertOrdering = map[string]string{
	"created_at":  "a.created_at ASC",
	"-created_at": "a.created_at DESC",
	"updated_at":  "a.updated_at ASC",
	"-updated_at": "a.updated_at DESC",
	"severity":    severityRankSQL + " ASC, a.created_at DESC",
	"-severity":   severityRankSQL + " DESC, a.created_at DESC",
}
