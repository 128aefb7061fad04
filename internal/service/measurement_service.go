package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/evaluator"
	"agsavn-data/internal/metrics"
	"agsavn-data/internal/models"
	"agsavn-data/internal/repository"
)

// MeasurementService stores measurements and runs threshold evaluation on insert.
type MeasurementService interface {
	CreateMeasurement(ctx context.Context, req CreateMeasurementRequest) (*CreateMeasurementResponse, error)
	ListMeasurements(ctx context.Context, req ListMeasurementsRequest) (*ListMeasurementsResponse, error)
	GetMeasurement(ctx context.Context, measurementID string) (*domain.Measurement, error)
	UpdateMeasurement(ctx context.Context, req UpdateMeasurementRequest) (*domain.Measurement, error)
	DeleteMeasurement(ctx context.Context, req DeleteMeasurementRequest) error
}

type measurementService struct {
	db       *sql.DB
	notifier AlertNotifier
	stats    StatsService
	logger   *zap.Logger
}

// NewMeasurementService stats may be nil; notifier nil means NopNotifier.
func NewMeasurementService(db *sql.DB, notifier AlertNotifier, stats StatsService, logger *zap.Logger) MeasurementService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &measurementService{db: db, notifier: notifier, stats: stats, logger: logger}
}

// ============================================
// Request/Response DTOs
// ============================================

// Ingestion channels, used as the metrics "source" label.
const (
	ChannelHTTP = "http"
	ChannelMQTT = "mqtt"
)

type CreateMeasurementRequest struct {
	CurrentUserID string
	Channel       string
	IndicatorID   string
	RegionID      string
	Value         float64
	Date          time.Time
	Source        *string
}

type CreateMeasurementResponse struct {
	Measurement *domain.Measurement
	Alert       *domain.Alert // nil when no threshold was breached
}

type ListMeasurementsRequest struct {
	Filters repository.MeasurementFilters
	Page    int
	Size    int
}

type ListMeasurementsResponse struct {
	Items      []*domain.Measurement
	Pagination models.BackendPagination
}

// UpdateMeasurementRequest is admin-only; nil fields keep their value.
type UpdateMeasurementRequest struct {
	MeasurementID   string
	CurrentUserID   string
	CurrentUserRole string
	Value           *float64
	Date            *time.Time
	Source          *string
}

type DeleteMeasurementRequest struct {
	MeasurementID   string
	CurrentUserID   string
	CurrentUserRole string
}

// ============================================
// Operations
// ============================================

func (s *measurementService) validateCreate(req CreateMeasurementRequest) error {
	if req.IndicatorID == "" {
		return domain.Validationf("indicator_id is required")
	}
	if req.RegionID == "" {
		return domain.Validationf("region_id is required")
	}
	if req.Date.IsZero() {
		return domain.Validationf("date is required")
	}
	if math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		return domain.Validationf("value must be a finite number")
	}
	return nil
}

// CreateMeasurement inserts the measurement and evaluates it in one
// transaction. An evaluator failure rolls the measurement back.
func (s *measurementService) CreateMeasurement(ctx context.Context, req CreateMeasurementRequest) (*CreateMeasurementResponse, error) {
	channel := req.Channel
	if channel == "" {
		channel = ChannelHTTP
	}
	if err := s.validateCreate(req); err != nil {
		metrics.MeasurementsIngestedTotal.WithLabelValues(channel, "invalid").Inc()
		return nil, err
	}

	m := &domain.Measurement{
		IndicatorID: req.IndicatorID,
		RegionID:    req.RegionID,
		Value:       req.Value,
		Source:      req.Source,
		Date:        dateOnly(req.Date),
	}
	var alert *domain.Alert

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		ind, err := repository.NewPostgresIndicatorsRepository(tx).GetIndicator(ctx, req.IndicatorID)
		if err != nil {
			return referenceError(err, "indicator", req.IndicatorID)
		}
		reg, err := repository.NewPostgresRegionsRepository(tx).GetRegion(ctx, req.RegionID)
		if err != nil {
			return referenceError(err, "region", req.RegionID)
		}
		if err := repository.NewPostgresMeasurementsRepository(tx).CreateMeasurement(ctx, m); err != nil {
			return err
		}
		m.Indicator = ind
		m.Region = reg

		alert, err = evaluator.Evaluate(ctx, repository.NewPostgresAlertsRepository(tx), m)
		if err != nil {
			return err
		}

		return logActivity(ctx, tx, req.CurrentUserID, "measurement.create",
			fmt.Sprintf("%s / %s / %s = %s", ind.Name, reg.Name, m.Date.Format(domain.DateLayout), formatValue(m.Value)))
	})
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrValidation) {
			result = "invalid"
		}
		metrics.MeasurementsIngestedTotal.WithLabelValues(channel, result).Inc()
		return nil, err
	}
	metrics.MeasurementsIngestedTotal.WithLabelValues(channel, "ok").Inc()

	if alert != nil {
		metrics.AlertsCreatedTotal.WithLabelValues(string(alert.Severity), string(alert.ThresholdType)).Inc()
		s.logger.Info("Threshold breached, alert raised",
			zap.String("alert_id", alert.AlertID),
			zap.String("measurement_id", m.MeasurementID),
			zap.String("indicator_id", m.IndicatorID),
			zap.String("region_id", m.RegionID),
			zap.String("severity", string(alert.Severity)),
			zap.String("threshold_type", string(alert.ThresholdType)),
		)
		s.afterAlertCreated(ctx, alert, m)
	}

	return &CreateMeasurementResponse{Measurement: m, Alert: alert}, nil
}

// afterAlertCreated runs once the alert is committed. Nothing here can fail the request.
func (s *measurementService) afterAlertCreated(ctx context.Context, alert *domain.Alert, m *domain.Measurement) {
	if err := s.notifier.NotifyAlertCreated(ctx, newAlertEvent(alert, m)); err != nil {
		s.logger.Warn("Failed to notify alert",
			zap.String("alert_id", alert.AlertID),
			zap.Error(err),
		)
	}
	if s.stats != nil {
		s.stats.InvalidateAlertStats(ctx)
	}
}

func (s *measurementService) ListMeasurements(ctx context.Context, req ListMeasurementsRequest) (*ListMeasurementsResponse, error) {
	items, total, err := repository.NewPostgresMeasurementsRepository(s.db).ListMeasurements(ctx, req.Filters, req.Page, req.Size)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	ordering := req.Filters.Ordering
	if ordering == "" {
		ordering = "-date"
	}
	return &ListMeasurementsResponse{
		Items:      items,
		Pagination: models.NewPagination(req.Page, req.Size, total, ordering),
	}, nil
}

func (s *measurementService) GetMeasurement(ctx context.Context, measurementID string) (*domain.Measurement, error) {
	if measurementID == "" {
		return nil, domain.Validationf("measurement_id is required")
	}
	return repository.NewPostgresMeasurementsRepository(s.db).GetMeasurement(ctx, measurementID)
}

// UpdateMeasurement does not re-run threshold evaluation.
func (s *measurementService) UpdateMeasurement(ctx context.Context, req UpdateMeasurementRequest) (*domain.Measurement, error) {
	if err := requireAdmin(req.CurrentUserRole); err != nil {
		return nil, err
	}
	if req.Value != nil && (math.IsNaN(*req.Value) || math.IsInf(*req.Value, 0)) {
		return nil, domain.Validationf("value must be a finite number")
	}

	var out *domain.Measurement
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repository.NewPostgresMeasurementsRepository(tx)
		m, err := repo.GetMeasurement(ctx, req.MeasurementID)
		if err != nil {
			return err
		}
		if req.Value != nil {
			m.Value = *req.Value
		}
		if req.Date != nil {
			m.Date = dateOnly(*req.Date)
		}
		if req.Source != nil {
			m.Source = strPtr(*req.Source)
		}
		if err := repo.UpdateMeasurement(ctx, m); err != nil {
			return err
		}
		out = m
		return logActivity(ctx, tx, req.CurrentUserID, "measurement.update", m.MeasurementID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *measurementService) DeleteMeasurement(ctx context.Context, req DeleteMeasurementRequest) error {
	if err := requireAdmin(req.CurrentUserRole); err != nil {
		return err
	}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewPostgresMeasurementsRepository(tx).DeleteMeasurement(ctx, req.MeasurementID); err != nil {
			return err
		}
		return logActivity(ctx, tx, req.CurrentUserID, "measurement.delete", req.MeasurementID)
	})
	if err != nil {
		return err
	}
	if s.stats != nil {
		s.stats.InvalidateAlertStats(ctx)
	}
	return nil
}

// referenceError turns a missing indicator/region into a validation error on the measurement.
func referenceError(err error, kind, id string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Validationf("%s %s does not exist", kind, id)
	}
	return err
}

func dateOnly(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
