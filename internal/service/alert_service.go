package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/metrics"
	"agsavn-data/internal/models"
	"agsavn-data/internal/repository"
)

// MaxCommentLength bounds alert action comments.
const MaxCommentLength = 2000

// MaxExportRows caps a single spreadsheet export.
const MaxExportRows = 10000

// AlertService alert lifecycle and read views.
type AlertService interface {
	// ApplyAction approves, rejects, resolves or comments on an alert.
	ApplyAction(ctx context.Context, req ApplyActionRequest) (*domain.Alert, error)
	ListAlerts(ctx context.Context, req ListAlertsRequest) (*ListAlertsResponse, error)
	GetAlertDetail(ctx context.Context, alertID string) (*domain.AlertDetail, error)
	// UpdateAlert is the admin override; it bypasses the transition table.
	UpdateAlert(ctx context.Context, req UpdateAlertRequest) (*domain.Alert, error)
	ExportAlerts(ctx context.Context, filters repository.AlertFilters) ([]*domain.AlertSummary, error)
}

type alertService struct {
	db     *sql.DB
	stats  StatsService
	logger *zap.Logger
}

func NewAlertService(db *sql.DB, stats StatsService, logger *zap.Logger) AlertService {
	return &alertService{db: db, stats: stats, logger: logger}
}

// ============================================
// Request/Response DTOs
// ============================================

type ApplyActionRequest struct {
	AlertID string
	UserID  string
	Action  domain.ActionType
	Comment string
}

type ListAlertsRequest struct {
	Filters repository.AlertFilters
	Page    int
	Size    int
}

type ListAlertsResponse struct {
	Items      []*domain.AlertSummary
	Pagination models.BackendPagination
}

// UpdateAlertRequest nil fields keep their value. An empty HandledBy clears it.
type UpdateAlertRequest struct {
	AlertID         string
	CurrentUserID   string
	CurrentUserRole string
	Severity        *domain.AlertSeverity
	Status          *domain.AlertStatus
	HandledBy       *string
	Description     *string
}

// ============================================
// Lifecycle
// ============================================

func (s *alertService) validateAction(req ApplyActionRequest) error {
	if req.AlertID == "" {
		return domain.Validationf("alert_id is required")
	}
	if req.UserID == "" {
		return domain.Validationf("user_id is required")
	}
	if !req.Action.Valid() {
		return domain.Validationf("unknown action %q", req.Action)
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Comment)) > MaxCommentLength {
		return domain.Validationf("comment exceeds %d characters", MaxCommentLength)
	}
	return nil
}

// ApplyAction locks the alert row, checks the transition, appends the action
// and then updates status and handled_by, all in one transaction. Concurrent
// actions on the same alert serialize on the row lock.
func (s *alertService) ApplyAction(ctx context.Context, req ApplyActionRequest) (*domain.Alert, error) {
	if err := s.validateAction(req); err != nil {
		metrics.AlertActionsTotal.WithLabelValues(string(req.Action), "invalid").Inc()
		return nil, err
	}

	var alert *domain.Alert
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		alerts := repository.NewPostgresAlertsRepository(tx)
		a, err := alerts.GetAlertForUpdate(ctx, req.AlertID)
		if err != nil {
			return err
		}
		if !a.Status.CanApply(req.Action) {
			return &domain.InvalidTransitionError{Action: req.Action, Current: a.Status}
		}

		action := &domain.AlertAction{
			AlertID: a.AlertID,
			UserID:  req.UserID,
			Action:  req.Action,
			Comment: strPtr(strings.TrimSpace(req.Comment)),
		}
		if err := repository.NewPostgresAlertActionsRepository(tx).CreateAlertAction(ctx, action); err != nil {
			return err
		}

		if target, ok := req.Action.TargetStatus(); ok {
			updatedAt, err := alerts.UpdateAlertStatus(ctx, a.AlertID, target, req.UserID)
			if err != nil {
				return err
			}
			a.Status = target
			a.UpdatedAt = updatedAt
			handler := req.UserID
			a.HandledBy = &handler
		}
		alert = a
		return nil
	})
	if err != nil {
		var ite *domain.InvalidTransitionError
		switch {
		case errors.As(err, &ite):
			metrics.AlertActionsTotal.WithLabelValues(string(req.Action), "invalid_transition").Inc()
			s.logger.Info("Alert action refused",
				zap.String("alert_id", req.AlertID),
				zap.String("action", string(req.Action)),
				zap.String("current_status", string(ite.Current)),
			)
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
			metrics.AlertActionsTotal.WithLabelValues(string(req.Action), "invalid").Inc()
		default:
			metrics.AlertActionsTotal.WithLabelValues(string(req.Action), "error").Inc()
			s.logger.Error("Failed to apply alert action",
				zap.String("alert_id", req.AlertID),
				zap.String("action", string(req.Action)),
				zap.String("user_id", req.UserID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	metrics.AlertActionsTotal.WithLabelValues(string(req.Action), "ok").Inc()
	s.logger.Info("Alert action applied",
		zap.String("alert_id", alert.AlertID),
		zap.String("action", string(req.Action)),
		zap.String("user_id", req.UserID),
		zap.String("status", string(alert.Status)),
	)
	if req.Action != domain.ActionComment && s.stats != nil {
		s.stats.InvalidateAlertStats(ctx)
	}
	return alert, nil
}

// ============================================
// Read views
// ============================================

func (s *alertService) ListAlerts(ctx context.Context, req ListAlertsRequest) (*ListAlertsResponse, error) {
	if err := validateAlertFilters(req.Filters); err != nil {
		return nil, err
	}
	items, total, err := repository.NewPostgresAlertsRepository(s.db).ListAlerts(ctx, req.Filters, req.Page, req.Size)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	ordering := req.Filters.Ordering
	if ordering == "" {
		ordering = "-created_at"
	}
	return &ListAlertsResponse{
		Items:      items,
		Pagination: models.NewPagination(req.Page, req.Size, total, ordering),
	}, nil
}

func (s *alertService) GetAlertDetail(ctx context.Context, alertID string) (*domain.AlertDetail, error) {
	if alertID == "" {
		return nil, domain.Validationf("alert_id is required")
	}
	a, err := repository.NewPostgresAlertsRepository(s.db).GetAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	detail := &domain.AlertDetail{Alert: *a}

	detail.Measurement, err = repository.NewPostgresMeasurementsRepository(s.db).GetMeasurement(ctx, a.MeasurementID)
	if err != nil {
		return nil, fmt.Errorf("alert %s measurement: %w", alertID, err)
	}
	if a.HandledBy != nil {
		u, err := repository.NewPostgresUsersRepository(s.db).GetUser(ctx, *a.HandledBy)
		switch {
		case err == nil:
			detail.Handler = u
		case errors.Is(err, domain.ErrNotFound):
			// handler account removed upstream
		default:
			return nil, err
		}
	}
	detail.Actions, err = repository.NewPostgresAlertActionsRepository(s.db).ListAlertActions(ctx, alertID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *alertService) ExportAlerts(ctx context.Context, filters repository.AlertFilters) ([]*domain.AlertSummary, error) {
	if err := validateAlertFilters(filters); err != nil {
		return nil, err
	}
	var out []*domain.AlertSummary
	repo := repository.NewPostgresAlertsRepository(s.db)
	for page := 1; len(out) < MaxExportRows; page++ {
		items, total, err := repo.ListAlerts(ctx, filters, page, models.MaxPageSize)
		if err != nil {
			return nil, fmt.Errorf("export alerts: %w", err)
		}
		out = append(out, items...)
		if len(items) < models.MaxPageSize || len(out) >= total {
			break
		}
	}
	if len(out) > MaxExportRows {
		out = out[:MaxExportRows]
	}
	return out, nil
}

// ============================================
// Admin override
// ============================================

func (s *alertService) UpdateAlert(ctx context.Context, req UpdateAlertRequest) (*domain.Alert, error) {
	if err := requireAdmin(req.CurrentUserRole); err != nil {
		return nil, err
	}
	if req.Severity != nil && !req.Severity.Valid() {
		return nil, domain.Validationf("invalid severity %q", *req.Severity)
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, domain.Validationf("invalid status %q", *req.Status)
	}
	if req.HandledBy != nil && *req.HandledBy != "" {
		if _, err := uuid.Parse(*req.HandledBy); err != nil {
			return nil, domain.Validationf("handled_by must be a user id")
		}
	}

	var out *domain.Alert
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		alerts := repository.NewPostgresAlertsRepository(tx)
		a, err := alerts.GetAlertForUpdate(ctx, req.AlertID)
		if err != nil {
			return err
		}
		var changed []string
		if req.Severity != nil {
			a.Severity = *req.Severity
			changed = append(changed, "severity="+string(a.Severity))
		}
		if req.Status != nil {
			a.Status = *req.Status
			changed = append(changed, "status="+string(a.Status))
		}
		if req.HandledBy != nil {
			a.HandledBy = strPtr(*req.HandledBy)
			changed = append(changed, "handled_by="+*req.HandledBy)
		}
		if req.Description != nil {
			a.Description = strPtr(*req.Description)
			changed = append(changed, "description")
		}
		if err := alerts.UpdateAlert(ctx, a); err != nil {
			return err
		}
		out = a
		return logActivity(ctx, tx, req.CurrentUserID, "alert.update",
			a.AlertID+" "+strings.Join(changed, ","))
	})
	if err != nil {
		return nil, err
	}
	if s.stats != nil {
		s.stats.InvalidateAlertStats(ctx)
	}
	return out, nil
}

func validateAlertFilters(f repository.AlertFilters) error {
	if f.Status != "" && !f.Status.Valid() {
		return domain.Validationf("invalid status filter %q", f.Status)
	}
	if f.Severity != "" && !f.Severity.Valid() {
		return domain.Validationf("invalid severity filter %q", f.Severity)
	}
	return nil
}
