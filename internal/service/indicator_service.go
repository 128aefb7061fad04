package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/repository"
)

// IndicatorService indicator definitions and their alert thresholds.
type IndicatorService interface {
	ListIndicators(ctx context.Context, filters repository.IndicatorFilters) ([]*domain.Indicator, error)
	GetIndicator(ctx context.Context, indicatorID string) (*domain.Indicator, error)
	CreateIndicator(ctx context.Context, req SaveIndicatorRequest) (*domain.Indicator, error)
	UpdateIndicator(ctx context.Context, req SaveIndicatorRequest) (*domain.Indicator, error)
	DeleteIndicator(ctx context.Context, req DeleteRequest) error
}

type indicatorService struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewIndicatorService(db *sql.DB, logger *zap.Logger) IndicatorService {
	return &indicatorService{db: db, logger: logger}
}

// SaveIndicatorRequest full replacement of the editable fields.
// Thresholds are independent; low >= high is stored as given.
type SaveIndicatorRequest struct {
	CurrentUserID   string
	CurrentUserRole string
	Indicator       domain.Indicator
}

// DeleteRequest identifies a row to delete and who is asking.
type DeleteRequest struct {
	ID              string
	CurrentUserID   string
	CurrentUserRole string
}

func validateIndicator(ind *domain.Indicator) error {
	ind.Name = strings.TrimSpace(ind.Name)
	if ind.Name == "" {
		return domain.Validationf("name is required")
	}
	if ind.CategoryID == "" {
		return domain.Validationf("category_id is required")
	}
	if ind.AlertType == "" {
		ind.AlertType = domain.AlertTypeInformative
	}
	if !ind.AlertType.Valid() {
		return domain.Validationf("invalid alert_type %q", ind.AlertType)
	}
	if ind.DocumentationLink != nil && *ind.DocumentationLink != "" {
		u, err := url.Parse(*ind.DocumentationLink)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return domain.Validationf("documentation_link must be an absolute URL")
		}
	}
	return nil
}

func (s *indicatorService) ListIndicators(ctx context.Context, filters repository.IndicatorFilters) ([]*domain.Indicator, error) {
	if filters.AlertType != "" && !filters.AlertType.Valid() {
		return nil, domain.Validationf("invalid alert_type filter %q", filters.AlertType)
	}
	return repository.NewPostgresIndicatorsRepository(s.db).ListIndicators(ctx, filters)
}

func (s *indicatorService) GetIndicator(ctx context.Context, indicatorID string) (*domain.Indicator, error) {
	return repository.NewPostgresIndicatorsRepository(s.db).GetIndicator(ctx, indicatorID)
}

func (s *indicatorService) CreateIndicator(ctx context.Context, req SaveIndicatorRequest) (*domain.Indicator, error) {
	if err := requireAdmin(req.CurrentUserRole); err != nil {
		return nil, err
	}
	ind := req.Indicator
	ind.IndicatorID = ""
	if err := validateIndicator(&ind); err != nil {
		return nil, err
	}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewPostgresIndicatorsRepository(tx).CreateIndicator(ctx, &ind); err != nil {
			return err
		}
		return logActivity(ctx, tx, req.CurrentUserID, "indicator.create", ind.Name)
	})
	if err != nil {
		return nil, fmt.Errorf("create indicator: %w", err)
	}
	return &ind, nil
}

func (s *indicatorService) UpdateIndicator(ctx context.Context, req SaveIndicatorRequest) (*domain.Indicator, error) {
	if err := requireAdmin(req.CurrentUserRole); err != nil {
		return nil, err
	}
	ind := req.Indicator
	if ind.IndicatorID == "" {
		return nil, domain.Validationf("indicator_id is required")
	}
	if err := validateIndicator(&ind); err != nil {
		return nil, err
	}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewPostgresIndicatorsRepository(tx).UpdateIndicator(ctx, &ind); err != nil {
			return err
		}
		return logActivity(ctx, tx, req.CurrentUserID, "indicator.update", ind.Name)
	})
	if err != nil {
		return nil, fmt.Errorf("update indicator: %w", err)
	}
	return &ind, nil
}

func (s *indicatorService) DeleteIndicator(ctx context.Context, req DeleteRequest) error {
	if err := requireAdmin(req.CurrentUserRole); err != nil {
		return err
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewPostgresIndicatorsRepository(tx).DeleteIndicator(ctx, req.ID); err != nil {
			return err
		}
		return logActivity(ctx, tx, req.CurrentUserID, "indicator.delete", req.ID)
	})
}
