package repository

import (
	"context"

	"agsavn-data/internal/domain"
)

// AlertActionsRepository alert_actions table. Rows are never updated or deleted
// except through the alert cascade.
type AlertActionsRepository interface {
	CreateAlertAction(ctx context.Context, action *domain.AlertAction) error
	ListAlertActions(ctx context.Context, alertID string) ([]*domain.AlertAction, error)
}
