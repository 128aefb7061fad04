package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"agsavn-data/internal/domain"
)

type PostgresAlertActionsRepository struct {
	db DBTX
}

func NewPostgresAlertActionsRepository(db DBTX) *PostgresAlertActionsRepository {
	return &PostgresAlertActionsRepository{db: db}
}

var _ AlertActionsRepository = (*PostgresAlertActionsRepository)(nil)

func (r *PostgresAlertActionsRepository) CreateAlertAction(ctx context.Context, a *domain.AlertAction) error {
	if a.ActionID == "" {
		a.ActionID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO alert_actions (action_id, alert_id, user_id, action, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		a.ActionID, a.AlertID, a.UserID, string(a.Action), a.Comment,
	).Scan(&a.CreatedAt)
	if isForeignKeyViolation(err) {
		return domain.Validationf("user %s does not exist", a.UserID)
	}
	if err != nil {
		return domain.Persistence("create alert action", err)
	}
	return nil
}

// ListAlertActions oldest first.
func (r *PostgresAlertActionsRepository) ListAlertActions(ctx context.Context, alertID string) ([]*domain.AlertAction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT aa.action_id, aa.alert_id, aa.user_id, aa.action, aa.comment, aa.created_at,
		       COALESCE(u.email, '')
		FROM alert_actions aa
		LEFT JOIN users u ON u.user_id = aa.user_id
		WHERE aa.alert_id = $1
		ORDER BY aa.created_at ASC`, alertID)
	if err != nil {
		return nil, domain.Persistence("list alert actions", err)
	}
	defer rows.Close()

	out := []*domain.AlertAction{}
	for rows.Next() {
		var a domain.AlertAction
		var action string
		var comment sql.NullString
		if err := rows.Scan(&a.ActionID, &a.AlertID, &a.UserID, &action, &comment, &a.CreatedAt, &a.UserEmail); err != nil {
			return nil, domain.Persistence("scan alert action", err)
		}
		a.Action = domain.ActionType(action)
		a.Comment = nullStringPtr(comment)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list alert actions", err)
	}
	return out, nil
}
