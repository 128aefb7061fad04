package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/models"
)

// ActivityLogsRepository activity_logs table (append-only)
type ActivityLogsRepository interface {
	CreateActivityLog(ctx context.Context, log *domain.ActivityLog) error
	// ListActivityLogs newest first; an empty userID lists everyone.
	ListActivityLogs(ctx context.Context, userID string, page, size int) ([]*domain.ActivityLog, int, error)
}

type PostgresActivityLogsRepository struct {
	db DBTX
}

func NewPostgresActivityLogsRepository(db DBTX) *PostgresActivityLogsRepository {
	return &PostgresActivityLogsRepository{db: db}
}

var _ ActivityLogsRepository = (*PostgresActivityLogsRepository)(nil)

func (r *PostgresActivityLogsRepository) CreateActivityLog(ctx context.Context, l *domain.ActivityLog) error {
	if l.ActivityID == "" {
		l.ActivityID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO activity_logs (activity_id, user_id, action, details)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		l.ActivityID, l.UserID, l.Action, l.Details,
	).Scan(&l.CreatedAt)
	if err != nil {
		return domain.Persistence("create activity log", err)
	}
	return nil
}

func (r *PostgresActivityLogsRepository) ListActivityLogs(ctx context.Context, userID string, page, size int) ([]*domain.ActivityLog, int, error) {
	whereSQL := ""
	args := []any{}
	if userID != "" {
		whereSQL = " WHERE user_id = $1"
		args = append(args, userID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_logs`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, domain.Persistence("count activity logs", err)
	}

	page, size = models.NormalizePage(page, size)
	q := fmt.Sprintf(`SELECT activity_id, user_id, action, details, created_at
		FROM activity_logs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		whereSQL, len(args)+1, len(args)+2)
	args = append(args, size, models.Offset(page, size))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, domain.Persistence("list activity logs", err)
	}
	defer rows.Close()

	out := []*domain.ActivityLog{}
	for rows.Next() {
		var l domain.ActivityLog
		var details sql.NullString
		if err := rows.Scan(&l.ActivityID, &l.UserID, &l.Action, &details, &l.CreatedAt); err != nil {
			return nil, 0, domain.Persistence("scan activity log", err)
		}
		l.Details = nullStringPtr(details)
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.Persistence("list activity logs", err)
	}
	return out, total, nil
}
