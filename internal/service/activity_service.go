package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/models"
	"agsavn-data/internal/repository"
)

// ActivityService reads the per-user activity trail.
type ActivityService interface {
	ListActivity(ctx context.Context, req ListActivityRequest) (*ListActivityResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogsRepository
	logger *zap.Logger
}

func NewActivityService(repo repository.ActivityLogsRepository, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger}
}

// ListActivityRequest users see their own entries; admins may pass UserID
// to look at someone else, or All for everyone.
type ListActivityRequest struct {
	CurrentUserID   string
	CurrentUserRole string
	UserID          string
	All             bool
	Page            int
	Size            int
}

type ListActivityResponse struct {
	Items      []*domain.ActivityLog
	Pagination models.BackendPagination
}

func (s *activityService) ListActivity(ctx context.Context, req ListActivityRequest) (*ListActivityResponse, error) {
	if req.CurrentUserID == "" {
		return nil, domain.Validationf("current user is required")
	}
	target := req.CurrentUserID
	if req.All || (req.UserID != "" && req.UserID != req.CurrentUserID) {
		if err := requireAdmin(req.CurrentUserRole); err != nil {
			return nil, err
		}
		target = req.UserID
		if req.All {
			target = ""
		}
	}

	items, total, err := s.repo.ListActivityLogs(ctx, target, req.Page, req.Size)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return &ListActivityResponse{
		Items:      items,
		Pagination: models.NewPagination(req.Page, req.Size, total, "-created_at"),
	}, nil
}

// logActivity appends an activity entry on the given connection or transaction.
func logActivity(ctx context.Context, db repository.DBTX, userID, action, details string) error {
	if userID == "" {
		return nil
	}
	return repository.NewPostgresActivityLogsRepository(db).CreateActivityLog(ctx, &domain.ActivityLog{
		UserID:  userID,
		Action:  action,
		Details: strPtr(details),
	})
}

func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
