package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/repository"
)

var alertCols = []string{
	"alert_id", "measurement_id", "severity", "status", "threshold_value",
	"threshold_type", "description", "handled_by", "created_at", "updated_at",
}

func setupAlertService(t *testing.T) (*sql.DB, sqlmock.Sqlmock, AlertService) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock, NewAlertService(db, nil, zap.NewNop())
}

func expectLockedAlert(mock sqlmock.Sqlmock, alertID string, status domain.AlertStatus, handledBy any) {
	now := time.Now()
	mock.ExpectQuery(`FROM alerts a WHERE a.alert_id = \$1 FOR UPDATE`).
		WithArgs(alertID).
		WillReturnRows(sqlmock.NewRows(alertCols).AddRow(
			alertID, "m1", "critical", string(status), 10.0, "low", nil, handledBy, now, now,
		))
}

func TestApplyAction_ApprovePending(t *testing.T) {
	_, mock, svc := setupAlertService(t)
	alertID := uuid.New().String()

	mock.ExpectBegin()
	expectLockedAlert(mock, alertID, domain.AlertStatusPending, nil)
	mock.ExpectQuery(`INSERT INTO alert_actions`).
		WithArgs(sqlmock.AnyArg(), alertID, "u1", "approve", "looks right").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	handled := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE alerts SET status = \$2, handled_by = \$3`).
		WithArgs(alertID, "CONFIRMED", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(handled))
	mock.ExpectCommit()

	a, err := svc.ApplyAction(context.Background(), ApplyActionRequest{
		AlertID: alertID, UserID: "u1", Action: domain.ActionApprove, Comment: "  looks right ",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusConfirmed, a.Status)
	require.NotNil(t, a.HandledBy)
	assert.Equal(t, "u1", *a.HandledBy)
	assert.Equal(t, handled, a.UpdatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAction_RejectPending(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	mock.ExpectBegin()
	expectLockedAlert(mock, "a1", domain.AlertStatusPending, nil)
	mock.ExpectQuery(`INSERT INTO alert_actions`).
		WithArgs(sqlmock.AnyArg(), "a1", "u2", "reject", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery(`UPDATE alerts`).
		WithArgs("a1", "REJECTED", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	a, err := svc.ApplyAction(context.Background(), ApplyActionRequest{AlertID: "a1", UserID: "u2", Action: domain.ActionReject})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusRejected, a.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAction_ResolveFromConfirmedAndRejected(t *testing.T) {
	for _, from := range []domain.AlertStatus{domain.AlertStatusConfirmed, domain.AlertStatusRejected, domain.AlertStatusPending} {
		t.Run(string(from), func(t *testing.T) {
			_, mock, svc := setupAlertService(t)

			mock.ExpectBegin()
			expectLockedAlert(mock, "a1", from, "u1")
			mock.ExpectQuery(`INSERT INTO alert_actions`).
				WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
			mock.ExpectQuery(`UPDATE alerts`).
				WithArgs("a1", "RESOLVED", "u3").
				WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
			mock.ExpectCommit()

			a, err := svc.ApplyAction(context.Background(), ApplyActionRequest{AlertID: "a1", UserID: "u3", Action: domain.ActionResolve})
			require.NoError(t, err)
			assert.Equal(t, domain.AlertStatusResolved, a.Status)
			assert.Equal(t, "u3", *a.HandledBy)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestApplyAction_ApproveConfirmedIsRefused(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	mock.ExpectBegin()
	expectLockedAlert(mock, "a1", domain.AlertStatusConfirmed, "u1")
	mock.ExpectRollback()

	_, err := svc.ApplyAction(context.Background(), ApplyActionRequest{AlertID: "a1", UserID: "u2", Action: domain.ActionApprove})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.Equal(t, "Alert is already confirmed", err.Error())

	var ite *domain.InvalidTransitionError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, domain.AlertStatusConfirmed, ite.Current)

	// no action row, no status update
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAction_ResolveResolvedIsRefused(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	mock.ExpectBegin()
	expectLockedAlert(mock, "a1", domain.AlertStatusResolved, "u1")
	mock.ExpectRollback()

	_, err := svc.ApplyAction(context.Background(), ApplyActionRequest{AlertID: "a1", UserID: "u2", Action: domain.ActionResolve})
	assert.EqualError(t, err, "Alert is already resolved")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAction_CommentLeavesStatus(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	mock.ExpectBegin()
	expectLockedAlert(mock, "a1", domain.AlertStatusResolved, "u1")
	mock.ExpectQuery(`INSERT INTO alert_actions`).
		WithArgs(sqlmock.AnyArg(), "a1", "u9", "comment", "follow-up survey next week").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	a, err := svc.ApplyAction(context.Background(), ApplyActionRequest{
		AlertID: "a1", UserID: "u9", Action: domain.ActionComment, Comment: "follow-up survey next week",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusResolved, a.Status)
	assert.Equal(t, "u1", *a.HandledBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAction_StatusUpdateFailureRollsBack(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	mock.ExpectBegin()
	expectLockedAlert(mock, "a1", domain.AlertStatusPending, nil)
	mock.ExpectQuery(`INSERT INTO alert_actions`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery(`UPDATE alerts`).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, err := svc.ApplyAction(context.Background(), ApplyActionRequest{AlertID: "a1", UserID: "u1", Action: domain.ActionApprove})
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAction_NotFound(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.ApplyAction(context.Background(), ApplyActionRequest{AlertID: "missing", UserID: "u1", Action: domain.ActionResolve})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAction_Validation(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	cases := []ApplyActionRequest{
		{AlertID: "", UserID: "u1", Action: domain.ActionApprove},
		{AlertID: "a1", UserID: "", Action: domain.ActionApprove},
		{AlertID: "a1", UserID: "u1", Action: domain.ActionType("escalate")},
		{AlertID: "a1", UserID: "u1", Action: domain.ActionComment, Comment: string(make([]byte, MaxCommentLength+1))},
		{AlertID: "a1", UserID: "u1", Action: domain.ActionComment, Comment: strings.Repeat("é", MaxCommentLength+1)},
	}
	for _, req := range cases {
		_, err := svc.ApplyAction(context.Background(), req)
		assert.True(t, errors.Is(err, domain.ErrValidation), "req=%+v", req.Action)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAction_CommentLengthCountsCharacters(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	// 2000 two-byte characters plus padding is within the limit.
	comment := strings.Repeat("é", MaxCommentLength)

	mock.ExpectBegin()
	expectLockedAlert(mock, "a1", domain.AlertStatusConfirmed, "u1")
	mock.ExpectQuery(`INSERT INTO alert_actions`).
		WithArgs(sqlmock.AnyArg(), "a1", "u2", "comment", comment).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	_, err := svc.ApplyAction(context.Background(), ApplyActionRequest{
		AlertID: "a1", UserID: "u2", Action: domain.ActionComment, Comment: "  " + comment + "\n",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAlert_RejectsMalformedHandledBy(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	handler := "not-a-user"
	_, err := svc.UpdateAlert(context.Background(), UpdateAlertRequest{
		AlertID: "a1", CurrentUserID: "admin1", CurrentUserRole: "ADMIN", HandledBy: &handler,
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAlert_RequiresAdmin(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	sev := domain.SeverityLow
	_, err := svc.UpdateAlert(context.Background(), UpdateAlertRequest{
		AlertID: "a1", CurrentUserID: "u1", CurrentUserRole: "USER", Severity: &sev,
	})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAlert_AdminOverride(t *testing.T) {
	_, mock, svc := setupAlertService(t)
	now := time.Now()

	mock.ExpectBegin()
	expectLockedAlert(mock, "a1", domain.AlertStatusResolved, "u1")
	mock.ExpectQuery(`UPDATE alerts SET severity = \$2`).
		WithArgs("a1", "medium", "PENDING", "u1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"measurement_id", "threshold_value", "threshold_type", "created_at", "updated_at"}).
			AddRow("m1", 10.0, "low", now, now))
	mock.ExpectQuery(`INSERT INTO activity_logs`).
		WithArgs(sqlmock.AnyArg(), "admin1", "alert.update", "a1 severity=medium,status=PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	sev := domain.SeverityMedium
	st := domain.AlertStatusPending
	a, err := svc.UpdateAlert(context.Background(), UpdateAlertRequest{
		AlertID: "a1", CurrentUserID: "admin1", CurrentUserRole: "ADMIN", Severity: &sev, Status: &st,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityMedium, a.Severity)
	assert.Equal(t, domain.AlertStatusPending, a.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAlerts_RejectsUnknownStatus(t *testing.T) {
	_, mock, svc := setupAlertService(t)

	_, err := svc.ListAlerts(context.Background(), ListAlertsRequest{
		Filters: repository.AlertFilters{Status: domain.AlertStatus("OPEN")},
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	require.NoError(t, mock.ExpectationsWereMet())
}
