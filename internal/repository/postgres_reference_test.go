package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agsavn-data/internal/domain"
)

func TestCreateRegion_DuplicateCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRegionsRepository(db)

	mock.ExpectQuery(`INSERT INTO regions`).
		WillReturnError(&pq.Error{Code: "23505"})

	err = repo.CreateRegion(context.Background(), &domain.Region{Name: "North", Code: "NR"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestListRegions_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRegionsRepository(db)

	now := time.Now()
	mock.ExpectQuery(`WHERE name ILIKE \$1 OR code ILIKE \$1`).
		WithArgs("%nor%").
		WillReturnRows(sqlmock.NewRows([]string{"region_id", "name", "code", "description", "created_at", "updated_at"}).
			AddRow("r1", "North", "NR", nil, now, now))

	out, err := repo.ListRegions(context.Background(), "nor")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "NR", out[0].Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDefaultCategories(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresCategoriesRepository(db)

	for i, d := range domain.DefaultCategories {
		affected := int64(1)
		if i == 0 {
			affected = 0 // already present
		}
		mock.ExpectExec(`INSERT INTO categories`).
			WithArgs(sqlmock.AnyArg(), d.Name, string(d.Code)).
			WillReturnResult(sqlmock.NewResult(0, affected))
	}

	n, err := repo.EnsureDefaultCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(domain.DefaultCategories)-1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategory_StillReferenced(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresCategoriesRepository(db)

	mock.ExpectExec(`DELETE FROM categories`).
		WithArgs("c1").
		WillReturnError(&pq.Error{Code: "23503"})

	err = repo.DeleteCategory(context.Background(), "c1")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCreateAlertAction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresAlertActionsRepository(db)

	now := time.Now()
	comment := "checked with field team"
	mock.ExpectQuery(`INSERT INTO alert_actions`).
		WithArgs(sqlmock.AnyArg(), "a1", "u1", "approve", comment).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	act := &domain.AlertAction{AlertID: "a1", UserID: "u1", Action: domain.ActionApprove, Comment: &comment}
	require.NoError(t, repo.CreateAlertAction(context.Background(), act))
	assert.NotEmpty(t, act.ActionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActivityLogs_ForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresActivityLogsRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activity_logs WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
		WithArgs("u1", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"activity_id", "user_id", "action", "details", "created_at"}).
			AddRow("l1", "u1", "measurement.create", "Rainfall North 2024-05-01", now))

	out, total, err := repo.ListActivityLogs(context.Background(), "u1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, out, 1)
	assert.Equal(t, "measurement.create", out[0].Action)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresUsersRepository(db)

	mock.ExpectQuery(`FROM users WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "full_name", "role"}).
			AddRow("u1", "analyst@agsavn.org", "Field Analyst", "ADMIN"))

	u, err := repo.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	require.NoError(t, mock.ExpectationsWereMet())
}
