package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agsavn-data/internal/domain"
)

var indicatorRowColumns = []string{
	"indicator_id", "name", "description", "category_id", "unit",
	"documentation_link", "alert_threshold_low", "alert_threshold_high",
	"alert_type", "created_at", "updated_at", "category_name",
}

func TestGetIndicator_NullThresholds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresIndicatorsRepository(db)

	now := time.Now()
	mock.ExpectQuery(`WHERE i.indicator_id = \$1`).
		WithArgs("i1").
		WillReturnRows(sqlmock.NewRows(indicatorRowColumns).AddRow(
			"i1", "Cereal price", nil, "c1", "USD/kg",
			nil, nil, 1.8,
			"RAPID", now, now, "Market",
		))

	ind, err := repo.GetIndicator(context.Background(), "i1")
	require.NoError(t, err)
	assert.Nil(t, ind.ThresholdLow)
	require.NotNil(t, ind.ThresholdHigh)
	assert.Equal(t, 1.8, *ind.ThresholdHigh)
	assert.Equal(t, domain.AlertTypeRapid, ind.AlertType)
	assert.Equal(t, "Market", ind.CategoryName)
	assert.Equal(t, "USD/kg", ind.UnitLabel())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIndicator_DefaultsAlertType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresIndicatorsRepository(db)

	low := 10.0
	now := time.Now()
	ind := &domain.Indicator{Name: "Rainfall", CategoryID: "c1", ThresholdLow: &low}

	mock.ExpectQuery(`INSERT INTO indicators`).
		WithArgs(sqlmock.AnyArg(), "Rainfall", nil, "c1", nil, nil, 10.0, nil, "INFORMATIVE").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.CreateIndicator(context.Background(), ind))
	assert.Equal(t, domain.AlertTypeInformative, ind.AlertType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListIndicators_Filters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresIndicatorsRepository(db)

	mock.ExpectQuery(`i.category_id = \$1 AND i.alert_type = \$2`).
		WithArgs("c1", "RAPID").
		WillReturnRows(sqlmock.NewRows(indicatorRowColumns))

	out, err := repo.ListIndicators(context.Background(), IndicatorFilters{CategoryID: "c1", AlertType: domain.AlertTypeRapid})
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}
