package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/models"
)

type PostgresMeasurementsRepository struct {
	db DBTX
}

func NewPostgresMeasurementsRepository(db DBTX) *PostgresMeasurementsRepository {
	return &PostgresMeasurementsRepository{db: db}
}

var _ MeasurementsRepository = (*PostgresMeasurementsRepository)(nil)

const measurementFrom = `
	FROM measurements m
	JOIN indicators i ON i.indicator_id = m.indicator_id
	JOIN regions r ON r.region_id = m.region_id`

const measurementColumns = `
	m.measurement_id, m.indicator_id, m.region_id, m.value, m.source, m.date, m.created_at,
	i.name, i.unit, r.name, r.code`

func scanMeasurement(row interface{ Scan(...any) error }) (*domain.Measurement, error) {
	var m domain.Measurement
	var source, unit sql.NullString
	ind := &domain.Indicator{}
	reg := &domain.Region{}
	if err := row.Scan(
		&m.MeasurementID, &m.IndicatorID, &m.RegionID, &m.Value, &source, &m.Date, &m.CreatedAt,
		&ind.Name, &unit, &reg.Name, &reg.Code,
	); err != nil {
		return nil, err
	}
	m.Source = nullStringPtr(source)
	ind.IndicatorID = m.IndicatorID
	ind.Unit = nullStringPtr(unit)
	reg.RegionID = m.RegionID
	m.Indicator = ind
	m.Region = reg
	return &m, nil
}

func (r *PostgresMeasurementsRepository) buildWhereClause(filters MeasurementFilters, args *[]any, argN *int) []string {
	var where []string
	if filters.IndicatorID != "" {
		where = append(where, fmt.Sprintf("m.indicator_id = $%d", *argN))
		*args = append(*args, filters.IndicatorID)
		*argN++
	}
	if filters.RegionID != "" {
		where = append(where, fmt.Sprintf("m.region_id = $%d", *argN))
		*args = append(*args, filters.RegionID)
		*argN++
	}
	if filters.DateFrom != nil {
		where = append(where, fmt.Sprintf("m.date >= $%d", *argN))
		*args = append(*args, *filters.DateFrom)
		*argN++
	}
	if filters.DateTo != nil {
		where = append(where, fmt.Sprintf("m.date <= $%d", *argN))
		*args = append(*args, *filters.DateTo)
		*argN++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("(i.name ILIKE $%d OR r.name ILIKE $%d OR m.source ILIKE $%d)", *argN, *argN, *argN))
		*args = append(*args, likePattern(filters.Search))
		*argN++
	}
	return where
}

func (r *PostgresMeasurementsRepository) ListMeasurements(ctx context.Context, filters MeasurementFilters, page, size int) ([]*domain.Measurement, int, error) {
	args := []any{}
	argN := 1
	where := r.buildWhereClause(filters, &args, &argN)
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+measurementFrom+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, domain.Persistence("count measurements", err)
	}

	order, ok := measurementOrdering[filters.Ordering]
	if !ok {
		order = measurementOrdering["-date"]
	}
	page, size = models.NormalizePage(page, size)
	q := fmt.Sprintf(`SELECT %s %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		measurementColumns, measurementFrom, whereSQL, order, argN, argN+1)
	args = append(args, size, models.Offset(page, size))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, domain.Persistence("list measurements", err)
	}
	defer rows.Close()

	out := []*domain.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, 0, domain.Persistence("scan measurement", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.Persistence("list measurements", err)
	}
	return out, total, nil
}

func (r *PostgresMeasurementsRepository) GetMeasurement(ctx context.Context, measurementID string) (*domain.Measurement, error) {
	m, err := scanMeasurement(r.db.QueryRowContext(ctx,
		`SELECT `+measurementColumns+measurementFrom+` WHERE m.measurement_id = $1`, measurementID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("measurement %s", measurementID)
	}
	if err != nil {
		return nil, domain.Persistence("get measurement", err)
	}
	return m, nil
}

func (r *PostgresMeasurementsRepository) CreateMeasurement(ctx context.Context, m *domain.Measurement) error {
	if m.MeasurementID == "" {
		m.MeasurementID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO measurements (measurement_id, indicator_id, region_id, value, source, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		m.MeasurementID, m.IndicatorID, m.RegionID, m.Value, m.Source, m.Date,
	).Scan(&m.CreatedAt)
	switch {
	case isUniqueViolation(err):
		return domain.Validationf("measurement already exists for indicator, region and date")
	case isForeignKeyViolation(err):
		return domain.Validationf("indicator or region does not exist")
	case err != nil:
		return domain.Persistence("create measurement", err)
	}
	return nil
}

func (r *PostgresMeasurementsRepository) UpdateMeasurement(ctx context.Context, m *domain.Measurement) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE measurements SET value = $2, source = $3, date = $4
		WHERE measurement_id = $1
		RETURNING indicator_id, region_id, created_at`,
		m.MeasurementID, m.Value, m.Source, m.Date,
	).Scan(&m.IndicatorID, &m.RegionID, &m.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundf("measurement %s", m.MeasurementID)
	case isUniqueViolation(err):
		return domain.Validationf("measurement already exists for indicator, region and date")
	case err != nil:
		return domain.Persistence("update measurement", err)
	}
	return nil
}

// DeleteMeasurement cascades to the measurement's alerts and their actions.
func (r *PostgresMeasurementsRepository) DeleteMeasurement(ctx context.Context, measurementID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM measurements WHERE measurement_id = $1`, measurementID)
	if err != nil {
		return domain.Persistence("delete measurement", err)
	}
	ok, err := checkAffected(res)
	if err != nil {
		return domain.Persistence("delete measurement", err)
	}
	if !ok {
		return domain.NotFoundf("measurement %s", measurementID)
	}
	return nil
}
