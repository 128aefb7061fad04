package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"agsavn-data/internal/domain"
)

type PostgresIndicatorsRepository struct {
	db DBTX
}

func NewPostgresIndicatorsRepository(db DBTX) *PostgresIndicatorsRepository {
	return &PostgresIndicatorsRepository{db: db}
}

var _ IndicatorsRepository = (*PostgresIndicatorsRepository)(nil)

const indicatorSelect = `
	SELECT i.indicator_id, i.name, i.description, i.category_id, i.unit,
	       i.documentation_link, i.alert_threshold_low, i.alert_threshold_high,
	       i.alert_type, i.created_at, i.updated_at, COALESCE(c.name, '')
	FROM indicators i
	LEFT JOIN categories c ON c.category_id = i.category_id`

func scanIndicator(row interface{ Scan(...any) error }) (*domain.Indicator, error) {
	var ind domain.Indicator
	var desc, unit, doc sql.NullString
	var low, high sql.NullFloat64
	var alertType string
	if err := row.Scan(
		&ind.IndicatorID, &ind.Name, &desc, &ind.CategoryID, &unit,
		&doc, &low, &high,
		&alertType, &ind.CreatedAt, &ind.UpdatedAt, &ind.CategoryName,
	); err != nil {
		return nil, err
	}
	ind.Description = nullStringPtr(desc)
	ind.Unit = nullStringPtr(unit)
	ind.DocumentationLink = nullStringPtr(doc)
	ind.ThresholdLow = nullFloatPtr(low)
	ind.ThresholdHigh = nullFloatPtr(high)
	ind.AlertType = domain.AlertType(alertType)
	return &ind, nil
}

func (r *PostgresIndicatorsRepository) ListIndicators(ctx context.Context, filters IndicatorFilters) ([]*domain.Indicator, error) {
	var where []string
	var args []any
	argN := 1
	if filters.CategoryID != "" {
		where = append(where, fmt.Sprintf("i.category_id = $%d", argN))
		args = append(args, filters.CategoryID)
		argN++
	}
	if filters.AlertType != "" {
		where = append(where, fmt.Sprintf("i.alert_type = $%d", argN))
		args = append(args, string(filters.AlertType))
		argN++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("(i.name ILIKE $%d OR i.description ILIKE $%d)", argN, argN))
		args = append(args, likePattern(filters.Search))
		argN++
	}

	q := indicatorSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY i.name"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.Persistence("list indicators", err)
	}
	defer rows.Close()

	out := []*domain.Indicator{}
	for rows.Next() {
		ind, err := scanIndicator(rows)
		if err != nil {
			return nil, domain.Persistence("scan indicator", err)
		}
		out = append(out, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list indicators", err)
	}
	return out, nil
}

func (r *PostgresIndicatorsRepository) GetIndicator(ctx context.Context, indicatorID string) (*domain.Indicator, error) {
	ind, err := scanIndicator(r.db.QueryRowContext(ctx, indicatorSelect+` WHERE i.indicator_id = $1`, indicatorID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("indicator %s", indicatorID)
	}
	if err != nil {
		return nil, domain.Persistence("get indicator", err)
	}
	return ind, nil
}

func (r *PostgresIndicatorsRepository) CreateIndicator(ctx context.Context, ind *domain.Indicator) error {
	if ind.IndicatorID == "" {
		ind.IndicatorID = uuid.New().String()
	}
	if ind.AlertType == "" {
		ind.AlertType = domain.AlertTypeInformative
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO indicators (
			indicator_id, name, description, category_id, unit, documentation_link,
			alert_threshold_low, alert_threshold_high, alert_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		ind.IndicatorID, ind.Name, ind.Description, ind.CategoryID, ind.Unit, ind.DocumentationLink,
		ind.ThresholdLow, ind.ThresholdHigh, string(ind.AlertType),
	).Scan(&ind.CreatedAt, &ind.UpdatedAt)
	if isForeignKeyViolation(err) {
		return domain.Validationf("category %s does not exist", ind.CategoryID)
	}
	if err != nil {
		return domain.Persistence("create indicator", err)
	}
	return nil
}

func (r *PostgresIndicatorsRepository) UpdateIndicator(ctx context.Context, ind *domain.Indicator) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE indicators SET
			name = $2, description = $3, category_id = $4, unit = $5, documentation_link = $6,
			alert_threshold_low = $7, alert_threshold_high = $8, alert_type = $9, updated_at = now()
		WHERE indicator_id = $1
		RETURNING created_at, updated_at`,
		ind.IndicatorID, ind.Name, ind.Description, ind.CategoryID, ind.Unit, ind.DocumentationLink,
		ind.ThresholdLow, ind.ThresholdHigh, string(ind.AlertType),
	).Scan(&ind.CreatedAt, &ind.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundf("indicator %s", ind.IndicatorID)
	case isForeignKeyViolation(err):
		return domain.Validationf("category %s does not exist", ind.CategoryID)
	case err != nil:
		return domain.Persistence("update indicator", err)
	}
	return nil
}

// DeleteIndicator cascades to measurements, alerts and alert actions.
func (r *PostgresIndicatorsRepository) DeleteIndicator(ctx context.Context, indicatorID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM indicators WHERE indicator_id = $1`, indicatorID)
	if err != nil {
		return domain.Persistence("delete indicator", err)
	}
	ok, err := checkAffected(res)
	if err != nil {
		return domain.Persistence("delete indicator", err)
	}
	if !ok {
		return domain.NotFoundf("indicator %s", indicatorID)
	}
	return nil
}
