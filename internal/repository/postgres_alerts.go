package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/models"
)

type PostgresAlertsRepository struct {
	db DBTX
}

func NewPostgresAlertsRepository(db DBTX) *PostgresAlertsRepository {
	return &PostgresAlertsRepository{db: db}
}

var _ AlertsRepository = (*PostgresAlertsRepository)(nil)

const alertColumns = `a.alert_id, a.measurement_id, a.severity, a.status, a.threshold_value,
	a.threshold_type, a.description, a.handled_by, a.created_at, a.updated_at`

const alertJoins = `
	FROM alerts a
	JOIN measurements m ON m.measurement_id = a.measurement_id
	JOIN indicators i ON i.indicator_id = m.indicator_id
	JOIN regions r ON r.region_id = m.region_id
	LEFT JOIN categories c ON c.category_id = i.category_id`

func alertScanDest(a *domain.Alert, severity, status, thresholdType *string, desc, handledBy *sql.NullString) []any {
	return []any{&a.AlertID, &a.MeasurementID, severity, status, &a.ThresholdValue,
		thresholdType, desc, handledBy, &a.CreatedAt, &a.UpdatedAt}
}

func finishAlert(a *domain.Alert, severity, status, thresholdType string, desc, handledBy sql.NullString) {
	a.Severity = domain.AlertSeverity(severity)
	a.Status = domain.AlertStatus(status)
	a.ThresholdType = domain.ThresholdType(thresholdType)
	a.Description = nullStringPtr(desc)
	a.HandledBy = nullStringPtr(handledBy)
}

func scanAlert(row interface{ Scan(...any) error }) (*domain.Alert, error) {
	var a domain.Alert
	var severity, status, thresholdType string
	var desc, handledBy sql.NullString
	if err := row.Scan(alertScanDest(&a, &severity, &status, &thresholdType, &desc, &handledBy)...); err != nil {
		return nil, err
	}
	finishAlert(&a, severity, status, thresholdType, desc, handledBy)
	return &a, nil
}

func scanAlertSummary(row interface{ Scan(...any) error }) (*domain.AlertSummary, error) {
	var s domain.AlertSummary
	var severity, status, thresholdType string
	var desc, handledBy, unit sql.NullString
	dest := alertScanDest(&s.Alert, &severity, &status, &thresholdType, &desc, &handledBy)
	dest = append(dest, &s.IndicatorID, &s.IndicatorName, &unit, &s.RegionID, &s.RegionName,
		&s.CategoryName, &s.Value, &s.Date)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	finishAlert(&s.Alert, severity, status, thresholdType, desc, handledBy)
	s.Unit = nullStringPtr(unit)
	return &s, nil
}

func (r *PostgresAlertsRepository) buildWhereClause(filters AlertFilters, args *[]any, argN *int) []string {
	var where []string
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("a.status = $%d", *argN))
		*args = append(*args, string(filters.Status))
		*argN++
	}
	if filters.Severity != "" {
		where = append(where, fmt.Sprintf("a.severity = $%d", *argN))
		*args = append(*args, string(filters.Severity))
		*argN++
	}
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
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("(i.name ILIKE $%d OR r.name ILIKE $%d OR a.description ILIKE $%d)", *argN, *argN, *argN))
		*args = append(*args, likePattern(filters.Search))
		*argN++
	}
	return where
}

func (r *PostgresAlertsRepository) ListAlerts(ctx context.Context, filters AlertFilters, page, size int) ([]*domain.AlertSummary, int, error) {
	args := []any{}
	argN := 1
	where := r.buildWhereClause(filters, &args, &argN)
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+alertJoins+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, domain.Persistence("count alerts", err)
	}

	order, ok := alertOrdering[filters.Ordering]
	if !ok {
		order = alertOrdering["-created_at"]
	}
	page, size = models.NormalizePage(page, size)
	q := fmt.Sprintf(`SELECT %s, m.indicator_id, i.name, i.unit, m.region_id, r.name,
		COALESCE(c.name, ''), m.value, m.date %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		alertColumns, alertJoins, whereSQL, order, argN, argN+1)
	args = append(args, size, models.Offset(page, size))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, domain.Persistence("list alerts", err)
	}
	defer rows.Close()

	out := []*domain.AlertSummary{}
	for rows.Next() {
		s, err := scanAlertSummary(rows)
		if err != nil {
			return nil, 0, domain.Persistence("scan alert", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.Persistence("list alerts", err)
	}
	return out, total, nil
}

func (r *PostgresAlertsRepository) getAlert(ctx context.Context, alertID, suffix string) (*domain.Alert, error) {
	a, err := scanAlert(r.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts a WHERE a.alert_id = $1`+suffix, alertID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("alert %s", alertID)
	}
	if err != nil {
		return nil, domain.Persistence("get alert", err)
	}
	return a, nil
}

func (r *PostgresAlertsRepository) GetAlert(ctx context.Context, alertID string) (*domain.Alert, error) {
	return r.getAlert(ctx, alertID, "")
}

func (r *PostgresAlertsRepository) GetAlertForUpdate(ctx context.Context, alertID string) (*domain.Alert, error) {
	return r.getAlert(ctx, alertID, " FOR UPDATE")
}

func (r *PostgresAlertsRepository) CreateAlert(ctx context.Context, a *domain.Alert) error {
	if a.AlertID == "" {
		a.AlertID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO alerts (
			alert_id, measurement_id, severity, status, threshold_value,
			threshold_type, description, handled_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		a.AlertID, a.MeasurementID, string(a.Severity), string(a.Status), a.ThresholdValue,
		string(a.ThresholdType), a.Description, a.HandledBy,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Persistence("create alert", err)
	}
	return nil
}

// UpdateAlertStatus returns the refreshed updated_at.
func (r *PostgresAlertsRepository) UpdateAlertStatus(ctx context.Context, alertID string, status domain.AlertStatus, handledBy string) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, `
		UPDATE alerts SET status = $2, handled_by = $3, updated_at = now()
		WHERE alert_id = $1
		RETURNING updated_at`,
		alertID, string(status), handledBy,
	).Scan(&updatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return time.Time{}, domain.NotFoundf("alert %s", alertID)
	case err != nil:
		return time.Time{}, domain.Persistence("update alert status", err)
	}
	return updatedAt, nil
}

func (r *PostgresAlertsRepository) UpdateAlert(ctx context.Context, a *domain.Alert) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE alerts SET severity = $2, status = $3, handled_by = $4, description = $5, updated_at = now()
		WHERE alert_id = $1
		RETURNING measurement_id, threshold_value, threshold_type, created_at, updated_at`,
		a.AlertID, string(a.Severity), string(a.Status), a.HandledBy, a.Description,
	).Scan(&a.MeasurementID, &a.ThresholdValue, (*string)(&a.ThresholdType), &a.CreatedAt, &a.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundf("alert %s", a.AlertID)
	case isForeignKeyViolation(err):
		return domain.Validationf("handled_by user does not exist")
	case err != nil:
		return domain.Persistence("update alert", err)
	}
	return nil
}

func (r *PostgresAlertsRepository) statsWhere(filters StatsFilters) (string, []any) {
	where := []string{"a.created_at >= $1"}
	args := []any{filters.Since}
	if filters.RegionID != "" {
		args = append(args, filters.RegionID)
		where = append(where, fmt.Sprintf("m.region_id = $%d", len(args)))
	}
	if filters.CategoryID != "" {
		args = append(args, filters.CategoryID)
		where = append(where, fmt.Sprintf("i.category_id = $%d", len(args)))
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *PostgresAlertsRepository) CountAlerts(ctx context.Context, filters StatsFilters) (int, error) {
	whereSQL, args := r.statsWhere(filters)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+alertJoins+whereSQL, args...).Scan(&n); err != nil {
		return 0, domain.Persistence("count alerts", err)
	}
	return n, nil
}

func (r *PostgresAlertsRepository) CountAlertsBy(ctx context.Context, dim StatsDimension, filters StatsFilters) (map[string]int, error) {
	col, ok := statsDimensionColumn[dim]
	if !ok {
		return nil, domain.Validationf("unknown stats dimension %q", dim)
	}
	whereSQL, args := r.statsWhere(filters)
	q := fmt.Sprintf(`SELECT %s AS k, COUNT(*) %s %s GROUP BY k`, col, alertJoins, whereSQL)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.Persistence("count alerts by "+string(dim), err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, domain.Persistence("scan alert stats", err)
		}
		out[k] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("count alerts by "+string(dim), err)
	}
	return out, nil
}
