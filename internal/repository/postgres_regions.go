package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"agsavn-data/internal/domain"
)

type PostgresRegionsRepository struct {
	db DBTX
}

func NewPostgresRegionsRepository(db DBTX) *PostgresRegionsRepository {
	return &PostgresRegionsRepository{db: db}
}

var _ RegionsRepository = (*PostgresRegionsRepository)(nil)

const regionColumns = `region_id, name, code, description, created_at, updated_at`

func scanRegion(row interface{ Scan(...any) error }) (*domain.Region, error) {
	var r domain.Region
	var desc sql.NullString
	if err := row.Scan(&r.RegionID, &r.Name, &r.Code, &desc, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Description = nullStringPtr(desc)
	return &r, nil
}

func (r *PostgresRegionsRepository) ListRegions(ctx context.Context, search string) ([]*domain.Region, error) {
	q := `SELECT ` + regionColumns + ` FROM regions`
	var args []any
	if search != "" {
		q += ` WHERE name ILIKE $1 OR code ILIKE $1`
		args = append(args, likePattern(search))
	}
	q += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.Persistence("list regions", err)
	}
	defer rows.Close()

	out := []*domain.Region{}
	for rows.Next() {
		reg, err := scanRegion(rows)
		if err != nil {
			return nil, domain.Persistence("scan region", err)
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list regions", err)
	}
	return out, nil
}

func (r *PostgresRegionsRepository) GetRegion(ctx context.Context, regionID string) (*domain.Region, error) {
	reg, err := scanRegion(r.db.QueryRowContext(ctx,
		`SELECT `+regionColumns+` FROM regions WHERE region_id = $1`, regionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("region %s", regionID)
	}
	if err != nil {
		return nil, domain.Persistence("get region", err)
	}
	return reg, nil
}

func (r *PostgresRegionsRepository) CreateRegion(ctx context.Context, region *domain.Region) error {
	if region.RegionID == "" {
		region.RegionID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO regions (region_id, name, code, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		region.RegionID, region.Name, region.Code, region.Description,
	).Scan(&region.CreatedAt, &region.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Validationf("region code %q already exists", region.Code)
	}
	if err != nil {
		return domain.Persistence("create region", err)
	}
	return nil
}

func (r *PostgresRegionsRepository) UpdateRegion(ctx context.Context, region *domain.Region) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE regions SET name = $2, code = $3, description = $4, updated_at = now()
		WHERE region_id = $1
		RETURNING created_at, updated_at`,
		region.RegionID, region.Name, region.Code, region.Description,
	).Scan(&region.CreatedAt, &region.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundf("region %s", region.RegionID)
	case isUniqueViolation(err):
		return domain.Validationf("region code %q already exists", region.Code)
	case err != nil:
		return domain.Persistence("update region", err)
	}
	return nil
}

func (r *PostgresRegionsRepository) DeleteRegion(ctx context.Context, regionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM regions WHERE region_id = $1`, regionID)
	if err != nil {
		return domain.Persistence("delete region", err)
	}
	ok, err := checkAffected(res)
	if err != nil {
		return domain.Persistence("delete region", err)
	}
	if !ok {
		return domain.NotFoundf("region %s", regionID)
	}
	return nil
}
