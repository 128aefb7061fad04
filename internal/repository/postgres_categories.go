package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"agsavn-data/internal/domain"
)

type PostgresCategoriesRepository struct {
	db DBTX
}

func NewPostgresCategoriesRepository(db DBTX) *PostgresCategoriesRepository {
	return &PostgresCategoriesRepository{db: db}
}

var _ CategoriesRepository = (*PostgresCategoriesRepository)(nil)

const categoryColumns = `category_id, name, code, description, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*domain.Category, error) {
	var c domain.Category
	var code string
	var desc sql.NullString
	if err := row.Scan(&c.CategoryID, &c.Name, &code, &desc, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Code = domain.CategoryCode(code)
	c.Description = nullStringPtr(desc)
	return &c, nil
}

func (r *PostgresCategoriesRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, domain.Persistence("list categories", err)
	}
	defer rows.Close()

	out := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, domain.Persistence("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list categories", err)
	}
	return out, nil
}

func (r *PostgresCategoriesRepository) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE category_id = $1`, categoryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("category %s", categoryID)
	}
	if err != nil {
		return nil, domain.Persistence("get category", err)
	}
	return c, nil
}

func (r *PostgresCategoriesRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.CategoryID == "" {
		c.CategoryID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (category_id, name, code, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		c.CategoryID, c.Name, string(c.Code), c.Description,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Validationf("category code %q already exists", c.Code)
	}
	if err != nil {
		return domain.Persistence("create category", err)
	}
	return nil
}

func (r *PostgresCategoriesRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE categories SET name = $2, code = $3, description = $4, updated_at = now()
		WHERE category_id = $1
		RETURNING created_at, updated_at`,
		c.CategoryID, c.Name, string(c.Code), c.Description,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundf("category %s", c.CategoryID)
	case isUniqueViolation(err):
		return domain.Validationf("category code %q already exists", c.Code)
	case err != nil:
		return domain.Persistence("update category", err)
	}
	return nil
}

func (r *PostgresCategoriesRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE category_id = $1`, categoryID)
	if isForeignKeyViolation(err) {
		return domain.Validationf("category %s is still referenced by indicators", categoryID)
	}
	if err != nil {
		return domain.Persistence("delete category", err)
	}
	ok, err := checkAffected(res)
	if err != nil {
		return domain.Persistence("delete category", err)
	}
	if !ok {
		return domain.NotFoundf("category %s", categoryID)
	}
	return nil
}

func (r *PostgresCategoriesRepository) EnsureDefaultCategories(ctx context.Context) (int, error) {
	inserted := 0
	for _, d := range domain.DefaultCategories {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO categories (category_id, name, code)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO NOTHING`,
			uuid.New().String(), d.Name, string(d.Code),
		)
		if err != nil {
			return inserted, domain.Persistence("seed categories", err)
		}
		if ok, _ := checkAffected(res); ok {
			inserted++
		}
	}
	return inserted, nil
}
