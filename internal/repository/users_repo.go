package repository

import (
	"context"
	"database/sql"
	"errors"

	"agsavn-data/internal/domain"
)

// UsersRepository read-only view of the users table.
type UsersRepository interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type PostgresUsersRepository struct {
	db DBTX
}

func NewPostgresUsersRepository(db DBTX) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, email, full_name, role FROM users WHERE user_id = $1`, userID,
	).Scan(&u.UserID, &u.Email, &u.FullName, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("user %s", userID)
	}
	if err != nil {
		return nil, domain.Persistence("get user", err)
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}
