package service

import (
	"context"
	"database/sql"
	"fmt"

	"agsavn-data/internal/domain"
)

// withTx runs fn inside one transaction. Any error from fn rolls back.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Persistence("begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.Persistence("commit", err)
	}
	return nil
}

func requireAdmin(role string) error {
	if domain.UserRole(role) != domain.RoleAdmin {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
