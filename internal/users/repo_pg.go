package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"resume-generator/internal/shared/storage/db"
)

type PGRepo struct {
	DB db.DBTX
}

func (r *PGRepo) GetOrCreate(ctx context.Context, email, displayName string) (User, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	const query = `
INSERT INTO users (email, display_name)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
RETURNING id, email, display_name, created_at`
	var user User
	err := r.DB.QueryRowContext(ctx, query, NormalizeEmail(email), displayName).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.CreatedAt,
	)
	if err != nil {
		return User{}, fmt.Errorf("get or create user: %w", err)
	}
	return user, nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT id, email, display_name, created_at
FROM users
WHERE email = $1
LIMIT 1`
	var user User
	err := r.DB.QueryRowContext(ctx, query, NormalizeEmail(email)).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}
