package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resume-generator/internal/shared/storage/db"
)

// SQLiteRepo stores timestamps as RFC3339 text.
type SQLiteRepo struct {
	DB  db.DBTX
	Now func() time.Time
}

func (r *SQLiteRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *SQLiteRepo) GetOrCreate(ctx context.Context, email, displayName string) (User, error) {
	const query = `
INSERT INTO users (email, display_name, created_at)
VALUES (?, ?, ?)
ON CONFLICT(email) DO UPDATE SET email = excluded.email
RETURNING id, email, display_name, created_at`
	row := r.DB.QueryRowContext(ctx, query, NormalizeEmail(email), displayName, r.now().Format(time.RFC3339Nano))
	user, err := scanSQLiteUser(row)
	if err != nil {
		return User{}, fmt.Errorf("get or create user: %w", err)
	}
	return user, nil
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `SELECT id, email, display_name, created_at FROM users WHERE email = ? LIMIT 1`
	user, err := scanSQLiteUser(r.DB.QueryRowContext(ctx, query, NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func scanSQLiteUser(row *sql.Row) (User, error) {
	var (
		user    User
		created string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &created); err != nil {
		return User{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return User{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	user.CreatedAt = t
	return user, nil
}
