package resumes

import (
	"context"
	"database/sql"

	"resume-generator/internal/shared/storage/db"
	"resume-generator/internal/users"
)

// NewSQLRepos returns the user and resume repositories for dialect bound to conn.
func NewSQLRepos(dialect db.Dialect, conn db.DBTX) (users.Repo, Repo) {
	if dialect == db.DialectSQLite {
		return &users.SQLiteRepo{DB: conn}, &SQLiteRepo{DB: conn}
	}
	return &users.PGRepo{DB: conn}, &PGRepo{DB: conn}
}

// SQLTxRunner opens one database transaction per call.
type SQLTxRunner struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func (s SQLTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, u users.Repo, r Repo) error) error {
	return db.WithTx(ctx, s.DB, func(ctx context.Context, tx db.DBTX) error {
		userRepo, resumeRepo := NewSQLRepos(s.Dialect, tx)
		return fn(ctx, userRepo, resumeRepo)
	})
}
