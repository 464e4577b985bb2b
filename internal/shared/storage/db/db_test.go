package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                   { return nil }
func (nopStmt) NumInput() int                                  { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) func() {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	return func() {
		openDB = prev
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions())
	db, dialect, err := Connect(context.Background(), "postgres://ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if dialect != DialectPostgres {
		t.Fatalf("expected postgres dialect, got %q", dialect)
	}

	stats := db.Stats()
	if stats.MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", stats.MaxOpenConnections)
	}
	if opts.MaxIdleConns != 3 {
		t.Fatalf("expected MaxIdleConns=3, got %d", opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime != 20*time.Minute {
		t.Fatalf("expected ConnMaxLifetime=20m, got %s", opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("expected ConnMaxIdleTime=45s, got %s", opts.ConnMaxIdleTime)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("expected PingTimeout=1s, got %s", opts.PingTimeout)
	}
}

func TestParseURL(t *testing.T) {
	cases := []struct {
		url     string
		driver  string
		dialect Dialect
		wantErr bool
	}{
		{url: "postgres://u:p@localhost:5432/app", driver: "pgx", dialect: DialectPostgres},
		{url: "postgresql://localhost/app", driver: "pgx", dialect: DialectPostgres},
		{url: "sqlite:///var/lib/app/resumes.db", driver: "sqlite", dialect: DialectSQLite},
		{url: "sqlite://", wantErr: true},
		{url: "mysql://localhost/app", wantErr: true},
		{url: "  ", wantErr: true},
	}
	for _, tc := range cases {
		driver, dsn, dialect, err := ParseURL(tc.url)
		if tc.wantErr {
			assert.Error(t, err, tc.url)
			continue
		}
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.driver, driver)
		assert.Equal(t, tc.dialect, dialect)
		if dialect == DialectSQLite {
			assert.True(t, strings.HasPrefix(dsn, "/var/lib/app/resumes.db?"))
			assert.Contains(t, dsn, "_pragma=foreign_keys(1)")
		}
	}
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	url := "sqlite://" + filepath.Join(t.TempDir(), "test.db")
	database, dialect, err := Connect(context.Background(), url, DefaultServerOptions())
	require.NoError(t, err)
	require.Equal(t, DialectSQLite, dialect)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, RunMigrations(context.Background(), database, dialect))
	return database
}

func TestSQLiteMigrationsCreateSchema(t *testing.T) {
	database := openSQLite(t)

	assert.Equal(t, 1, database.Stats().MaxOpenConnections)
	for _, table := range []string{"users", "resumes", "resume_unlocks"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	// running twice is a no-op
	require.NoError(t, RunMigrations(context.Background(), database, DialectSQLite))
}

func TestSQLiteCascadeDeletesResumes(t *testing.T) {
	database := openSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := database.ExecContext(ctx, `INSERT INTO users (email, display_name, created_at) VALUES (?, ?, ?)`, "a@example.com", "a", now)
	require.NoError(t, err)
	userID, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = database.ExecContext(ctx, `INSERT INTO resumes (user_id, original_resume_text, structured_data, job_description, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, "text", "{}", "jd", now)
	require.NoError(t, err)

	_, err = database.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWithTxCommitAndRollback(t *testing.T) {
	database := openSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	err := WithTx(ctx, database, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (email, created_at) VALUES (?, ?)`, "commit@example.com", now)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithTx(ctx, database, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, created_at) VALUES (?, ?)`, "rollback@example.com", now); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	database := openSQLite(t)
	ctx := context.Background()

	func() {
		defer func() {
			require.NotNil(t, recover())
		}()
		_ = WithTx(ctx, database, func(ctx context.Context, tx DBTX) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO users (email, created_at) VALUES (?, ?)`, "panic@example.com", "now")
			panic("boom")
		})
	}()

	var n int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 0, n)
}
