package resumes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resume-generator/internal/shared/storage/db"
)

// sqliteTime is fixed width so that created_at sorts chronologically as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepo stores structured data as JSON text and timestamps as RFC3339 text.
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

const sqliteColumns = pgColumns

func (r *SQLiteRepo) Create(ctx context.Context, rec Record) (Record, error) {
	data, err := EncodeStructured(rec.Structured)
	if err != nil {
		return Record{}, err
	}
	created := r.now()
	const query = `
INSERT INTO resumes (user_id, original_resume_text, structured_data, job_description, source_object_key, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`
	err = r.DB.QueryRowContext(ctx, query,
		rec.OwnerID,
		rec.OriginalText,
		string(data),
		rec.JobDescription,
		rec.SourceObjectKey,
		created.Format(sqliteTime),
	).Scan(&rec.ID)
	if err != nil {
		return Record{}, fmt.Errorf("insert resume: %w", err)
	}
	rec.CreatedAt = created
	rec.Structured = rec.Structured.Normalize()
	return rec, nil
}

func (r *SQLiteRepo) GetForOwner(ctx context.Context, ownerID, id int64) (Record, error) {
	query := `SELECT ` + sqliteColumns + ` FROM resumes WHERE id = ? AND user_id = ?`
	rec, err := scanSQLiteRecord(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *SQLiteRepo) ListForOwner(ctx context.Context, ownerID int64) ([]Record, error) {
	query := `SELECT ` + sqliteColumns + ` FROM resumes WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteRepo) Unlock(ctx context.Context, id int64, reference string) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM resumes WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check resume: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	const query = `
INSERT INTO resume_unlocks (resume_id, reference, granted_at)
VALUES (?, ?, ?)
ON CONFLICT(resume_id) DO NOTHING`
	if _, err := r.DB.ExecContext(ctx, query, id, reference, r.now().Format(sqliteTime)); err != nil {
		return fmt.Errorf("insert unlock: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) IsUnlocked(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM resume_unlocks WHERE resume_id = ?)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check unlock: %w", err)
	}
	return ok, nil
}

func scanSQLiteRecord(row rowScanner) (Record, error) {
	var (
		rec     Record
		data    string
		created string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.OriginalText,
		&data,
		&rec.JobDescription,
		&rec.SourceObjectKey,
		&created,
	); err != nil {
		return Record{}, err
	}
	structured, err := DecodeStructured([]byte(data))
	if err != nil {
		return Record{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	rec.Structured = structured
	rec.CreatedAt = t
	return rec, nil
}
