package resumes

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

const pgColumns = `id, user_id, original_resume_text, structured_data, job_description, source_object_key, created_at`

func (r *PGRepo) Create(ctx context.Context, rec Record) (Record, error) {
	data, err := EncodeStructured(rec.Structured)
	if err != nil {
		return Record{}, err
	}
	const query = `
INSERT INTO resumes (user_id, original_resume_text, structured_data, job_description, source_object_key)
VALUES ($1, $2, $3::jsonb, $4, $5)
RETURNING id, created_at`
	err = r.DB.QueryRowContext(ctx, query,
		rec.OwnerID,
		rec.OriginalText,
		string(data),
		rec.JobDescription,
		rec.SourceObjectKey,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("insert resume: %w", err)
	}
	rec.Structured = rec.Structured.Normalize()
	return rec, nil
}

func (r *PGRepo) GetForOwner(ctx context.Context, ownerID, id int64) (Record, error) {
	query := `SELECT ` + pgColumns + ` FROM resumes WHERE id = $1 AND user_id = $2`
	rec, err := scanPGRecord(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PGRepo) ListForOwner(ctx context.Context, ownerID int64) ([]Record, error) {
	query := `SELECT ` + pgColumns + ` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanPGRecord(rows)
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

func (r *PGRepo) Unlock(ctx context.Context, id int64, reference string) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM resumes WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check resume: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	const query = `
INSERT INTO resume_unlocks (resume_id, reference)
VALUES ($1, $2)
ON CONFLICT (resume_id) DO NOTHING`
	if _, err := r.DB.ExecContext(ctx, query, id, reference); err != nil {
		return fmt.Errorf("insert unlock: %w", err)
	}
	return nil
}

func (r *PGRepo) IsUnlocked(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM resume_unlocks WHERE resume_id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check unlock: %w", err)
	}
	return ok, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPGRecord(row rowScanner) (Record, error) {
	var (
		rec  Record
		data []byte
	)
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.OriginalText,
		&data,
		&rec.JobDescription,
		&rec.SourceObjectKey,
		&rec.CreatedAt,
	); err != nil {
		return Record{}, err
	}
	structured, err := DecodeStructured(data)
	if err != nil {
		return Record{}, err
	}
	rec.Structured = structured
	return rec, nil
}
