package courses

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Put inserts or overwrites a record by ID.
func (r *PGRepo) Put(ctx context.Context, rec CourseRecord) error {
	const query = `
INSERT INTO courses (
    id,
    owner_id,
    number,
    title,
    filename,
    storage_path,
    access_token,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    owner_id = EXCLUDED.owner_id,
    number = EXCLUDED.number,
    title = EXCLUDED.title,
    filename = EXCLUDED.filename,
    storage_path = EXCLUDED.storage_path,
    access_token = EXCLUDED.access_token,
    created_at = EXCLUDED.created_at`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.Owner,
		rec.Number,
		rec.Title,
		rec.Filename,
		rec.StoragePath,
		rec.AccessToken,
		rec.CreatedAt,
	)
	return err
}

// Get returns the record for an ID.
func (r *PGRepo) Get(ctx context.Context, id string) (CourseRecord, error) {
	const query = `
SELECT id, owner_id, number, title, filename, storage_path, access_token, created_at
FROM courses
WHERE id = $1
LIMIT 1`

	var rec CourseRecord
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Owner,
		&rec.Number,
		&rec.Title,
		&rec.Filename,
		&rec.StoragePath,
		&rec.AccessToken,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CourseRecord{}, ErrNotFound
		}
		return CourseRecord{}, err
	}
	return rec, nil
}

// ListByOwner returns all records owned by a user.
func (r *PGRepo) ListByOwner(ctx context.Context, owner string) ([]CourseRecord, error) {
	const query = `
SELECT id, owner_id, number, title, filename, storage_path, access_token, created_at
FROM courses
WHERE owner_id = $1`

	rows, err := r.DB.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CourseRecord
	for rows.Next() {
		var rec CourseRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Owner,
			&rec.Number,
			&rec.Title,
			&rec.Filename,
			&rec.StoragePath,
			&rec.AccessToken,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
