// Package file implements the upload and download lifecycle of the gateway.
package file

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Upload is a file that was relayed to the object store.
type Upload struct {
	ID          string    `json:"id"`
	Folder      string    `json:"folder"`
	ObjectKey   string    `json:"objectKey"`
	StagedName  string    `json:"stagedName"`
	SizeBytes   int64     `json:"sizeBytes"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository records completed uploads in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record inserts an upload row.
func (r *Repository) Record(ctx context.Context, u *Upload) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO uploads (id, folder, object_key, staged_name, size_bytes, content_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Folder, u.ObjectKey, u.StagedName, u.SizeBytes, u.ContentType, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

// Recent returns the newest uploads first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Upload, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, folder, object_key, staged_name, size_bytes, content_type, created_at
		 FROM uploads
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	uploads, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Upload, error) {
		var u Upload
		err := row.Scan(&u.ID, &u.Folder, &u.ObjectKey, &u.StagedName, &u.SizeBytes, &u.ContentType, &u.CreatedAt)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan uploads: %w", err)
	}
	return uploads, nil
}
