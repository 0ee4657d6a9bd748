package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type ExportRecord struct {
	ID          int64
	Entity      string
	Format      string
	Path        string
	Rows        int
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func (db *DB) RecordExport(ctx context.Context, rec *ExportRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = db.now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	query := `INSERT INTO export_log (entity, format, path, rows, created_at) VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, rec.Entity, rec.Format, rec.Path, rec.Rows, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

func (db *DB) GetExport(ctx context.Context, id int64) (*ExportRecord, error) {
	query := `SELECT id, entity, format, path, rows, created_at, published_at FROM export_log WHERE id = ?`
	var rec ExportRecord
	err := db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.Entity, &rec.Format, &rec.Path, &rec.Rows, &rec.CreatedAt, &rec.PublishedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("export %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	return &rec, nil
}

// ListExports returns the most recent exports first.
func (db *DB) ListExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, entity, format, path, rows, created_at, published_at
              FROM export_log ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var rec ExportRecord
		if err := rows.Scan(&rec.ID, &rec.Entity, &rec.Format, &rec.Path, &rec.Rows, &rec.CreatedAt, &rec.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (db *DB) MarkExportPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := db.ExecContext(ctx, `UPDATE export_log SET published_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark export published: %w", err)
	}
	return nil
}
