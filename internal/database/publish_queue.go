package database

import (
	"context"
	"fmt"
	"time"
)

const (
	TaskPending   = "pending"
	TaskRetry     = "retry"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

// PublishTask asks the worker to push one export file to Google Sheets.
type PublishTask struct {
	ID          int64      `json:"id"`
	ExportID    int64      `json:"export_id"`
	Entity      string     `json:"entity"`
	Path        string     `json:"path"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
}

func (db *DB) CreatePublishTask(ctx context.Context, task *PublishTask) error {
	if task.Status == "" {
		task.Status = TaskPending
	}
	query := `INSERT INTO publish_queue (export_id, entity, path, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := db.now()
	result, err := db.ExecContext(ctx, query,
		task.ExportID,
		task.Entity,
		task.Path,
		task.Status,
		task.RetryCount,
		task.LastError,
		now,
		task.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create publish task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now
	return nil
}

func (db *DB) GetPendingPublishTasks(ctx context.Context, limit int) ([]PublishTask, error) {
	query := `SELECT id, export_id, entity, path, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM publish_queue
              WHERE status IN ('pending', 'retry') AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC LIMIT ?`
	return db.queryPublishTasks(ctx, "pending publish tasks", query, db.now(), limit)
}

func (db *DB) GetFailedPublishTasks(ctx context.Context) ([]PublishTask, error) {
	query := `SELECT id, export_id, entity, path, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM publish_queue WHERE status = 'failed' ORDER BY created_at DESC`
	return db.queryPublishTasks(ctx, "failed publish tasks", query)
}

func (db *DB) queryPublishTasks(ctx context.Context, what, query string, args ...interface{}) ([]PublishTask, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	defer rows.Close()

	var tasks []PublishTask
	for rows.Next() {
		var (
			t       PublishTask
			lastErr *string
		)
		err := rows.Scan(&t.ID, &t.ExportID, &t.Entity, &t.Path, &t.Status, &t.RetryCount, &lastErr, &t.CreatedAt, &t.ProcessedAt, &t.NextRetryAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan publish task: %w", err)
		}
		if lastErr != nil {
			t.LastError = *lastErr
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (db *DB) UpdatePublishTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []interface{}
	now := db.now()
	if nextRetryAt != nil {
		utc := nextRetryAt.UTC()
		nextRetryAt = &utc
	}

	switch status {
	case TaskRetry:
		query = `UPDATE publish_queue SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []interface{}{status, errMsg, nextRetryAt, id}
	case TaskCompleted, TaskFailed:
		query = `UPDATE publish_queue SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ? WHERE id = ?`
		args = []interface{}{status, errMsg, nextRetryAt, &now, id}
	default:
		query = `UPDATE publish_queue SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []interface{}{status, errMsg, nextRetryAt, id}
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update publish task status: %w", err)
	}
	return nil
}
