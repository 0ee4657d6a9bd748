package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/database"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
)

type fakeSheets struct {
	calls  int
	tab    string
	header []string
	rows   [][]string
	err    error
}

func (f *fakeSheets) ReplaceSheet(_ context.Context, tab string, header []string, rows [][]string) error {
	f.calls++
	f.tab, f.header, f.rows = tab, header, rows
	return f.err
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "journal.db"), &logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeExport(t *testing.T, db *database.DB) database.ExportRecord {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tours-export-2026-10-18.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create export: %v", err)
	}
	header := []string{"ID", "Name", "Price"}
	rows := [][]string{{"tour-001", "Gorilla Trekking", "60000"}, {"tour-002", "Canopy Walk, Nyungwe", "80000"}}
	if err := export.WriteCSV(f, header, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	f.Close()

	rec := database.ExportRecord{Entity: "tours", Format: "csv", Path: path, Rows: len(rows)}
	if err := db.RecordExport(context.Background(), &rec); err != nil {
		t.Fatalf("record export: %v", err)
	}
	return rec
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (string, int, sql.NullTime) {
	t.Helper()
	var (
		status    string
		retries   int
		nextRetry sql.NullTime
	)
	err := db.QueryRow(`SELECT status, retry_count, next_retry_at FROM publish_queue WHERE id = ?`, id).Scan(&status, &retries, &nextRetry)
	if err != nil {
		t.Fatalf("load task: %v", err)
	}
	return status, retries, nextRetry
}

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewPublishWorker(db, sheets, nil, RetryPolicy{}, nil)
	rec := writeExport(t, db)

	ctx := context.Background()
	if err := worker.EnqueueExport(ctx, rec); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != database.TaskCompleted {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if sheets.calls != 1 || sheets.tab != "tours" {
		t.Fatalf("expected one call for tab tours, got %d for %q", sheets.calls, sheets.tab)
	}
	if len(sheets.rows) != 2 || sheets.rows[1][1] != "Canopy Walk, Nyungwe" {
		t.Fatalf("unexpected rows %v", sheets.rows)
	}

	got, err := db.GetExport(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get export: %v", err)
	}
	if got.PublishedAt == nil {
		t.Fatalf("expected export to be marked published")
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("quota exceeded")}
	worker := NewPublishWorker(db, sheets, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, nil)
	rec := writeExport(t, db)

	ctx := context.Background()
	if err := worker.EnqueueExport(ctx, rec); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != database.TaskRetry {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if retryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", retryCount)
	}
	if !nextRetry.Valid {
		t.Fatalf("expected next_retry_at to be set")
	}
	if n := worker.ProcessPending(ctx); n != 0 {
		t.Fatalf("retry is not due yet, processed %d", n)
	}
}

func TestProcessTaskFailsAfterMaxRetries(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("permission denied")}
	worker := NewPublishWorker(db, sheets, rdb, RetryPolicy{MaxRetries: 2}, nil)
	rec := writeExport(t, db)

	ctx := context.Background()
	if err := worker.EnqueueExport(ctx, rec); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, ok := worker.tryRedis(ctx)
	if !ok {
		t.Fatalf("expected task in redis queue")
	}
	task.RetryCount = 1
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != database.TaskFailed {
		t.Fatalf("expected status=failed, got %s", status)
	}

	items, err := mr.List("sheets:deadletter")
	if err != nil {
		t.Fatalf("deadletter list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 deadletter item, got %d", len(items))
	}
	var dead database.PublishTask
	if err := json.Unmarshal([]byte(items[0]), &dead); err != nil {
		t.Fatalf("decode deadletter: %v", err)
	}
	if dead.LastError != "permission denied" {
		t.Fatalf("unexpected deadletter error %q", dead.LastError)
	}
}

func TestProcessTaskMissingFile(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewPublishWorker(db, sheets, nil, RetryPolicy{}, nil)

	rec := database.ExportRecord{Entity: "users", Format: "csv", Path: filepath.Join(t.TempDir(), "gone.csv")}
	if err := db.RecordExport(context.Background(), &rec); err != nil {
		t.Fatalf("record export: %v", err)
	}
	if err := worker.EnqueueExport(context.Background(), rec); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if n := worker.ProcessPending(context.Background()); n != 1 {
		t.Fatalf("expected 1 pending task, got %d", n)
	}
	if sheets.calls != 0 {
		t.Fatalf("sheets must not be called for unreadable files")
	}
}

func TestEnqueueExportValidation(t *testing.T) {
	worker := NewPublishWorker(newTestDB(t), &fakeSheets{}, nil, RetryPolicy{}, nil)
	if err := worker.EnqueueExport(context.Background(), database.ExportRecord{Path: "x.csv"}); err == nil {
		t.Fatalf("expected error for missing export id")
	}
	if err := worker.EnqueueExport(context.Background(), database.ExportRecord{ID: 1}); err == nil {
		t.Fatalf("expected error for missing path")
	}
	if err := worker.EnqueueExport(context.Background(), database.ExportRecord{ID: 1, Path: "revenue-report.pdf"}); err == nil {
		t.Fatalf("expected error for pdf export")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewPublishWorker(db, sheets, nil, RetryPolicy{}, nil)
	worker.pollInterval = 10 * time.Millisecond
	if err := worker.EnqueueExport(context.Background(), writeExport(t, db)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		var status string
		_ = db.QueryRow(`SELECT status FROM publish_queue LIMIT 1`).Scan(&status)
		if status == database.TaskCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("task was not processed")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop")
	}
}

func TestReadExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := export.WriteXLSX(f, "Users", []string{"ID", "Email"}, [][]string{{"usr-001", "a@example.rw"}}); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f.Close()

	header, rows, err := ReadExport(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(header) != 2 || header[1] != "Email" {
		t.Fatalf("unexpected header %v", header)
	}
	if len(rows) != 1 || rows[0][0] != "usr-001" {
		t.Fatalf("unexpected rows %v", rows)
	}

	if _, _, err := ReadExport("report.pdf"); err == nil {
		t.Fatalf("expected pdf to be rejected")
	}
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := p.NextDelay(i + 1); got != w {
			t.Fatalf("attempt %d: expected %v, got %v", i+1, w, got)
		}
	}
	if got := (RetryPolicy{}).NextDelay(0); got != time.Second {
		t.Fatalf("expected default 1s, got %v", got)
	}
}

func TestRetryPolicyExhausted(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3}
	if p.Exhausted(2) {
		t.Fatalf("attempt 2 of 3 should retry")
	}
	if !p.Exhausted(3) {
		t.Fatalf("attempt 3 of 3 should fail")
	}
	if (RetryPolicy{}).Exhausted(100) {
		t.Fatalf("zero MaxRetries never exhausts")
	}
}
