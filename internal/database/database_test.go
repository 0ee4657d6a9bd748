package database

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm-junior0/ndarehe-sub001/internal/events"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "journal.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "journal.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestNewDB_InMemory(t *testing.T) {
	db, err := NewDB(":memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.RecordAudit(context.Background(), &AuditEntry{Resource: "users", Action: "status"}))
	entries, err := db.ListAudit(context.Background(), AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAudit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	for i, res := range []string{"users", "bookings", "users"} {
		e := &AuditEntry{Resource: res, RecordID: "id", Action: "update", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, db.RecordAudit(ctx, e))
		assert.NotEmpty(t, e.ID)
	}
	assert.Error(t, db.RecordAudit(ctx, &AuditEntry{Resource: "users"}))

	all, err := db.ListAudit(ctx, AuditFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt), "newest first")

	users, err := db.ListAudit(ctx, AuditFilter{Resource: "users", Limit: 1})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, base.Add(2*time.Hour), users[0].CreatedAt.UTC())

	recent, err := db.ListAudit(ctx, AuditFilter{Since: base.Add(90 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestExportsAndPublishQueue(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rec := &ExportRecord{Entity: "bookings", Format: "csv", Path: "exports/bookings.csv", Rows: 30}
	require.NoError(t, db.RecordExport(ctx, rec))
	require.NotZero(t, rec.ID)

	task := &PublishTask{ExportID: rec.ID, Entity: rec.Entity, Path: rec.Path}
	require.NoError(t, db.CreatePublishTask(ctx, task))
	assert.Equal(t, TaskPending, task.Status)

	pending, err := db.GetPendingPublishTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, rec.Path, pending[0].Path)

	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdatePublishTaskStatus(ctx, task.ID, TaskRetry, "quota", &future))
	pending, err = db.GetPendingPublishTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "retry is scheduled in the future")

	require.NoError(t, db.UpdatePublishTaskStatus(ctx, task.ID, TaskFailed, "quota", nil))
	failed, err := db.GetFailedPublishTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].RetryCount)
	assert.Equal(t, "quota", failed[0].LastError)
	assert.NotNil(t, failed[0].ProcessedAt)

	at := time.Now()
	require.NoError(t, db.MarkExportPublished(ctx, rec.ID, at))
	got, err := db.GetExport(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PublishedAt)

	list, err := db.ListExports(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = db.GetExport(ctx, 999)
	assert.Error(t, err)
}

func TestJournalRecordsBusEvents(t *testing.T) {
	db := setupTestDB(t)
	bus := events.NewEventBus()

	var hooked []ExportRecord
	NewJournal(db, "ops@ndarehe.com", func(_ context.Context, rec ExportRecord) {
		hooked = append(hooked, rec)
	}).Attach(bus)

	events.Emit(bus, events.EventRecordMutated, events.MutationPayload{Resource: "users", RecordID: "usr-001", Action: "status", Detail: "isActive=false"})
	events.Emit(bus, events.EventSettingsSaved, events.SettingsPayload{Keys: []string{"siteName", "currency"}})
	events.Emit(bus, events.EventExportCompleted, events.ExportPayload{Entity: "tours", Format: "csv", Path: "exports/tours.csv", Rows: 6})

	entries, err := db.ListAudit(context.Background(), AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byAction := map[string]AuditEntry{}
	for _, e := range entries {
		byAction[e.Action] = e
		assert.Equal(t, "ops@ndarehe.com", e.Actor)
	}
	assert.Equal(t, "isActive=false", byAction["status"].Detail)
	assert.Equal(t, "siteName,currency", byAction["bulk_update"].Detail)
	assert.Equal(t, "tours", byAction["export"].Resource)

	require.Len(t, hooked, 1)
	assert.Equal(t, 6, hooked[0].Rows)
	assert.NotZero(t, hooked[0].ID)
}

func TestJournalRejectsBadPayload(t *testing.T) {
	db := setupTestDB(t)
	j := NewJournal(db, "", nil)
	err := j.handleMutation(&events.Event{Type: events.EventRecordMutated, Payload: json.RawMessage(`{`)})
	assert.Error(t, err)
}
