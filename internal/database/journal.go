package database

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sm-junior0/ndarehe-sub001/internal/events"
)

// ExportHook runs after an export was recorded, e.g. to enqueue publishing.
type ExportHook func(ctx context.Context, rec ExportRecord)

// Journal writes confirmed mutations, settings saves and exports seen on the
// event bus.
type Journal struct {
	db       *DB
	actor    string
	onExport ExportHook
}

func NewJournal(db *DB, actor string, onExport ExportHook) *Journal {
	return &Journal{db: db, actor: actor, onExport: onExport}
}

// Attach subscribes the journal to bus.
func (j *Journal) Attach(bus *events.EventBus) {
	bus.Subscribe(events.EventRecordMutated, j.handleMutation)
	bus.Subscribe(events.EventSettingsSaved, j.handleSettings)
	bus.Subscribe(events.EventExportCompleted, j.handleExport)
}

func (j *Journal) handleMutation(e *events.Event) error {
	var p events.MutationPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return err
	}
	return j.record(&AuditEntry{
		Resource:  p.Resource,
		RecordID:  p.RecordID,
		Action:    p.Action,
		Detail:    p.Detail,
		Actor:     j.actor,
		CreatedAt: e.CreatedAt,
	})
}

func (j *Journal) handleSettings(e *events.Event) error {
	var p events.SettingsPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return err
	}
	return j.record(&AuditEntry{
		Resource:  "settings",
		Action:    "bulk_update",
		Detail:    strings.Join(p.Keys, ","),
		Actor:     j.actor,
		CreatedAt: e.CreatedAt,
	})
}

func (j *Journal) handleExport(e *events.Event) error {
	var p events.ExportPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return err
	}
	ctx := context.Background()
	rec := ExportRecord{Entity: p.Entity, Format: p.Format, Path: p.Path, Rows: p.Rows, CreatedAt: e.CreatedAt}
	if err := j.db.RecordExport(ctx, &rec); err != nil {
		j.db.logger.Error().Err(err).Str("entity", p.Entity).Msg("failed to journal export")
		return err
	}
	if err := j.record(&AuditEntry{Resource: p.Entity, Action: "export", Detail: p.Format, Actor: j.actor, CreatedAt: e.CreatedAt}); err != nil {
		return err
	}
	if j.onExport != nil {
		j.onExport(ctx, rec)
	}
	return nil
}

func (j *Journal) record(entry *AuditEntry) error {
	if err := j.db.RecordAudit(context.Background(), entry); err != nil {
		j.db.logger.Error().Err(err).Str("resource", entry.Resource).Str("action", entry.Action).Msg("failed to journal entry")
		return err
	}
	return nil
}
