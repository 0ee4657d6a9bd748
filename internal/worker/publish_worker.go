package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/sm-junior0/ndarehe-sub001/internal/database"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
)

// SheetsClient replaces the contents of one spreadsheet tab.
type SheetsClient interface {
	ReplaceSheet(ctx context.Context, tab string, header []string, rows [][]string) error
}

// PublishWorker consumes publish_queue tasks and copies export files into
// Google Sheets, one tab per entity.
type PublishWorker struct {
	db            *database.DB
	sheets        SheetsClient
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan database.PublishTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
	now           func() time.Time
}

// NewPublishWorker builds a worker with sane defaults. redisClient may be nil.
func NewPublishWorker(db *database.DB, sheets SheetsClient, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *PublishWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "publish_worker").Logger()

	return &PublishWorker{
		db:            db,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan database.PublishTask, 128),
		redisQueueKey: "sheets:queue",
		deadLetterKey: "sheets:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        &l,
		now:           time.Now,
	}
}

// EnqueueExport persists a publish task for rec and schedules it via redis or
// the in-memory queue. Tasks that fit neither are picked up by polling.
func (w *PublishWorker) EnqueueExport(ctx context.Context, rec database.ExportRecord) error {
	if rec.ID == 0 {
		return errors.New("export id is required")
	}
	if !Publishable(rec.Path) {
		return fmt.Errorf("export %d has no publishable file", rec.ID)
	}

	task := database.PublishTask{
		ExportID: rec.ID,
		Entity:   rec.Entity,
		Path:     rec.Path,
		Status:   database.TaskPending,
	}
	if err := w.db.CreatePublishTask(ctx, &task); err != nil {
		return fmt.Errorf("persist publish task: %w", err)
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, w.redisQueueKey, task); err != nil {
			w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("redis push failed, falling back to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("memory queue full, task left to polling")
	}
	return nil
}

// Start runs the main loop until ctx is done.
func (w *PublishWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("publish worker started")
	defer w.logger.Info().Msg("publish worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		if n := w.ProcessPending(ctx); n == 0 {
			w.sleep(ctx)
		}
	}
}

// ProcessPending handles due tasks from the database and returns how many it
// processed.
func (w *PublishWorker) ProcessPending(ctx context.Context) int {
	tasks, err := w.db.GetPendingPublishTasks(ctx, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("fetch pending publish tasks")
		return 0
	}
	for i := range tasks {
		w.processTask(ctx, &tasks[i])
	}
	return len(tasks)
}

func (w *PublishWorker) sleep(ctx context.Context) {
	t := time.NewTimer(w.pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (w *PublishWorker) tryLocalQueue() (database.PublishTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return database.PublishTask{}, false
	}
}

func (w *PublishWorker) tryRedis(ctx context.Context) (database.PublishTask, bool) {
	if w.redis == nil {
		return database.PublishTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			w.logger.Error().Err(err).Msg("redis BRPOP failed")
		}
		return database.PublishTask{}, false
	}
	if len(res) != 2 {
		return database.PublishTask{}, false
	}
	var task database.PublishTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis task")
		return database.PublishTask{}, false
	}
	return task, true
}

func (w *PublishWorker) processTask(ctx context.Context, task *database.PublishTask) {
	header, rows, err := ReadExport(task.Path)
	if err != nil {
		w.failTask(ctx, task, fmt.Errorf("read export: %w", err))
		return
	}

	if err := w.sheets.ReplaceSheet(ctx, task.Entity, header, rows); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.db.UpdatePublishTaskStatus(ctx, task.ID, database.TaskCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark completed")
	}
	if err := w.db.MarkExportPublished(ctx, task.ExportID, w.now()); err != nil {
		w.logger.Error().Err(err).Int64("export_id", task.ExportID).Msg("mark export published")
	}
	w.logger.Info().Int64("task_id", task.ID).Str("entity", task.Entity).Int("rows", len(rows)).Msg("export published")
}

func (w *PublishWorker) retryOrFail(ctx context.Context, task *database.PublishTask, cause error) {
	attempt := task.RetryCount + 1
	if w.retryPolicy.Exhausted(attempt) {
		w.failTask(ctx, task, cause)
		return
	}

	next := w.now().Add(w.retryPolicy.NextDelay(attempt))
	w.logger.Warn().Err(cause).Int64("task_id", task.ID).Int("attempt", attempt).Time("next_retry_at", next).Msg("publish failed, will retry")
	if err := w.db.UpdatePublishTaskStatus(ctx, task.ID, database.TaskRetry, cause.Error(), &next); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark retry")
	}
}

func (w *PublishWorker) failTask(ctx context.Context, task *database.PublishTask, cause error) {
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Msg("publish task failed")
	if err := w.db.UpdatePublishTaskStatus(ctx, task.ID, database.TaskFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark failed")
	}
	if w.redis == nil {
		return
	}
	task.LastError = cause.Error()
	if err := w.pushRedis(ctx, w.deadLetterKey, *task); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("deadletter push")
	}
}

func (w *PublishWorker) pushRedis(ctx context.Context, key string, task database.PublishTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}

// Publishable reports whether ReadExport can load path.
func Publishable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

// ReadExport loads the header and rows of a CSV or XLSX export file.
func ReadExport(path string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		return export.ReadCSV(f)
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		all, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, nil, err
		}
		if len(all) == 0 {
			return nil, nil, errors.New("empty workbook")
		}
		return all[0], all[1:], nil
	default:
		return nil, nil, fmt.Errorf("unsupported export file %q", filepath.Base(path))
	}
}
