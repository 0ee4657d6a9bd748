package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm-junior0/ndarehe-sub001/internal/apitest"
	"github.com/sm-junior0/ndarehe-sub001/internal/config"
	"github.com/sm-junior0/ndarehe-sub001/internal/database"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
	"github.com/sm-junior0/ndarehe-sub001/internal/worker"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "ndarehe-admin"},
		API: config.APIConfig{BaseURL: baseURL, Token: "stub-token", Timeout: 5 * time.Second},
		Cache: config.CacheConfig{
			Enabled:  true,
			TTL:      time.Minute,
			Prefixes: []string{"/admin/help/categories"},
		},
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "configs/config.yaml", ConfigPath())
	t.Setenv("CONFIG_PATH", "/etc/ndarehe/admin.yaml")
	assert.Equal(t, "/etc/ndarehe/admin.yaml", ConfigPath())
}

func TestNewClientCachesThroughRedis(t *testing.T) {
	backend := apitest.New("stub-token")
	backend.Seed(time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC))
	srv := backend.Serve(t)

	mr := miniredis.RunT(t)
	cfg := testConfig(srv.URL)
	cfg.Redis.Address = mr.Addr()
	logger := zerolog.Nop()

	redisClient := InitRedis(context.Background(), cfg, &logger)
	require.NotNil(t, redisClient)
	t.Cleanup(func() { _ = redisClient.Close() })

	client, err := NewClient(cfg, redisClient, &logger)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		cats, err := client.HelpCategories(context.Background())
		require.NoError(t, err)
		assert.Len(t, cats, 3)
	}
	assert.Len(t, backend.Requests("/admin/help/categories"), 1)
	assert.NotEmpty(t, mr.Keys())

	assert.Equal(t, "ndarehe-admin", Actor(cfg, client))
}

func TestInitRedisUnreachable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	logger := zerolog.Nop()
	assert.Nil(t, InitRedis(context.Background(), cfg, &logger))

	cfg.Redis.Address = "127.0.0.1:1"
	assert.Nil(t, InitRedis(context.Background(), cfg, &logger))
}

func TestNewClientTokenFile(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.API.Token = ""
	cfg.API.TokenFile = filepath.Join(t.TempDir(), "missing")
	logger := zerolog.Nop()

	_, err := NewClient(cfg, nil, &logger)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(cfg.API.TokenFile, []byte("file-token\n"), 0o600))
	client, err := NewClient(cfg, nil, &logger)
	require.NoError(t, err)
	assert.Equal(t, "file-token", client.Token().String())
}

func TestAttachJournalQueuesPublishableExports(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zerolog.Nop()
	publisher := worker.NewPublishWorker(db, nil, nil, worker.RetryPolicy{}, &logger)
	bus := events.NewEventBus()
	AttachJournal(db, bus, "ops", publisher, &logger)

	events.Emit(bus, events.EventExportCompleted, events.ExportPayload{Entity: "users", Format: "csv", Path: "/tmp/users-export.csv", Rows: 3})
	events.Emit(bus, events.EventExportCompleted, events.ExportPayload{Entity: "revenue-report", Format: "pdf", Path: "/tmp/revenue-report.pdf", Rows: 4})

	exports, err := db.ListExports(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, exports, 2)

	tasks, err := db.GetPendingPublishTasks(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "users", tasks[0].Entity)

	entries, err := db.ListAudit(context.Background(), database.AuditFilter{Resource: string(models.ReportRevenue) + "-report"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
