// Package bootstrap wires the shared pieces of the console binaries from
// config: logger, redis, API client and the local journal.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/auth"
	"github.com/sm-junior0/ndarehe-sub001/internal/config"
	"github.com/sm-junior0/ndarehe-sub001/internal/database"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/logging"
	"github.com/sm-junior0/ndarehe-sub001/internal/repository"
	"github.com/sm-junior0/ndarehe-sub001/internal/worker"
)

// ConfigPath is $CONFIG_PATH or configs/config.yaml.
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func LoadConfigAndLogger(path, component string) (*config.Config, *zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	base, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(base, component), closer, nil
}

// InitRedis returns nil when redis is not configured or unreachable.
func InitRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// NewClient builds the admin API client. Cached responses go to redis when
// it is available and to process memory otherwise.
func NewClient(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) (*api.Client, error) {
	raw, err := cfg.Token()
	if err != nil {
		return nil, err
	}
	token := auth.NewToken(raw)
	if err := token.Check(time.Now()); err != nil {
		logger.Warn().Err(err).Str("token", token.Redacted()).Msg("admin token is not usable, requests will fail")
	}

	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithRateLimit(cfg.API.RateLimit.RPS, cfg.API.RateLimit.Burst),
		api.WithLogger(logger),
	}
	if cfg.Cache.Enabled {
		var cache repository.ResponseCache = repository.NewMemoryCache()
		if redisClient != nil {
			cache = repository.NewFailoverCache(repository.NewRedisCache(redisClient), cache, logger)
		}
		opts = append(opts, api.WithCache(cache, cfg.Cache.TTL, cfg.Cache.Prefixes...))
	}
	return api.NewClient(cfg.API.BaseURL, token, opts...), nil
}

// Actor names the operator in audit entries: the token subject, or the app
// name for opaque tokens.
func Actor(cfg *config.Config, client *api.Client) string {
	if sub := client.Token().Subject(); sub != "" {
		return sub
	}
	return cfg.App.Name
}

// AttachJournal subscribes the journal to bus. Exports in a publishable
// format are queued for Sheets when publisher is not nil.
func AttachJournal(db *database.DB, bus *events.EventBus, actor string, publisher *worker.PublishWorker, logger *zerolog.Logger) {
	var hook database.ExportHook
	if publisher != nil {
		hook = func(ctx context.Context, rec database.ExportRecord) {
			if !worker.Publishable(rec.Path) {
				logger.Debug().Str("path", rec.Path).Msg("export format is not published")
				return
			}
			if err := publisher.EnqueueExport(ctx, rec); err != nil {
				logger.Warn().Err(err).Int64("export_id", rec.ID).Msg("failed to queue export for publishing")
			}
		}
	}
	database.NewJournal(db, actor, hook).Attach(bus)
}
