package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/bootstrap"
	"github.com/sm-junior0/ndarehe-sub001/internal/config"
	"github.com/sm-junior0/ndarehe-sub001/internal/database"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/google"
	"github.com/sm-junior0/ndarehe-sub001/internal/health"
	"github.com/sm-junior0/ndarehe-sub001/internal/metrics"
	"github.com/sm-junior0/ndarehe-sub001/internal/notify"
	"github.com/sm-junior0/ndarehe-sub001/internal/repository"
	"github.com/sm-junior0/ndarehe-sub001/internal/screens"
	"github.com/sm-junior0/ndarehe-sub001/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := bootstrap.LoadConfigAndLogger(bootstrap.ConfigPath(), "admind")
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := bootstrap.InitRedis(ctx, cfg, logger)
	defer func() { _ = repository.Close(redisClient) }()

	client, err := bootstrap.NewClient(cfg, redisClient, logger)
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init journal")
		return err
	}
	defer db.Close()

	bus := events.NewEventBus()
	notify.Attach(bus, logger, initSinks(cfg, logger)...)

	bg := &workers{}
	publisher := initPublisher(ctx, cfg, db, redisClient, logger)
	if publisher != nil {
		bg.Go(func() { publisher.Start(ctx) })
	}
	bootstrap.AttachJournal(db, bus, bootstrap.Actor(cfg, client), publisher, logger)

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
		bg.Go(func() { backup.Start(ctx) })
	}

	console := screens.NewConsole(cfg, client, bus, logger)
	defer console.Close()
	if err := console.Dashboard.Start(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial dashboard load failed")
	}
	bg.Go(func() {
		if err := console.Dashboard.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("dashboard polling stopped")
		}
	})

	startMetrics(ctx, cfg, logger)

	healthSrv, err := startHealth(ctx, cfg, db, redisClient, client, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("api", client.BaseURL()).Dur("poll_interval", cfg.Dashboard.PollInterval).Msg("admind started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if healthSrv != nil {
		healthSrv.Shutdown(shutdownCtx)
	}
	if !bg.Wait(15 * time.Second) {
		logger.Warn().Msg("background workers did not stop in time")
	}

	logger.Info().Msg("admind stopped")
	return nil
}

func initSinks(cfg *config.Config, logger *zerolog.Logger) []notify.Sink {
	sinks := []notify.Sink{notify.NewLogSink(logger)}
	if cfg.Telegram.BotToken == "" || len(cfg.Telegram.ChatIDs) == 0 {
		return sinks
	}

	bot, err := notify.NewTelegramBot(cfg.Telegram)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, notices stay in the log")
		return sinks
	}
	logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(cfg.Telegram.ChatIDs)).Msg("telegram notices enabled")
	return append(sinks, notify.NewTelegramSink(bot, cfg.Telegram.ChatIDs, events.Level(cfg.Telegram.MinLevel), cfg.App.Name))
}

func initPublisher(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.PublishWorker {
	if !cfg.Google.PublishExports || cfg.Google.CredentialsFile == "" || cfg.Google.SpreadsheetID == "" {
		return nil
	}

	sheets, err := google.NewSheetsService(ctx, cfg.Google)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, exports will not be published")
		return nil
	}
	if err := sheets.TestConnection(ctx); err != nil {
		email, _ := google.ServiceAccountEmail(cfg.Google.CredentialsFile)
		logger.Warn().Err(err).Str("service_account", email).Msg("spreadsheet not reachable, share it with the service account")
		return nil
	}

	logger.Info().Str("spreadsheet", cfg.Google.SpreadsheetID).Msg("google sheets connected")
	retry := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	return worker.NewPublishWorker(db, sheets, redisClient, retry, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startHealth(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, client *api.Client, logger *zerolog.Logger) (*health.Server, error) {
	if cfg.Monitoring.HealthCheckPort == 0 {
		return nil, nil
	}

	srv, err := health.NewServer(fmt.Sprintf(":%d", cfg.Monitoring.HealthCheckPort), logger)
	if err != nil {
		return nil, err
	}

	srv.Register("journal", db.PingContext)
	if redisClient != nil {
		srv.Register("redis", func(ctx context.Context) error {
			return repository.Ping(ctx, redisClient)
		})
	}
	srv.Register("api", func(ctx context.Context) error {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, err := client.Dashboard(checkCtx)
		return err
	})

	go func() {
		if err := srv.Serve(); err != nil {
			logger.Error().Err(err).Msg("grpc health server stopped")
		}
	}()
	go srv.Monitor(ctx, 30*time.Second)
	return srv, nil
}
