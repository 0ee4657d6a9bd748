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

	"github.com/gin-gonic/gin"

	"github.com/sm-junior0/ndarehe-sub001/internal/apitest"
	"github.com/sm-junior0/ndarehe-sub001/internal/bootstrap"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := bootstrap.LoadConfigAndLogger(bootstrap.ConfigPath(), "stubapi")
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if cfg.App.Environment == "production" {
		return errors.New("stubapi refuses to run with app.environment=production")
	}
	gin.SetMode(gin.ReleaseMode)

	token := cfg.Stub.Token
	if token == "" {
		token = os.Getenv("STUB_TOKEN")
	}
	backend := apitest.New(token)
	if cfg.Stub.Seed {
		backend.Seed(time.Now().UTC())
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Stub.Port),
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", srv.Addr).Bool("seeded", cfg.Stub.Seed).Bool("auth", token != "").Msg("stub admin API started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info().Msg("stub admin API stopped")
	return nil
}
