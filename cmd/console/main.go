// Command console is the one-shot admin console: every list screen, the
// settings form, reports, the help desk and the dashboard as subcommands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/bootstrap"
	"github.com/sm-junior0/ndarehe-sub001/internal/config"
	"github.com/sm-junior0/ndarehe-sub001/internal/database"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/logging"
	"github.com/sm-junior0/ndarehe-sub001/internal/notify"
	"github.com/sm-junior0/ndarehe-sub001/internal/repository"
	"github.com/sm-junior0/ndarehe-sub001/internal/screens"
	"github.com/sm-junior0/ndarehe-sub001/internal/worker"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "console:", api.Message(err, err.Error()))
		}
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	logger  *zerolog.Logger
	console *screens.Console
	db      *database.DB
	redis   *redis.Client
	closer  io.Closer
	out     io.Writer
}

func (a *app) close() {
	a.console.Close()
	_ = a.db.Close()
	_ = repository.Close(a.redis)
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("console", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { usage(stderr) }
	configPath := global.String("config", bootstrap.ConfigPath(), "path to config file")
	if err := global.Parse(args); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr)
		return errUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(stderr)
		return errUsage
	}

	a, err := newApp(ctx, *configPath, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	return cmd.run(ctx, a, rest[1:])
}

func newApp(ctx context.Context, configPath string, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// stdout carries command output
	if cfg.Logging.Output == "" || strings.EqualFold(cfg.Logging.Output, "stdout") {
		cfg.Logging.Output = "stderr"
	}
	base, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(base, "console")

	redisClient := bootstrap.InitRedis(ctx, cfg, logger)
	client, err := bootstrap.NewClient(cfg, redisClient, logger)
	if err != nil {
		_ = repository.Close(redisClient)
		return nil, err
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		_ = repository.Close(redisClient)
		return nil, err
	}

	bus := events.NewEventBus()
	notify.Attach(bus, logger, &printSink{w: stderr})

	// the console only queues; admind publishes
	var publisher *worker.PublishWorker
	if cfg.Google.PublishExports {
		publisher = worker.NewPublishWorker(db, nil, redisClient, worker.RetryPolicy{}, logger)
	}
	bootstrap.AttachJournal(db, bus, bootstrap.Actor(cfg, client), publisher, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		console: screens.NewConsole(cfg, client, bus, logger),
		db:      db,
		redis:   redisClient,
		closer:  closer,
		out:     stdout,
	}, nil
}

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: console [-config path] <command> [args]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-15s %s\n", name, commands[name].summary)
	}
}
