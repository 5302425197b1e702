// todo-service is a JSON HTTP API for managing todo items. Items are kept in
// MongoDB by default; PostgreSQL and an in-memory store are selectable by
// connection string or the --store flag.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wondertwin-ai/todo-service/internal/admin"
	"github.com/wondertwin-ai/todo-service/internal/api"
	"github.com/wondertwin-ai/todo-service/internal/config"
	"github.com/wondertwin-ai/todo-service/internal/httpcore"
	"github.com/wondertwin-ai/todo-service/internal/logging"
	"github.com/wondertwin-ai/todo-service/internal/store"
	"github.com/wondertwin-ai/todo-service/internal/todo"
	"github.com/wondertwin-ai/todo-service/internal/validate"
)

// connectTimeout bounds the initial store connection.
const connectTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if cfg.File != "" {
		logger.Info("loaded config file", "file", cfg.File)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("todo-service stopped", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	st, err := store.Open(connectCtx, cfg.StoreOptions())
	cancel()
	if err != nil {
		return fmt.Errorf("connecting to %s store: %w", cfg.Store, err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("closing store", "err", err)
		}
	}()
	logger.Info("store connected", "store", cfg.Store, "database", cfg.Database)

	v, err := validate.New()
	if err != nil {
		return fmt.Errorf("compiling request schemas: %w", err)
	}

	srv := httpcore.New(httpcore.Options{
		Port:           cfg.Port,
		RequestTimeout: cfg.RequestTimeout,
		Verbose:        cfg.Verbose,
	}, logger)

	// API routes install the not-found handlers, so they go first.
	api.NewHandler(todo.NewService(st), v, logger).Routes(srv.Router)
	admin.NewHandler(st, srv.Middleware(), logger).Routes(srv.Router)

	return srv.Serve(ctx)
}
