// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the authd HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Run database migrations (idempotent).
//  4. Connect to PostgreSQL (pgxpool) and Redis.
//  5. Build the token codec, hasher and account repository.
//  6. Start the mail dispatcher.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/taibuivan/authd/internal/api"
	"github.com/taibuivan/authd/internal/platform/config"
	"github.com/taibuivan/authd/internal/platform/constants"
	"github.com/taibuivan/authd/internal/platform/mail"
	"github.com/taibuivan/authd/internal/platform/migration"
	pgstore "github.com/taibuivan/authd/internal/platform/postgres"
	redisstore "github.com/taibuivan/authd/internal/platform/redis"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/platform/validate"
	"github.com/taibuivan/authd/internal/users/account"
	"github.com/taibuivan/authd/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context: cancelled on SIGTERM/SIGINT, stops background workers.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// A 30s deadline so misconfiguration is caught quickly rather than hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 4. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Security primitives ────────────────────────────────────────────
	codec, err := sec.NewTokenCodec(
		sec.TokenConfig{Secret: cfg.JWTSecret, Version: cfg.JWTVersion, TTL: cfg.AccessTokenTTL},
		sec.TokenConfig{Secret: cfg.RefreshSecret, Version: cfg.RefreshTokenVersion, TTL: cfg.RefreshTokenTTL},
		sec.SystemClock{},
	)
	must(log, err, "initialize token codec")

	hasher := sec.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	accountRepository := auth.NewAccountRepository(pool)

	// ── 6. Mail ───────────────────────────────────────────────────────────
	var transport mail.Transport = mail.NewLogTransport(log)
	if cfg.Email.Host != "" {
		transport = mail.NewSMTPTransport(mail.SMTPConfig{
			Host:      cfg.Email.Host,
			Port:      cfg.Email.Port,
			Username:  cfg.Email.Username,
			Password:  cfg.Email.Password,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
	} else {
		log.Warn("smtp_disabled_using_log_transport")
	}

	var workers sync.WaitGroup
	dispatcher := mail.NewDispatcher(rdb, transport, log, mail.DefaultPollTimeout)
	workers.Add(1)
	go func() {
		defer workers.Done()
		if err := dispatcher.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("mail_dispatcher_failed", slog.Any("error", err))
		}
	}()

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.Dependencies{
		Accounts:   accountRepository,
		Tokens:     codec,
		Hasher:     hasher,
		Source:     sec.NewRandomSource(),
		Clock:      sec.SystemClock{},
		CodeWindow: cfg.OneTimeCodeWindow,
	})
	registry := validate.NewRegistry()

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, mail.NewOutbox(rdb), registry),
		Account:   account.NewHandler(account.NewService(accountRepository, sec.NewRandomSource()), registry),
	}

	server := api.NewServer(rootCtx, cfg, log, authService, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
		stop()
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	workers.Wait()
	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger and makes it the process default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
