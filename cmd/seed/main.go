// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command seed creates the bootstrap ADMIN account.
//
// It reads ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_NAME alongside the regular
// server configuration, runs pending migrations, and is safe to re-run: an
// existing admin with the same email is left untouched.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/taibuivan/authd/internal/platform/config"
	"github.com/taibuivan/authd/internal/platform/constants"
	"github.com/taibuivan/authd/internal/platform/migration"
	pgstore "github.com/taibuivan/authd/internal/platform/postgres"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/platform/validate"
	"github.com/taibuivan/authd/internal/users/auth"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", constants.AppName))

	if err := run(log); err != nil {
		log.Error("seed_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return err
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	service := auth.NewService(auth.Dependencies{
		Accounts: auth.NewAccountRepository(pool),
		Hasher:   sec.NewHasher(cfg.BcryptCost, cfg.HashWorkers),
	})

	admin, created, err := service.SeedAdmin(ctx, auth.SeedInput{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     validate.Sanitize(cfg.AdminName, validate.Trim, validate.NFC),
	})
	if err != nil {
		return err
	}

	log.Info("admin_seeded", slog.String("public_id", admin.PublicID), slog.Bool("created", created))
	return nil
}
