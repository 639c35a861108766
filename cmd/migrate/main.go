// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command migrate applies or rolls back the users schema without starting the
// API. With no flags it migrates up; -down N rolls back N steps.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/taibuivan/authd/internal/platform/config"
	"github.com/taibuivan/authd/internal/platform/constants"
	"github.com/taibuivan/authd/internal/platform/migration"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", constants.AppName))

	cfg, err := config.Load()
	if err != nil {
		log.Error("migrate_failed", slog.Any("error", err))
		os.Exit(1)
	}

	if *down > 0 {
		err = migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, *down, log)
	} else {
		err = migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
	}
	if err != nil {
		log.Error("migrate_failed", slog.Any("error", err))
		os.Exit(1)
	}
}
