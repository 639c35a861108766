// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the users schema with golang-migrate before the
// API or the seeder touches the database.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// registers the "pgx5" database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// registers the "file" source scheme.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty is returned when a previous run failed half-way. The schema must be
// repaired by hand (migrate force) before the service starts again.
var ErrDirty = errors.New("migration: database is dirty")

// RunUp brings the schema at dsn up to the newest file under dir. An
// already current schema is not an error.
func RunUp(dsn, dir string, logger *slog.Logger) error {
	return run(dsn, dir, logger, func(m *migrate.Migrate) error { return m.Up() })
}

// RunDown rolls back the given number of steps.
func RunDown(dsn, dir string, steps int, logger *slog.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("migration: steps must be positive, got %d", steps)
	}
	return run(dsn, dir, logger, func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

func run(dsn, dir string, logger *slog.Logger, apply func(*migrate.Migrate) error) (err error) {
	m, err := migrate.New("file://"+dir, DatabaseURL(dsn))
	if err != nil {
		return fmt.Errorf("migration: open: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if closeErr := errors.Join(srcErr, dbErr); closeErr != nil {
			logger.Warn("migration_close_failed", slog.Any("error", closeErr))
		}
	}()
	m.Log = newStepLogger(logger)

	from, err := version(m)
	if err != nil {
		return err
	}

	if err := apply(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_up_to_date", slog.Uint64("version", uint64(from)))
			return nil
		}
		return fmt.Errorf("migration: apply from version %d: %w", from, err)
	}

	to, err := version(m)
	if err != nil {
		return err
	}
	logger.Info("migration_applied",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)
	return nil
}

// version reports the applied version, 0 for an empty database.
func version(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("migration: read version: %w", err)
	case dirty:
		return v, fmt.Errorf("%w at version %d", ErrDirty, v)
	}
	return v, nil
}

// DatabaseURL rewrites a postgres:// or postgresql:// URL to the pgx5://
// scheme the golang-migrate pgx/v5 driver registers. Anything else is
// returned unchanged.
func DatabaseURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// stepLogger routes golang-migrate's progress lines to slog at debug level.
type stepLogger struct {
	logger  *slog.Logger
	verbose bool
}

func newStepLogger(logger *slog.Logger) *stepLogger {
	return &stepLogger{logger: logger, verbose: logger.Enabled(context.Background(), slog.LevelDebug)}
}

func (l *stepLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_step", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l *stepLogger) Verbose() bool { return l.verbose }
